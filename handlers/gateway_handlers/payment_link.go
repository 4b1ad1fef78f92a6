package gateway_handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/utils/mail"
)

var paymentRequestFields = []string{
	"name", "status", "payment_gateway", "reference_doctype", "reference_name",
	"grand_total", "currency", "email_to",
}

func linkCacheKey(doctype, docname string) string {
	return "payment_link:" + doctype + ":" + docname
}

// PaymentLink returns the shareable link that starts a Cashfree payment for
// the reference. A new link is emailed to the Payment Request's payer.
func (g *Gateway) PaymentLink(ctx context.Context, doctype, docname string) (payment_models.LinkResponse, error) {
	if doctype == "" || docname == "" {
		return payment_models.LinkResponse{}, payment_models.ErrMissingReference
	}

	key := linkCacheKey(doctype, docname)
	if cached, ok, err := g.Keys.Get(ctx, key); err != nil {
		logger.WarnLogger.Warnf("Payment link cache lookup for %s %s failed: %v", doctype, docname, err)
	} else if ok {
		return payment_models.LinkResponse{RedirectTo: cached}, nil
	}

	link := g.methodURL(payment_models.MethodMakePayment) + "?" + url.Values{
		"reference_doctype": {doctype},
		"reference_docname": {docname},
	}.Encode()

	if err := g.Keys.Set(ctx, key, link, linkTTL); err != nil {
		logger.WarnLogger.Warnf("Failed to cache payment link for %s %s: %v", doctype, docname, err)
	}

	if g.Mailer != nil {
		g.mailLink(ctx, doctype, docname, link)
	}
	return payment_models.LinkResponse{RedirectTo: link}, nil
}

func (g *Gateway) mailLink(ctx context.Context, doctype, docname, link string) {
	pr, err := g.findPaymentRequest(ctx, doctype, docname)
	if err != nil {
		logger.WarnLogger.Warnf("Not emailing payment link for %s %s: %v", doctype, docname, err)
		return
	}
	if pr.EmailTo == "" {
		return
	}

	err = g.Mailer.SendPaymentLink(pr.EmailTo, mail.PaymentLinkData{
		Amount:           pr.GrandTotal.StringFixed(2),
		Currency:         firstNonEmpty(pr.Currency, payment_models.DefaultCurrency),
		ReferenceDoctype: pr.ReferenceDoctype,
		ReferenceName:    pr.ReferenceName,
		Link:             link,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to email payment link for %s: %v", pr.Name, err)
	}
}

// StartFromLink runs when a payer opens a payment link: it creates a fresh
// Cashfree order for the Payment Request and returns its checkout URL.
func (g *Gateway) StartFromLink(ctx context.Context, doctype, docname string) (string, error) {
	pr, err := g.findPaymentRequest(ctx, doctype, docname)
	if err != nil {
		return "", err
	}
	if pr.IsPaid() {
		return "", fmt.Errorf("%w: %s", ErrAlreadyPaid, pr.Name)
	}

	resp := g.MakePayment(ctx, payment_models.PaymentInitiationRequest{
		ReferenceDoctype: payment_models.DoctypePaymentRequest,
		ReferenceDocname: pr.Name,
		Amount:           pr.GrandTotal,
		Currency:         pr.Currency,
		PayerEmail:       pr.EmailTo,
		Description:      fmt.Sprintf("Payment for %s %s", pr.ReferenceDoctype, pr.ReferenceName),
	})
	if !resp.Succeeded() {
		return "", errors.New(firstNonEmpty(resp.Error, ErrNoCheckoutURL.Error()))
	}
	return resp.PaymentURL, nil
}

// findPaymentRequest resolves a reference to its Payment Request. Other
// doctypes resolve to their newest Cashfree Payment Request.
func (g *Gateway) findPaymentRequest(ctx context.Context, doctype, docname string) (*payment_models.PaymentRequestRecord, error) {
	if doctype == payment_models.DoctypePaymentRequest {
		var pr payment_models.PaymentRequestRecord
		if err := g.ERP.GetDoc(ctx, payment_models.DoctypePaymentRequest, docname, &pr); err != nil {
			var rpcErr *clients.RPCError
			if errors.As(err, &rpcErr) && rpcErr.StatusCode == 404 {
				return nil, fmt.Errorf("%w: %s", ErrPaymentRequestNotFound, docname)
			}
			return nil, err
		}
		return &pr, nil
	}

	var rows []payment_models.PaymentRequestRecord
	err := g.ERP.GetList(ctx, clients.ListQuery{
		Doctype: payment_models.DoctypePaymentRequest,
		Filters: map[string]any{
			"reference_doctype": doctype,
			"reference_name":    docname,
			"payment_gateway":   payment_models.GatewayCashfree,
		},
		Fields:  paymentRequestFields,
		OrderBy: "creation desc",
		Limit:   1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrPaymentRequestNotFound, doctype, docname)
	}
	return &rows[0], nil
}
