package gateway_handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
)

// Order tag keys carried on every Cashfree order.
const (
	TagSource           = "source"
	TagReferenceDoctype = "reference_doctype"
	TagReferenceDocname = "reference_docname"
	TagPaymentRequest   = "payment_request"

	tagSourceValue = "erpnext"
)

var customerIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// MakePayment creates a Cashfree order for the request and returns its
// checkout URL. Failures come back in the response's Error.
func (g *Gateway) MakePayment(ctx context.Context, req payment_models.PaymentInitiationRequest) payment_models.InitiationResponse {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = payment_models.DefaultCurrency
	}
	if currency != payment_models.DefaultCurrency {
		return payment_models.InitiationResponse{Error: MsgINROnly}
	}
	if !req.Amount.GreaterThan(decimal.Zero) {
		return payment_models.InitiationResponse{Error: "Payment amount must be greater than zero"}
	}
	if strings.TrimSpace(req.ReferenceDocname) == "" {
		return payment_models.InitiationResponse{Error: "Reference document is required"}
	}
	doctype := req.ReferenceDoctype
	if doctype == "" {
		doctype = payment_models.DefaultReferenceDoctype
	}

	orderID := fmt.Sprintf("CF-%s-%s", req.ReferenceDocname, g.newSuffix())

	tags := map[string]string{
		TagSource:           tagSourceValue,
		TagReferenceDoctype: doctype,
		TagReferenceDocname: req.ReferenceDocname,
	}
	if doctype == payment_models.DoctypePaymentRequest {
		tags[TagPaymentRequest] = req.ReferenceDocname
	}

	returnURL := g.ReturnURL
	if returnURL == "" {
		returnURL = g.methodURL(MethodHandleRedirect) + "?order_id={order_id}"
	}

	orderReq := clients.CashfreeOrderRequest{
		OrderID:       orderID,
		OrderAmount:   req.Amount.InexactFloat64(),
		OrderCurrency: currency,
		CustomerDetails: clients.CustomerDetails{
			CustomerID:    customerID(req),
			CustomerName:  req.PayerName,
			CustomerEmail: req.PayerEmail,
			CustomerPhone: firstNonEmpty(req.PayerPhone, payment_models.DefaultPayerPhone),
		},
		OrderMeta: clients.OrderMeta{
			ReturnURL:        returnURL,
			NotifyURL:        g.methodURL(MethodHandleWebhook),
			ReferenceDoctype: doctype,
			ReferenceDocname: req.ReferenceDocname,
			PaymentReference: req.ReferenceDocname,
		},
		OrderNote: firstNonEmpty(req.Description, fmt.Sprintf("Payment for %s %s", doctype, req.ReferenceDocname)),
		OrderTags: tags,
	}

	g.trace(ctx, doctype, req.ReferenceDocname, orderReq)

	order, err := g.Cashfree.CreateOrder(ctx, orderReq)
	if err != nil {
		logger.ErrorLogger.Errorf("Cashfree order creation failed for %s %s: %v", doctype, req.ReferenceDocname, err)
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return payment_models.InitiationResponse{Error: apiErr.Message}
		}
		return payment_models.InitiationResponse{Error: "Could not create Cashfree order"}
	}
	if order.PaymentLink == "" {
		logger.ErrorLogger.Errorf("Cashfree order %s has no payment link", orderID)
		return payment_models.InitiationResponse{Error: ErrNoCheckoutURL.Error()}
	}

	logger.InfoLogger.Infof("Cashfree order %s created for %s %s", orderID, doctype, req.ReferenceDocname)
	return payment_models.InitiationResponse{
		Status:     payment_models.StatusSuccess,
		PaymentURL: order.PaymentLink,
	}
}

func customerID(req payment_models.PaymentInitiationRequest) string {
	id := customerIDUnsafe.ReplaceAllString(firstNonEmpty(req.PayerEmail, req.PayerPhone, req.ReferenceDocname), "_")
	if len(id) > 50 {
		id = id[:50]
	}
	return id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
