package payment_request_handlers

import (
	"context"
	"errors"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

const (
	MsgLinkOpened       = "Payment link opened in a new window"
	MsgCouldNotMakeLink = "Could not generate payment link"
)

var ErrNoPaymentLink = errors.New("no payment link returned")

// LinkGenerator asks the ERP for a payment link and opens it.
type LinkGenerator struct {
	RPC clients.Caller
}

func NewLinkGenerator(rpc clients.Caller) *LinkGenerator {
	return &LinkGenerator{RPC: rpc}
}

// GenerateLink opens the returned redirect_to in a new window.
func (g *LinkGenerator) GenerateLink(ctx context.Context, doctype, docname string, s ui.Surface) (string, error) {
	raw, err := g.RPC.Call(ctx, payment_models.MethodMakePaymentLink, map[string]string{
		"reference_doctype": doctype,
		"reference_docname": docname,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Payment link for %s %s failed: %v", doctype, docname, err)
		g.reportFailure(s, clients.ServerMessage(err))
		return "", err
	}

	link := payment_models.ParseLinkResponse(raw)
	if link.RedirectTo == "" {
		logger.WarnLogger.Warnf("Payment link for %s %s: reply had no redirect_to: %s", doctype, docname, string(raw))
		g.reportFailure(s, "")
		return "", ErrNoPaymentLink
	}

	s.OpenWindow(link.RedirectTo)
	s.ShowAlert(MsgLinkOpened, ui.IndicatorGreen)
	return link.RedirectTo, nil
}

func (g *LinkGenerator) reportFailure(s ui.Surface, serverText string) {
	msg := serverText
	if msg == "" {
		msg = MsgCouldNotMakeLink
	}
	s.MsgPrint(ui.Message{Body: msg, Indicator: ui.IndicatorRed})
}
