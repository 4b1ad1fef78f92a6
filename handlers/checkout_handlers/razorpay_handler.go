package checkout_handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/metrics"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

const GatewayRazorpay = "Razorpay"

// RazorpayHandler pays through a Razorpay hosted payment link.
type RazorpayHandler struct {
	Client        clients.RazorpayClientWrapper
	Policy        payment_models.PayerPolicy
	CallbackURL   string
	RedirectDelay time.Duration
}

func NewRazorpayHandler(client clients.RazorpayClientWrapper, policy payment_models.PayerPolicy, callbackURL string) *RazorpayHandler {
	return &RazorpayHandler{
		Client:        client,
		Policy:        policy,
		CallbackURL:   callbackURL,
		RedirectDelay: payment_models.RedirectDelay,
	}
}

func (h *RazorpayHandler) Initiate(ctx context.Context, co Checkout, s ui.Surface) (Outcome, error) {
	out := Outcome{Gateway: GatewayRazorpay, State: StateIdle}

	req, _, err := payment_models.BuildInitiationRequest(co.Order, co.Payer, h.Policy)
	if err != nil {
		out.State = StateFailed
		out.Message = validationMessage(err)
		s.MsgPrint(ui.Message{Title: TitlePaymentError, Body: out.Message, Indicator: ui.IndicatorRed})
		metrics.IncInitiation(out.Gateway, "invalid")
		return out, err
	}

	out.State = StateSubmitting
	s.ShowAlert(MsgInitializing, ui.IndicatorBlue)
	s.Freeze(MsgSettingUp)

	// Razorpay takes the amount in the smallest currency unit.
	data := map[string]interface{}{
		"amount":       req.Amount.Shift(2).Round(0).IntPart(),
		"currency":     req.Currency,
		"reference_id": req.ReferenceDocname,
		"description":  req.Description,
		"customer": map[string]interface{}{
			"name":    req.PayerName,
			"email":   req.PayerEmail,
			"contact": req.PayerPhone,
		},
		"notify": map[string]interface{}{
			"sms":   false,
			"email": false,
		},
	}
	if h.CallbackURL != "" {
		data["callback_url"] = h.CallbackURL
		data["callback_method"] = "get"
	}

	link, err := h.Client.CreatePaymentLink(data)
	s.Unfreeze()
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay payment link for order %s failed: %v", req.ReferenceDocname, err)
		out.State = StateFailed
		out.Message = MsgCouldNotInitialize
		s.MsgPrint(ui.Message{Title: TitlePaymentError, Body: out.Message, Indicator: ui.IndicatorRed})
		metrics.IncInitiation(out.Gateway, "rejected")
		return out, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	shortURL, _ := link["short_url"].(string)
	if shortURL == "" {
		out.State = StateFailed
		out.Message = MsgCouldNotInitialize
		s.MsgPrint(ui.Message{Title: TitlePaymentError, Body: out.Message, Indicator: ui.IndicatorRed})
		metrics.IncInitiation(out.Gateway, "rejected")
		return out, fmt.Errorf("%w: payment link without short_url", ErrGatewayFailure)
	}

	out.State = StateRedirecting
	out.PaymentURL = shortURL
	s.ShowAlert(MsgRedirecting, ui.IndicatorGreen)
	s.After(h.RedirectDelay, func() {
		s.Navigate(shortURL)
	})

	metrics.IncInitiation(out.Gateway, "redirecting")
	return out, nil
}
