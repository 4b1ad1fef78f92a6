package checkout_handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/metrics"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

const (
	MsgInitializing       = "Initializing payment..."
	MsgSettingUp          = "Setting up secure payment..."
	MsgRedirecting        = "Redirecting to payment gateway..."
	MsgCouldNotInitialize = "Could not initialize payment"
	TitlePaymentError     = "Payment Error"
)

// CashfreeHandler runs Idle -> Submitting -> {Redirecting, Failed} for one
// submission. One request per order may be in flight at a time.
type CashfreeHandler struct {
	RPC           clients.Caller
	Policy        payment_models.PayerPolicy
	RedirectDelay time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewCashfreeHandler(rpc clients.Caller, policy payment_models.PayerPolicy) *CashfreeHandler {
	return &CashfreeHandler{
		RPC:           rpc,
		Policy:        policy,
		RedirectDelay: payment_models.RedirectDelay,
		inflight:      make(map[string]struct{}),
	}
}

func (h *CashfreeHandler) Initiate(ctx context.Context, co Checkout, s ui.Surface) (Outcome, error) {
	out := Outcome{Gateway: payment_models.GatewayCashfree, State: StateIdle}

	req, defaulted, err := payment_models.BuildInitiationRequest(co.Order, co.Payer, h.Policy)
	if err != nil {
		out.State = StateFailed
		out.Message = validationMessage(err)
		s.MsgPrint(ui.Message{Title: TitlePaymentError, Body: out.Message, Indicator: ui.IndicatorRed})
		metrics.IncInitiation(out.Gateway, "invalid")
		return out, err
	}
	if len(defaulted) > 0 {
		logger.WarnLogger.Warnf("Order %s: checkout left %s empty, sending placeholder values",
			req.ReferenceDocname, strings.Join(defaulted, ", "))
	}

	if !h.begin(req.ReferenceDocname) {
		metrics.IncInitiation(out.Gateway, "in_flight")
		return out, ErrSubmissionInFlight
	}
	defer h.end(req.ReferenceDocname)

	out.State = StateSubmitting
	s.ShowAlert(MsgInitializing, ui.IndicatorBlue)
	s.Freeze(MsgSettingUp)
	raw, err := h.RPC.Call(ctx, payment_models.MethodMakePayment, req)
	s.Unfreeze()

	if err != nil {
		logger.ErrorLogger.Errorf("Cashfree initiation for order %s failed: %v", req.ReferenceDocname, err)
		return h.fail(out, s, clients.ServerMessage(err), err), err
	}

	resp := payment_models.ParseInitiationResponse(raw)
	if !resp.Succeeded() {
		logger.ErrorLogger.Errorf("Cashfree initiation for order %s rejected: %s", req.ReferenceDocname, string(raw))
		return h.fail(out, s, resp.Error, nil), fmt.Errorf("%w: %s", ErrGatewayFailure, resp.Error)
	}

	out.State = StateRedirecting
	out.PaymentURL = resp.PaymentURL
	logger.InfoLogger.Infof("Cashfree payment URL for order %s: %s", req.ReferenceDocname, resp.PaymentURL)

	s.ShowAlert(MsgRedirecting, ui.IndicatorGreen)
	paymentURL := resp.PaymentURL
	s.After(h.RedirectDelay, func() {
		s.Navigate(paymentURL)
	})

	metrics.IncInitiation(out.Gateway, "redirecting")
	return out, nil
}

func (h *CashfreeHandler) fail(out Outcome, s ui.Surface, serverText string, cause error) Outcome {
	out.State = StateFailed
	out.Message = serverText
	if out.Message == "" {
		out.Message = MsgCouldNotInitialize
	}
	s.MsgPrint(ui.Message{Title: TitlePaymentError, Body: out.Message, Indicator: ui.IndicatorRed})

	outcome := "rejected"
	if errors.Is(cause, clients.ErrTransport) {
		outcome = "transport_error"
	}
	metrics.IncInitiation(out.Gateway, outcome)
	return out
}

func (h *CashfreeHandler) begin(orderID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inflight == nil {
		h.inflight = make(map[string]struct{})
	}
	if _, busy := h.inflight[orderID]; busy {
		return false
	}
	h.inflight[orderID] = struct{}{}
	return true
}

func (h *CashfreeHandler) end(orderID string) {
	h.mu.Lock()
	delete(h.inflight, orderID)
	h.mu.Unlock()
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, payment_models.ErrInvalidAmount):
		return "Payment amount must be greater than zero"
	case errors.Is(err, payment_models.ErrMissingPayerDetails):
		return "Please enter your name, email and phone number"
	case errors.Is(err, payment_models.ErrMissingReference):
		return "No order to pay for"
	default:
		return MsgCouldNotInitialize
	}
}
