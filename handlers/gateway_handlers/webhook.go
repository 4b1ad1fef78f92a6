package gateway_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/metrics"
)

const (
	EventPaymentSuccess        = "PAYMENT_SUCCESS"
	EventPaymentSuccessWebhook = "PAYMENT_SUCCESS_WEBHOOK"

	WebhookAccepted    = "accepted"
	WebhookDuplicate   = "duplicate"
	WebhookIgnored     = "ignored"
	WebhookUnconfirmed = "unconfirmed"
)

var (
	ErrInvalidWebhook   = errors.New("invalid webhook payload")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type webhookEvent struct {
	Type      string `json:"type"`
	EventType string `json:"event_type"`
	EventTime string `json:"event_time"`
	Data      struct {
		Order struct {
			OrderID     string            `json:"order_id"`
			OrderAmount json.RawMessage   `json:"order_amount"`
			OrderStatus string            `json:"order_status"`
			OrderTags   map[string]string `json:"order_tags"`
		} `json:"order"`
		Payment struct {
			CFPaymentID   json.RawMessage `json:"cf_payment_id"`
			PaymentStatus string          `json:"payment_status"`
			PaymentTime   string          `json:"payment_time"`
			PaymentMethod json.RawMessage `json:"payment_method"`
		} `json:"payment"`
	} `json:"data"`
}

func (e webhookEvent) kind() string {
	if e.Type != "" {
		return e.Type
	}
	return e.EventType
}

// WebhookResult says what happened to one delivery.
type WebhookResult struct {
	EventType string `json:"event_type"`
	Result    string `json:"result"`
}

// HandleWebhook logs a Cashfree notification, checks its signature and
// settles successful payments once Cashfree reports the order PAID.
// Repeated deliveries are acknowledged only.
func (g *Gateway) HandleWebhook(ctx context.Context, signature, timestamp string, body []byte) (WebhookResult, error) {
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		metrics.IncWebhook("unknown", "invalid")
		return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	kind := evt.kind()
	res := WebhookResult{EventType: kind}
	orderID := evt.Data.Order.OrderID

	g.trace(ctx, "", orderID, json.RawMessage(compact(body)))

	if !g.Cashfree.VerifyWebhookSignature(signature, timestamp, body) {
		logger.WarnLogger.Warnf("Rejected Cashfree webhook %s for order %s: bad signature", kind, orderID)
		metrics.IncWebhook(kind, "bad_signature")
		return res, ErrInvalidSignature
	}

	if kind != EventPaymentSuccess && kind != EventPaymentSuccessWebhook {
		res.Result = WebhookIgnored
		metrics.IncWebhook(kind, res.Result)
		return res, nil
	}
	if orderID == "" {
		metrics.IncWebhook(kind, "invalid")
		return res, fmt.Errorf("%w: no order_id", ErrInvalidWebhook)
	}

	// the event only says which order to look at; its state comes from Cashfree
	order, err := g.Cashfree.GetOrder(ctx, orderID)
	if err != nil && !errors.Is(err, clients.ErrOrderNotFound) {
		metrics.IncWebhook(kind, "error")
		return res, fmt.Errorf("confirm order %s: %w", orderID, err)
	}
	if err != nil || !order.IsPaid() {
		logger.WarnLogger.Warnf("Cashfree webhook %s for order %s not confirmed by Cashfree, not settling", kind, orderID)
		res.Result = WebhookUnconfirmed
		metrics.IncWebhook(kind, res.Result)
		return res, nil
	}

	eventKey := fmt.Sprintf("webhook:%s:%s:%s", kind, orderID, string(evt.Data.Payment.CFPaymentID))
	first, err := g.Keys.SetNX(ctx, eventKey, timestamp, settledTTL)
	if err != nil {
		logger.WarnLogger.Warnf("Webhook dedupe unavailable for %s: %v", orderID, err)
		first = true
	}
	if !first {
		res.Result = WebhookDuplicate
		metrics.IncWebhook(kind, res.Result)
		return res, nil
	}

	_, err = g.settle(ctx, settlement{
		OrderID:         orderID,
		OrderStatus:     order.OrderStatus,
		OrderAmount:     amountJSON(order.OrderAmount),
		Tags:            order.OrderTags,
		CfPaymentID:     evt.Data.Payment.CFPaymentID,
		PaymentMethod:   evt.Data.Payment.PaymentMethod,
		TransactionTime: evt.Data.Payment.PaymentTime,
	})
	if err != nil {
		if delErr := g.Keys.Delete(ctx, eventKey); delErr != nil {
			logger.ErrorLogger.Errorf("Failed to release webhook marker for %s: %v", orderID, delErr)
		}
		metrics.IncWebhook(kind, "error")
		return res, err
	}

	res.Result = WebhookAccepted
	metrics.IncWebhook(kind, res.Result)
	return res, nil
}

func compact(body []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return body
	}
	return buf.Bytes()
}
