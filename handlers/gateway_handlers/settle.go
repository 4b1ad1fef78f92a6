package gateway_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
)

// settlement is a confirmed payment, from the redirect or a webhook.
type settlement struct {
	OrderID         string
	OrderStatus     string
	OrderAmount     json.RawMessage
	Tags            map[string]string
	CfPaymentID     json.RawMessage
	PaymentMethod   json.RawMessage
	TransactionTime string
}

// reference finds what the order paid for: its tags, or the order id itself.
func (s settlement) reference() (doctype, docname, paymentRequest string) {
	doctype = s.Tags[TagReferenceDoctype]
	docname = s.Tags[TagReferenceDocname]
	paymentRequest = s.Tags[TagPaymentRequest]

	if docname == "" {
		docname = docnameFromOrderID(s.OrderID)
	}
	if doctype == "" {
		doctype = payment_models.DefaultReferenceDoctype
	}
	if paymentRequest == "" && doctype == payment_models.DoctypePaymentRequest {
		paymentRequest = docname
	}
	return doctype, docname, paymentRequest
}

// docnameFromOrderID undoes "CF-<docname>-<suffix>".
func docnameFromOrderID(orderID string) string {
	rest, ok := strings.CutPrefix(orderID, "CF-")
	if !ok {
		return ""
	}
	if i := strings.LastIndex(rest, "-"); i > 0 {
		return rest[:i]
	}
	return rest
}

// Settle marker states. A logged order has its Completed log and only
// waits for the Payment Request status.
const (
	markerLogging = "logging"
	markerLogged  = "logged"
	markerPaid    = "paid"
)

// settle records a Completed payment once per order and marks the Payment
// Request paid. It reports false when the order was already settled.
func (g *Gateway) settle(ctx context.Context, s settlement) (bool, error) {
	key := "settled:" + s.OrderID
	first, err := g.Keys.SetNX(ctx, key, markerLogging, settledTTL)
	if err != nil {
		return false, fmt.Errorf("settle %s: %w", s.OrderID, err)
	}
	if !first {
		state, _, err := g.Keys.Get(ctx, key)
		if err != nil {
			return false, fmt.Errorf("settle %s: %w", s.OrderID, err)
		}
		if state != markerLogged {
			logger.InfoLogger.Infof("Cashfree order %s already settled", s.OrderID)
			return false, nil
		}
		// the log exists, only the status update is retried
		_, _, paymentRequest := s.reference()
		if err := g.markPaid(ctx, key, s.OrderID, paymentRequest); err != nil {
			return false, err
		}
		return true, nil
	}

	paymentRequest, err := g.logCompleted(ctx, s)
	if err != nil {
		// let a later redirect or webhook retry
		if delErr := g.Keys.Delete(ctx, key); delErr != nil {
			logger.ErrorLogger.Errorf("Failed to release settle marker for %s: %v", s.OrderID, delErr)
		}
		return false, err
	}
	if err := g.Keys.Set(ctx, key, markerLogged, settledTTL); err != nil {
		logger.WarnLogger.Warnf("Failed to advance settle marker for %s: %v", s.OrderID, err)
	}
	if err := g.markPaid(ctx, key, s.OrderID, paymentRequest); err != nil {
		return false, err
	}
	return true, nil
}

// logCompleted inserts the Completed Integration Request of a settlement
// and returns the Payment Request it belongs to, if any.
func (g *Gateway) logCompleted(ctx context.Context, s settlement) (string, error) {
	doctype, docname, paymentRequest := s.reference()
	if docname == "" {
		return "", fmt.Errorf("settle %s: order has no reference document", s.OrderID)
	}

	data, err := json.Marshal(integration_models.PaymentLog{
		PaymentRequest:  paymentRequest,
		OrderID:         s.OrderID,
		CfPaymentID:     rawOrNull(s.CfPaymentID),
		OrderAmount:     rawOrNull(s.OrderAmount),
		OrderStatus:     s.OrderStatus,
		PaymentMethod:   rawOrNull(s.PaymentMethod),
		TransactionTime: s.TransactionTime,
	})
	if err != nil {
		return "", fmt.Errorf("settle %s: %w", s.OrderID, err)
	}

	entry := &integration_models.IntegrationLogEntry{
		IntegrationType:  integration_models.IntegrationTypePaymentRequest,
		ServiceName:      payment_models.ServiceCashfree,
		ReferenceDoctype: doctype,
		ReferenceDocname: docname,
		Status:           integration_models.StatusCompleted,
		Data:             string(data),
	}
	if paymentRequest != "" {
		entry.ReferenceDoctype = payment_models.DoctypePaymentRequest
		entry.ReferenceDocname = paymentRequest
	}
	if err := g.Logs.Insert(ctx, entry); err != nil {
		return "", fmt.Errorf("settle %s: %w", s.OrderID, err)
	}

	logger.InfoLogger.Infof("Cashfree order %s logged for %s %s", s.OrderID, entry.ReferenceDoctype, entry.ReferenceDocname)
	return paymentRequest, nil
}

// markPaid sets the Payment Request status and closes the settle marker.
// On failure the marker stays logged so a retry skips the log.
func (g *Gateway) markPaid(ctx context.Context, key, orderID, paymentRequest string) error {
	if paymentRequest != "" {
		if err := g.ERP.SetValue(ctx, payment_models.DoctypePaymentRequest, paymentRequest, "status", payment_models.StatusPaid); err != nil {
			return fmt.Errorf("settle %s: mark %s paid: %w", orderID, paymentRequest, err)
		}
	}
	if err := g.Keys.Set(ctx, key, markerPaid, settledTTL); err != nil {
		logger.WarnLogger.Warnf("Failed to close settle marker for %s: %v", orderID, err)
	}
	logger.InfoLogger.Infof("Cashfree order %s settled", orderID)
	return nil
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func amountJSON(amount float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(amount, 'f', -1, 64))
}
