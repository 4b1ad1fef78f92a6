package payment_request_handlers

import (
	"context"
	"fmt"

	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

const (
	MsgNoPaymentDetails = "No payment details found"
	TitlePaymentDetails = "Cashfree Payment Details"
	MsgUnreadableLog    = "Stored payment details could not be read"
)

// IntegrationLogSource finds the newest Completed integration log.
type IntegrationLogSource interface {
	LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*integration_models.IntegrationLogEntry, error)
}

// Viewer shows what the gateway reported for a paid Payment Request.
type Viewer struct {
	Logs IntegrationLogSource
}

func NewViewer(logs IntegrationLogSource) *Viewer {
	return &Viewer{Logs: logs}
}

// ViewStatus opens the details dialog, or says there is nothing to show.
// A stored payload that is not valid JSON is an ErrMalformedPaymentLog.
func (v *Viewer) ViewStatus(ctx context.Context, paymentRequestID string, s ui.Surface) (*integration_models.PaymentDetails, error) {
	entry, err := v.Logs.LatestCompleted(ctx, payment_models.ServiceCashfree, payment_models.DoctypePaymentRequest, paymentRequestID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load payment log for %s: %v", paymentRequestID, err)
		return nil, fmt.Errorf("load payment log for %s: %w", paymentRequestID, err)
	}
	if entry == nil {
		s.MsgPrint(ui.Message{Body: MsgNoPaymentDetails})
		return nil, nil
	}

	details, err := integration_models.ParsePaymentDetails(entry.Data)
	if err != nil {
		logger.ErrorLogger.Errorf("Payment log for %s is malformed: %v", paymentRequestID, err)
		s.MsgPrint(ui.Message{Title: TitlePaymentDetails, Body: MsgUnreadableLog, Indicator: ui.IndicatorRed})
		return nil, err
	}

	s.ShowDialog(DetailsDialog(details))
	return &details, nil
}

const (
	FieldtypeData     = "Data"
	FieldtypeCurrency = "Currency"
)

// DetailsDialog lays out the six read-only fields in display order.
func DetailsDialog(d integration_models.PaymentDetails) ui.Dialog {
	field := func(name, label, fieldtype, value string) ui.Field {
		return ui.Field{Fieldname: name, Label: label, Fieldtype: fieldtype, Default: value, ReadOnly: true}
	}
	return ui.Dialog{
		Title: TitlePaymentDetails,
		Fields: []ui.Field{
			field("order_id", "Order ID", FieldtypeData, d.OrderID),
			field("cf_payment_id", "Cashfree Payment ID", FieldtypeData, d.CfPaymentID),
			field("order_amount", "Amount", FieldtypeCurrency, d.OrderAmount),
			field("order_status", "Status", FieldtypeData, d.OrderStatus),
			field("payment_method", "Payment Method", FieldtypeData, d.PaymentMethod),
			field("transaction_time", "Transaction Time", FieldtypeData, d.TransactionTime),
		},
	}
}
