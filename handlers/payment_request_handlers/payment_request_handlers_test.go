package payment_request_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

type fakeLogs struct {
	entry   *integration_models.IntegrationLogEntry
	err     error
	service string
	doctype string
	docname string
}

func (f *fakeLogs) LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*integration_models.IntegrationLogEntry, error) {
	f.service, f.doctype, f.docname = serviceName, doctype, docname
	return f.entry, f.err
}

type fakeCaller struct {
	method string
	args   any
	reply  json.RawMessage
	err    error
}

func (f *fakeCaller) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	f.method, f.args = method, args
	return f.reply, f.err
}

func TestViewStatus(t *testing.T) {
	t.Run("NoRows", func(t *testing.T) {
		logs := &fakeLogs{}
		rec := ui.NewRecorder()

		details, err := NewViewer(logs).ViewStatus(context.Background(), "ACC-PRQ-0001", rec)
		require.NoError(t, err)
		assert.Nil(t, details)
		assert.Equal(t, "Cashfree", logs.service)
		assert.Equal(t, "Payment Request", logs.doctype)
		assert.Equal(t, "ACC-PRQ-0001", logs.docname)

		msg, ok := rec.Last(ui.ActionMsgPrint)
		require.True(t, ok)
		assert.Equal(t, MsgNoPaymentDetails, msg.Message)
		assert.Zero(t, rec.Count(ui.ActionDialog))
	})

	t.Run("OneRow", func(t *testing.T) {
		logs := &fakeLogs{entry: &integration_models.IntegrationLogEntry{
			Data: `{"order_id":"CF-ACC-PRQ-0002-ab12c","cf_payment_id":885312,"order_amount":499.00,"order_status":"PAID","payment_method":{"upi":{"upi_id":"a@b"}},"transaction_time":"2025-03-01T10:00:00+05:30"}`,
		}}
		rec := ui.NewRecorder()

		details, err := NewViewer(logs).ViewStatus(context.Background(), "ACC-PRQ-0002", rec)
		require.NoError(t, err)
		require.NotNil(t, details)

		d, ok := rec.Last(ui.ActionDialog)
		require.True(t, ok)
		require.NotNil(t, d.Dialog)
		assert.Equal(t, TitlePaymentDetails, d.Dialog.Title)

		var labels, values, types []string
		for _, f := range d.Dialog.Fields {
			labels = append(labels, f.Label)
			values = append(values, f.Default)
			types = append(types, f.Fieldtype)
			assert.True(t, f.ReadOnly)
		}
		assert.Equal(t, []string{"Order ID", "Cashfree Payment ID", "Amount", "Status", "Payment Method", "Transaction Time"}, labels)
		assert.Equal(t, []string{"Data", "Data", "Currency", "Data", "Data", "Data"}, types)
		assert.Equal(t, []string{
			"CF-ACC-PRQ-0002-ab12c",
			"885312",
			"499.00",
			"PAID",
			`{"upi":{"upi_id":"a@b"}}`,
			"2025-03-01T10:00:00+05:30",
		}, values)
	})

	t.Run("MissingFieldsAreEmpty", func(t *testing.T) {
		logs := &fakeLogs{entry: &integration_models.IntegrationLogEntry{Data: `{"order_id":"CF-1","cf_payment_id":null}`}}
		rec := ui.NewRecorder()

		details, err := NewViewer(logs).ViewStatus(context.Background(), "ACC-PRQ-0003", rec)
		require.NoError(t, err)
		assert.Equal(t, "CF-1", details.OrderID)
		assert.Empty(t, details.CfPaymentID)
		assert.Empty(t, details.TransactionTime)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		logs := &fakeLogs{entry: &integration_models.IntegrationLogEntry{Data: `{"order_id":`}}
		rec := ui.NewRecorder()

		_, err := NewViewer(logs).ViewStatus(context.Background(), "ACC-PRQ-0004", rec)
		require.ErrorIs(t, err, integration_models.ErrMalformedPaymentLog)
		assert.Zero(t, rec.Count(ui.ActionDialog))
		msg, _ := rec.Last(ui.ActionMsgPrint)
		assert.Equal(t, ui.IndicatorRed, msg.Indicator)
	})

	t.Run("SourceError", func(t *testing.T) {
		logs := &fakeLogs{err: errors.New("connection reset")}
		_, err := NewViewer(logs).ViewStatus(context.Background(), "ACC-PRQ-0005", ui.NewRecorder())
		require.Error(t, err)
	})
}

func TestGenerateLink(t *testing.T) {
	t.Run("OpensRedirect", func(t *testing.T) {
		rpc := &fakeCaller{reply: json.RawMessage(`{"redirect_to":"https://erp.example/api/method/cashfree.api.make_payment?reference_doctype=Sales+Order&reference_docname=SO-1"}`)}
		rec := ui.NewRecorder()

		link, err := NewLinkGenerator(rpc).GenerateLink(context.Background(), "Sales Order", "SO-1", rec)
		require.NoError(t, err)
		assert.Equal(t, payment_models.MethodMakePaymentLink, rpc.method)
		assert.Equal(t, map[string]string{"reference_doctype": "Sales Order", "reference_docname": "SO-1"}, rpc.args)

		win, ok := rec.Last(ui.ActionOpenWindow)
		require.True(t, ok)
		assert.Equal(t, link, win.URL)
		alert, _ := rec.Last(ui.ActionAlert)
		assert.Equal(t, ui.IndicatorGreen, alert.Indicator)
	})

	t.Run("NoRedirect", func(t *testing.T) {
		rpc := &fakeCaller{reply: json.RawMessage(`{}`)}
		rec := ui.NewRecorder()

		_, err := NewLinkGenerator(rpc).GenerateLink(context.Background(), "Sales Order", "SO-2", rec)
		require.ErrorIs(t, err, ErrNoPaymentLink)
		assert.Zero(t, rec.Count(ui.ActionOpenWindow))
		msg, _ := rec.Last(ui.ActionMsgPrint)
		assert.Equal(t, MsgCouldNotMakeLink, msg.Message)
		assert.Equal(t, ui.IndicatorRed, msg.Indicator)
	})

	t.Run("RPCFailure", func(t *testing.T) {
		rpc := &fakeCaller{err: &clients.RPCError{Method: payment_models.MethodMakePaymentLink, StatusCode: 500}}
		rec := ui.NewRecorder()

		_, err := NewLinkGenerator(rpc).GenerateLink(context.Background(), "Sales Order", "SO-3", rec)
		require.Error(t, err)
		msg, _ := rec.Last(ui.ActionMsgPrint)
		assert.Equal(t, MsgCouldNotMakeLink, msg.Message)
	})
}

func TestButtons(t *testing.T) {
	unpaid := payment_models.PaymentRequestRecord{Status: "Initiated", PaymentGateway: "Cashfree"}
	paid := payment_models.PaymentRequestRecord{Status: "Paid", PaymentGateway: "Cashfree"}
	other := payment_models.PaymentRequestRecord{Status: "Initiated", PaymentGateway: "Razorpay"}

	assert.Equal(t, []Button{{Label: ButtonGenerateLink, Action: ActionGenerateLink, Primary: true}}, Buttons(unpaid))
	assert.Equal(t, []Button{{Label: ButtonViewPayment, Action: ActionViewPayment}}, Buttons(paid))
	assert.Empty(t, Buttons(other))
	other.Status = "Paid"
	assert.Empty(t, Buttons(other))
}
