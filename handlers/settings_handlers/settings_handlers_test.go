package settings_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

type fakeInserter struct {
	docs []any
	err  error
}

func (f *fakeInserter) Insert(ctx context.Context, doc any) (json.RawMessage, error) {
	f.docs = append(f.docs, doc)
	return json.RawMessage(`{"name":"Cashfree-INR"}`), f.err
}

func TestCreateGatewayAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		docs := &fakeInserter{}
		rec := ui.NewRecorder()

		require.NoError(t, NewProvisioner(docs).CreateGatewayAccount(context.Background(), "Cashfree Clearing - WB", rec))
		require.Len(t, docs.docs, 1)
		assert.Equal(t, payment_models.GatewayAccount{
			Doctype:        "Payment Gateway Account",
			PaymentGateway: "Cashfree",
			Currency:       "INR",
			PaymentAccount: "Cashfree Clearing - WB",
			IsDefault:      0,
		}, docs.docs[0])

		msg, _ := rec.Last(ui.ActionMsgPrint)
		assert.Equal(t, MsgAccountCreated, msg.Message)
	})

	t.Run("EmptyAccount", func(t *testing.T) {
		docs := &fakeInserter{}
		require.NoError(t, NewProvisioner(docs).CreateGatewayAccount(context.Background(), "", ui.NewRecorder()))

		body, err := json.Marshal(docs.docs[0])
		require.NoError(t, err)
		assert.JSONEq(t, `{"doctype":"Payment Gateway Account","payment_gateway":"Cashfree","currency":"INR","payment_account":"","is_default":0}`, string(body))
	})

	t.Run("RepeatedClicksInsertAgain", func(t *testing.T) {
		docs := &fakeInserter{}
		p := NewProvisioner(docs)
		require.NoError(t, p.CreateGatewayAccount(context.Background(), "X", ui.NewRecorder()))
		require.NoError(t, p.CreateGatewayAccount(context.Background(), "X", ui.NewRecorder()))
		assert.Len(t, docs.docs, 2)
	})

	t.Run("ServerMessageShown", func(t *testing.T) {
		docs := &fakeInserter{err: &clients.RPCError{Method: clients.MethodInsert, StatusCode: 409, ExcType: "DuplicateEntryError", Messages: []string{"Payment Gateway Account Cashfree - INR already exists"}}}
		rec := ui.NewRecorder()

		require.Error(t, NewProvisioner(docs).CreateGatewayAccount(context.Background(), "X", rec))
		msg, _ := rec.Last(ui.ActionMsgPrint)
		assert.Equal(t, "Payment Gateway Account Cashfree - INR already exists", msg.Message)
		assert.Equal(t, ui.IndicatorRed, msg.Indicator)
	})

	t.Run("TransportFailure", func(t *testing.T) {
		docs := &fakeInserter{err: fmt.Errorf("%w: timeout", clients.ErrTransport)}
		rec := ui.NewRecorder()

		require.ErrorIs(t, NewProvisioner(docs).CreateGatewayAccount(context.Background(), "X", rec), clients.ErrTransport)
		msg, _ := rec.Last(ui.ActionMsgPrint)
		assert.Equal(t, MsgCouldNotCreate, msg.Message)
	})
}
