package settings_handlers

import (
	"context"
	"encoding/json"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

const (
	ButtonCreateAccount = "Create Payment Gateway Account"
	MsgAccountCreated   = "Payment Gateway Account created"
	MsgCouldNotCreate   = "Could not create Payment Gateway Account"
)

// Inserter creates ERP documents.
type Inserter interface {
	Insert(ctx context.Context, doc any) (json.RawMessage, error)
}

// Provisioner creates the Cashfree "Payment Gateway Account".
type Provisioner struct {
	Docs Inserter
}

func NewProvisioner(docs Inserter) *Provisioner {
	return &Provisioner{Docs: docs}
}

// CreateGatewayAccount inserts a non-default INR account bound to paymentAccount
// (which may be empty). Every click inserts again; duplicates are left to the ERP.
func (p *Provisioner) CreateGatewayAccount(ctx context.Context, paymentAccount string, s ui.Surface) error {
	account := payment_models.NewGatewayAccount(paymentAccount)

	if _, err := p.Docs.Insert(ctx, account); err != nil {
		logger.ErrorLogger.Errorf("Failed to create Payment Gateway Account for %q: %v", paymentAccount, err)
		msg := clients.ServerMessage(err)
		if msg == "" {
			msg = MsgCouldNotCreate
		}
		s.MsgPrint(ui.Message{Body: msg, Indicator: ui.IndicatorRed})
		return err
	}

	logger.InfoLogger.Infof("Payment Gateway Account created for Cashfree (payment account %q)", paymentAccount)
	s.MsgPrint(ui.Message{Body: MsgAccountCreated})
	return nil
}
