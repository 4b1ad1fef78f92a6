package gateway_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/utils/keystore"
	"github.com/joy095/cashfree/utils/mail"
)

const (
	MethodHandleRedirect = "cashfree.api.handle_redirect"
	MethodHandleWebhook  = "cashfree.api.handle_webhook"

	FailedRedirectURL = "/payment-failed"

	MsgINROnly = "Please select Indian Rupees (INR) as currency"

	linkTTL    = 24 * time.Hour
	settledTTL = 7 * 24 * time.Hour
)

var (
	ErrPaymentRequestNotFound = errors.New("payment request not found")
	ErrAlreadyPaid            = errors.New("payment request is already paid")
	ErrNoCheckoutURL          = errors.New("cashfree did not return a payment link")
)

// LinkMailer emails a payment link.
type LinkMailer interface {
	SendPaymentLink(toEmail string, data mail.PaymentLinkData) error
}

// Gateway is the server side of the Cashfree integration.
type Gateway struct {
	Cashfree clients.CashfreeClientWrapper
	ERP      clients.FrappeAPI
	Logs     integration_models.Log
	Keys     keystore.KeyStore
	// Mailer is optional; without it links are only returned.
	Mailer LinkMailer

	SiteURL string
	// ReturnURL overrides the handle_redirect URL given to Cashfree.
	ReturnURL string

	newSuffix func() string
}

func NewGateway(cf clients.CashfreeClientWrapper, erp clients.FrappeAPI, logs integration_models.Log, keys keystore.KeyStore, mailer LinkMailer, siteURL, returnURL string) *Gateway {
	return &Gateway{
		Cashfree:  cf,
		ERP:       erp,
		Logs:      logs,
		Keys:      keys,
		Mailer:    mailer,
		SiteURL:   siteURL,
		ReturnURL: returnURL,
		newSuffix: randomSuffix,
	}
}

func (g *Gateway) methodURL(method string) string {
	return g.SiteURL + "/api/method/" + method
}

// trace writes a Queued request log. A failing log backend only warns.
func (g *Gateway) trace(ctx context.Context, doctype, docname string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping integration log for %s %s: %v", doctype, docname, err)
		return
	}
	entry := &integration_models.IntegrationLogEntry{
		IntegrationType:  integration_models.IntegrationTypeHost,
		ServiceName:      payment_models.ServiceCashfree,
		ReferenceDoctype: doctype,
		ReferenceDocname: docname,
		Status:           integration_models.StatusQueued,
		Data:             string(data),
	}
	if err := g.Logs.Insert(ctx, entry); err != nil {
		logger.WarnLogger.Warnf("Failed to write integration log for %s %s: %v", doctype, docname, err)
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
}
