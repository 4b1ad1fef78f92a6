package payment_models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	GatewayCashfree = "Cashfree"
	ServiceCashfree = "Cashfree"

	DefaultCurrency         = "INR"
	DefaultReferenceDoctype = "Sales Order"
	DefaultRedirectURL      = "/payment-success"

	// Placeholder payer details sent when the checkout form leaves them empty.
	DefaultPayerName  = "Customer"
	DefaultPayerEmail = "customer@example.com"
	DefaultPayerPhone = "9999999999"

	StatusPaid      = "Paid"
	StatusSuccess   = "Success"
	StatusCompleted = "Completed"

	DoctypePaymentRequest        = "Payment Request"
	DoctypeIntegrationRequest    = "Integration Request"
	DoctypePaymentGatewayAccount = "Payment Gateway Account"

	MethodMakePayment     = "cashfree.api.make_payment"
	MethodMakePaymentLink = "cashfree.make_payment"
	MethodPlaceOrder      = "webshop.webshop.shopping_cart.cart.place_order"
)

// RedirectDelay is the pause between the success alert and leaving the page.
const RedirectDelay = 1000 * time.Millisecond

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrMissingPayerDetails = errors.New("payer name, email and phone are required")
	ErrMissingReference    = errors.New("reference document is required")
)

// PaymentInitiationRequest is the argument set of the make-payment call.
type PaymentInitiationRequest struct {
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceDocname string          `json:"reference_docname"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PayerName        string          `json:"payer_name"`
	PayerEmail       string          `json:"payer_email"`
	PayerPhone       string          `json:"payer_phone"`
	Description      string          `json:"description"`
	RedirectURL      string          `json:"redirect_url"`
}

// OrderSummary is what the shop knows about the order being paid.
type OrderSummary struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
}

// PayerDetails are the values typed into the checkout form.
type PayerDetails struct {
	Name  string
	Email string
	Phone string
}

// PayerPolicy decides what happens to empty payer fields.
type PayerPolicy struct {
	// Strict rejects the attempt instead of substituting placeholders.
	Strict bool
}

// BuildInitiationRequest builds a fresh request for one attempt. The returned
// list names the payer fields that were replaced by placeholders.
func BuildInitiationRequest(order OrderSummary, payer PayerDetails, policy PayerPolicy) (PaymentInitiationRequest, []string, error) {
	if strings.TrimSpace(order.OrderID) == "" {
		return PaymentInitiationRequest{}, nil, ErrMissingReference
	}
	if !order.Amount.GreaterThan(decimal.Zero) {
		return PaymentInitiationRequest{}, nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, order.Amount.String())
	}

	name := strings.TrimSpace(payer.Name)
	email := strings.TrimSpace(payer.Email)
	phone := strings.TrimSpace(payer.Phone)

	var defaulted []string
	if name == "" {
		defaulted = append(defaulted, "payer_name")
		name = DefaultPayerName
	}
	if email == "" {
		defaulted = append(defaulted, "payer_email")
		email = DefaultPayerEmail
	}
	if phone == "" {
		defaulted = append(defaulted, "payer_phone")
		phone = DefaultPayerPhone
	}
	if policy.Strict && len(defaulted) > 0 {
		return PaymentInitiationRequest{}, defaulted, fmt.Errorf("%w: missing %s", ErrMissingPayerDetails, strings.Join(defaulted, ", "))
	}

	currency := strings.ToUpper(strings.TrimSpace(order.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	return PaymentInitiationRequest{
		ReferenceDoctype: DefaultReferenceDoctype,
		ReferenceDocname: order.OrderID,
		Amount:           order.Amount,
		Currency:         currency,
		PayerName:        name,
		PayerEmail:       email,
		PayerPhone:       phone,
		Description:      "Payment for order " + order.OrderID,
		RedirectURL:      DefaultRedirectURL,
	}, defaulted, nil
}

// InitiationResponse is the make-payment reply. Either Status/PaymentURL or Error is set.
type InitiationResponse struct {
	Status     string `json:"status,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Succeeded is the only shape treated as success; everything else is a failure.
func (r InitiationResponse) Succeeded() bool {
	return r.Status == StatusSuccess && r.PaymentURL != ""
}

// ParseInitiationResponse never fails: anything that is not a JSON object is
// an empty, failed response.
func ParseInitiationResponse(raw json.RawMessage) InitiationResponse {
	var resp InitiationResponse
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return resp
	}
	resp.Status = stringField(fields["status"])
	resp.PaymentURL = stringField(fields["payment_url"])
	resp.Error = stringField(fields["error"])
	return resp
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// LinkResponse is the make-payment-link reply.
type LinkResponse struct {
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ParseLinkResponse never fails; a reply without redirect_to is empty.
func ParseLinkResponse(raw json.RawMessage) LinkResponse {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return LinkResponse{}
	}
	return LinkResponse{RedirectTo: stringField(fields["redirect_to"])}
}

// PaymentRequestRecord is the subset of the ERP Payment Request used here.
type PaymentRequestRecord struct {
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	PaymentGateway   string          `json:"payment_gateway"`
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceName    string          `json:"reference_name"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	Currency         string          `json:"currency"`
	EmailTo          string          `json:"email_to"`
}

// IsCashfree reports whether the record is settled through Cashfree.
func (r PaymentRequestRecord) IsCashfree() bool {
	return r.PaymentGateway == GatewayCashfree
}

// IsPaid reports whether the record is already settled.
func (r PaymentRequestRecord) IsPaid() bool {
	return r.Status == StatusPaid
}

// GatewayAccount is the "Payment Gateway Account" document inserted by the provisioner.
type GatewayAccount struct {
	Doctype        string `json:"doctype"`
	PaymentGateway string `json:"payment_gateway"`
	Currency       string `json:"currency"`
	PaymentAccount string `json:"payment_account"`
	IsDefault      int    `json:"is_default"`
}

// NewGatewayAccount returns the Cashfree INR account, never the default one.
func NewGatewayAccount(paymentAccount string) GatewayAccount {
	return GatewayAccount{
		Doctype:        DoctypePaymentGatewayAccount,
		PaymentGateway: GatewayCashfree,
		Currency:       DefaultCurrency,
		PaymentAccount: paymentAccount,
		IsDefault:      0,
	}
}
