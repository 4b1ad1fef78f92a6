package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/joy095/cashfree/metrics"
)

const (
	CashfreeSandboxURL    = "https://sandbox.cashfree.com/pg"
	CashfreeProductionURL = "https://api.cashfree.com/pg"
	CashfreeAPIVersion    = "2022-09-01"

	OrderStatusPaid      = "PAID"
	PaymentStatusSuccess = "SUCCESS"
)

var ErrOrderNotFound = errors.New("cashfree order not found")

// CashfreeClientWrapper provides an interface for Cashfree operations.
// This interface allows for easier testing by mocking Cashfree interactions.
type CashfreeClientWrapper interface {
	CreateOrder(ctx context.Context, req CashfreeOrderRequest) (*CashfreeOrder, error)
	GetOrder(ctx context.Context, orderID string) (*CashfreeOrder, error)
	GetPayments(ctx context.Context, orderID string) ([]CashfreePayment, error)
	VerifyWebhookSignature(signature, timestamp string, rawBody []byte) bool
}

// CashfreeClient implements CashfreeClientWrapper using Cashfree PG API.
type CashfreeClient struct {
	AppID         string
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	APIVersion    string
	HttpClient    *http.Client
}

type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type OrderMeta struct {
	ReturnURL        string `json:"return_url,omitempty"`
	NotifyURL        string `json:"notify_url,omitempty"`
	ReferenceDoctype string `json:"reference_doctype,omitempty"`
	ReferenceDocname string `json:"reference_docname,omitempty"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

// CashfreeOrderRequest represents the order creation request
type CashfreeOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     float64           `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails CustomerDetails   `json:"customer_details"`
	OrderMeta       OrderMeta         `json:"order_meta"`
	OrderNote       string            `json:"order_note,omitempty"`
	OrderTags       map[string]string `json:"order_tags,omitempty"`
}

// CashfreeOrder is the order as returned by create and fetch.
type CashfreeOrder struct {
	CFOrderID        json.RawMessage   `json:"cf_order_id"`
	OrderID          string            `json:"order_id"`
	OrderStatus      string            `json:"order_status"`
	OrderAmount      float64           `json:"order_amount"`
	OrderCurrency    string            `json:"order_currency"`
	PaymentSessionID string            `json:"payment_session_id"`
	PaymentLink      string            `json:"payment_link"`
	OrderMeta        OrderMeta         `json:"order_meta"`
	OrderTags        map[string]string `json:"order_tags"`
	CreatedAt        string            `json:"created_at"`
	OrderExpiryTime  string            `json:"order_expiry_time"`
}

// IsPaid reports whether Cashfree considers the order settled.
func (o *CashfreeOrder) IsPaid() bool {
	return o.OrderStatus == OrderStatusPaid
}

// CashfreePayment is one payment attempt against an order. Numeric and
// nested fields stay raw so they can be stored exactly as received.
type CashfreePayment struct {
	CFPaymentID   json.RawMessage `json:"cf_payment_id"`
	OrderID       string          `json:"order_id"`
	PaymentStatus string          `json:"payment_status"`
	PaymentAmount json.RawMessage `json:"payment_amount"`
	PaymentTime   string          `json:"payment_time"`
	PaymentMethod json.RawMessage `json:"payment_method"`
}

// APIError is a non-2xx answer from Cashfree.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cashfree API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// CashfreeBaseURL returns the PG base URL for the settings mode.
func CashfreeBaseURL(mode string) string {
	if mode == "PRODUCTION" {
		return CashfreeProductionURL
	}
	return CashfreeSandboxURL
}

// NewCashfreeClient creates and returns a new instance of CashfreeClient.
func NewCashfreeClient(appID, secretKey, webhookSecret, mode string) *CashfreeClient {
	return &CashfreeClient{
		AppID:         appID,
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		BaseURL:       CashfreeBaseURL(mode),
		APIVersion:    CashfreeAPIVersion,
		HttpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *CashfreeClient) makeRequest(ctx context.Context, operation, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-api-version", c.APIVersion)
	req.Header.Set("x-client-id", c.AppID)
	req.Header.Set("x-client-secret", c.SecretKey)

	start := time.Now()
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		metrics.ObserveRPC("cashfree", operation, "transport_error", time.Since(start).Seconds())
		return nil, err
	}
	metrics.ObserveRPC("cashfree", operation, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	return resp, nil
}

// CreateOrder creates a new order in Cashfree.
func (c *CashfreeClient) CreateOrder(ctx context.Context, orderReq CashfreeOrderRequest) (*CashfreeOrder, error) {
	if orderReq.OrderID == "" {
		return nil, fmt.Errorf("order_id is required")
	}
	if orderReq.OrderAmount <= 0 {
		return nil, fmt.Errorf("order_amount must be positive")
	}
	if orderReq.OrderCurrency == "" {
		orderReq.OrderCurrency = "INR"
	}

	jsonData, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	resp, err := c.makeRequest(ctx, "create_order", http.MethodPost, "/orders", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeOrder(resp)
}

// GetOrder fetches the current state of an order.
func (c *CashfreeClient) GetOrder(ctx context.Context, orderID string) (*CashfreeOrder, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order_id is required")
	}

	resp, err := c.makeRequest(ctx, "get_order", http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return decodeOrder(resp)
}

// GetPayments lists the payment attempts of an order.
func (c *CashfreeClient) GetPayments(ctx context.Context, orderID string) ([]CashfreePayment, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order_id is required")
	}

	resp, err := c.makeRequest(ctx, "get_payments", http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/payments", nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	var payments []CashfreePayment
	if err := decodeJSON(resp, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func decodeOrder(resp *http.Response) (*CashfreeOrder, error) {
	var order CashfreeOrder
	if err := decodeJSON(resp, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func decodeJSON(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SuccessfulPayment returns the first SUCCESS attempt, or nil.
func SuccessfulPayment(payments []CashfreePayment) *CashfreePayment {
	for i := range payments {
		if payments[i].PaymentStatus == PaymentStatusSuccess {
			return &payments[i]
		}
	}
	return nil
}

// VerifyWebhookSignature checks x-webhook-signature, which is
// base64(HMAC-SHA256(secret, timestamp + body)). With no secret configured
// every webhook is accepted.
func (c *CashfreeClient) VerifyWebhookSignature(signature, timestamp string, rawBody []byte) bool {
	if c.WebhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}

	expected := SignWebhook(c.WebhookSecret, timestamp, rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignWebhook computes the signature Cashfree sends for a webhook body.
func SignWebhook(secret, timestamp string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
