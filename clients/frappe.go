package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joy095/cashfree/metrics"
)

const (
	MethodInsert   = "frappe.client.insert"
	MethodGetList  = "frappe.client.get_list"
	MethodGet      = "frappe.client.get"
	MethodSetValue = "frappe.client.set_value"
)

// ErrTransport means the call never produced a response from the ERP.
var ErrTransport = errors.New("rpc transport failure")

// Caller issues one whitelisted-method call and returns its "message".
type Caller interface {
	Call(ctx context.Context, method string, args any) (json.RawMessage, error)
}

// FrappeAPI is Caller plus the generic document methods.
type FrappeAPI interface {
	Caller
	Insert(ctx context.Context, doc any) (json.RawMessage, error)
	GetList(ctx context.Context, q ListQuery, out any) error
	GetDoc(ctx context.Context, doctype, name string, out any) error
	SetValue(ctx context.Context, doctype, name, field string, value any) error
}

// RPCError is a response that carried an exception instead of a message.
type RPCError struct {
	Method     string
	StatusCode int
	ExcType    string
	Exception  string
	Messages   []string
}

func (e *RPCError) Error() string {
	msg := e.UserMessage()
	if msg == "" {
		msg = e.Exception
	}
	if e.ExcType != "" {
		return fmt.Sprintf("%s failed with %s (%d): %s", e.Method, e.ExcType, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s failed (%d): %s", e.Method, e.StatusCode, msg)
}

// UserMessage is the first message the server meant for the user, if any.
func (e *RPCError) UserMessage() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return ""
}

// ServerMessage extracts the user facing text from an RPC error, or "".
func ServerMessage(err error) string {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.UserMessage()
	}
	return ""
}

// FrappeClient calls whitelisted methods on the ERP at /api/method/<method>.
type FrappeClient struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	HttpClient *http.Client
}

// NewFrappeClient creates a client authenticating with an API key pair.
func NewFrappeClient(baseURL, apiKey, apiSecret string) *FrappeClient {
	return &FrappeClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		APISecret:  apiSecret,
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type frappeEnvelope struct {
	Message        json.RawMessage `json:"message"`
	Exc            string          `json:"exc"`
	ExcType        string          `json:"exc_type"`
	Exception      string          `json:"exception"`
	ServerMessages string          `json:"_server_messages"`
}

// Call posts args as JSON and returns the raw "message" of the reply.
func (fc *FrappeClient) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	var body io.Reader
	if args != nil {
		payload, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s args: %w", method, err)
		}
		body = bytes.NewReader(payload)
	}

	start := time.Now()
	resp, err := fc.makeRequest(ctx, http.MethodPost, "/api/method/"+method, body)
	if err != nil {
		metrics.ObserveRPC("frappe", method, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRPC("frappe", method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrTransport, method, err)
	}

	var env frappeEnvelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("invalid response from %s: %w", method, err)
		}
	}

	if resp.StatusCode >= 300 || env.Exc != "" || env.ExcType != "" {
		return nil, &RPCError{
			Method:     method,
			StatusCode: resp.StatusCode,
			ExcType:    env.ExcType,
			Exception:  env.Exception,
			Messages:   decodeServerMessages(env.ServerMessages),
		}
	}

	return env.Message, nil
}

func (fc *FrappeClient) makeRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, fc.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if fc.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", fc.APIKey, fc.APISecret))
	}

	return fc.HttpClient.Do(req)
}

// _server_messages is a JSON string holding a list of JSON strings, each an
// object with a "message" key (or a bare message).
func decodeServerMessages(encoded string) []string {
	if encoded == "" {
		return nil
	}

	var items []string
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return []string{encoded}
	}

	messages := make([]string, 0, len(items))
	for _, item := range items {
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(item), &obj); err == nil && obj.Message != "" {
			messages = append(messages, obj.Message)
			continue
		}
		messages = append(messages, item)
	}
	return messages
}

// ListQuery is the argument set of frappe.client.get_list.
type ListQuery struct {
	Doctype string         `json:"doctype"`
	Filters map[string]any `json:"filters,omitempty"`
	Fields  []string       `json:"fields,omitempty"`
	OrderBy string         `json:"order_by,omitempty"`
	Limit   int            `json:"limit_page_length,omitempty"`
}

// Insert creates a document and returns the inserted document.
func (fc *FrappeClient) Insert(ctx context.Context, doc any) (json.RawMessage, error) {
	return fc.Call(ctx, MethodInsert, map[string]any{"doc": doc})
}

// GetList decodes the rows of a list query into out (a pointer to a slice).
func (fc *FrappeClient) GetList(ctx context.Context, q ListQuery, out any) error {
	raw, err := fc.Call(ctx, MethodGetList, q)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid %s rows: %w", q.Doctype, err)
	}
	return nil
}

// GetDoc loads one document into out.
func (fc *FrappeClient) GetDoc(ctx context.Context, doctype, name string, out any) error {
	raw, err := fc.Call(ctx, MethodGet, map[string]any{"doctype": doctype, "name": name})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid %s %s: %w", doctype, name, err)
	}
	return nil
}

// SetValue updates a single field of a document.
func (fc *FrappeClient) SetValue(ctx context.Context, doctype, name, field string, value any) error {
	_, err := fc.Call(ctx, MethodSetValue, map[string]any{
		"doctype":   doctype,
		"name":      name,
		"fieldname": field,
		"value":     value,
	})
	return err
}
