package integration_models

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joy095/cashfree/logger"
)

const (
	StatusQueued    = "Queued"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"

	IntegrationTypeHost           = "Host"
	IntegrationTypePaymentRequest = "Payment Request"
)

var ErrMalformedPaymentLog = errors.New("malformed payment log payload")

// IntegrationLogEntry is one persisted call to or from the gateway.
type IntegrationLogEntry struct {
	ID               uuid.UUID `json:"id"`
	IntegrationType  string    `json:"integration_type"`
	ServiceName      string    `json:"service_name"`
	ReferenceDoctype string    `json:"reference_doctype"`
	ReferenceDocname string    `json:"reference_docname"`
	Status           string    `json:"status"`
	Data             string    `json:"data"`
	CreatedAt        time.Time `json:"created_at"`
}

// PaymentLog is the payload stored on a Completed entry once a payment settles.
type PaymentLog struct {
	PaymentRequest  string          `json:"payment_request"`
	OrderID         string          `json:"order_id"`
	CfPaymentID     json.RawMessage `json:"cf_payment_id"`
	OrderAmount     json.RawMessage `json:"order_amount"`
	OrderStatus     string          `json:"order_status"`
	PaymentMethod   json.RawMessage `json:"payment_method"`
	TransactionTime string          `json:"transaction_time"`
}

// PaymentDetails holds the six displayed fields as text, exactly as stored.
type PaymentDetails struct {
	OrderID         string
	CfPaymentID     string
	OrderAmount     string
	OrderStatus     string
	PaymentMethod   string
	TransactionTime string
}

// ParsePaymentDetails decodes a stored payload. Strings are unquoted, other
// JSON values keep their literal text, missing or null values are empty.
func ParsePaymentDetails(data string) (PaymentDetails, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return PaymentDetails{}, fmt.Errorf("%w: %v", ErrMalformedPaymentLog, err)
	}
	if fields == nil {
		return PaymentDetails{}, fmt.Errorf("%w: payload is null", ErrMalformedPaymentLog)
	}

	return PaymentDetails{
		OrderID:         verbatim(fields["order_id"]),
		CfPaymentID:     verbatim(fields["cf_payment_id"]),
		OrderAmount:     verbatim(fields["order_amount"]),
		OrderStatus:     verbatim(fields["order_status"]),
		PaymentMethod:   verbatim(fields["payment_method"]),
		TransactionTime: verbatim(fields["transaction_time"]),
	}, nil
}

func verbatim(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Log is an integration log backend.
type Log interface {
	Insert(ctx context.Context, entry *IntegrationLogEntry) error
	LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*IntegrationLogEntry, error)
}

// DBTX is the part of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Schema creates the integration_requests table.
const Schema = `
CREATE TABLE IF NOT EXISTS integration_requests (
	id                UUID PRIMARY KEY,
	integration_type  TEXT NOT NULL,
	service_name      TEXT NOT NULL,
	reference_doctype TEXT NOT NULL,
	reference_docname TEXT NOT NULL,
	status            TEXT NOT NULL,
	data              TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS integration_requests_reference_idx
	ON integration_requests (reference_doctype, reference_docname, service_name, status, created_at DESC);`

// Store persists integration log entries in PostgreSQL.
type Store struct {
	DB DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{DB: db}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate integration_requests: %w", err)
	}
	return nil
}

// Insert stores entry, filling ID and CreatedAt when empty.
func (s *Store) Insert(ctx context.Context, entry *IntegrationLogEntry) error {
	if entry.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate UUID: %w", err)
		}
		entry.ID = id
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.DB.Exec(ctx,
		`INSERT INTO integration_requests
			(id, integration_type, service_name, reference_doctype, reference_docname, status, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.IntegrationType, entry.ServiceName, entry.ReferenceDoctype,
		entry.ReferenceDocname, entry.Status, entry.Data, entry.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert integration request for %s %s: %v", entry.ReferenceDoctype, entry.ReferenceDocname, err)
		return fmt.Errorf("failed to insert integration request: %w", err)
	}
	return nil
}

// LatestCompleted returns the newest Completed entry for the reference, or nil.
func (s *Store) LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*IntegrationLogEntry, error) {
	entries, err := s.CompletedLogs(ctx, serviceName, doctype, docname, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// CompletedLogs returns up to limit Completed entries for the reference, newest first.
func (s *Store) CompletedLogs(ctx context.Context, serviceName, doctype, docname string, limit int) ([]IntegrationLogEntry, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT id, integration_type, service_name, reference_doctype, reference_docname, status, data, created_at
		 FROM integration_requests
		 WHERE reference_doctype = $1 AND reference_docname = $2 AND service_name = $3 AND status = $4
		 ORDER BY created_at DESC
		 LIMIT $5`,
		doctype, docname, serviceName, StatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query integration requests: %w", err)
	}
	defer rows.Close()

	var entries []IntegrationLogEntry
	for rows.Next() {
		var e IntegrationLogEntry
		if err := rows.Scan(&e.ID, &e.IntegrationType, &e.ServiceName, &e.ReferenceDoctype,
			&e.ReferenceDocname, &e.Status, &e.Data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error reading integration requests: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading integration requests: %w", err)
	}
	return entries, nil
}
