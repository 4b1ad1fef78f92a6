package integration_models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joy095/cashfree/clients"
)

const doctypeIntegrationRequest = "Integration Request"

// frappeTimeLayout is how the ERP serialises datetime fields.
const frappeTimeLayout = "2006-01-02 15:04:05.999999"

// DocumentAPI is the part of clients.FrappeClient the ERP backend needs.
type DocumentAPI interface {
	GetList(ctx context.Context, q clients.ListQuery, out any) error
	Insert(ctx context.Context, doc any) (json.RawMessage, error)
}

// FrappeLog keeps integration logs as ERP "Integration Request" documents.
type FrappeLog struct {
	API DocumentAPI
}

func NewFrappeLog(api DocumentAPI) *FrappeLog {
	return &FrappeLog{API: api}
}

type integrationRequestDoc struct {
	Doctype          string `json:"doctype,omitempty"`
	Name             string `json:"name,omitempty"`
	IntegrationType  string `json:"integration_type"`
	ServiceName      string `json:"service_name"`
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceDocname string `json:"reference_docname"`
	Status           string `json:"status"`
	Data             string `json:"data"`
	Creation         string `json:"creation,omitempty"`
}

func (l *FrappeLog) Insert(ctx context.Context, entry *IntegrationLogEntry) error {
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

	_, err := l.API.Insert(ctx, integrationRequestDoc{
		Doctype:          doctypeIntegrationRequest,
		IntegrationType:  entry.IntegrationType,
		ServiceName:      entry.ServiceName,
		ReferenceDoctype: entry.ReferenceDoctype,
		ReferenceDocname: entry.ReferenceDocname,
		Status:           entry.Status,
		Data:             entry.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to insert integration request: %w", err)
	}
	return nil
}

func (l *FrappeLog) LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*IntegrationLogEntry, error) {
	var rows []integrationRequestDoc
	err := l.API.GetList(ctx, clients.ListQuery{
		Doctype: doctypeIntegrationRequest,
		Filters: map[string]any{
			"reference_doctype": doctype,
			"reference_docname": docname,
			"status":            StatusCompleted,
			"service_name":      serviceName,
		},
		Fields:  []string{"name", "integration_type", "service_name", "reference_doctype", "reference_docname", "status", "data", "creation"},
		OrderBy: "creation desc",
		Limit:   1,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query integration requests: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	entry := &IntegrationLogEntry{
		IntegrationType:  row.IntegrationType,
		ServiceName:      row.ServiceName,
		ReferenceDoctype: row.ReferenceDoctype,
		ReferenceDocname: row.ReferenceDocname,
		Status:           row.Status,
		Data:             row.Data,
	}
	if t, err := time.Parse(frappeTimeLayout, row.Creation); err == nil {
		entry.CreatedAt = t
	}
	return entry, nil
}
