package gateway_handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/utils/keystore"
	"github.com/joy095/cashfree/utils/mail"
)

type fakeCashfree struct {
	created  []clients.CashfreeOrderRequest
	order    *clients.CashfreeOrder
	payments []clients.CashfreePayment
	err      error
	secret   string
}

func (f *fakeCashfree) CreateOrder(ctx context.Context, req clients.CashfreeOrderRequest) (*clients.CashfreeOrder, error) {
	f.created = append(f.created, req)
	if f.err != nil {
		return nil, f.err
	}
	return &clients.CashfreeOrder{
		OrderID:     req.OrderID,
		OrderStatus: "ACTIVE",
		OrderAmount: req.OrderAmount,
		OrderTags:   req.OrderTags,
		PaymentLink: "https://payments.cashfree.com/order/#" + req.OrderID,
	}, nil
}

func (f *fakeCashfree) GetOrder(ctx context.Context, orderID string) (*clients.CashfreeOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.order == nil || f.order.OrderID != orderID {
		return nil, clients.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeCashfree) GetPayments(ctx context.Context, orderID string) ([]clients.CashfreePayment, error) {
	return f.payments, nil
}

func (f *fakeCashfree) VerifyWebhookSignature(signature, timestamp string, rawBody []byte) bool {
	if f.secret == "" {
		return true
	}
	return signature == clients.SignWebhook(f.secret, timestamp, rawBody)
}

type setValueCall struct {
	Doctype, Name, Field string
	Value                any
}

type fakeERP struct {
	paymentRequests map[string]payment_models.PaymentRequestRecord
	setValues       []setValueCall
	setValueErr     error
}

func (f *fakeERP) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeERP) Insert(ctx context.Context, doc any) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeERP) GetList(ctx context.Context, q clients.ListQuery, out any) error {
	var rows []payment_models.PaymentRequestRecord
	for _, pr := range f.paymentRequests {
		if pr.ReferenceDoctype == q.Filters["reference_doctype"] && pr.ReferenceName == q.Filters["reference_name"] {
			rows = append(rows, pr)
		}
	}
	raw, _ := json.Marshal(rows)
	return json.Unmarshal(raw, out)
}

func (f *fakeERP) GetDoc(ctx context.Context, doctype, name string, out any) error {
	pr, ok := f.paymentRequests[name]
	if !ok {
		return &clients.RPCError{Method: clients.MethodGet, StatusCode: 404, ExcType: "DoesNotExistError"}
	}
	raw, _ := json.Marshal(pr)
	return json.Unmarshal(raw, out)
}

func (f *fakeERP) SetValue(ctx context.Context, doctype, name, field string, value any) error {
	f.setValues = append(f.setValues, setValueCall{doctype, name, field, value})
	return f.setValueErr
}

type memoryLogs struct {
	mu      sync.Mutex
	entries []integration_models.IntegrationLogEntry
	err     error
}

func (m *memoryLogs) Insert(ctx context.Context, entry *integration_models.IntegrationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryLogs) LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*integration_models.IntegrationLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.Status == integration_models.StatusCompleted && e.ServiceName == serviceName &&
			e.ReferenceDoctype == doctype && e.ReferenceDocname == docname {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memoryLogs) completed() []integration_models.IntegrationLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []integration_models.IntegrationLogEntry
	for _, e := range m.entries {
		if e.Status == integration_models.StatusCompleted {
			out = append(out, e)
		}
	}
	return out
}

type fakeMailer struct {
	to   []string
	data []mail.PaymentLinkData
}

func (f *fakeMailer) SendPaymentLink(toEmail string, data mail.PaymentLinkData) error {
	f.to = append(f.to, toEmail)
	f.data = append(f.data, data)
	return nil
}

type fixture struct {
	cf     *fakeCashfree
	erp    *fakeERP
	logs   *memoryLogs
	keys   *keystore.Memory
	mailer *fakeMailer
	gw     *Gateway
}

func newFixture() *fixture {
	f := &fixture{
		cf:     &fakeCashfree{},
		erp:    &fakeERP{paymentRequests: map[string]payment_models.PaymentRequestRecord{}},
		logs:   &memoryLogs{},
		keys:   keystore.NewMemory(),
		mailer: &fakeMailer{},
	}
	f.gw = NewGateway(f.cf, f.erp, f.logs, f.keys, f.mailer, "https://erp.example", "")
	f.gw.newSuffix = func() string { return "ab12c" }
	return f
}
