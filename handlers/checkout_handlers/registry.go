package checkout_handlers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

var (
	ErrSubmissionInFlight = errors.New("a payment for this order is already being submitted")
	ErrGatewayFailure     = errors.New("payment gateway returned a failure")
)

// State of one checkout submission.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateRedirecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateRedirecting:
		return "redirecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Checkout is one submission of the checkout form.
type Checkout struct {
	PaymentMethod string
	Order         payment_models.OrderSummary
	Payer         payment_models.PayerDetails
}

// Outcome describes where a submission ended.
type Outcome struct {
	Gateway    string
	State      State
	PaymentURL string
	Message    string
}

// PaymentHandler starts a payment for one gateway.
type PaymentHandler interface {
	Initiate(ctx context.Context, co Checkout, s ui.Surface) (Outcome, error)
}

// Registry maps gateway names to handlers. Unknown names go to the fallback.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]PaymentHandler
	fallback PaymentHandler
}

func NewRegistry(fallback PaymentHandler) *Registry {
	return &Registry{
		handlers: make(map[string]PaymentHandler),
		fallback: fallback,
	}
}

// Register installs h for gateway and returns the handler it replaced, if any.
func (r *Registry) Register(gateway string, h PaymentHandler) PaymentHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.handlers[gateway]
	r.handlers[gateway] = h
	return previous
}

// Lookup returns the handler for gateway or the fallback.
func (r *Registry) Lookup(gateway string) PaymentHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[gateway]; ok {
		return h
	}
	return r.fallback
}

// Gateways lists the registered gateway names, sorted.
func (r *Registry) Gateways() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Controller dispatches checkout submissions through an injected Registry.
type Controller struct {
	registry *Registry
}

func NewController(registry *Registry) *Controller {
	return &Controller{registry: registry}
}

// MakePayment routes the submission by its selected payment method.
func (c *Controller) MakePayment(ctx context.Context, co Checkout, s ui.Surface) (Outcome, error) {
	h := c.registry.Lookup(co.PaymentMethod)
	if h == nil {
		s.MsgPrint(ui.Message{
			Title:     "Payment Error",
			Body:      "Payment method not supported",
			Indicator: ui.IndicatorRed,
		})
		return Outcome{Gateway: co.PaymentMethod, State: StateFailed}, errors.New("no payment handler for " + co.PaymentMethod)
	}
	return h.Initiate(ctx, co, s)
}
