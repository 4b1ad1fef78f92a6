package gateway_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/models/payment_models"
)

// Dispatcher is a clients.Caller that serves the Cashfree methods in process
// and forwards everything else to Next.
type Dispatcher struct {
	Gateway *Gateway
	Next    clients.Caller
}

func NewDispatcher(g *Gateway, next clients.Caller) *Dispatcher {
	return &Dispatcher{Gateway: g, Next: next}
}

type linkArgs struct {
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceDocname string `json:"reference_docname"`
}

func (d *Dispatcher) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	switch method {
	case payment_models.MethodMakePayment:
		var req payment_models.PaymentInitiationRequest
		if err := remarshal(args, &req); err != nil {
			return nil, rpcFailure(method, http.StatusBadRequest, err.Error())
		}
		return json.Marshal(d.Gateway.MakePayment(ctx, req))

	case payment_models.MethodMakePaymentLink:
		var a linkArgs
		if err := remarshal(args, &a); err != nil {
			return nil, rpcFailure(method, http.StatusBadRequest, err.Error())
		}
		link, err := d.Gateway.PaymentLink(ctx, a.ReferenceDoctype, a.ReferenceDocname)
		if err != nil {
			return nil, rpcFailure(method, http.StatusExpectationFailed, err.Error())
		}
		return json.Marshal(link)
	}

	if d.Next == nil {
		return nil, rpcFailure(method, http.StatusNotFound, fmt.Sprintf("method %s not found", method))
	}
	return d.Next.Call(ctx, method, args)
}

func remarshal(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func rpcFailure(method string, status int, message string) error {
	return &clients.RPCError{
		Method:     method,
		StatusCode: status,
		ExcType:    "ValidationError",
		Messages:   []string{message},
	}
}
