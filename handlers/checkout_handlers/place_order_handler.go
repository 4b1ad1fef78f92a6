package checkout_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/metrics"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

const (
	GatewayPlaceOrder = "place_order"

	MsgPlacingOrder  = "Placing order..."
	MsgCouldNotPlace = "Could not place order"
	TitleOrderError  = "Order Error"
	OrdersPathPrefix = "/orders/"
)

// PlaceOrderHandler is the stock checkout: it places the order and opens it.
// It serves every payment method without a dedicated handler.
type PlaceOrderHandler struct {
	RPC    clients.Caller
	Method string
}

func NewPlaceOrderHandler(rpc clients.Caller) *PlaceOrderHandler {
	return &PlaceOrderHandler{RPC: rpc, Method: payment_models.MethodPlaceOrder}
}

func (h *PlaceOrderHandler) Initiate(ctx context.Context, co Checkout, s ui.Surface) (Outcome, error) {
	out := Outcome{Gateway: GatewayPlaceOrder, State: StateSubmitting}

	s.Freeze(MsgPlacingOrder)
	raw, err := h.RPC.Call(ctx, h.Method, map[string]any{"payment_method": co.PaymentMethod})
	s.Unfreeze()

	if err != nil {
		logger.ErrorLogger.Errorf("place_order for %s failed: %v", co.Order.OrderID, err)
		out.State = StateFailed
		out.Message = clients.ServerMessage(err)
		if out.Message == "" {
			out.Message = MsgCouldNotPlace
		}
		s.MsgPrint(ui.Message{Title: TitleOrderError, Body: out.Message, Indicator: ui.IndicatorRed})
		metrics.IncInitiation(out.Gateway, "rejected")
		return out, err
	}

	var orderName string
	if err := json.Unmarshal(raw, &orderName); err != nil || orderName == "" {
		out.State = StateFailed
		out.Message = MsgCouldNotPlace
		s.MsgPrint(ui.Message{Title: TitleOrderError, Body: out.Message, Indicator: ui.IndicatorRed})
		metrics.IncInitiation(out.Gateway, "rejected")
		return out, fmt.Errorf("place_order returned no order name: %s", string(raw))
	}

	out.State = StateRedirecting
	out.PaymentURL = OrdersPathPrefix + url.PathEscape(orderName)
	s.Navigate(out.PaymentURL)
	metrics.IncInitiation(out.Gateway, "redirecting")
	return out, nil
}
