package checkout_controller

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/handlers/checkout_handlers"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

//go:embed templates/checkout.html
var checkoutPage []byte

//go:embed templates/actions.js
var actionsScript []byte

// OrderLoader loads ERP documents.
type OrderLoader interface {
	GetDoc(ctx context.Context, doctype, name string, out any) error
}

// CheckoutController serves the checkout page and its submissions.
type CheckoutController struct {
	Payments *checkout_handlers.Controller
	// Orders prices the page from the ERP order. Without it the page takes
	// amount and currency from the query string.
	Orders   OrderLoader
	Template []byte
}

func NewCheckoutController(payments *checkout_handlers.Controller, orders OrderLoader) *CheckoutController {
	return &CheckoutController{Payments: payments, Orders: orders, Template: checkoutPage}
}

type salesOrder struct {
	Name       string          `json:"name"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Currency   string          `json:"currency"`
}

// PayRequest is the submitted checkout form.
type PayRequest struct {
	PaymentMethod string `form:"payment_method" json:"payment_method" binding:"required"`
	OrderID       string `form:"order_id" json:"order_id"`
	Amount        string `form:"amount" json:"amount"`
	Currency      string `form:"currency" json:"currency"`
	CustomerName  string `form:"customer_name" json:"customer_name"`
	Email         string `form:"email" json:"email"`
	Phone         string `form:"phone" json:"phone"`
}

// CheckoutPage renders the checkout page for ?order_id= with the Cashfree
// option added.
func (cc *CheckoutController) CheckoutPage(c *gin.Context) {
	order, ok := cc.orderSummary(c)
	if !ok {
		return
	}

	page, err := checkout_handlers.RenderCheckout(cc.Template, order)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to render checkout page: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render checkout page"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (cc *CheckoutController) orderSummary(c *gin.Context) (payment_models.OrderSummary, bool) {
	orderID := strings.TrimSpace(c.Query("order_id"))
	if orderID == "" || cc.Orders == nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount")))
		if err != nil {
			amount = decimal.Zero
		}
		return payment_models.OrderSummary{OrderID: orderID, Amount: amount, Currency: c.Query("currency")}, true
	}

	var so salesOrder
	if err := cc.Orders.GetDoc(c.Request.Context(), payment_models.DefaultReferenceDoctype, orderID, &so); err != nil {
		var rpcErr *clients.RPCError
		if errors.As(err, &rpcErr) && rpcErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return payment_models.OrderSummary{}, false
		}
		logger.ErrorLogger.Errorf("Failed to load %s %s for checkout: %v", payment_models.DefaultReferenceDoctype, orderID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load order"})
		return payment_models.OrderSummary{}, false
	}
	return payment_models.OrderSummary{OrderID: orderID, Amount: so.GrandTotal, Currency: so.Currency}, true
}

// ActionsScript serves the client runtime that replays action lists.
func (cc *CheckoutController) ActionsScript(c *gin.Context) {
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", actionsScript)
}

// Pay runs the handler registered for the selected payment method and
// returns the UI actions for the page to replay.
func (cc *CheckoutController) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.ErrorLogger.Errorf("Failed to bind checkout form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout data", "details": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		logger.WarnLogger.Warnf("Checkout for order %s sent unparseable amount %q", req.OrderID, req.Amount)
		amount = decimal.Zero
	}

	rec := ui.NewRecorder()
	out, err := cc.Payments.MakePayment(c.Request.Context(), checkout_handlers.Checkout{
		PaymentMethod: req.PaymentMethod,
		Order: payment_models.OrderSummary{
			OrderID:  req.OrderID,
			Amount:   amount,
			Currency: req.Currency,
		},
		Payer: payment_models.PayerDetails{
			Name:  req.CustomerName,
			Email: req.Email,
			Phone: req.Phone,
		},
	}, rec)

	resp := gin.H{
		"gateway": out.Gateway,
		"state":   out.State.String(),
		"actions": rec.Actions(),
	}
	if out.PaymentURL != "" {
		resp["payment_url"] = out.PaymentURL
	}
	if out.Message != "" {
		resp["message"] = out.Message
	}
	c.JSON(statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, checkout_handlers.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, payment_models.ErrInvalidAmount),
		errors.Is(err, payment_models.ErrMissingPayerDetails),
		errors.Is(err, payment_models.ErrMissingReference):
		return http.StatusBadRequest
	case errors.Is(err, clients.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}
