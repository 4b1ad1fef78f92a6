package cashfree_api_controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/joy095/cashfree/handlers/gateway_handlers"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
)

const maxWebhookBody = 1 << 20

// APIController exposes the whitelisted methods under /api/method, answering
// in the ERP's {"message": ...} envelope.
type APIController struct {
	Gateway *gateway_handlers.Gateway
}

func NewAPIController(g *gateway_handlers.Gateway) *APIController {
	return &APIController{Gateway: g}
}

type makePaymentForm struct {
	ReferenceDoctype string `form:"reference_doctype" json:"reference_doctype"`
	ReferenceDocname string `form:"reference_docname" json:"reference_docname"`
	Amount           string `form:"amount" json:"amount"`
	Currency         string `form:"currency" json:"currency"`
	PayerName        string `form:"payer_name" json:"payer_name"`
	PayerEmail       string `form:"payer_email" json:"payer_email"`
	PayerPhone       string `form:"payer_phone" json:"payer_phone"`
	Description      string `form:"description" json:"description"`
	RedirectURL      string `form:"redirect_url" json:"redirect_url"`
}

// MakePayment is POST cashfree.api.make_payment.
func (ac *APIController) MakePayment(c *gin.Context) {
	var form makePaymentForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": payment_models.InitiationResponse{Error: "Invalid payment request"}})
		return
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": payment_models.InitiationResponse{Error: "Invalid amount"}})
		return
	}

	resp := ac.Gateway.MakePayment(c.Request.Context(), payment_models.PaymentInitiationRequest{
		ReferenceDoctype: form.ReferenceDoctype,
		ReferenceDocname: form.ReferenceDocname,
		Amount:           amount,
		Currency:         form.Currency,
		PayerName:        form.PayerName,
		PayerEmail:       form.PayerEmail,
		PayerPhone:       form.PayerPhone,
		Description:      form.Description,
		RedirectURL:      form.RedirectURL,
	})
	c.JSON(http.StatusOK, gin.H{"message": resp})
}

// StartFromLink is GET cashfree.api.make_payment, the target of payment links.
func (ac *APIController) StartFromLink(c *gin.Context) {
	doctype := c.Query("reference_doctype")
	docname := c.Query("reference_docname")

	url, err := ac.Gateway.StartFromLink(c.Request.Context(), doctype, docname)
	if err != nil {
		logger.ErrorLogger.Errorf("Payment link for %s %s could not start: %v", doctype, docname, err)
		if errors.Is(err, gateway_handlers.ErrAlreadyPaid) {
			c.Redirect(http.StatusFound, payment_models.DefaultRedirectURL)
			return
		}
		c.Redirect(http.StatusFound, gateway_handlers.FailedRedirectURL)
		return
	}
	c.Redirect(http.StatusFound, url)
}

type linkForm struct {
	ReferenceDoctype string `form:"reference_doctype" json:"reference_doctype" binding:"required"`
	ReferenceDocname string `form:"reference_docname" json:"reference_docname" binding:"required"`
}

// PaymentLink is POST cashfree.make_payment.
func (ac *APIController) PaymentLink(c *gin.Context) {
	var form linkForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusExpectationFailed, gin.H{"exc_type": "ValidationError", "_server_messages": serverMessages("reference_doctype and reference_docname are required")})
		return
	}

	link, err := ac.Gateway.PaymentLink(c.Request.Context(), form.ReferenceDoctype, form.ReferenceDocname)
	if err != nil {
		c.JSON(http.StatusExpectationFailed, gin.H{"exc_type": "ValidationError", "_server_messages": serverMessages(err.Error())})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": link})
}

// HandleRedirect is GET cashfree.api.handle_redirect.
func (ac *APIController) HandleRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, ac.Gateway.HandleRedirect(c.Request.Context(), c.Query("order_id")))
}

// HandleWebhook is POST cashfree.api.handle_webhook.
func (ac *APIController) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": gin.H{"status": "error", "message": "invalid body"}})
		return
	}

	res, err := ac.Gateway.HandleWebhook(c.Request.Context(),
		c.GetHeader("x-webhook-signature"), c.GetHeader("x-webhook-timestamp"), body)
	switch {
	case errors.Is(err, gateway_handlers.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"message": gin.H{"status": "error", "message": err.Error()}})
	case errors.Is(err, gateway_handlers.ErrInvalidWebhook):
		c.JSON(http.StatusBadRequest, gin.H{"message": gin.H{"status": "error", "message": err.Error()}})
	case err != nil:
		logger.ErrorLogger.Errorf("Cashfree webhook failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": gin.H{"status": "error", "message": "webhook processing failed"}})
	default:
		c.JSON(http.StatusOK, gin.H{"message": gin.H{"status": "success", "result": res.Result}})
	}
}
