package cashfree_settings_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/cashfree/handlers/settings_handlers"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/ui"
	"github.com/joy095/cashfree/utils"
)

// SettingsController backs the Cashfree Settings form.
type SettingsController struct {
	Provisioner *settings_handlers.Provisioner
	// PaymentAccount is used when the request names none.
	PaymentAccount string
}

func NewSettingsController(p *settings_handlers.Provisioner, paymentAccount string) *SettingsController {
	return &SettingsController{Provisioner: p, PaymentAccount: paymentAccount}
}

type createAccountRequest struct {
	PaymentAccount *string `json:"payment_account" form:"payment_account"`
}

// CreateGatewayAccount handles "Create Payment Gateway Account".
func (sc *SettingsController) CreateGatewayAccount(c *gin.Context) {
	var req createAccountRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			logger.ErrorLogger.Errorf("Invalid gateway account request: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	account := sc.PaymentAccount
	if req.PaymentAccount != nil {
		account = *req.PaymentAccount
	}

	if admin, err := utils.AdminFromContext(c); err == nil {
		logger.InfoLogger.Infof("%s is creating a Cashfree Payment Gateway Account", admin)
	}

	rec := ui.NewRecorder()
	if err := sc.Provisioner.CreateGatewayAccount(c.Request.Context(), account, rec); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "actions": rec.Actions()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"actions": rec.Actions()})
}

// Buttons lists the Cashfree Settings form buttons.
func (sc *SettingsController) Buttons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buttons": []gin.H{{"label": settings_handlers.ButtonCreateAccount, "action": "create_gateway_account"}}})
}
