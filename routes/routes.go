package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/joy095/cashfree/controllers/cashfree_api_controller"
	"github.com/joy095/cashfree/controllers/cashfree_settings_controller"
	"github.com/joy095/cashfree/controllers/checkout_controller"
	"github.com/joy095/cashfree/controllers/payment_request_controller"
	"github.com/joy095/cashfree/middlewares/auth"
	"github.com/joy095/cashfree/middlewares/rate_limiter"
)

// Controllers holds everything the router dispatches to.
type Controllers struct {
	Checkout       *checkout_controller.CheckoutController
	PaymentRequest *payment_request_controller.PaymentRequestController
	Settings       *cashfree_settings_controller.SettingsController
	API            *cashfree_api_controller.APIController
}

// Limits configures the rate limited routes. Redis may be nil.
type Limits struct {
	Redis    *redis.Client
	Checkout string
	Webhook  string
}

func RegisterCheckoutRoutes(r *gin.Engine, cc *checkout_controller.CheckoutController, limits Limits) {
	r.GET("/checkout", cc.CheckoutPage)
	r.GET("/assets/cashfree/actions.js", cc.ActionsScript)
	r.POST("/checkout/pay", rate_limiter.NewRateLimiter(limits.Redis, limits.Checkout, "checkout_pay"), cc.Pay)
}

// RegisterPaymentRequestRoutes mounts the Payment Request form actions, for
// System Managers only.
func RegisterPaymentRequestRoutes(r *gin.Engine, pc *payment_request_controller.PaymentRequestController, adminSecret []byte) {
	group := r.Group("/payment-requests/:name")
	group.Use(auth.AdminMiddleware(adminSecret))
	{
		group.GET("/buttons", pc.Buttons)
		group.POST("/payment-link", pc.GenerateLink)
		group.GET("/cashfree-payment", pc.ViewPayment)
	}
}

func RegisterSettingsRoutes(r *gin.Engine, sc *cashfree_settings_controller.SettingsController, adminSecret []byte) {
	group := r.Group("/cashfree-settings")
	group.Use(auth.AdminMiddleware(adminSecret))
	{
		group.GET("/buttons", sc.Buttons)
		group.POST("/gateway-account", sc.CreateGatewayAccount)
	}
}

// RegisterAPIRoutes mounts the whitelisted methods the ERP and Cashfree call.
// Generating (and mailing) a payment link is a System Manager action.
func RegisterAPIRoutes(r *gin.Engine, ac *cashfree_api_controller.APIController, limits Limits, adminSecret []byte) {
	api := r.Group("/api/method")
	{
		api.POST("/cashfree.api.make_payment", ac.MakePayment)
		api.GET("/cashfree.api.make_payment", ac.StartFromLink)
		api.POST("/cashfree.make_payment", auth.AdminMiddleware(adminSecret), ac.PaymentLink)
		api.GET("/cashfree.api.handle_redirect", ac.HandleRedirect)
		api.POST("/cashfree.api.handle_webhook",
			rate_limiter.NewRateLimiter(limits.Redis, limits.Webhook, "cashfree_webhook"), ac.HandleWebhook)
	}
}

// RegisterRoutes mounts every group.
func RegisterRoutes(r *gin.Engine, c Controllers, limits Limits, adminSecret []byte) {
	RegisterCheckoutRoutes(r, c.Checkout, limits)
	RegisterPaymentRequestRoutes(r, c.PaymentRequest, adminSecret)
	RegisterSettingsRoutes(r, c.Settings, adminSecret)
	RegisterAPIRoutes(r, c.API, limits, adminSecret)
	RegisterHealthRoutes(r)
}
