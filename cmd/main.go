package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/config"
	"github.com/joy095/cashfree/config/db"
	"github.com/joy095/cashfree/config/redis"
	"github.com/joy095/cashfree/controllers/cashfree_api_controller"
	"github.com/joy095/cashfree/controllers/cashfree_settings_controller"
	"github.com/joy095/cashfree/controllers/checkout_controller"
	"github.com/joy095/cashfree/controllers/payment_request_controller"
	"github.com/joy095/cashfree/handlers/checkout_handlers"
	"github.com/joy095/cashfree/handlers/gateway_handlers"
	"github.com/joy095/cashfree/handlers/payment_request_handlers"
	"github.com/joy095/cashfree/handlers/settings_handlers"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/middlewares/cors"
	logger_middleware "github.com/joy095/cashfree/middlewares/logger"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/routes"
	"github.com/joy095/cashfree/utils/keystore"
	"github.com/joy095/cashfree/utils/mail"
)

func init() {
	// Initialize loggers before using
	logger.InitLoggers()

	config.LoadEnv()
}

func main() {
	settings, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	rdb, keys := openKeyStore(ctx, settings.RedisURL)
	defer redis.CloseRedis()

	frappe := clients.NewFrappeClient(settings.FrappeURL, settings.FrappeAPIKey, settings.FrappeAPISecret)

	logs, err := openIntegrationLog(ctx, settings, frappe)
	if err != nil {
		logger.ErrorLogger.Fatalf("Integration log unavailable: %v", err)
	}
	defer db.Close()

	cashfree := clients.NewCashfreeClient(settings.CashfreeClientID, settings.CashfreeClientSecret,
		settings.CashfreeWebhookSecret, settings.CashfreeMode)

	var mailer gateway_handlers.LinkMailer
	if settings.MailEnabled() {
		mailer = mail.NewMailer(settings.SMTPHost, settings.SMTPPort, settings.SMTPUser, settings.SMTPPassword, settings.MailFrom)
		logger.InfoLogger.Info("Payment link emails enabled")
	}

	gateway := gateway_handlers.NewGateway(cashfree, frappe, logs, keys, mailer, settings.SiteURL, settings.CashfreeRedirectURL)
	// Cashfree methods are answered in process, everything else goes to the ERP.
	rpc := gateway_handlers.NewDispatcher(gateway, frappe)

	policy := payment_models.PayerPolicy{Strict: settings.StrictPayerDetails}
	registry := checkout_handlers.NewRegistry(checkout_handlers.NewPlaceOrderHandler(frappe))
	registry.Register(payment_models.GatewayCashfree, checkout_handlers.NewCashfreeHandler(rpc, policy))
	if settings.RazorpayKeyID != "" && settings.RazorpayKeySecret != "" {
		razorpay := clients.NewRazorpayClient(settings.RazorpayKeyID, settings.RazorpayKeySecret)
		registry.Register(checkout_handlers.GatewayRazorpay,
			checkout_handlers.NewRazorpayHandler(razorpay, policy, settings.SiteURL+payment_models.DefaultRedirectURL))
	}
	logger.InfoLogger.Infof("Checkout gateways: %v", registry.Gateways())

	controllers := routes.Controllers{
		Checkout: checkout_controller.NewCheckoutController(checkout_handlers.NewController(registry), frappe),
		PaymentRequest: payment_request_controller.NewPaymentRequestController(frappe,
			payment_request_handlers.NewViewer(logs), payment_request_handlers.NewLinkGenerator(rpc)),
		Settings: cashfree_settings_controller.NewSettingsController(
			settings_handlers.NewProvisioner(frappe), settings.CashfreePaymentAccount),
		API: cashfree_api_controller.NewAPIController(gateway),
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Apply CORS Middleware
	r.Use(cors.CorsMiddleware())

	// Apply Logger Middleware
	r.Use(logger_middleware.GinLogger())

	routes.RegisterRoutes(r, controllers, routes.Limits{
		Redis:    rdb,
		Checkout: settings.CheckoutRateLimit,
		Webhook:  settings.WebhookRateLimit,
	}, []byte(settings.AdminJWTSecret))

	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server listening on :%s (cashfree mode %s)", settings.Port, settings.CashfreeMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Fatalf("Server failed to listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.InfoLogger.Info("Server exited gracefully.")
}

// openKeyStore prefers Redis and falls back to process memory, which is only
// safe for a single instance.
func openKeyStore(ctx context.Context, redisURL string) (*goredis.Client, keystore.KeyStore) {
	if redisURL == "" {
		logger.WarnLogger.Warn("REDIS_URL not set, using in-memory key store")
		return nil, keystore.NewMemory()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rdb, err := redis.GetRedisClient(pingCtx, redisURL)
	if err != nil {
		logger.WarnLogger.Warnf("Redis unavailable, using in-memory key store: %v", err)
		return nil, keystore.NewMemory()
	}
	return rdb, keystore.NewRedis(rdb, "cashfree:")
}

func openIntegrationLog(ctx context.Context, settings *config.Settings, frappe *clients.FrappeClient) (integration_models.Log, error) {
	if settings.IntegrationLogBackend != "postgres" {
		return integration_models.NewFrappeLog(frappe), nil
	}

	pool, err := db.Connect(settings.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store := integration_models.NewStore(pool)

	migrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.Migrate(migrateCtx); err != nil {
		return nil, fmt.Errorf("migrating integration log: %w", err)
	}
	return store, nil
}
