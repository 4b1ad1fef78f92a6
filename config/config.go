package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/joy095/cashfree/logger"
)

const (
	ModeTest       = "TEST"
	ModeProduction = "PRODUCTION"
)

var (
	ErrMissingCredentials   = errors.New("cashfree client id and secret are required")
	ErrInvalidMode          = errors.New("cashfree mode must be TEST or PRODUCTION")
	ErrMissingWebhookSecret = errors.New("cashfree webhook secret is required in PRODUCTION")
)

// LoadEnv loads a .env file when one is present. Real environment variables win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.InfoLogger.Info("No .env file found, using process environment")
	}
}

// Settings is the service configuration. The Cashfree fields mirror the
// "Cashfree Settings" single doctype of the ERP.
type Settings struct {
	Port    string
	SiteURL string

	FrappeURL       string
	FrappeAPIKey    string
	FrappeAPISecret string

	CashfreeClientID       string
	CashfreeClientSecret   string
	CashfreeMode           string
	CashfreeWebhookSecret  string
	CashfreePaymentAccount string
	CashfreeRedirectURL    string

	RazorpayKeyID     string
	RazorpayKeySecret string

	DatabaseURL           string
	RedisURL              string
	IntegrationLogBackend string // "frappe" or "postgres"

	StrictPayerDetails bool
	AdminJWTSecret     string

	CheckoutRateLimit string
	WebhookRateLimit  string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

// Load reads Settings from the environment.
func Load() (*Settings, error) {
	s := &Settings{
		Port:    getEnv("PORT", "8081"),
		SiteURL: strings.TrimRight(getEnv("SITE_URL", "http://localhost:8081"), "/"),

		FrappeURL:       strings.TrimRight(os.Getenv("FRAPPE_URL"), "/"),
		FrappeAPIKey:    os.Getenv("FRAPPE_API_KEY"),
		FrappeAPISecret: os.Getenv("FRAPPE_API_SECRET"),

		CashfreeClientID:       os.Getenv("CASHFREE_CLIENT_ID"),
		CashfreeClientSecret:   os.Getenv("CASHFREE_CLIENT_SECRET"),
		CashfreeMode:           strings.ToUpper(getEnv("CASHFREE_MODE", ModeTest)),
		CashfreeWebhookSecret:  os.Getenv("CASHFREE_WEBHOOK_SECRET"),
		CashfreePaymentAccount: os.Getenv("CASHFREE_PAYMENT_ACCOUNT"),
		CashfreeRedirectURL:    os.Getenv("CASHFREE_REDIRECT_URL"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		IntegrationLogBackend: strings.ToLower(getEnv("INTEGRATION_LOG_BACKEND", "frappe")),

		StrictPayerDetails: getBool("CHECKOUT_STRICT_PAYER", false),
		AdminJWTSecret:     os.Getenv("ADMIN_JWT_SECRET"),

		CheckoutRateLimit: getEnv("CHECKOUT_RATE_LIMIT", "10-1m"),
		WebhookRateLimit:  getEnv("WEBHOOK_RATE_LIMIT", "120-1m"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate applies the same checks the ERP runs when Cashfree Settings are saved.
func (s *Settings) Validate() error {
	if s.CashfreeClientID == "" || s.CashfreeClientSecret == "" {
		return ErrMissingCredentials
	}
	if s.CashfreeMode != ModeTest && s.CashfreeMode != ModeProduction {
		return fmt.Errorf("%w: got %q", ErrInvalidMode, s.CashfreeMode)
	}
	if s.CashfreeMode == ModeProduction && s.CashfreeWebhookSecret == "" {
		return ErrMissingWebhookSecret
	}
	if s.IntegrationLogBackend != "frappe" && s.IntegrationLogBackend != "postgres" {
		return fmt.Errorf("unknown INTEGRATION_LOG_BACKEND %q", s.IntegrationLogBackend)
	}
	return nil
}

// MailEnabled reports whether enough SMTP settings exist to send mail.
func (s *Settings) MailEnabled() bool {
	return s.SMTPHost != "" && s.MailFrom != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
