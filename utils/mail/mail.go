package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"github.com/joy095/cashfree/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var paymentLinkTemplate = template.Must(template.ParseFS(templateFS, "templates/payment_link.html"))

const DefaultLinkMessage = "Please click the link below to make your payment"

// PaymentLinkData fills the payment link email.
type PaymentLinkData struct {
	PayerName        string
	Message          string
	Amount           string
	Currency         string
	ReferenceDoctype string
	ReferenceName    string
	Link             string
}

// Sender delivers a rendered message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends payment link emails over SMTP.
type Mailer struct {
	From   string
	Sender Sender
}

// NewMailer returns a Mailer dialing host:port with the given credentials.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         host,
	}
	return &Mailer{From: from, Sender: dialer}
}

// SendPaymentLink emails the link to toEmail.
func (m *Mailer) SendPaymentLink(toEmail string, data PaymentLinkData) error {
	if data.Message == "" {
		data.Message = DefaultLinkMessage
	}
	if data.PayerName == "" {
		data.PayerName = "Customer"
	}

	var body bytes.Buffer
	if err := paymentLinkTemplate.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute payment link template: %v", err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Payment Request for %s", data.ReferenceName))
	msg.SetBody("text/html", body.String())

	if err := m.Sender.DialAndSend(msg); err != nil {
		logger.ErrorLogger.Errorf("Failed to send payment link to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Payment link for %s sent to %s", data.ReferenceName, toEmail)
	return nil
}
