package payment_request_handlers

import "github.com/joy095/cashfree/models/payment_models"

const (
	ButtonGenerateLink = "Generate Cashfree Payment Link"
	ButtonViewPayment  = "View Cashfree Payment"

	ActionGenerateLink = "generate_link"
	ActionViewPayment  = "view_payment"
)

// Button is a custom form button.
type Button struct {
	Label   string `json:"label"`
	Action  string `json:"action"`
	Primary bool   `json:"primary,omitempty"`
}

// Buttons returns the Cashfree buttons for a Payment Request form.
func Buttons(record payment_models.PaymentRequestRecord) []Button {
	if !record.IsCashfree() {
		return nil
	}
	if record.IsPaid() {
		return []Button{{Label: ButtonViewPayment, Action: ActionViewPayment}}
	}
	return []Button{{Label: ButtonGenerateLink, Action: ActionGenerateLink, Primary: true}}
}
