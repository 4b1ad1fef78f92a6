package clients

import "github.com/razorpay/razorpay-go"

// RazorpayClientWrapper provides an interface for Razorpay operations.
// This interface allows for easier testing by mocking Razorpay interactions.
type RazorpayClientWrapper interface {
	CreatePaymentLink(data map[string]interface{}) (map[string]interface{}, error)
}

// RazorpayClient implements RazorpayClientWrapper using the actual Razorpay SDK.
type RazorpayClient struct {
	Client *razorpay.Client
}

// NewRazorpayClient creates and returns a new instance of RazorpayClient.
func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		Client: razorpay.NewClient(keyID, keySecret),
	}
}

// CreatePaymentLink creates a hosted payment link. The returned map carries
// "short_url", the page the payer is sent to.
func (r *RazorpayClient) CreatePaymentLink(data map[string]interface{}) (map[string]interface{}, error) {
	return r.Client.PaymentLink.Create(data, nil)
}
