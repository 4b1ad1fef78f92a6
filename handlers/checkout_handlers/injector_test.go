package checkout_handlers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/cashfree/models/payment_models"
)

const checkoutPage = `<html><head><title>Checkout</title></head><body>
<div id="checkout-payment">
	<div id="payment-options">
		<div class="radio"><input type="radio" name="payment_method" value="COD"> Cash on delivery</div>
	</div>
</div>
</body></html>`

func TestInjectPaymentOption(t *testing.T) {
	t.Run("AddsOption", func(t *testing.T) {
		out, changed, err := InjectPaymentOption([]byte(checkoutPage))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, strings.Count(string(out), `value="Cashfree"`))
		assert.Contains(t, string(out), "Pay with Cashfree")
		assert.Contains(t, string(out), `id="cashfree"`)
		assert.Contains(t, string(out), `value="COD"`)
	})

	t.Run("Idempotent", func(t *testing.T) {
		once, _, err := InjectPaymentOption([]byte(checkoutPage))
		require.NoError(t, err)

		twice, changed, err := InjectPaymentOption(once)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, string(once), string(twice))
		assert.Equal(t, 1, strings.Count(string(twice), `value="Cashfree"`))
	})

	t.Run("ExistingOptionLeftAlone", func(t *testing.T) {
		page := strings.Replace(checkoutPage, `value="COD"`, `value="Cashfree"`, 1)
		out, changed, err := InjectPaymentOption([]byte(page))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, page, string(out))
	})

	t.Run("NotACheckoutPage", func(t *testing.T) {
		page := `<html><body><div id="payment-options"></div></body></html>`
		out, changed, err := InjectPaymentOption([]byte(page))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, page, string(out))
	})
}

func TestRenderCheckout(t *testing.T) {
	order := payment_models.OrderSummary{OrderID: `SO-"1"`, Amount: decimal.RequireFromString("499.50"), Currency: "INR"}

	out, err := RenderCheckout([]byte(checkoutPage), order)
	require.NoError(t, err)
	page := string(out)
	assert.Contains(t, page, `data-order-id="SO-&#34;1&#34;"`)
	assert.Contains(t, page, `data-amount="499.5"`)
	assert.Contains(t, page, `data-currency="INR"`)
	assert.Equal(t, 1, strings.Count(page, `value="Cashfree"`))

	again, err := RenderCheckout(out, payment_models.OrderSummary{OrderID: "SO-2"})
	require.NoError(t, err)
	assert.Contains(t, string(again), `data-order-id="SO-2"`)
	assert.Contains(t, string(again), `data-amount=""`)
	assert.Equal(t, 1, strings.Count(string(again), `value="Cashfree"`))

	plain := []byte(`<html><body><p>cart is empty</p></body></html>`)
	same, err := RenderCheckout(plain, order)
	require.NoError(t, err)
	assert.Equal(t, plain, same)
}
