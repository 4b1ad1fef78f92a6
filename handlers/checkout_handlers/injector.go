package checkout_handlers

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joy095/cashfree/models/payment_models"
)

const (
	checkoutPaymentID = "checkout-payment"
	paymentOptionsID  = "payment-options"
)

const cashfreeOption = `<div class="form-group">
	<div class="radio">
		<input type="radio" name="payment_method" id="cashfree" value="Cashfree">
		<label for="cashfree" class="control-label">
			Pay with Cashfree
			<i class="fa fa-credit-card"></i>
		</label>
	</div>
</div>`

// InjectPaymentOption adds the "Pay with Cashfree" radio to a checkout page.
// It reports whether the page changed. Pages without #checkout-payment, or
// that already offer Cashfree, come back untouched.
func InjectPaymentOption(page []byte) ([]byte, bool, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, false, fmt.Errorf("parse checkout page: %w", err)
	}

	changed, err := injectOption(doc)
	if err != nil || !changed {
		return page, false, err
	}
	out, err := render(doc)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// RenderCheckout writes the order being paid into the data-order-id,
// data-amount and data-currency attributes of #checkout-payment and adds the
// Cashfree option. A page without that form is returned unchanged.
func RenderCheckout(page []byte, order payment_models.OrderSummary) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse checkout page: %w", err)
	}

	form := findElement(doc, func(n *html.Node) bool { return attr(n, "id") == checkoutPaymentID })
	if form == nil {
		return page, nil
	}

	amount := ""
	if !order.Amount.IsZero() {
		amount = order.Amount.String()
	}
	setAttr(form, "data-order-id", order.OrderID)
	setAttr(form, "data-amount", amount)
	setAttr(form, "data-currency", order.Currency)

	if _, err := injectOption(doc); err != nil {
		return nil, err
	}
	return render(doc)
}

func injectOption(doc *html.Node) (bool, error) {
	if findElement(doc, func(n *html.Node) bool { return attr(n, "id") == checkoutPaymentID }) == nil {
		return false, nil
	}
	if hasPaymentOption(doc, payment_models.GatewayCashfree) {
		return false, nil
	}

	options := findElement(doc, func(n *html.Node) bool { return attr(n, "id") == paymentOptionsID })
	if options == nil {
		return false, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(cashfreeOption), options)
	if err != nil {
		return false, fmt.Errorf("parse payment option: %w", err)
	}
	for _, n := range nodes {
		options.AppendChild(n)
	}
	return true, nil
}

func render(doc *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render checkout page: %w", err)
	}
	return buf.Bytes(), nil
}

func hasPaymentOption(doc *html.Node, value string) bool {
	return findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Input &&
			attr(n, "name") == "payment_method" &&
			attr(n, "value") == value
	}) != nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
