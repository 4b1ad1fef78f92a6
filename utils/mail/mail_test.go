package mail

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSendPaymentLink(t *testing.T) {
	t.Run("RendersLink", func(t *testing.T) {
		sender := &captureSender{}
		m := &Mailer{From: "billing@shop.example", Sender: sender}

		err := m.SendPaymentLink("payer@example.org", PaymentLinkData{
			Amount:           "499.00",
			Currency:         "INR",
			ReferenceDoctype: "Sales Order",
			ReferenceName:    "SO-0001",
			Link:             "https://erp.example/pay?x=1",
		})
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, []string{"payer@example.org"}, msg.GetHeader("To"))
		assert.Equal(t, []string{"Payment Request for SO-0001"}, msg.GetHeader("Subject"))

		var buf bytes.Buffer
		_, err = msg.WriteTo(&buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "SO-0001")
	})

	t.Run("SendFailure", func(t *testing.T) {
		m := &Mailer{From: "billing@shop.example", Sender: &captureSender{err: errors.New("dial tcp: refused")}}
		assert.Error(t, m.SendPaymentLink("payer@example.org", PaymentLinkData{ReferenceName: "SO-2"}))
	})
}
