package gateway_handlers

import (
	"context"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/payment_models"
)

// HandleRedirect verifies an order the payer returned from and picks the
// page to send them to.
func (g *Gateway) HandleRedirect(ctx context.Context, orderID string) string {
	if orderID == "" {
		logger.WarnLogger.Warn("Cashfree redirect without order_id")
		return FailedRedirectURL
	}

	order, err := g.Cashfree.GetOrder(ctx, orderID)
	if err != nil {
		logger.ErrorLogger.Errorf("Cashfree redirect: fetching order %s failed: %v", orderID, err)
		return FailedRedirectURL
	}
	if !order.IsPaid() {
		logger.InfoLogger.Infof("Cashfree redirect: order %s is %s", orderID, order.OrderStatus)
		return FailedRedirectURL
	}

	s := settlement{
		OrderID:     order.OrderID,
		OrderStatus: order.OrderStatus,
		OrderAmount: amountJSON(order.OrderAmount),
		Tags:        order.OrderTags,
	}
	if s.OrderID == "" {
		s.OrderID = orderID
	}

	payments, err := g.Cashfree.GetPayments(ctx, orderID)
	if err != nil {
		logger.WarnLogger.Warnf("Cashfree redirect: listing payments of %s failed: %v", orderID, err)
	} else if p := clients.SuccessfulPayment(payments); p != nil {
		s.CfPaymentID = p.CFPaymentID
		s.PaymentMethod = p.PaymentMethod
		s.TransactionTime = p.PaymentTime
	}

	if _, err := g.settle(ctx, s); err != nil {
		logger.ErrorLogger.Errorf("Cashfree redirect: %v", err)
		return FailedRedirectURL
	}
	return payment_models.DefaultRedirectURL
}
