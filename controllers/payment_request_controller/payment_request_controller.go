package payment_request_controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joy095/cashfree/clients"
	"github.com/joy095/cashfree/handlers/payment_request_handlers"
	"github.com/joy095/cashfree/logger"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/models/payment_models"
	"github.com/joy095/cashfree/ui"
)

// DocLoader loads ERP documents.
type DocLoader interface {
	GetDoc(ctx context.Context, doctype, name string, out any) error
}

// PaymentRequestController backs the Cashfree buttons of the Payment Request form.
type PaymentRequestController struct {
	Docs   DocLoader
	Viewer *payment_request_handlers.Viewer
	Links  *payment_request_handlers.LinkGenerator
}

func NewPaymentRequestController(docs DocLoader, viewer *payment_request_handlers.Viewer, links *payment_request_handlers.LinkGenerator) *PaymentRequestController {
	return &PaymentRequestController{Docs: docs, Viewer: viewer, Links: links}
}

func (pc *PaymentRequestController) load(c *gin.Context) (*payment_models.PaymentRequestRecord, bool) {
	name := c.Param("name")
	var record payment_models.PaymentRequestRecord
	if err := pc.Docs.GetDoc(c.Request.Context(), payment_models.DoctypePaymentRequest, name, &record); err != nil {
		var rpcErr *clients.RPCError
		if errors.As(err, &rpcErr) && rpcErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment Request not found"})
			return nil, false
		}
		logger.ErrorLogger.Errorf("Failed to load Payment Request %s: %v", name, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load Payment Request"})
		return nil, false
	}
	if record.Name == "" {
		record.Name = name
	}
	return &record, true
}

// Buttons lists the Cashfree buttons the form should show.
func (pc *PaymentRequestController) Buttons(c *gin.Context) {
	record, ok := pc.load(c)
	if !ok {
		return
	}
	buttons := payment_request_handlers.Buttons(*record)
	if buttons == nil {
		buttons = []payment_request_handlers.Button{}
	}
	c.JSON(http.StatusOK, gin.H{"name": record.Name, "buttons": buttons})
}

// GenerateLink handles "Generate Cashfree Payment Link".
func (pc *PaymentRequestController) GenerateLink(c *gin.Context) {
	record, ok := pc.load(c)
	if !ok {
		return
	}
	if !record.IsCashfree() || record.IsPaid() {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment link is only available for unpaid Cashfree requests"})
		return
	}

	rec := ui.NewRecorder()
	link, err := pc.Links.GenerateLink(c.Request.Context(), record.ReferenceDoctype, record.ReferenceName, rec)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "actions": rec.Actions()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect_to": link, "actions": rec.Actions()})
}

// ViewPayment handles "View Cashfree Payment".
func (pc *PaymentRequestController) ViewPayment(c *gin.Context) {
	record, ok := pc.load(c)
	if !ok {
		return
	}

	rec := ui.NewRecorder()
	details, err := pc.Viewer.ViewStatus(c.Request.Context(), record.Name, rec)
	switch {
	case errors.Is(err, integration_models.ErrMalformedPaymentLog):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "actions": rec.Actions()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load payment details", "actions": rec.Actions()})
	default:
		c.JSON(http.StatusOK, gin.H{"found": details != nil, "actions": rec.Actions()})
	}
}
