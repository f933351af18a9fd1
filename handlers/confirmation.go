package handlers

import (
	"net/http"

	"medibook/models"
	"medibook/services/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfirmationHandler serves the post-redirect confirmation page data.
type ConfirmationHandler struct {
	Resolver *checkout.ConfirmationResolver
	Logger   *zap.Logger
}

func NewConfirmationHandler(resolver *checkout.ConfirmationResolver, logger *zap.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{Resolver: resolver, Logger: logger}
}

// Resolve reads the return-URL parameters and resolves the confirmation
// view. Errors still carry a view so the page can render a recoverable
// state instead of a blank error.
func (h *ConfirmationHandler) Resolve(c *gin.Context) {
	params := models.ReturnParams{
		PatientID: c.GetString(PatientIDKey),
		PaymentID: c.Query("paymentId"),
		OrderID:   c.Query("orderId"),
	}

	// The booking id parameter name carries the kind.
	if id := c.Query("appointmentId"); id != "" {
		params.Kind = models.KindAppointment
		params.BookingID = id
	} else if id := c.Query("labBookingId"); id != "" {
		params.Kind = models.KindLabTest
		params.BookingID = id
	}

	view, err := h.Resolver.Resolve(c.Request.Context(), params)
	if err != nil {
		status := http.StatusBadRequest
		if checkout.ErrorCode(err) == checkout.CodeResolutionGap {
			status = http.StatusServiceUnavailable
		}
		h.Logger.Warn("confirmation resolution failed",
			zap.String("paymentId", params.PaymentID), zap.Error(err))
		c.JSON(status, gin.H{"code": checkout.ErrorCode(err), "confirmation": view})
		return
	}

	c.JSON(http.StatusOK, gin.H{"confirmation": view})
}
