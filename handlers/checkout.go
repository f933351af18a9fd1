package handlers

import (
	"net/http"

	"medibook/models"
	"medibook/services/checkout"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutHandler serves the booking-to-payment pipeline endpoints.
type CheckoutHandler struct {
	Service checkout.CheckoutService
	Logger  *zap.Logger
}

func NewCheckoutHandler(svc checkout.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Service: svc, Logger: logger}
}

// StartAttempt opens a checkout attempt from a finalized booking draft.
func (h *CheckoutHandler) StartAttempt(c *gin.Context) {
	var input struct {
		Draft models.BookingDraft `json:"draft"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	input.Draft.PatientID = c.GetString(PatientIDKey)

	session, err := h.Service.StartAttempt(c.Request.Context(), input.Draft)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attemptId": session.AttemptID,
		"fees":      session.Fees,
	})
}

// OpenCheckout creates the booking and payment order, returning the gateway
// checkout options for the widget.
func (h *CheckoutHandler) OpenCheckout(c *gin.Context) {
	attemptID := c.Param("attemptID")
	var input struct {
		Payer models.ContactInfo `json:"payer"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	opts, err := h.Service.OpenCheckout(c.Request.Context(), attemptID, input.Payer)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkout": opts})
}

// GatewayResult receives the widget's terminal outcome: a success proof to
// verify, an explicit failure, or a dismissal.
func (h *CheckoutHandler) GatewayResult(c *gin.Context) {
	attemptID := c.Param("attemptID")
	var result models.GatewayResult
	if err := c.ShouldBindJSON(&result); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	resp, err := h.Service.HandleGatewayResult(c.Request.Context(), attemptID, result)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondCheckoutError maps pipeline error classes onto HTTP statuses. The
// code travels in the body so the app can branch without string matching.
func respondCheckoutError(c *gin.Context, err error) {
	code := checkout.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case checkout.CodeValidation:
		status = http.StatusBadRequest
	case checkout.CodeSessionExpired:
		status = http.StatusNotFound
	case checkout.CodeAttemptInFlight:
		status = http.StatusConflict
	case checkout.CodeBackendRejected:
		status = http.StatusUnprocessableEntity
	case checkout.CodeGatewayFailed:
		status = http.StatusBadGateway
	case checkout.CodeVerificationFailed:
		status = http.StatusPaymentRequired
	case checkout.CodeResolutionGap:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"code": code, "error": err.Error()})
}
