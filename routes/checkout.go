package routes

import (
	"medibook/handlers"
	"medibook/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterCheckoutRoutes registers the booking-to-payment pipeline endpoints.
func RegisterCheckoutRoutes(r *gin.Engine, ch *handlers.CheckoutHandler, cf *handlers.ConfirmationHandler) {
	api := r.Group("/api/checkout")
	api.Use(middleware.PatientIdentity())
	{
		api.POST("/session", ch.StartAttempt)                            // Phase 1: Start attempt, compute fees
		api.POST("/session/:attemptID/pay", ch.OpenCheckout)             // Phase 2: Booking + order + widget options
		api.POST("/session/:attemptID/gateway-result", ch.GatewayResult) // Phase 3: Widget outcome, verification
		api.GET("/confirmation", cf.Resolve)                             // Phase 4: Post-redirect confirmation
	}
}
