package billing

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the checkout and admin surface under the protected
// group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	stripeGroup := r.Group("/stripe")
	{
		stripeGroup.POST("/checkout", h.Checkout)
		stripeGroup.GET("/paymentHistories", h.Histories)
		stripeGroup.POST("/products", h.CreateProduct)
	}
}

// RegisterWebhookRoutes mounts the event sink on the public router. Stripe
// cannot carry a session cookie; the signature is the auth.
func RegisterWebhookRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/webhook", h.Webhook)
}
