package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
	"neodrive/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Checkout handles POST /api/stripe/checkout.
func (h *Handler) Checkout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid checkout data")
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), sess, req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		case errors.Is(err, ErrPlanNotFound):
			response.Error(c, http.StatusNotFound, "PLAN_NOT_FOUND", ErrPlanNotFound.Error())
		case errors.Is(err, ErrAlreadySubscribed):
			response.Error(c, http.StatusConflict, "ALREADY_SUBSCRIBED", ErrAlreadySubscribed.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "CHECKOUT_FAILED", "Failed to create checkout session")
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Webhook handles POST /api/webhook. No session; authenticity comes from the
// signature over the raw body.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Failed to read webhook payload")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		response.Error(c, http.StatusBadRequest, "MISSING_SIGNATURE", "Missing webhook signature")
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			response.Error(c, http.StatusBadRequest, "INVALID_SIGNATURE", ErrInvalidSignature.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "WEBHOOK_FAILED", "Failed to process webhook")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Webhook processed"})
}

// Histories handles GET /api/stripe/paymentHistories.
func (h *Handler) Histories(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	histories, err := h.service.Histories(c.Request.Context(), sess.UserID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "HISTORIES_FAILED", "Failed to fetch payment histories")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paymentHistories": histories})
}

// CreateProduct handles POST /api/stripe/products.
func (h *Handler) CreateProduct(c *gin.Context) {
	if _, ok := currentSession(c); !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product creation data")
		return
	}

	plan, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PRODUCT_FAILED", "Failed to create product")
		return
	}
	response.Success(c, http.StatusCreated, plan)
}

func currentSession(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get("session")
	if !exists {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
