package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"neodrive/internal/domain/session"
	"neodrive/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ChangeName handles PATCH /api/user/name.
func (h *Handler) ChangeName(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req NameChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this account")
		return
	}

	name := strings.TrimSpace(req.Name)
	if err := h.service.ChangeName(c.Request.Context(), req.UserID, name); err != nil {
		switch {
		case errors.Is(err, ErrSameName):
			response.Error(c, http.StatusBadRequest, "SAME_NAME", err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to change name")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"name": name})
}

// ChangePassword handles PATCH /api/user/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if session.Authorize(&sess, req.UserID) != session.DecisionAuthorized {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this account")
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), req.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			response.Error(c, http.StatusUnauthorized, "WRONG_PASSWORD", err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to change password")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func currentSession(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get("session")
	if !exists {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
