package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neodrive/internal/domain/session"
	"neodrive/internal/domain/user"
	"neodrive/internal/pkg/response"
)

// Handler manages the authentication HTTP surface. The session token travels
// as an HTTP-only cookie; bodies never carry it.
type Handler struct {
	service      *Service
	cookieMaxAge int
	cookieSecure bool
}

func NewHandler(service *Service, cookieMaxAge int, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
	}
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	_, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": "User created successfully"})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	u, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "Failed to find user")
		case errors.Is(err, ErrInvalidPassword):
			response.Error(c, http.StatusUnauthorized, "INVALID_PASSWORD", "Invalid password")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		}
		return
	}

	h.setSessionCookie(c, token)
	response.Success(c, http.StatusOK, identityOf(u))
}

// Logout handles POST /api/auth/logout. Always 200; logging out without a
// session is not an error.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	h.service.Logout(token)
	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Session cleared successfully"})
}

// Me handles GET /api/auth/me on the protected group; the middleware already
// resolved the session.
func (h *Handler) Me(c *gin.Context) {
	v, exists := c.Get("session")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}
	sess := v.(session.Session)

	response.Success(c, http.StatusOK, IdentityResponse{
		ID:           sess.UserID,
		Name:         sess.Name,
		Email:        sess.Email,
		Subscription: string(sess.Subscription),
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(session.CookieName, token, h.cookieMaxAge, "/", "", h.cookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.cookieSecure, true)
}

func identityOf(u *user.User) IdentityResponse {
	return IdentityResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Subscription: string(u.Subscription),
	}
}
