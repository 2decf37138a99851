package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neodrive/internal/domain/session"
	"neodrive/internal/pkg/response"
)

// SessionAuth resolves the session cookie against the store, slides the
// expiration forward and refreshes the cookie, then exposes the session on
// the context. Requests without a live session are rejected with 401 before
// any handler runs.
func SessionAuth(store *session.Store, cookieMaxAge int, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
			return
		}

		sess, ok := store.Get(token)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
			return
		}

		store.Touch(token)
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(session.CookieName, token, cookieMaxAge, "/", "", cookieSecure, true)

		c.Set("session", sess)
		c.Set("session_token", token)
		c.Set("user_id", sess.UserID)
		c.Next()
	}
}
