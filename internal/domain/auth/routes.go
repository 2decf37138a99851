package auth

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts signup/login/logout; they must work without a
// session.
func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}
}

// RegisterProtectedRoutes mounts endpoints that require a live session.
func RegisterProtectedRoutes(r *gin.RouterGroup, h *Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/me", h.Me)
	}
}
