package user

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts profile endpoints under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	userGroup := r.Group("/user")
	{
		userGroup.PATCH("/name", h.ChangeName)
		userGroup.PATCH("/password", h.ChangePassword)
	}
}
