package file

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the file registry under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	fileGroup := r.Group("/file")
	{
		fileGroup.GET("", h.List)
		fileGroup.GET("/getStorageUsage", h.StorageUsage)
		fileGroup.POST("/presignedUrl", h.PresignUpload)
		fileGroup.POST("/uploadFileMetadata", h.ConfirmUpload)
		fileGroup.POST("/renameFile", h.Rename)
		fileGroup.POST("/toggleFavorite", h.ToggleFavorite)
		fileGroup.DELETE("", h.Delete)
	}
}
