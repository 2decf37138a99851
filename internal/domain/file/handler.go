package file

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neodrive/internal/domain/quota"
	"neodrive/internal/domain/session"
	"neodrive/internal/pkg/response"
)

// Handler exposes the file metadata registry over HTTP. Every route sits
// behind the session middleware; upstream failures are logged by the error
// middleware and genericized here.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/file.
func (h *Handler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	files, err := h.service.List(c.Request.Context(), sess)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to fetch files")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"files": files})
}

// StorageUsage handles GET /api/file/getStorageUsage.
func (h *Handler) StorageUsage(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	usage, err := h.service.StorageUsage(c.Request.Context(), sess)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "USAGE_FAILED", "Failed to get storage usage")
		return
	}
	response.Success(c, http.StatusOK, usage)
}

// PresignUpload handles POST /api/file/presignedUrl.
func (h *Handler) PresignUpload(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.PresignUpload(c.Request.Context(), sess, req)
	if err != nil {
		h.writeError(c, err, "PRESIGN_FAILED", "Failed to generate presigned URL")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ConfirmUpload handles POST /api/file/uploadFileMetadata.
func (h *Handler) ConfirmUpload(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req MetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rec, err := h.service.ConfirmUpload(c.Request.Context(), sess, req)
	if err != nil {
		h.writeError(c, err, "METADATA_FAILED", "Failed to save file metadata")
		return
	}
	response.Success(c, http.StatusCreated, rec)
}

// Rename handles POST /api/file/renameFile.
func (h *Handler) Rename(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.Rename(c.Request.Context(), sess, req); err != nil {
		h.writeError(c, err, "RENAME_FAILED", "Failed to rename file")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "File renamed successfully"})
}

// ToggleFavorite handles POST /api/file/toggleFavorite.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	favorited, err := h.service.ToggleFavorite(c.Request.Context(), sess, req)
	if err != nil {
		h.writeError(c, err, "FAVORITE_FAILED", "Failed to update favorite")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isFavorited": favorited})
}

// Delete handles DELETE /api/file.
func (h *Handler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session")
		return
	}

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.Delete(c.Request.Context(), sess, req); err != nil {
		h.writeError(c, err, "DELETE_FAILED", "Failed to delete file")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// writeError maps domain errors onto the HTTP taxonomy. Quota denials are a
// distinct 403 carrying the human-readable remaining-space message; unknown
// errors are logged and genericized.
func (h *Handler) writeError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	var denial *quota.DenialError
	switch {
	case errors.As(err, &denial):
		response.Error(c, http.StatusForbidden, "QUOTA_EXCEEDED", denial.Message)
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", ErrNotOwner.Error())
	case errors.Is(err, ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrRecordNotFound.Error())
	case errors.Is(err, ErrNameConflict):
		response.Error(c, http.StatusConflict, "NAME_CONFLICT", ErrNameConflict.Error())
	case errors.Is(err, ErrFolderNotEmpty):
		response.Error(c, http.StatusBadRequest, "FOLDER_NOT_EMPTY", ErrFolderNotEmpty.Error())
	case errors.Is(err, ErrRecordInvalid):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}

func currentSession(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get("session")
	if !exists {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
