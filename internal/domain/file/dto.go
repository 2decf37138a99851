package file

// Request bodies mirror the client's JSON. Every mutating request carries
// the owner's userId, checked against the session before anything else.

type PresignRequest struct {
	UserID   string `json:"userId" binding:"required,max=255"`
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Size     int64  `json:"size" binding:"required,min=1"`
	MimeType string `json:"mimeType" binding:"required"`
	Path     string `json:"path" binding:"required,max=255"`
}

type MetadataRequest struct {
	UserID      string  `json:"userId" binding:"required,max=255"`
	StorageKey  *string `json:"storageKey"`
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	Type        string  `json:"type" binding:"required,oneof=file folder"`
	Size        int64   `json:"size" binding:"min=0"`
	MimeType    *string `json:"mimeType"`
	Path        string  `json:"path" binding:"required,max=255"`
	IsFavorited bool    `json:"isFavorited"`
}

type RenameRequest struct {
	ID     string `json:"id" binding:"required,max=255"`
	UserID string `json:"userId" binding:"required,max=255"`
	Name   string `json:"name" binding:"required,min=2,max=255"`
}

type FavoriteRequest struct {
	ID     string `json:"id" binding:"required,max=255"`
	UserID string `json:"userId" binding:"required,max=255"`
}

type DeleteRequest struct {
	ID     string `json:"id" binding:"required,max=255"`
	UserID string `json:"userId" binding:"required,max=255"`
}

// PresignResult is the scoped write credential handed to the client.
type PresignResult struct {
	PresignedURL string `json:"presignedUrl"`
	UniqueKey    string `json:"uniqueKey"`
}

// RecordView is a FileRecord plus the derived public URL for stored files.
type RecordView struct {
	FileRecord
	URL *string `json:"url"`
}

// UsageSnapshot is recomputed on demand from record aggregation; nothing is
// cached server-side.
type UsageSnapshot struct {
	UsedStorage      int64  `json:"usedStorage"`
	StorageLimit     int64  `json:"storageLimit"`
	RemainingStorage int64  `json:"remainingStorage"`
	UsagePercentage  int    `json:"usagePercentage"`
	Subscription     string `json:"subscription"`
}
