package file

import (
	"strings"
	"time"
)

type RecordType string

const (
	TypeFile   RecordType = "file"
	TypeFolder RecordType = "folder"
)

// Category buckets files for the sidebar views. Derived from the MIME type;
// folders carry none.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryVideos    Category = "videos"
	CategoryAudios    Category = "audios"
	CategoryDocuments Category = "documents"
	CategoryOthers    Category = "others"
)

// FileRecord is the metadata row for a file or folder, independent of the
// underlying storage object. StorageKey is non-nil exactly when the record
// is a file whose object has been durably written. A folder's children are
// records whose path equals "{folder.path}{folder.name}/"; there is no
// parent-id reference.
type FileRecord struct {
	ID          string     `gorm:"column:id;primaryKey" json:"id"`
	UserID      string     `gorm:"column:user_id;index" json:"userId"`
	Name        string     `gorm:"column:name" json:"name"`
	Type        RecordType `gorm:"column:type" json:"type"`
	StorageKey  *string    `gorm:"column:storage_key" json:"storageKey"`
	Size        int64      `gorm:"column:size" json:"size"`
	MimeType    *string    `gorm:"column:mime_type" json:"mimeType"`
	Path        string     `gorm:"column:path" json:"path"`
	IsFavorited bool       `gorm:"column:is_favorited" json:"isFavorited"`
	Category    *Category  `gorm:"column:category" json:"category"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (FileRecord) TableName() string { return "file_records" }

// ChildPath is the path prefix identifying a folder's direct children.
func (f *FileRecord) ChildPath() string {
	return f.Path + f.Name + "/"
}

// CategoryFor derives the listing category from a MIME type. Returns nil for
// folders.
func CategoryFor(mimeType *string, recordType RecordType) *Category {
	if recordType == TypeFolder || mimeType == nil {
		return nil
	}
	mt := *mimeType

	var c Category
	switch {
	case strings.HasPrefix(mt, "image/"):
		c = CategoryImages
	case strings.HasPrefix(mt, "video/"):
		c = CategoryVideos
	case strings.HasPrefix(mt, "audio/"):
		c = CategoryAudios
	case strings.Contains(mt, "text"),
		strings.Contains(mt, "pdf"),
		strings.Contains(mt, "document"),
		strings.Contains(mt, "spreadsheet"),
		strings.Contains(mt, "presentation"):
		c = CategoryDocuments
	default:
		c = CategoryOthers
	}
	return &c
}
