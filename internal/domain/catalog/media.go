package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaDoc   MediaKind = "doc"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaVideo, MediaAudio, MediaDoc:
		return true
	}
	return false
}

// LessonType is the lesson type a lesson takes when bound to media of this kind.
func (k MediaKind) LessonType() LessonType {
	if k == MediaVideo {
		return LessonVideo
	}
	return LessonFile
}

// MediaAsset is written only after the uploaded object has been verified in
// storage. ContentType/SizeBytes are the verified values; the Declared* pair
// keeps what the uploader claimed.
type MediaAsset struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID             uuid.UUID `gorm:"type:uuid;column:owner_id;not null;index" json:"owner_id"`
	Kind                MediaKind `gorm:"column:kind;not null" json:"kind"`
	Title               string    `gorm:"column:title" json:"title,omitempty"`
	ObjectKey           string    `gorm:"column:object_key;not null;uniqueIndex" json:"object_key"`
	ContentType         string    `gorm:"column:content_type" json:"content_type"`
	SizeBytes           int64     `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	DeclaredContentType string    `gorm:"column:declared_content_type" json:"declared_content_type,omitempty"`
	DeclaredSizeBytes   int64     `gorm:"column:declared_size_bytes;not null;default:0" json:"declared_size_bytes"`
	DurationSeconds     *int      `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (MediaAsset) TableName() string { return "media_asset" }

func (m *MediaAsset) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
