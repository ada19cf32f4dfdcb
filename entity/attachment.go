package entity

import (
	"time"

	"github.com/google/uuid"
)

// Attachment rows are immutable after creation. Replacing a file is modeled
// as delete-then-create under a fresh ID.
type Attachment struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;index"`
	FileName     string    `json:"file_name" gorm:"type:varchar(512);not null"`
	StorageKey   string    `json:"storage_key" gorm:"type:varchar(1024);not null;uniqueIndex"`
	ContentType  string    `json:"content_type" gorm:"type:varchar(255)"`
	Size         int64     `json:"size" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
