package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Submission struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title     string         `json:"title" gorm:"type:varchar(255);not null"`
	Fields    datatypes.JSON `json:"fields" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	// Cascade delete is performed explicitly by the repository, not by a
	// database constraint, so deletion ordering stays under our control.
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:SubmissionID"`
}
