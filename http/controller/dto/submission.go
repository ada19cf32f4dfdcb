package dto

import "github.com/google/uuid"

// FilePayloadDTO carries one file: a display name and base64-encoded content.
type FilePayloadDTO struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content" binding:"required"`
}

type CreateSubmissionRequestDTO struct {
	Title       string                 `json:"title" binding:"required,min=1,max=255"`
	Fields      map[string]interface{} `json:"fields"`
	Attachments []FilePayloadDTO       `json:"attachments"`
}

// UpdateSubmissionRequestDTO reconciles the attachment set: removals are
// applied before additions, and each phase is all-or-nothing on its own. An
// addition failure does not restore already-removed attachments.
type UpdateSubmissionRequestDTO struct {
	Title                *string                `json:"title"`
	Fields               map[string]interface{} `json:"fields"`
	NewAttachments       []FilePayloadDTO       `json:"new_attachments"`
	RemovedAttachmentIDs []uuid.UUID            `json:"removed_attachment_ids"`
}
