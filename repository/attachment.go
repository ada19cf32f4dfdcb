package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-form-service/entity"
	"github.com/tnqbao/gau-form-service/service"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// CreateAll inserts every row in one transaction. A duplicate identifier is
// reported as service.ErrConflict.
func (r *AttachmentRepository) CreateAll(ctx context.Context, attachments []*entity.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, attachment := range attachments {
			if err := tx.Create(attachment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: duplicate attachment identifier: %v", service.ErrConflict, err)
		}
		return err
	}
	return nil
}

func (r *AttachmentRepository) FindBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Order("created_at ASC").Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// DeleteByIDs removes the rows among ids that belong to submissionID and
// returns them. IDs that are unknown or owned by another submission are
// skipped, so resending a removal is a no-op.
func (r *AttachmentRepository) DeleteByIDs(ctx context.Context, submissionID uuid.UUID, ids []uuid.UUID) ([]entity.Attachment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ? AND id IN ?", submissionID, ids).Find(&attachments).Error; err != nil {
			return err
		}
		if len(attachments) == 0 {
			return nil
		}
		return tx.Delete(&entity.Attachment{}, "submission_id = ? AND id IN ?", submissionID, ids).Error
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
