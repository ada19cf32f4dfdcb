package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-form-service/entity"
	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// FindByID returns (nil, nil) when no submission with the given ID exists.
func (r *SubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	var submission entity.Submission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]entity.Submission, error) {
	var submissions []entity.Submission
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *SubmissionRepository) Update(ctx context.Context, submission *entity.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *SubmissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Submission{}, "id = ?", id).Error
}

// DeleteWithAttachments removes all attachment rows of the submission and
// then the submission itself in one transaction, and returns the removed
// attachment rows so the caller can clean up their content objects.
func (r *SubmissionRepository) DeleteWithAttachments(ctx context.Context, id uuid.UUID) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.Attachment{}, "submission_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Submission{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
