package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-form-service/entity"
)

// SubmissionRepo is the row repository for submissions. FindByID returns
// (nil, nil) when the submission does not exist.
type SubmissionRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	// DeleteWithAttachments removes the submission and all its attachment
	// rows in one transaction and returns the removed attachment rows.
	DeleteWithAttachments(ctx context.Context, id uuid.UUID) ([]entity.Attachment, error)
}

// AttachmentRepo is the row repository for attachment metadata. CreateAll and
// DeleteByIDs are each transactional: either every row is written/removed or
// none is.
type AttachmentRepo interface {
	CreateAll(ctx context.Context, attachments []*entity.Attachment) error
	FindBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]entity.Attachment, error)
	// DeleteByIDs removes the rows among ids that belong to submissionID and
	// returns them. IDs that do not exist or belong elsewhere are skipped.
	DeleteByIDs(ctx context.Context, submissionID uuid.UUID, ids []uuid.UUID) ([]entity.Attachment, error)
}

// ContentSink is the durable byte store addressed by storage key.
type ContentSink interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	RemoveObject(ctx context.Context, key string) error
}

// FilePayload is one incoming file: a caller-supplied display name plus
// base64-encoded content.
type FilePayload struct {
	FileName    string
	ContentType string
	Content     string
}

// AttachmentStore owns the submission-to-attachments relationship. Writes for
// the same submission serialize on a per-submission lock; different
// submissions proceed independently. Content bytes are written before
// metadata rows and metadata rows are removed before content bytes, so a
// crash can only leave orphaned bytes, never a row without bytes.
type AttachmentStore struct {
	submissions SubmissionRepo
	attachments AttachmentRepo
	sink        ContentSink
	maxSize     int64
	locks       *keyedMutex
}

func NewAttachmentStore(submissions SubmissionRepo, attachments AttachmentRepo, sink ContentSink, maxSize int64) *AttachmentStore {
	return &AttachmentStore{
		submissions: submissions,
		attachments: attachments,
		sink:        sink,
		maxSize:     maxSize,
		locks:       newKeyedMutex(),
	}
}

// Ingest decodes every payload, stores its bytes and records a metadata row
// per file, all-or-nothing for the whole batch. Returned attachments are in
// input order with freshly assigned IDs.
func (s *AttachmentStore) Ingest(ctx context.Context, ownerID uuid.UUID, payloads []FilePayload) ([]entity.Attachment, error) {
	unlock := s.locks.Lock(ownerID.String())
	defer unlock()

	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.ingestLocked(ctx, ownerID, payloads)
}

// Reconcile applies an update to the owner's attachment set: first removes
// the rows in removedIDs (idempotent, unknown IDs are skipped), then ingests
// newPayloads. The two phases are independently all-or-nothing; an ingestion
// failure does not roll back completed removals.
func (s *AttachmentStore) Reconcile(ctx context.Context, ownerID uuid.UUID, removedIDs []uuid.UUID, newPayloads []FilePayload) ([]entity.Attachment, error) {
	unlock := s.locks.Lock(ownerID.String())
	defer unlock()

	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	if len(removedIDs) > 0 {
		removed, err := s.attachments.DeleteByIDs(ctx, ownerID, removedIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: deleting attachment rows: %v", wrapKind(err), err)
		}
		for _, att := range removed {
			if err := s.sink.RemoveObject(ctx, att.StorageKey); err != nil {
				return nil, fmt.Errorf("%w: removing content %s: %v", ErrStorageFailure, att.StorageKey, err)
			}
		}
	}

	if _, err := s.ingestLocked(ctx, ownerID, newPayloads); err != nil {
		return nil, err
	}

	result, err := s.attachments.FindBySubmissionID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing attachments: %v", ErrStorageFailure, err)
	}
	return result, nil
}

// FetchByOwner returns the owner's attachment set; empty is not an error.
func (s *AttachmentStore) FetchByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Attachment, error) {
	unlock := s.locks.RLock(ownerID.String())
	defer unlock()

	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.FindBySubmissionID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing attachments: %v", ErrStorageFailure, err)
	}
	return attachments, nil
}

// Download returns one attachment's metadata and content bytes.
func (s *AttachmentStore) Download(ctx context.Context, ownerID, attachmentID uuid.UUID) (*entity.Attachment, []byte, error) {
	unlock := s.locks.RLock(ownerID.String())
	defer unlock()

	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, nil, err
	}
	attachments, err := s.attachments.FindBySubmissionID(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: listing attachments: %v", ErrStorageFailure, err)
	}
	for i := range attachments {
		if attachments[i].ID == attachmentID {
			data, err := s.sink.GetObject(ctx, attachments[i].StorageKey)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: reading content %s: %v", ErrStorageFailure, attachments[i].StorageKey, err)
			}
			return &attachments[i], data, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: attachment %s", ErrNotFound, attachmentID)
}

// DeleteOwnerCascade removes every attachment of the owner and then the
// submission itself. Metadata rows go first in one transaction, content bytes
// second; readers observe either the full pre-delete or post-delete state.
func (s *AttachmentStore) DeleteOwnerCascade(ctx context.Context, ownerID uuid.UUID) error {
	unlock := s.locks.Lock(ownerID.String())
	defer unlock()

	if err := s.requireOwner(ctx, ownerID); err != nil {
		return err
	}
	removed, err := s.submissions.DeleteWithAttachments(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("%w: deleting submission %s: %v", ErrStorageFailure, ownerID, err)
	}
	for _, att := range removed {
		if err := s.sink.RemoveObject(ctx, att.StorageKey); err != nil {
			return fmt.Errorf("%w: removing content %s: %v", ErrStorageFailure, att.StorageKey, err)
		}
	}
	return nil
}

func (s *AttachmentStore) requireOwner(ctx context.Context, ownerID uuid.UUID) error {
	submission, err := s.submissions.FindByID(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("%w: looking up submission %s: %v", ErrStorageFailure, ownerID, err)
	}
	if submission == nil {
		return fmt.Errorf("%w: submission %s", ErrNotFound, ownerID)
	}
	return nil
}

// ingestLocked assumes the caller holds the owner's write lock and that the
// owner exists. Bytes are written before rows; on any failure every object
// written by this call is removed again.
func (s *AttachmentStore) ingestLocked(ctx context.Context, ownerID uuid.UUID, payloads []FilePayload) ([]entity.Attachment, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	// Decode and validate everything up front so a malformed payload in the
	// middle of a batch causes no side effects at all.
	contents := make([][]byte, len(payloads))
	attachments := make([]*entity.Attachment, len(payloads))
	for i, payload := range payloads {
		data, err := base64.StdEncoding.DecodeString(payload.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: payload %d (%q): %v", ErrInvalidPayload, i, payload.FileName, err)
		}
		if int64(len(data)) > s.maxSize {
			return nil, fmt.Errorf("%w: payload %d (%q) is %d bytes, limit %d", ErrPayloadTooLarge, i, payload.FileName, len(data), s.maxSize)
		}
		id := uuid.New()
		contents[i] = data
		attachments[i] = &entity.Attachment{
			ID:           id,
			SubmissionID: ownerID,
			FileName:     payload.FileName,
			// The key is derived only from server-generated IDs; the display
			// name never reaches the sink.
			StorageKey:  fmt.Sprintf("submissions/%s/%s", ownerID, id),
			ContentType: payload.ContentType,
			Size:        int64(len(data)),
		}
	}

	written := make([]string, 0, len(payloads))
	rollback := func() {
		for _, key := range written {
			_ = s.sink.RemoveObject(ctx, key)
		}
	}
	for i, att := range attachments {
		if err := s.sink.PutObject(ctx, att.StorageKey, contents[i], att.ContentType); err != nil {
			rollback()
			return nil, fmt.Errorf("%w: writing content %s: %v", ErrStorageFailure, att.StorageKey, err)
		}
		written = append(written, att.StorageKey)
	}

	if err := s.attachments.CreateAll(ctx, attachments); err != nil {
		rollback()
		return nil, fmt.Errorf("%w: creating attachment rows: %v", wrapKind(err), err)
	}

	result := make([]entity.Attachment, len(attachments))
	for i, att := range attachments {
		result[i] = *att
	}
	return result, nil
}

// wrapKind keeps an already-classified repository error (e.g. ErrConflict)
// and folds everything else into ErrStorageFailure.
func wrapKind(err error) error {
	if errors.Is(err, ErrConflict) {
		return ErrConflict
	}
	return ErrStorageFailure
}
