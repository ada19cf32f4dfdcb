package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-form-service/entity"
)

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uuid.UUID]*entity.Submission
	attachments *fakeAttachmentRepo
	failFind    error
}

func newFakeSubmissionRepo(attachments *fakeAttachmentRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: make(map[uuid.UUID]*entity.Submission),
		attachments: attachments,
	}
}

func (r *fakeSubmissionRepo) add(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[id] = &entity.Submission{ID: id, OwnerID: uuid.New(), Title: "test"}
}

func (r *fakeSubmissionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	sub, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	return sub, nil
}

func (r *fakeSubmissionRepo) DeleteWithAttachments(ctx context.Context, id uuid.UUID) ([]entity.Attachment, error) {
	r.mu.Lock()
	delete(r.submissions, id)
	r.mu.Unlock()
	return r.attachments.DeleteByIDs(ctx, id, r.attachments.idsFor(id))
}

type fakeAttachmentRepo struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]entity.Attachment
	failCreate error
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{rows: make(map[uuid.UUID]entity.Attachment)}
}

func (r *fakeAttachmentRepo) idsFor(submissionID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, row := range r.rows {
		if row.SubmissionID == submissionID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *fakeAttachmentRepo) CreateAll(_ context.Context, attachments []*entity.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, att := range attachments {
		if _, exists := r.rows[att.ID]; exists {
			return errors.New("duplicate key")
		}
	}
	for _, att := range attachments {
		r.rows[att.ID] = *att
	}
	return nil
}

func (r *fakeAttachmentRepo) FindBySubmissionID(_ context.Context, submissionID uuid.UUID) ([]entity.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Attachment
	for _, row := range r.rows {
		if row.SubmissionID == submissionID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeAttachmentRepo) DeleteByIDs(_ context.Context, submissionID uuid.UUID, ids []uuid.UUID) ([]entity.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []entity.Attachment
	for _, id := range ids {
		row, ok := r.rows[id]
		if !ok || row.SubmissionID != submissionID {
			continue
		}
		removed = append(removed, row)
		delete(r.rows, id)
	}
	return removed, nil
}

type fakeSink struct {
	mu            sync.Mutex
	objects       map[string][]byte
	puts          int
	failPutAtCall int // fail the Nth PutObject (1-based), 0 disables
}

func newFakeSink() *fakeSink {
	return &fakeSink{objects: make(map[string][]byte)}
}

func (s *fakeSink) PutObject(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failPutAtCall != 0 && s.puts == s.failPutAtCall {
		return errors.New("sink write failure")
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeSink) GetObject(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *fakeSink) RemoveObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	failSet error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet != nil {
		return c.failSet
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []string
	failSend error
}

func (n *fakeNotifier) Send(_ context.Context, recipient, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSend != nil {
		return n.failSend
	}
	n.sent = append(n.sent, recipient+": "+message)
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
