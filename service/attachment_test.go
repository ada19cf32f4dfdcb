package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxSize = 1024

func newTestStore() (*AttachmentStore, *fakeSubmissionRepo, *fakeAttachmentRepo, *fakeSink) {
	attachments := newFakeAttachmentRepo()
	submissions := newFakeSubmissionRepo(attachments)
	sink := newFakeSink()
	store := NewAttachmentStore(submissions, attachments, sink, testMaxSize)
	return store, submissions, attachments, sink
}

func encode(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

func TestIngestCreatesOneAttachmentPerPayload(t *testing.T) {
	t.Parallel()
	store, submissions, _, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	payloads := []FilePayload{
		{FileName: "a.txt", Content: encode("alpha")},
		{FileName: "b.txt", Content: encode("bravo")},
		{FileName: "c.txt", Content: encode("charlie")},
	}
	created, err := store.Ingest(context.Background(), owner, payloads)
	require.NoError(t, err)
	require.Len(t, created, 3)

	seen := make(map[uuid.UUID]bool)
	for i, att := range created {
		assert.Equal(t, payloads[i].FileName, att.FileName)
		assert.Equal(t, owner, att.SubmissionID)
		assert.False(t, seen[att.ID], "identifiers must be distinct")
		seen[att.ID] = true

		data, err := sink.GetObject(context.Background(), att.StorageKey)
		require.NoError(t, err)
		decoded, _ := base64.StdEncoding.DecodeString(payloads[i].Content)
		assert.Equal(t, decoded, data)
	}

	fetched, err := store.FetchByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	for _, att := range fetched {
		assert.True(t, seen[att.ID])
	}
}

func TestIngestUnknownOwner(t *testing.T) {
	t.Parallel()
	store, _, _, sink := newTestStore()

	_, err := store.Ingest(context.Background(), uuid.New(), []FilePayload{{Content: encode("x")}})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, sink.count())
}

func TestIngestInvalidPayload(t *testing.T) {
	t.Parallel()
	store, submissions, attachments, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	_, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "ok.txt", Content: encode("fine")},
		{FileName: "bad.txt", Content: "not-base64!!!"},
	})
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Zero(t, sink.count())
	rows, _ := attachments.FindBySubmissionID(context.Background(), owner)
	assert.Empty(t, rows)
}

func TestIngestPayloadTooLarge(t *testing.T) {
	t.Parallel()
	store, submissions, attachments, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	oversized := make([]byte, testMaxSize+1)
	_, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "big.bin", Content: base64.StdEncoding.EncodeToString(oversized)},
	})
	require.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Zero(t, sink.count())
	rows, _ := attachments.FindBySubmissionID(context.Background(), owner)
	assert.Empty(t, rows)
}

func TestIngestRollsBackOnSinkFailure(t *testing.T) {
	t.Parallel()
	store, submissions, attachments, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)
	sink.failPutAtCall = 3

	_, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "1", Content: encode("one")},
		{FileName: "2", Content: encode("two")},
		{FileName: "3", Content: encode("three")},
	})
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, sink.count(), "partially written objects must be removed")
	rows, _ := attachments.FindBySubmissionID(context.Background(), owner)
	assert.Empty(t, rows)
}

func TestIngestRollsBackOnRowFailure(t *testing.T) {
	t.Parallel()
	store, submissions, attachments, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)
	attachments.failCreate = errors.New("database down")

	_, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "1", Content: encode("one")},
		{FileName: "2", Content: encode("two")},
	})
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, sink.count(), "objects written before the row failure must be removed")
}

func TestReconcileRemovingUnknownIDIsNoop(t *testing.T) {
	t.Parallel()
	store, submissions, _, _ := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	existing, err := store.Ingest(context.Background(), owner, []FilePayload{{FileName: "keep", Content: encode("keep")}})
	require.NoError(t, err)

	result, err := store.Reconcile(context.Background(), owner, []uuid.UUID{uuid.New()}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, existing[0].ID, result[0].ID)
}

func TestReconcileRemovesAndAdds(t *testing.T) {
	t.Parallel()
	store, submissions, _, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	existing, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "a", Content: encode("a")},
		{FileName: "b", Content: encode("b")},
	})
	require.NoError(t, err)
	removedID := existing[0].ID
	keptID := existing[1].ID

	result, err := store.Reconcile(context.Background(), owner,
		[]uuid.UUID{removedID},
		[]FilePayload{{FileName: "c", Content: encode("c")}},
	)
	require.NoError(t, err)
	require.Len(t, result, 2)

	ids := make(map[uuid.UUID]bool)
	for _, att := range result {
		ids[att.ID] = true
	}
	assert.False(t, ids[removedID], "removed attachment must be excluded")
	assert.True(t, ids[keptID], "untouched attachment must be preserved")

	_, err = sink.GetObject(context.Background(), existing[0].StorageKey)
	assert.Error(t, err, "removed content must be gone from the sink")
}

func TestReconcileIngestFailureKeepsRemovalsInEffect(t *testing.T) {
	t.Parallel()
	store, submissions, _, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	existing, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "a", Content: encode("a")},
		{FileName: "b", Content: encode("b")},
	})
	require.NoError(t, err)

	_, err = store.Reconcile(context.Background(), owner,
		[]uuid.UUID{existing[0].ID},
		[]FilePayload{{FileName: "bad", Content: "%%%"}},
	)
	require.ErrorIs(t, err, ErrInvalidPayload)

	remaining, err := store.FetchByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, remaining, 1, "removal phase stays applied after ingest failure")
	assert.Equal(t, existing[1].ID, remaining[0].ID)
	_, err = sink.GetObject(context.Background(), existing[0].StorageKey)
	assert.Error(t, err)
}

func TestFetchByOwnerEmpty(t *testing.T) {
	t.Parallel()
	store, submissions, _, _ := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	attachments, err := store.FetchByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestFetchByOwnerUnknownOwner(t *testing.T) {
	t.Parallel()
	store, _, _, _ := newTestStore()

	_, err := store.FetchByOwner(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOwnerCascade(t *testing.T) {
	t.Parallel()
	store, submissions, _, sink := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	created, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "a", Content: encode("a")},
		{FileName: "b", Content: encode("b")},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteOwnerCascade(context.Background(), owner))

	_, err = store.FetchByOwner(context.Background(), owner)
	require.ErrorIs(t, err, ErrNotFound)
	for _, att := range created {
		_, err := sink.GetObject(context.Background(), att.StorageKey)
		assert.Error(t, err, "content for %s must be unreadable after cascade", att.StorageKey)
	}
	assert.Zero(t, sink.count())
}

func TestDownload(t *testing.T) {
	t.Parallel()
	store, submissions, _, _ := newTestStore()
	owner := uuid.New()
	submissions.add(owner)

	created, err := store.Ingest(context.Background(), owner, []FilePayload{
		{FileName: "doc.pdf", ContentType: "application/pdf", Content: encode("pdf-bytes")},
	})
	require.NoError(t, err)

	attachment, data, err := store.Download(context.Background(), owner, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", attachment.FileName)
	assert.Equal(t, []byte("pdf-bytes"), data)

	_, _, err = store.Download(context.Background(), owner, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
