package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExpiry = 5 * time.Minute

func newTestOtpManager() (*OtpManager, *fakeCache, *fakeNotifier) {
	cache := newFakeCache()
	notifier := &fakeNotifier{}
	manager := NewOtpManager(cache, notifier, testExpiry)
	return manager, cache, notifier
}

func TestIssueAndVerifyOnce(t *testing.T) {
	t.Parallel()
	manager, _, notifier := newTestOtpManager()
	ctx := context.Background()

	code, err := manager.Issue(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.sentCount())

	require.NoError(t, manager.Verify(ctx, "+15551234567", code))

	// Consumed: the same correct code must not validate twice.
	err = manager.Verify(ctx, "+15551234567", code)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyWrongCodeDoesNotConsume(t *testing.T) {
	t.Parallel()
	manager, _, _ := newTestOtpManager()
	ctx := context.Background()

	code, err := manager.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = manager.Verify(ctx, "user@example.com", wrong)
	require.ErrorIs(t, err, ErrMismatch)

	require.NoError(t, manager.Verify(ctx, "user@example.com", code))
}

func TestVerifyNeverIssued(t *testing.T) {
	t.Parallel()
	manager, _, _ := newTestOtpManager()

	err := manager.Verify(context.Background(), "+15550000000", "123456")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()
	manager, _, _ := newTestOtpManager()
	ctx := context.Background()

	issued := time.Now()
	manager.now = func() time.Time { return issued }

	code, err := manager.Issue(ctx, "+15551112222")
	require.NoError(t, err)

	manager.now = func() time.Time { return issued.Add(testExpiry + time.Second) }

	err = manager.Verify(ctx, "+15551112222", code)
	require.ErrorIs(t, err, ErrExpired)

	// Lazy cleanup: the expired record is gone.
	err = manager.Verify(ctx, "+15551112222", code)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReissueSupersedesPriorCode(t *testing.T) {
	t.Parallel()
	manager, _, _ := newTestOtpManager()
	ctx := context.Background()

	first, err := manager.Issue(ctx, "+15553334444")
	require.NoError(t, err)
	second, err := manager.Issue(ctx, "+15553334444")
	require.NoError(t, err)

	if first != second {
		err = manager.Verify(ctx, "+15553334444", first)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrMismatch) || errors.Is(err, ErrNotFound))
	}
	require.NoError(t, manager.Verify(ctx, "+15553334444", second))
}

func TestIssueDeliveryFailureKeepsRecord(t *testing.T) {
	t.Parallel()
	manager, _, notifier := newTestOtpManager()
	ctx := context.Background()
	notifier.failSend = errors.New("gateway timeout")

	code, err := manager.Issue(ctx, "+15556667777")
	require.ErrorIs(t, err, ErrDeliveryFailed)
	require.NotEmpty(t, code, "the issued code is returned so delivery can be retried")

	// The record stays issued despite the dispatch failure.
	require.NoError(t, manager.Verify(ctx, "+15556667777", code))
}

func TestIssueStorageFailure(t *testing.T) {
	t.Parallel()
	manager, cache, notifier := newTestOtpManager()
	cache.failSet = errors.New("redis down")

	_, err := manager.Issue(context.Background(), "+15558889999")
	require.ErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, notifier.sentCount(), "nothing is dispatched if the record cannot be stored")
}

func TestGeneratedCodeShape(t *testing.T) {
	t.Parallel()
	pattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.True(t, pattern.MatchString(code), "code %q must be 6 digits without a leading zero", code)
	}
}

func TestManagersAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	managerA, _, _ := newTestOtpManager()
	managerB, _, _ := newTestOtpManager()

	code, err := managerA.Issue(ctx, "+15550001111")
	require.NoError(t, err)

	err = managerB.Verify(ctx, "+15550001111", code)
	require.ErrorIs(t, err, ErrNotFound)
}
