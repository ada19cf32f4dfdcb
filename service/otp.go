package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/tnqbao/gau-form-service/utils"
)

// OtpRecord is the cached challenge for one recipient. Validity is decided by
// comparing IssuedAt+TTL against the clock, never by cache eviction, so an
// expired-but-present record is distinguishable from an absent one.
type OtpRecord struct {
	Code     string        `json:"code"`
	IssuedAt time.Time     `json:"issued_at"`
	TTL      time.Duration `json:"ttl"`
}

// OtpCache is a keyed cache with per-entry expiry. GetJSON reports a miss as
// (false, nil).
type OtpCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Notifier dispatches a message to a recipient address, fire-and-report.
type Notifier interface {
	Send(ctx context.Context, recipient, message string) error
}

// OtpManager owns the single mutable challenge slot per recipient. Issue and
// Verify for the same recipient are mutually exclusive; different recipients
// are independent. Each manager instance has its own lock table, so tests can
// run isolated managers side by side.
type OtpManager struct {
	cache    OtpCache
	notifier Notifier
	expiry   time.Duration
	locks    *keyedMutex
	now      func() time.Time
}

func NewOtpManager(cache OtpCache, notifier Notifier, expiry time.Duration) *OtpManager {
	return &OtpManager{
		cache:    cache,
		notifier: notifier,
		expiry:   expiry,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// Issue generates a fresh 6-digit code for the recipient, superseding any
// prior record whether or not it was consumed, then dispatches it through the
// notifier. On dispatch failure the code is returned together with
// ErrDeliveryFailed: the record stays issued so the caller can retry delivery
// without regenerating.
func (m *OtpManager) Issue(ctx context.Context, recipient string) (string, error) {
	unlock := m.locks.Lock(recipient)
	defer unlock()

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("%w: generating code: %v", ErrStorageFailure, err)
	}
	record := OtpRecord{
		Code:     code,
		IssuedAt: m.now(),
		TTL:      m.expiry,
	}
	// Retain past the validity window so Verify can still classify the
	// record as expired instead of absent.
	if err := m.cache.Set(ctx, otpKey(recipient), record, 2*m.expiry); err != nil {
		return "", fmt.Errorf("%w: storing record: %v", ErrStorageFailure, err)
	}

	message := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(m.expiry.Minutes()))
	if err := m.notifier.Send(ctx, recipient, message); err != nil {
		return code, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return code, nil
}

// Verify consumes the recipient's challenge on an exact match within the
// validity window. An expired record is deleted as a side effect of the
// failed check; a mismatch leaves the record in place.
func (m *OtpManager) Verify(ctx context.Context, recipient, submittedCode string) error {
	unlock := m.locks.Lock(recipient)
	defer unlock()

	var record OtpRecord
	found, err := m.cache.GetJSON(ctx, otpKey(recipient), &record)
	if err != nil {
		return fmt.Errorf("%w: reading record: %v", ErrStorageFailure, err)
	}
	if !found {
		return fmt.Errorf("%w: no challenge for recipient", ErrNotFound)
	}

	if m.now().After(record.IssuedAt.Add(record.TTL)) {
		if err := m.cache.Delete(ctx, otpKey(recipient)); err != nil {
			return fmt.Errorf("%w: evicting expired record: %v", ErrStorageFailure, err)
		}
		return fmt.Errorf("%w: challenge expired", ErrExpired)
	}

	if !utils.SecureCompare(record.Code, submittedCode) {
		return fmt.Errorf("%w: submitted code does not match", ErrMismatch)
	}

	// Single use: the record must be gone before success is reported.
	if err := m.cache.Delete(ctx, otpKey(recipient)); err != nil {
		return fmt.Errorf("%w: consuming record: %v", ErrStorageFailure, err)
	}
	return nil
}

func otpKey(recipient string) string {
	return "otp:" + recipient
}

// generateCode draws a uniform 6-digit code from [100000, 999999]; no leading
// zeros, so the width survives any numeric round trip.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
