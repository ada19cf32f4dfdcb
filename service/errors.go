package service

import "errors"

// Failure kinds returned by the attachment store and the OTP manager. Callers
// classify with errors.Is; the HTTP layer maps each kind to a status code.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrConflict        = errors.New("conflict")
	ErrDeliveryFailed  = errors.New("delivery failed")
	ErrExpired         = errors.New("expired")
	ErrMismatch        = errors.New("code mismatch")
	ErrStorageFailure  = errors.New("storage failure")
)
