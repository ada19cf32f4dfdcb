package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// ComputeHMACSHA256 computes HMAC-SHA256 over message and returns the
// hex-encoded signature (64 characters). Used to sign notification payloads
// so downstream delivery workers can verify their origin.
func ComputeHMACSHA256(secretKey, message string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// SecureCompare performs constant-time string comparison. This MUST be used
// when comparing signatures or one-time codes.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
