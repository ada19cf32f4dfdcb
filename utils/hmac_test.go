package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHMACSHA256(t *testing.T) {
	t.Parallel()
	sig := ComputeHMACSHA256("secret", "message")
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, ComputeHMACSHA256("secret", "message"))
	assert.NotEqual(t, sig, ComputeHMACSHA256("other", "message"))
}

func TestSecureCompare(t *testing.T) {
	t.Parallel()
	assert.True(t, SecureCompare("123456", "123456"))
	assert.False(t, SecureCompare("123456", "123457"))
	assert.False(t, SecureCompare("123456", "12345"))
	assert.True(t, SecureCompare("", ""))
}
