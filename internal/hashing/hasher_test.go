package hashing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-service/internal/config"
)

func newTestHasher() *Hasher {
	// Low-cost parameters so tests stay fast
	return NewHasher(&config.Config{
		Hashing: config.HashingConfig{
			Argon2MemoryCost:   8192,
			Argon2TimeCost:     1,
			Argon2Parallelism:  1,
			PepperRotationDays: 90,
		},
	})
}

func TestPseudonymizeIdentityDeterministic(t *testing.T) {
	h := newTestHasher()

	tok := h.PseudonymizeIdentity("EMP-0042")
	require.True(t, strings.HasPrefix(tok, "emp-"))
	require.Equal(t, tok, h.PseudonymizeIdentity("EMP-0042"))
	assert.NotEqual(t, tok, h.PseudonymizeIdentity("EMP-0043"))
}

func TestPseudonymizeIdentityChangesAcrossRotation(t *testing.T) {
	h := newTestHasher()

	before := h.PseudonymizeIdentity("EMP-0042")
	h.rotatePepper()
	assert.NotEqual(t, before, h.PseudonymizeIdentity("EMP-0042"))
}

func TestHashAndVerifyIdentity(t *testing.T) {
	h := newTestHasher()

	result, err := h.HashIdentity("EMP-0042")
	require.NoError(t, err)
	require.Equal(t, "argon2id-v1", result.Algorithm)
	require.NotEmpty(t, result.Salt)

	ok, err := h.VerifyIdentity("EMP-0042", result)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyIdentity("EMP-0043", result)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyIdentityAfterRotation(t *testing.T) {
	h := newTestHasher()

	result, err := h.HashIdentity("EMP-0042")
	require.NoError(t, err)

	// Old pepper versions remain usable for stored hashes
	h.rotatePepper()
	ok, err := h.VerifyIdentity("EMP-0042", result)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyIdentityUnknownPepperVersion(t *testing.T) {
	h := newTestHasher()

	result, err := h.HashIdentity("EMP-0042")
	require.NoError(t, err)
	result.PepperVersion = 99

	_, err = h.VerifyIdentity("EMP-0042", result)
	assert.Error(t, err)
}

func TestVerifyIdentityMalformedHash(t *testing.T) {
	h := newTestHasher()

	result, err := h.HashIdentity("EMP-0042")
	require.NoError(t, err)
	result.Salt = "not base64!!"

	_, err = h.VerifyIdentity("EMP-0042", result)
	assert.ErrorIs(t, err, ErrInvalidHash)
}
