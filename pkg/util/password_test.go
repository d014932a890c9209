package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "ascii", password: "password123"},
		{name: "empty", password: ""},
		{name: "exactly 72 ascii bytes", password: strings.Repeat("a", MaxPasswordBytes)},
		{name: "24 three-byte runes", password: strings.Repeat("모", 24)},
		{name: "73 ascii bytes", password: strings.Repeat("a", MaxPasswordBytes+1), wantErr: ErrPasswordTooLong},
		{name: "30 runes over 72 bytes", password: strings.Repeat("한", 30), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2a$12$"))
			assert.True(t, VerifyPassword(hash, tt.password))
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("felt-fedora-42")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"match", hash, "felt-fedora-42", true},
		{"wrong password", hash, "felt-fedora-43", false},
		{"empty password", hash, "", false},
		{"malformed hash", "not-a-hash", "felt-fedora-42", false},
		{"oversized input", hash, strings.Repeat("x", MaxPasswordBytes+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hash, tt.password))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("bucket-hat")
	require.NoError(t, err)
	second, err := HashPassword("bucket-hat")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "bucket-hat"))
	assert.True(t, VerifyPassword(second, "bucket-hat"))
}
