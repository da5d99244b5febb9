package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	stored, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{128}:[0-9a-f]{32}$`, stored)

	ok, err := VerifyPassword("correct horse", stored)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", stored)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, stored := range []string{"", "nocolon", "zz:00", "00:zz", ":00"} {
		_, err := VerifyPassword("pw", stored)
		assert.ErrorIs(t, err, ErrBadHash, stored)
	}
}

func TestPasswordChecker(t *testing.T) {
	stored, err := HashPassword("from-hash")
	require.NoError(t, err)

	tests := []struct {
		name     string
		checker  PasswordChecker
		password string
		want     bool
	}{
		{name: "hash match", checker: PasswordChecker{Hash: stored}, password: "from-hash", want: true},
		{name: "hash wins over plain", checker: PasswordChecker{Hash: stored, Plain: "plain"}, password: "plain", want: false},
		{name: "plain match", checker: PasswordChecker{Plain: "plain"}, password: "plain", want: true},
		{name: "plain mismatch", checker: PasswordChecker{Plain: "plain"}, password: "Plain", want: false},
		{name: "nothing configured", checker: PasswordChecker{}, password: "", want: false},
		{name: "empty password", checker: PasswordChecker{Plain: "plain"}, password: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.checker.Check(tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokens_SignVerify(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	tok, err := tokens.Sign()
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	_, err = NewTokens("other", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	tok, err := tokens.Sign()
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_NoSecret(t *testing.T) {
	tokens := NewTokens("", 0)
	assert.Equal(t, 24*time.Hour, tokens.TTL())

	_, err := tokens.Sign()
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = tokens.Verify("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckBearer(t *testing.T) {
	assert.True(t, CheckBearer("Bearer s3cret", "s3cret"))
	assert.False(t, CheckBearer("Bearer wrong", "s3cret"))
	assert.False(t, CheckBearer("s3cret", "s3cret"))
	assert.False(t, CheckBearer("bearer s3cret", "s3cret"))
	assert.False(t, CheckBearer("Bearer ", ""))
	assert.False(t, CheckBearer("", ""))
}
