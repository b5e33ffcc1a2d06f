package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)

	raw, err := tokens.Mint("phone")
	require.NoError(t, err)

	subject, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "phone", subject)
}

func TestTokens_Rejects(t *testing.T) {
	issued := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	tokens := NewTokens("s3cret", time.Hour)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Mint("phone")
	require.NoError(t, err)

	type testCase struct {
		name   string
		tokens *Tokens
		raw    string
	}

	expired := NewTokens("s3cret", time.Hour)
	expired.now = func() time.Time { return issued.Add(2 * time.Hour) }

	tests := []testCase{
		{name: "Expired", tokens: expired, raw: raw},
		{name: "WrongSecret", tokens: &Tokens{secret: []byte("other"), now: tokens.now}, raw: raw},
		{name: "Garbage", tokens: tokens, raw: "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tokens.Verify(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokens_Disabled(t *testing.T) {
	tokens := NewTokens("", time.Hour)

	assert.False(t, tokens.Enabled())

	_, err := tokens.Mint("phone")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = tokens.Verify("x")
	assert.ErrorIs(t, err, ErrNoSecret)
}
