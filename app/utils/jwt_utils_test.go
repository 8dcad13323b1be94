package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-42", "s3cret", time.Hour)
	require.NoError(t, err)

	userID, err := ParseToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateToken("user-42", "s3cret", time.Hour)
	require.NoError(t, err)

	expired, err := GenerateToken("user-42", "s3cret", -time.Minute)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	foreignToken, err := foreign.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]struct {
		token  string
		secret string
	}{
		"empty":        {token: "", secret: "s3cret"},
		"garbage":      {token: "not-a-jwt", secret: "s3cret"},
		"wrong secret": {token: valid, secret: "other"},
		"expired":      {token: expired, secret: "s3cret"},
		"wrong issuer": {token: foreignToken, secret: "s3cret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.token, tc.secret)
			assert.Error(t, err)
		})
	}
}

func TestGenerateTokenValidatesInput(t *testing.T) {
	_, err := GenerateToken("", "s3cret", time.Hour)
	assert.Error(t, err)

	_, err = GenerateToken("user-42", "", time.Hour)
	assert.Error(t, err)
}
