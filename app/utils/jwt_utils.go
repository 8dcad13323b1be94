package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is written to and required in the iss claim
const TokenIssuer = "matchcore"

// JWTClaims represents the claims in the JWT token. The subject is the user id.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for userID valid for ttl
func GenerateToken(userID, secret string, ttl time.Duration) (string, error) {
	// Validate input parameters
	if userID == "" {
		return "", fmt.Errorf("user ID cannot be empty")
	}
	if secret == "" {
		return "", fmt.Errorf("signing secret cannot be empty")
	}

	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Sign the token with the secret key
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies the token and returns the user id it was issued for
func ParseToken(tokenString, secret string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token string cannot be empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("failed to parse JWT token: %w", err)
	}

	// Extract claims
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid JWT token")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("user ID is missing in JWT token")
	}
	return claims.Subject, nil
}
