// Package jwt implements generation and parsing of the service's bearer
// tokens with custom claims carrying the user identity and role.
package jwt

import (
	"time"
)

// Maker describes token generation and parsing.
type Maker interface {
	// GenerateToken issues a signed token for the given user.
	GenerateToken(userUID, email, role string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HS256 secret key and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
