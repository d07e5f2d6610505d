package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// SessionDuration is how long an issued admin credential stays valid.
const SessionDuration = 7 * 24 * time.Hour

// Claims carried by an admin session token. There is a single admin
// identity, so the role claim is fixed.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed admin session tokens. The zero value is
// unusable; construct it with NewCodec.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a token codec signing with the given secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// Issue produces a signed HS256 token with the admin role claim, valid for
// SessionDuration from now.
func (c *Codec) Issue() (string, error) {
	now := c.now()
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionDuration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Verify reports whether the token carries a valid signature and has not
// expired. It is total: malformed, unsigned, expired, or wrong-secret tokens
// all yield false, never an error.
func (c *Codec) Verify(token string) bool {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		log.Debug().Err(err).Msg("session token rejected")
		return false
	}
	return parsed.Valid
}
