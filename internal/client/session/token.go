package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a persisted admin session token. The subject is
// the admin id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

const issuer = "opsdash"

// GenerateToken signs a token for s. A non-positive ttl produces a token
// without expiry.
func GenerateToken(s Session, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   issuer,
			Subject:  s.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Email: s.Email,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of token and returns the admin
// id and email it was issued for. The subject must be a uuid. Every failure
// wraps common.ErrSessionInvalid.
func ParseToken(token string, secret []byte, now time.Time) (id, email string, err error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", fmt.Errorf("%w: token expired", common.ErrSessionInvalid)
		}
		return "", "", fmt.Errorf("%w: %v", common.ErrSessionInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" || claims.Email == "" {
		return "", "", fmt.Errorf("%w: incomplete claims", common.ErrSessionInvalid)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", "", fmt.Errorf("%w: malformed subject: %v", common.ErrSessionInvalid, err)
	}
	return claims.Subject, claims.Email, nil
}
