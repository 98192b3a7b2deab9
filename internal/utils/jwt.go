package utils // package utils signs and verifies the browser scope token

import (
	"errors" // errors defines ErrInvalidScope
	"time"   // time computes expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // uuid generates scope identifiers
)

// ErrInvalidScope is returned for tokens that are unsigned, expired, signed
// with another key or whose subject is not a UUID.
var ErrInvalidScope = errors.New("invalid scope token")

// ScopeToken is the signed cookie value that identifies one browser.  Every
// key the browser "stores locally" lives under Scope in the key-value
// backend.  It carries no user identity.
type ScopeToken struct {
	Token string    // the serialized JWT
	Scope string    // the random scope id (the sub claim)
	Exp   time.Time // UTC expiration time
}

// NewScopeToken mints a token for a brand-new browser scope.
func NewScopeToken(secret string, ttlDays int) (ScopeToken, error) {
	return IssueScopeToken(secret, uuid.NewString(), ttlDays)
}

// IssueScopeToken signs an HS256 token for an existing scope id.
func IssueScopeToken(secret, scope string, ttlDays int) (ScopeToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   scope,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return ScopeToken{}, err
	}
	return ScopeToken{Token: signed, Scope: scope, Exp: exp}, nil
}

// ParseScopeToken verifies raw and returns its scope id.
func ParseScopeToken(secret, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// reject anything but HMAC so a forged "none" or RSA token cannot pass
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidScope
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return "", ErrInvalidScope
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidScope
	}
	return claims.Subject, nil
}
