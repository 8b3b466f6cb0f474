package triage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Errors returned by session verification.
var (
	ErrNoSession      = errors.New("no session token present")
	ErrSessionExpired = errors.New("session token expired")
	ErrWrongVault     = errors.New("session token bound to a different vault")
)

// SessionClaims are the claims carried by a vault session token.
type SessionClaims struct {
	VaultID string `json:"vault_id"`
	jwt.RegisteredClaims
}

// SessionVerifier validates vault session tokens issued by the
// authentication collaborator. Tokens are HMAC-signed; the verifier only
// needs the shared key.
type SessionVerifier struct {
	key []byte
}

// NewSessionVerifier creates a verifier using the given HMAC key.
func NewSessionVerifier(key []byte) *SessionVerifier {
	return &SessionVerifier{key: key}
}

// Verify checks that token is a currently valid session bound to vaultID.
func (s *SessionVerifier) Verify(token string, vaultID uuid.UUID) error {
	if token == "" {
		return ErrNoSession
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrSessionExpired
		}
		return fmt.Errorf("parse session token: %w", err)
	}
	if !parsed.Valid {
		return ErrSessionExpired
	}
	if claims.VaultID != vaultID.String() {
		return ErrWrongVault
	}
	return nil
}

// IssueSessionToken signs a session token for the vault, valid for ttl.
// Production tokens come from the authentication service; this issuer
// exists for tests and local development.
func IssueSessionToken(key []byte, vaultID uuid.UUID, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		VaultID: vaultID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
