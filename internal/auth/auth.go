// Package auth binds clients to the game sessions they created.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "minesweeper-engine session token"

var (
	ErrNoToken         = errors.New("missing session token")
	ErrWrongSession    = errors.New("token was issued for another session")
	ErrMalformedClaims = errors.New("malformed claims")
)

type SessionClaims struct {
	SessionId string `json:"session_id"`
	jwt.RegisteredClaims
}

type Issuer struct {
	key           []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
	now           func() time.Time
}

func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("unable to derive signing key: %w", err)
	}
	return key, nil
}

// NewIssuer derives an HS256 key from secret. A zero lifetime issues tokens
// that never expire.
func NewIssuer(secret string, lifetime time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	key, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}
	return &Issuer{
		key:           key,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
		now:           time.Now,
	}, nil
}

// RandomSecret returns a fresh secret for setups that do not configure one.
// Tokens signed with it do not survive a restart.
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (i *Issuer) Issue(sessionId uuid.UUID) (string, error) {
	now := i.now()
	claims := SessionClaims{
		SessionId: sessionId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if i.tokenLifetime > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.tokenLifetime))
	}
	return jwt.NewWithClaims(i.signingMethod, claims).SignedString(i.key)
}

func (i *Issuer) keyFunc(t *jwt.Token) (interface{}, error) {
	return i.key, nil
}

func (i *Issuer) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString, &SessionClaims{}, i.keyFunc,
		jwt.WithValidMethods([]string{i.signingMethod.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

// Verify checks the signature and lifetime of the token and that it was
// issued for sessionId.
func (i *Issuer) Verify(tokenString string, sessionId uuid.UUID) (*SessionClaims, error) {
	claims, err := i.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.SessionId != sessionId.String() {
		return nil, ErrWrongSession
	}
	return claims, nil
}

// TokenFromRequest looks at the Authorization header first and falls back to
// the token query parameter, which browsers need for websockets.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return "", ErrNoToken
		}
		return strings.TrimSpace(token), nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}
