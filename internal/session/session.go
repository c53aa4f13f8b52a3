// internal/session/session.go
// Package session implements the authentication gate for the gallery:
// a single shared password and HMAC-signed bearer tokens carried in a
// cookie. Tokens are validated for signature and expiry on every
// protected call; there is no server-side session state.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// CookieName is the session cookie carried by the gallery client.
const CookieName = "family-vhs-auth"

// tokenTTL is how long an issued session stays valid.
const tokenTTL = 7 * 24 * time.Hour

const tokenIssuer = "familyvhs-gallery"

// Authentication failures are deliberately indistinguishable to callers;
// handlers map both to the same client-visible outcome.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Authenticator verifies the shared password and mints/validates session tokens.
type Authenticator struct {
	passwordHash [32]byte
	configured   bool
	signingKey   []byte
	secure       bool
	now          func() time.Time
}

// New creates an Authenticator. An empty password leaves the gate closed:
// every Verify call fails. An empty signing secret falls back to a random
// per-process key, which means sessions do not survive a restart.
func New(password, signingSecret string, secure bool) *Authenticator {
	a := &Authenticator{
		configured: password != "",
		secure:     secure,
		now:        time.Now,
	}
	if a.configured {
		a.passwordHash = sha256.Sum256([]byte(password))
	} else {
		slog.Error("site password is not configured, all authentication attempts will fail")
	}

	if signingSecret != "" {
		a.signingKey = []byte(signingSecret)
	} else {
		a.signingKey = make([]byte, 32)
		if _, err := rand.Read(a.signingKey); err != nil {
			// crypto/rand never fails on supported platforms
			panic(fmt.Sprintf("failed to generate session signing key: %v", err))
		}
		slog.Warn("no session secret configured, sessions will not survive restarts")
	}
	return a
}

// Verify compares a submitted credential against the configured secret.
// An unconfigured secret fails closed and is indistinguishable from a
// wrong password.
func (a *Authenticator) Verify(password string) error {
	if !a.configured {
		return ErrInvalidCredential
	}
	submitted := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(submitted[:], a.passwordHash[:]) != 1 {
		return ErrInvalidCredential
	}
	return nil
}

// Issue mints a fresh signed session token with a 7-day expiry. Every
// token carries a distinct ULID so repeated logins never collide.
func (a *Authenticator) Issue() (string, error) {
	now := a.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	claims := jwt.RegisteredClaims{
		ID:        id.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Check validates a presented token's signature and expiry.
func (a *Authenticator) Check(token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingKey, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return ErrUnauthorized
	}
	return nil
}

// CheckRequest validates the session cookie of an incoming request.
func (a *Authenticator) CheckRequest(r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ErrUnauthorized
	}
	return a.Check(cookie.Value)
}

// NewCookie wraps an issued token in the session cookie. HttpOnly and
// SameSite=Strict always; Secure outside dev so local HTTP still works.
func (a *Authenticator) NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(tokenTTL.Seconds()),
	}
}

// ClearCookie produces the logout cookie. A token copied elsewhere stays
// valid until expiry; there is no server-side revocation list.
func (a *Authenticator) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	}
}
