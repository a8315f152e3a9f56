// Package session issues and validates the signed session cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "session"
	DefaultTTL = 24 * time.Hour
)

var (
	ErrNoSession      = errors.New("session cookie missing")
	ErrInvalidSession = errors.New("session invalid")
	ErrRevoked        = errors.New("session revoked")
)

// Revoker records logged-out token ids until they would expire anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NopRevoker never revokes anything. Logged-out tokens stay valid until expiry.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }
func (NopRevoker) IsRevoked(context.Context, string) (bool, error)  { return false, nil }

type Options struct {
	Secret string
	TTL    time.Duration
	// Secure marks the cookie Secure with SameSite=None; otherwise it is
	// sent over plain HTTP with SameSite=Lax.
	Secure  bool
	Revoker Revoker
}

// Claims is the validated content of a session token.
type Claims struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// Manager issues, resolves and clears session cookies.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoker Revoker
	now     func() time.Time
}

func NewManager(opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Revoker == nil {
		opts.Revoker = NopRevoker{}
	}
	return &Manager{
		secret:  []byte(opts.Secret),
		ttl:     opts.TTL,
		secure:  opts.Secure,
		revoker: opts.Revoker,
		now:     time.Now,
	}, nil
}

// Issue signs a new token for userID and sets it as the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("session subject is required")
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, m.cookie(token, expiresAt, int(m.ttl.Seconds())))
	return nil
}

// Resolve validates the session cookie on r.
func (m *Manager) Resolve(r *http.Request) (Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return Claims{}, ErrNoSession
	}

	claims, err := m.parse(cookie.Value)
	if err != nil {
		return Claims{}, err
	}

	revoked, err := m.revoker.IsRevoked(r.Context(), claims.TokenID)
	if err != nil {
		return Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Claims{}, ErrRevoked
	}
	return claims, nil
}

// Clear expires the session cookie and revokes the presented token when it
// is still valid. It succeeds without a cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := m.parse(cookie.Value)
	if err != nil {
		return nil
	}
	if err := m.revoker.Revoke(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (m *Manager) parse(tokenString string) (Claims, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidSession
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ID == "" {
		return Claims{}, ErrInvalidSession
	}
	return Claims{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if m.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: sameSite,
	}
}
