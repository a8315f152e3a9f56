package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func (m *memoryRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func newManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Secret == "" {
		opts.Secret = "test-secret"
	}
	m, err := NewManager(opts)
	require.NoError(t, err)
	return m
}

func issueCookie(t *testing.T, m *Manager, userID string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, userID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/getTasks", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func flipChar(s string, i int) string {
	replacement := byte('A')
	if s[i] == 'A' {
		replacement = 'B'
	}
	return s[:i] + string(replacement) + s[i+1:]
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(Options{Secret: "  "})
	require.Error(t, err)
}

func TestIssue_CookieFlags(t *testing.T) {
	dev := issueCookie(t, newManager(t, Options{}), "user-1")
	assert.Equal(t, CookieName, dev.Name)
	assert.True(t, dev.HttpOnly)
	assert.False(t, dev.Secure)
	assert.Equal(t, http.SameSiteLaxMode, dev.SameSite)
	assert.Equal(t, "/", dev.Path)
	assert.Equal(t, int(DefaultTTL.Seconds()), dev.MaxAge)

	prod := issueCookie(t, newManager(t, Options{Secure: true}), "user-1")
	assert.True(t, prod.HttpOnly)
	assert.True(t, prod.Secure)
	assert.Equal(t, http.SameSiteNoneMode, prod.SameSite)
}

func TestResolve_RoundTrip(t *testing.T) {
	m := newManager(t, Options{})
	cookie := issueCookie(t, m, "user-1")

	claims, err := m.Resolve(requestWith(cookie))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt, 5*time.Second)
}

func TestResolve_Rejects(t *testing.T) {
	m := newManager(t, Options{})
	cookie := issueCookie(t, m, "user-1")

	_, err := m.Resolve(requestWith(nil))
	require.ErrorIs(t, err, ErrNoSession)

	tampered := *cookie
	tampered.Value = flipChar(cookie.Value, len(cookie.Value)-10)
	_, err = m.Resolve(requestWith(&tampered))
	require.ErrorIs(t, err, ErrInvalidSession)

	other := newManager(t, Options{Secret: "another-secret"})
	_, err = other.Resolve(requestWith(cookie))
	require.ErrorIs(t, err, ErrInvalidSession)

	raw := &http.Cookie{Name: CookieName, Value: "user-1"}
	_, err = m.Resolve(requestWith(raw))
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolve_Expired(t *testing.T) {
	m := newManager(t, Options{TTL: time.Minute})
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }
	cookie := issueCookie(t, m, "user-1")

	m.now = time.Now
	_, err := m.Resolve(requestWith(cookie))
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolve_NoneAlgorithm(t *testing.T) {
	m := newManager(t, Options{})
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "abc",
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Resolve(requestWith(&http.Cookie{Name: CookieName, Value: signed}))
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestClear_RevokesToken(t *testing.T) {
	revoker := &memoryRevoker{}
	m := newManager(t, Options{Revoker: revoker})
	cookie := issueCookie(t, m, "user-1")

	rec := httptest.NewRecorder()
	require.NoError(t, m.Clear(rec, requestWith(cookie)))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, CookieName, cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Equal(t, -1, cleared[0].MaxAge)
	assert.True(t, cleared[0].HttpOnly)

	_, err := m.Resolve(requestWith(cookie))
	require.ErrorIs(t, err, ErrRevoked)
}

func TestClear_WithoutCookie(t *testing.T) {
	m := newManager(t, Options{})
	rec := httptest.NewRecorder()

	require.NoError(t, m.Clear(rec, requestWith(nil)))
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestResolve_RevokerFailure(t *testing.T) {
	revoker := &memoryRevoker{err: errors.New("redis down")}
	m := newManager(t, Options{Revoker: revoker})
	cookie := issueCookie(t, m, "user-1")

	_, err := m.Resolve(requestWith(cookie))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRevoked)
}
