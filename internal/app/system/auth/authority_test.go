package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubFetcher serves a fixed set of users without a database.
type stubFetcher struct {
	users map[string]*Principal // userID -> principal
	creds map[string]string     // email -> userID (password "correct" always)
}

func (f *stubFetcher) VerifyPassword(_ context.Context, email, password string) (string, error) {
	userID, ok := f.creds[email]
	if !ok || password != "correct" {
		return "", ErrInvalidCredentials
	}
	return userID, nil
}

func (f *stubFetcher) FetchPrincipal(_ context.Context, userID string) *Principal {
	return f.users[userID]
}

func newTestAuthority(t *testing.T) (*Authority, *stubFetcher) {
	t.Helper()
	fetcher := &stubFetcher{
		users: map[string]*Principal{
			"u1": {UserID: "u1", Name: "Alice", Email: "alice@example.com", Role: "user", GroupIDs: []string{"g1"}},
			"u2": {UserID: "u2", Name: "Root", Email: "root@example.com", Role: "admin"},
		},
		creds: map[string]string{
			"alice@example.com": "u1",
			"root@example.com":  "u2",
		},
	}
	a, err := NewAuthority(fetcher, "test-session-key-for-testing-only", "docflow-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAuthority failed: %v", err)
	}
	return a, fetcher
}

func TestLogin_Success(t *testing.T) {
	a, _ := newTestAuthority(t)

	sess, p, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected non-empty token")
	}
	if sess.UserID != "u1" {
		t.Errorf("UserID: got %q, want %q", sess.UserID, "u1")
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != 24*time.Hour {
		t.Errorf("validity window: got %v, want 24h", got)
	}
	if p == nil || p.Name != "Alice" {
		t.Errorf("principal: got %+v", p)
	}
}

func TestLogin_InvalidCredentials_Indistinguishable(t *testing.T) {
	a, _ := newTestAuthority(t)

	// Unknown user and wrong password must yield the identical error.
	_, _, errUnknown := a.Login(context.Background(), "nobody@example.com", "correct")
	_, _, errWrongPw := a.Login(context.Background(), "alice@example.com", "wrong")

	if errUnknown != ErrInvalidCredentials {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", errUnknown)
	}
	if errWrongPw != ErrInvalidCredentials {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", errWrongPw)
	}
}

func TestLogin_TokensUnique(t *testing.T) {
	a, _ := newTestAuthority(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if seen[sess.Token] {
			t.Fatalf("duplicate token issued: %q", sess.Token)
		}
		seen[sess.Token] = true
	}
}

func TestValidate_Idempotent(t *testing.T) {
	a, _ := newTestAuthority(t)

	sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	p1, err := a.Validate(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("first Validate failed: %v", err)
	}
	p2, err := a.Validate(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}
	if p1.UserID != p2.UserID || p1.Role != p2.Role {
		t.Errorf("principals differ between validations: %+v vs %+v", p1, p2)
	}
}

func TestValidate_UnknownToken(t *testing.T) {
	a, _ := newTestAuthority(t)

	if _, err := a.Validate(context.Background(), "never-issued"); err != ErrSessionInvalid {
		t.Errorf("got %v, want ErrSessionInvalid", err)
	}
}

func TestValidate_ExpiredBeforeSweep(t *testing.T) {
	a, _ := newTestAuthority(t)

	sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Advance the clock past the window without sweeping; the row is
	// still in the table but must validate as invalid.
	a.now = func() time.Time { return sess.ExpiresAt.Add(time.Second) }

	if _, err := a.Validate(context.Background(), sess.Token); err != ErrSessionInvalid {
		t.Errorf("got %v, want ErrSessionInvalid after expiry", err)
	}
	// And the lazy delete means a second attempt fails the same way.
	if _, err := a.Validate(context.Background(), sess.Token); err != ErrSessionInvalid {
		t.Errorf("second validate: got %v, want ErrSessionInvalid", err)
	}
}

func TestValidate_NoSlidingExpiry(t *testing.T) {
	a, _ := newTestAuthority(t)

	sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Validate close to expiry, then step past it: the earlier use must
	// not have extended the window.
	a.now = func() time.Time { return sess.ExpiresAt.Add(-time.Minute) }
	if _, err := a.Validate(context.Background(), sess.Token); err != nil {
		t.Fatalf("Validate before expiry failed: %v", err)
	}

	a.now = func() time.Time { return sess.ExpiresAt.Add(time.Minute) }
	if _, err := a.Validate(context.Background(), sess.Token); err != ErrSessionInvalid {
		t.Errorf("got %v, want ErrSessionInvalid (expiry must not slide)", err)
	}
}

func TestValidate_DisabledUserKillsSession(t *testing.T) {
	a, fetcher := newTestAuthority(t)

	sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	delete(fetcher.users, "u1") // account disabled/deleted after login

	if _, err := a.Validate(context.Background(), sess.Token); err != ErrSessionInvalid {
		t.Errorf("got %v, want ErrSessionInvalid for disabled user", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	a, _ := newTestAuthority(t)

	sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	a.Logout(sess.Token)
	if _, err := a.Validate(context.Background(), sess.Token); err != ErrSessionInvalid {
		t.Errorf("got %v, want ErrSessionInvalid after logout", err)
	}

	// Logging out again, or logging out garbage, must not panic or err.
	a.Logout(sess.Token)
	a.Logout("nonexistent-token")
}

func TestSweep_DropsOnlyExpired(t *testing.T) {
	a, _ := newTestAuthority(t)

	s1, _, _ := a.Login(context.Background(), "alice@example.com", "correct")
	s2, _, _ := a.Login(context.Background(), "root@example.com", "correct")

	// Expire s1 only by rewriting its window.
	a.mu.Lock()
	row := a.sessions[s1.Token]
	row.ExpiresAt = a.now().UTC().Add(-time.Hour)
	a.sessions[s1.Token] = row
	a.mu.Unlock()

	if n := a.Sweep(); n != 1 {
		t.Errorf("Sweep dropped %d sessions, want 1", n)
	}
	if _, err := a.Validate(context.Background(), s2.Token); err != nil {
		t.Errorf("live session swept: %v", err)
	}
}

func TestTokenFromRequest_BearerHeader(t *testing.T) {
	a, _ := newTestAuthority(t)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := a.TokenFromRequest(r); got != "abc123" {
		t.Errorf("got %q, want %q", got, "abc123")
	}

	// A non-bearer Authorization header yields no token rather than
	// falling through to the cookie.
	r2 := httptest.NewRequest("GET", "/", nil)
	r2.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	if got := a.TokenFromRequest(r2); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestTokenFromRequest_CookieFallback(t *testing.T) {
	a, _ := newTestAuthority(t)

	// Write the cookie in one exchange, replay it in the next.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	if err := a.WriteCookie(w, r, "cookie-token"); err != nil {
		t.Fatalf("WriteCookie failed: %v", err)
	}

	r2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r2.AddCookie(c)
	}
	if got := a.TokenFromRequest(r2); got != "cookie-token" {
		t.Errorf("got %q, want %q", got, "cookie-token")
	}
}

func TestMiddleware_RequireSignedIn(t *testing.T) {
	a, _ := newTestAuthority(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := a.LoadPrincipal(a.RequireSignedIn(next))

	// No token → 401.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}

	// Valid bearer token → 200.
	sess, _, err := a.Login(context.Background(), "alice@example.com", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want 200", rec.Code)
	}
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	a, _ := newTestAuthority(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := a.LoadPrincipal(a.RequireAdmin(next))

	userSess, _, _ := a.Login(context.Background(), "alice@example.com", "correct")
	adminSess, _, _ := a.Login(context.Background(), "root@example.com", "correct")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+userSess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: got %d, want 403", rec.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminSess.Token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: got %d, want 200", rec.Code)
	}
}
