package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Externally visible failure kinds. All invalid-session conditions
// (unknown token, expired, revoked) collapse into ErrSessionInvalid;
// all credential failures collapse into ErrInvalidCredentials so the
// caller cannot tell an unknown user from a wrong password.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid")
)

// DefaultSessionTTL is the fixed validity window of an issued token.
// Sessions expire this long after issuance regardless of use; there is
// no sliding expiry.
const DefaultSessionTTL = 24 * time.Hour

const tokenCookieKey = "token"

// Fetcher supplies user data from the backing store. Implemented by
// the user store so the authority itself never touches MongoDB.
type Fetcher interface {
	// VerifyPassword checks credentials and returns the user's hex ID.
	// It must return ErrInvalidCredentials for unknown users, wrong
	// passwords, and disabled accounts alike.
	VerifyPassword(ctx context.Context, email, password string) (string, error)

	// FetchPrincipal loads a fresh principal for the user, or nil if
	// the user no longer exists or is disabled. Fetching fresh data on
	// every validation means role and membership changes take effect
	// immediately instead of at next login.
	FetchPrincipal(ctx context.Context, userID string) *Principal
}

// Session is one issued login token and its fixed validity window.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authority owns the session table: it issues, validates, and expires
// opaque session tokens. The table is the only mutable shared state in
// the access-control core; an RWMutex keeps validation of unrelated
// tokens from blocking one another.
type Authority struct {
	mu       sync.RWMutex
	sessions map[string]Session

	fetcher    Fetcher
	ttl        time.Duration
	now        func() time.Time
	log        *zap.Logger
	cookies    *sessions.CookieStore
	cookieName string
}

// NewAuthority builds a session authority. sessionKey signs the
// browser cookie fallback; ttl <= 0 selects DefaultSessionTTL. The
// `secure` flag controls cookie Secure/SameSite, as in production
// behind HTTPS.
func NewAuthority(fetcher Fetcher, sessionKey, cookieName, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*Authority, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	return &Authority{
		sessions:   make(map[string]Session),
		fetcher:    fetcher,
		ttl:        ttl,
		now:        time.Now,
		log:        logger,
		cookies:    store,
		cookieName: cookieName,
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
|  Lifecycle: login → validate → logout                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Login verifies credentials and issues a new session. The returned
// error is ErrInvalidCredentials for every credential failure.
func (a *Authority) Login(ctx context.Context, email, password string) (Session, *Principal, error) {
	userID, err := a.fetcher.VerifyPassword(ctx, email, password)
	if err != nil {
		return Session{}, nil, err
	}
	return a.Issue(ctx, userID)
}

// Issue creates a session for an already-authenticated user. Used by
// Login and by the OAuth callback, which verify identity differently
// but share token issuance.
func (a *Authority) Issue(ctx context.Context, userID string) (Session, *Principal, error) {
	p := a.fetcher.FetchPrincipal(ctx, userID)
	if p == nil {
		return Session{}, nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return Session{}, nil, err
	}

	now := a.now().UTC()
	sess := Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}

	a.mu.Lock()
	a.sessions[token] = sess
	a.mu.Unlock()

	a.log.Info("session issued",
		zap.String("user_id", userID),
		zap.Time("expires_at", sess.ExpiresAt))
	return sess, p, nil
}

// Validate resolves a token to a fresh principal. It fails with
// ErrSessionInvalid when the token is unknown or past its expiry;
// expired rows are deleted lazily here even before the janitor runs.
// Validation never slides the expiry.
func (a *Authority) Validate(ctx context.Context, token string) (*Principal, error) {
	a.mu.RLock()
	sess, ok := a.sessions[token]
	a.mu.RUnlock()
	if !ok {
		return nil, ErrSessionInvalid
	}

	if a.now().UTC().After(sess.ExpiresAt) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return nil, ErrSessionInvalid
	}

	p := a.fetcher.FetchPrincipal(ctx, sess.UserID)
	if p == nil {
		// User deleted or disabled since login; the session dies with it.
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return nil, ErrSessionInvalid
	}
	return p, nil
}

// Logout deletes the session if present and no-ops otherwise. Logging
// out an unknown or already-expired token is not an error.
func (a *Authority) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped.
func (a *Authority) Sweep() int {
	now := a.now().UTC()
	a.mu.Lock()
	defer a.mu.Unlock()

	dropped := 0
	for token, sess := range a.sessions {
		if now.After(sess.ExpiresAt) {
			delete(a.sessions, token)
			dropped++
		}
	}
	return dropped
}

// SweepEvery runs Sweep on a ticker until ctx is canceled. Started
// once from bootstrap; expiry correctness does not depend on it since
// Validate checks expiry itself.
func (a *Authority) SweepEvery(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := a.Sweep(); n > 0 {
					a.log.Debug("swept expired sessions", zap.Int("count", n))
				}
			}
		}
	}()
}

/*─────────────────────────────────────────────────────────────────────────────*
|  Token transport                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// TokenFromRequest extracts the session token: the Authorization
// bearer header wins; the signed browser cookie is the fallback for
// same-origin frontend requests.
func (a *Authority) TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}

	sess, err := a.cookies.Get(r, a.cookieName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenCookieKey].(string)
	return token
}

// WriteCookie stores the token in the signed session cookie so browser
// clients stay logged in without managing the bearer header.
func (a *Authority) WriteCookie(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := a.cookies.Get(r, a.cookieName)
	sess.Values[tokenCookieKey] = token
	return sess.Save(r, w)
}

// ClearCookie expires the session cookie.
func (a *Authority) ClearCookie(w http.ResponseWriter, r *http.Request) {
	sess, _ := a.cookies.Get(r, a.cookieName)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// newToken generates an opaque session token with 256 bits of entropy.
func newToken() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", fmt.Errorf("session token generation failed")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
