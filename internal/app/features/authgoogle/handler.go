// Package authgoogle implements Google OAuth login. A successful
// callback issues the same opaque session token as password login; as
// far as the rest of the service is concerned the two flows are
// indistinguishable.
package authgoogle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	loginstore "github.com/mohammad17ali/doc-flow/internal/app/store/logins"
	userstore "github.com/mohammad17ali/doc-flow/internal/app/store/users"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateTTL = 10 * time.Minute

// Handler handles Google OAuth authentication.
type Handler struct {
	Authority *auth.Authority
	Users     *userstore.Store
	Logins    *loginstore.Store
	Log       *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string
	// SuccessPath is where the browser lands after a completed login,
	// cookie already set.
	SuccessPath string

	mu     sync.Mutex
	states map[string]time.Time
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(authority *auth.Authority, users *userstore.Store, logins *loginstore.Store, clientID, clientSecret, baseURL, successPath string, logger *zap.Logger) *Handler {
	if successPath == "" {
		successPath = "/"
	}
	return &Handler{
		Authority:    authority,
		Users:        users,
		Logins:       logins,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/api/auth/google/callback",
		SuccessPath:  successPath,
		states:       make(map[string]time.Time),
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// ServeLogin handles GET /api/auth/google and redirects to Google's
// consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		http.Error(w, "google login not available", http.StatusNotFound)
		return
	}

	state, err := newState()
	if err != nil {
		h.Log.Error("generate oauth state", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.saveState(state)

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /api/auth/google/callback. Only users
// already provisioned with auth_method google may log in; there is no
// self-signup.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth error", zap.String("error", errParam))
		http.Error(w, "login cancelled", http.StatusUnauthorized)
		return
	}

	if !h.consumeState(r.URL.Query().Get("state")) {
		h.Log.Warn("invalid or expired oauth state")
		http.Error(w, "invalid state", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("oauth code exchange", zap.Error(err))
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("fetch google user info", zap.Error(err))
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctxTimeout, googleUser.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.Log.Info("google oauth: no account", zap.String("email", googleUser.Email))
		} else {
			h.Log.Error("google oauth: user lookup", zap.Error(err))
		}
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}
	if u.AuthMethod != models.LoginMethodGoogle || u.Status == models.StatusDisabled {
		h.Log.Info("google oauth: account not eligible",
			zap.String("email", googleUser.Email),
			zap.String("auth_method", u.AuthMethod))
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	sess, principal, err := h.Authority.Issue(ctx, u.ID.Hex())
	if err != nil {
		h.Log.Error("issue session", zap.Error(err))
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	if h.Logins != nil {
		if _, err := h.Logins.Record(ctxTimeout, u.ID, models.LoginMethodGoogle, r.RemoteAddr, r.UserAgent(), sess.ExpiresAt); err != nil {
			h.Log.Warn("record login", zap.Error(err), zap.String("user_id", principal.UserID))
		}
	}

	if err := h.Authority.WriteCookie(w, r, sess.Token); err != nil {
		h.Log.Error("write session cookie", zap.Error(err))
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.Log.Info("user logged in via google oauth", zap.String("user_id", principal.UserID))
	http.Redirect(w, r, h.SuccessPath, http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

func (h *Handler) saveState(state string) {
	now := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()
	for s, exp := range h.states {
		if now.After(exp) {
			delete(h.states, s)
		}
	}
	h.states[state] = now.Add(stateTTL)
}

// consumeState validates and single-uses a state value.
func (h *Handler) consumeState(state string) bool {
	if state == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	exp, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return time.Now().Before(exp)
}

func newState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", fmt.Errorf("state generation failed")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
