package logout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohammad17ali/doc-flow/internal/app/features/logout"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"go.uber.org/zap"
)

type stubFetcher struct{}

func (stubFetcher) VerifyPassword(_ context.Context, email, password string) (string, error) {
	if email == "alice@example.com" && password == "pw" {
		return "64b0c0ffee0000000000a11c", nil
	}
	return "", auth.ErrInvalidCredentials
}

func (stubFetcher) FetchPrincipal(_ context.Context, userID string) *auth.Principal {
	return &auth.Principal{UserID: userID, Email: "alice@example.com", Role: "user"}
}

func newAuthority(t *testing.T) *auth.Authority {
	t.Helper()
	a, err := auth.NewAuthority(stubFetcher{}, "0123456789abcdef0123456789abcdef", "df_session", "", auth.DefaultSessionTTL, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAuthority: %v", err)
	}
	return a
}

func TestServeLogout_KillsSession(t *testing.T) {
	authority := newAuthority(t)
	h := logout.NewHandler(authority, zap.NewNop())

	sess, _, err := authority.Login(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, err := authority.Validate(context.Background(), sess.Token); err == nil {
		t.Error("token still validates after logout")
	}
}

func TestServeLogout_Idempotent(t *testing.T) {
	h := logout.NewHandler(newAuthority(t), zap.NewNop())

	for _, header := range []string{"", "Bearer never-issued-token"} {
		req := httptest.NewRequest("POST", "/api/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeLogout(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("header %q: status = %d, want 204", header, rec.Code)
		}
	}
}
