package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	loginstore "github.com/mohammad17ali/doc-flow/internal/app/store/logins"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves password login.
type Handler struct {
	Authority *auth.Authority
	Logins    *loginstore.Store
	Log       *zap.Logger
}

// NewHandler constructs the login Handler.
func NewHandler(authority *auth.Authority, logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Authority: authority, Logins: logins, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userEnvelope `json:"user"`
}

type userEnvelope struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeLogin handles POST /api/login.
//
// Wrong password, unknown email, and disabled account all answer with
// the same 401 body; nothing in the response distinguishes them.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusUnauthorized, apiutil.KindInvalidCredentials)
		return
	}

	sess, principal, err := h.Authority.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			apiutil.WriteError(w, http.StatusUnauthorized, apiutil.KindInvalidCredentials)
			return
		}
		h.Log.Error("login failed", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}

	h.recordLogin(r, principal.UserID, sess.ExpiresAt)

	if err := h.Authority.WriteCookie(w, r, sess.Token); err != nil {
		h.Log.Warn("write session cookie", zap.Error(err))
	}

	apiutil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User: userEnvelope{
			ID:    principal.UserID,
			Name:  principal.Name,
			Email: principal.Email,
			Role:  principal.Role,
		},
	})
}

// recordLogin writes the audit record. Failures are logged, never
// surfaced; the session is already issued.
func (h *Handler) recordLogin(r *http.Request, userID string, expiresAt time.Time) {
	if h.Logins == nil {
		return
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		h.Log.Warn("record login: bad user id", zap.String("user_id", userID))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if _, err := h.Logins.Record(ctx, oid, models.LoginMethodPassword, extractIP(r), r.UserAgent(), expiresAt); err != nil {
		h.Log.Warn("record login", zap.Error(err), zap.String("user_id", userID))
	}
}

// extractIP picks the client address, preferring proxy headers.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
