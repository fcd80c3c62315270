package logout

import (
	"net/http"

	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler serves logout.
type Handler struct {
	Authority *auth.Authority
	Log       *zap.Logger
}

// NewHandler constructs the logout Handler.
func NewHandler(authority *auth.Authority, logger *zap.Logger) *Handler {
	return &Handler{Authority: authority, Log: logger}
}

// ServeLogout handles POST /api/logout.
//
// Logout is idempotent: an unknown, expired, or absent token answers
// 204 exactly like a live one. There is nothing useful to tell a
// caller holding a dead token.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.Authority.TokenFromRequest(r); token != "" {
		h.Authority.Logout(token)
	}
	h.Authority.ClearCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}
