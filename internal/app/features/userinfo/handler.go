package userinfo

import (
	"net/http"

	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
)

// Handler serves the current principal back to the client.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

type userinfoResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	GroupIDs []string `json:"group_ids"`
}

// ServeUserInfo handles GET /api/userinfo. Mounted behind
// RequireSignedIn, so the principal is always present.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apiutil.WriteError(w, http.StatusUnauthorized, apiutil.KindSessionInvalid)
		return
	}

	groups := p.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	apiutil.WriteJSON(w, http.StatusOK, userinfoResponse{
		ID:       p.UserID,
		Name:     p.Name,
		Email:    p.Email,
		Role:     p.Role,
		GroupIDs: groups,
	})
}
