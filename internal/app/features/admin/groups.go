package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	groupstore "github.com/mohammad17ali/doc-flow/internal/app/store/groups"
	"github.com/mohammad17ali/doc-flow/internal/app/system/htmlsanitize"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.uber.org/zap"
)

type groupPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ServeListGroups handles GET /api/admin/groups.
func (h *Handler) ServeListGroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groups, err := h.Groups.List(ctx)
	if err != nil {
		h.Log.Error("list groups", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// ServeCreateGroup handles POST /api/admin/groups.
func (h *Handler) ServeCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	name := htmlsanitize.Sanitize(req.Name)
	if name == "" {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		Name:        name,
		Description: htmlsanitize.Sanitize(req.Description),
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			apiutil.WriteError(w, http.StatusConflict, apiutil.KindConflict)
			return
		}
		h.Log.Error("create group", zap.Error(err))
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	apiutil.WriteJSON(w, http.StatusCreated, g)
}

// ServeUpdateGroup handles PUT /api/admin/groups/{id}.
func (h *Handler) ServeUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req groupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	name := htmlsanitize.Sanitize(req.Name)
	if name == "" {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.UpdateInfo(ctx, id, name, htmlsanitize.Sanitize(req.Description), req.Status); err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			apiutil.WriteError(w, http.StatusConflict, apiutil.KindConflict)
			return
		}
		h.Log.Error("update group", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ServeListMembers handles GET /api/admin/groups/{id}/members.
func (h *Handler) ServeListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ids, err := h.Groups.MemberIDs(ctx, id)
	if err != nil {
		h.Log.Error("list members", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	out := make([]string, 0, len(ids))
	for _, m := range ids {
		out = append(out, m.Hex())
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"member_ids": out})
}

// ServeAddMember handles POST /api/admin/groups/{id}/members.
// Adding an existing member is a no-op, so the call is safe to retry.
func (h *Handler) ServeAddMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	userID, ok := pathID(w, req.UserID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.AddMember(ctx, groupID, userID); err != nil {
		h.Log.Error("add member", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeRemoveMember handles DELETE /api/admin/groups/{id}/members/{userID}.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	userID, ok := pathID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.RemoveMember(ctx, groupID, userID); err != nil {
		h.Log.Error("remove member", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
