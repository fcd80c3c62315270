package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	userstore "github.com/mohammad17ali/doc-flow/internal/app/store/users"
	"github.com/mohammad17ali/doc-flow/internal/app/system/authutil"
	"github.com/mohammad17ali/doc-flow/internal/app/system/htmlsanitize"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.uber.org/zap"
)

type userPayload struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// ServeListUsers handles GET /api/admin/users.
func (h *Handler) ServeListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error("list users", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ServeCreateUser handles POST /api/admin/users.
func (h *Handler) ServeCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	req.FullName = htmlsanitize.Sanitize(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" || req.Email == "" {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindInternal)
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		AuthMethod:   "password",
		Role:         req.Role,
		Status:       req.Status,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apiutil.WriteError(w, http.StatusConflict, apiutil.KindConflict)
			return
		}
		h.Log.Error("create user", zap.Error(err))
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	apiutil.WriteJSON(w, http.StatusCreated, u)
}

// ServeUpdateUser handles PUT /api/admin/users/{id}. The payload is a
// full replacement except for the password, which is only rehashed
// when a new one is supplied.
func (h *Handler) ServeUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	upd := userstore.UserUpdate{
		FullName: htmlsanitize.Sanitize(req.FullName),
		Email:    strings.TrimSpace(req.Email),
		Role:     req.Role,
		Status:   req.Status,
	}
	if upd.FullName == "" || upd.Email == "" || upd.Role == "" || upd.Status == "" {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	if req.Password != "" {
		if err := authutil.ValidatePassword(req.Password); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
			return
		}
		hash, err := authutil.HashPassword(req.Password)
		if err != nil {
			h.Log.Error("hash password", zap.Error(err))
			apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindInternal)
			return
		}
		upd.PasswordHash = hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Update(ctx, id, upd); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apiutil.WriteError(w, http.StatusConflict, apiutil.KindConflict)
			return
		}
		h.Log.Error("update user", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
