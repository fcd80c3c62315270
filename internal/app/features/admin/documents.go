package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	docstore "github.com/mohammad17ali/doc-flow/internal/app/store/documents"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/htmlsanitize"
	"github.com/mohammad17ali/doc-flow/internal/app/system/identifier"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type documentPayload struct {
	DocumentID  string   `json:"document_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
	PageCount   int      `json:"page_count"`
}

// ServeListDocuments handles GET /api/admin/documents. Unlike the
// viewer listing this one includes disabled records and skips the
// on-disk check; admins need to see catalog entries whose folders are
// gone.
func (h *Handler) ServeListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	docs, err := h.Docs.ListAll(ctx)
	if err != nil {
		h.Log.Error("list documents", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// ServeCreateDocument handles POST /api/admin/documents. DocumentID is
// the on-disk folder name and passes the same segment validation as
// viewer identifiers.
func (h *Handler) ServeCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	req.DocumentID = strings.TrimSpace(req.DocumentID)
	req.Title = htmlsanitize.Sanitize(req.Title)
	if req.Title == "" {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	if !identifier.ValidSegment(req.DocumentID) || strings.ContainsRune(req.DocumentID, ':') {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindIdentifierRejected)
		return
	}
	perms, ok := parsePermissions(w, req.Permissions)
	if !ok {
		return
	}

	doc := models.Document{
		DocumentID:  req.DocumentID,
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Permissions: perms,
		Status:      req.Status,
		PageCount:   req.PageCount,
	}
	if p, pok := auth.CurrentPrincipal(r); pok {
		if oid, err := primitive.ObjectIDFromHex(p.UserID); err == nil {
			doc.CreatedByID = &oid
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Docs.Create(ctx, doc)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateDocumentID) {
			apiutil.WriteError(w, http.StatusConflict, apiutil.KindConflict)
			return
		}
		h.Log.Error("create document", zap.Error(err))
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	apiutil.WriteJSON(w, http.StatusCreated, created)
}

// ServeUpdateDocument handles PUT /api/admin/documents/{id}. The
// folder name itself is immutable; only title, description, ACL, and
// status change here.
func (h *Handler) ServeUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req documentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}

	req.Title = htmlsanitize.Sanitize(req.Title)
	if req.Title == "" || (req.Status != models.StatusActive && req.Status != models.StatusDisabled) {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return
	}
	perms, ok := parsePermissions(w, req.Permissions)
	if !ok {
		return
	}

	upd := docstore.Update{
		Title:       req.Title,
		Description: htmlsanitize.Sanitize(req.Description),
		Permissions: perms,
		Status:      req.Status,
	}
	if p, pok := auth.CurrentPrincipal(r); pok {
		if oid, err := primitive.ObjectIDFromHex(p.UserID); err == nil {
			upd.UpdatedByID = &oid
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Docs.Update(ctx, id, upd); err != nil {
		h.Log.Error("update document", zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parsePermissions converts hex group ids to ObjectIDs, answering 400
// on the first bad one. A nil slice becomes an empty ACL, which makes
// the document invisible to non-admins.
func parsePermissions(w http.ResponseWriter, hexes []string) ([]primitive.ObjectID, bool) {
	perms := make([]primitive.ObjectID, 0, len(hexes))
	for _, raw := range hexes {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
			return nil, false
		}
		perms = append(perms, id)
	}
	return perms, true
}
