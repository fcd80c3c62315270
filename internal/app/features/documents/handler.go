// Package documents serves the viewer API: listings, metadata, and the
// artifact streams behind them.
//
// Every {id} path parameter is a raw identifier string. It is
// classified exactly once here, at the HTTP edge; everything below
// works on the typed form.
package documents

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/identifier"
	"github.com/mohammad17ali/doc-flow/internal/app/system/locator"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.uber.org/zap"
)

// Policy is the slice of the access resolver this handler consults.
type Policy interface {
	Authorize(ctx context.Context, p *auth.Principal, id identifier.Identifier) error
	ListAccessible(ctx context.Context, p *auth.Principal) ([]models.Document, error)
}

// MetadataSource fetches catalog records for the detail endpoint.
type MetadataSource interface {
	GetByDocumentID(ctx context.Context, documentID string) (models.Document, error)
}

// Handler serves document listing, metadata, and artifact streams.
type Handler struct {
	Policy  Policy
	Locator *locator.Locator
	Docs    MetadataSource
	Log     *zap.Logger
}

// NewHandler constructs the documents Handler.
func NewHandler(policy Policy, loc *locator.Locator, docs MetadataSource, logger *zap.Logger) *Handler {
	return &Handler{Policy: policy, Locator: loc, Docs: docs, Log: logger}
}

// classify pulls the raw identifier out of the URL and types it. The
// single place the raw string is interpreted.
func classify(w http.ResponseWriter, r *http.Request) (identifier.Identifier, bool) {
	id, err := identifier.Classify(chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindIdentifierRejected)
		return identifier.Identifier{}, false
	}
	return id, true
}

func principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apiutil.WriteError(w, http.StatusUnauthorized, apiutil.KindSessionInvalid)
		return nil, false
	}
	return p, true
}

type listedDocument struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`
}

// ServeList handles GET /api/documents.
//
// The listing is the intersection of what the ACLs grant and what is
// actually present on disk. A record whose folder has been removed is
// omitted rather than served as a dead link.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	docs, err := h.Policy.ListAccessible(ctx, p)
	if err != nil {
		h.Log.Error("list documents", zap.Error(err))
		apiutil.WriteDomainError(w, err)
		return
	}

	out := []listedDocument{}
	for _, d := range docs {
		present, err := h.Locator.ExistsOnDisk(d.DocumentID)
		if err != nil {
			h.Log.Warn("stat document folder", zap.String("document_id", d.DocumentID), zap.Error(err))
			continue
		}
		if !present {
			continue
		}
		out = append(out, listedDocument{
			ID:          d.ID.Hex(),
			DocumentID:  d.DocumentID,
			Title:       d.Title,
			Description: d.Description,
			PageCount:   d.PageCount,
		})
	}

	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// ServeDetail handles GET /api/documents/{id}.
//
// Batch identifiers have no catalog record; they answer a synthetic
// envelope carrying only the identifier itself.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := classify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Policy.Authorize(ctx, p, id); err != nil {
		apiutil.WriteDomainError(w, err)
		return
	}

	if id.Kind == identifier.KindBatchFile {
		apiutil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id":  id.String(),
			"batch_job_id": id.BatchJobID,
			"file_name":    id.FileName,
		})
		return
	}

	doc, err := h.Docs.GetByDocumentID(ctx, id.DocumentID)
	if err != nil {
		apiutil.WriteDomainError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, doc)
}

// ServeStructure handles GET /api/documents/{id}/structure.
func (h *Handler) ServeStructure(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := classify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	loc, err := h.Locator.Structure(ctx, p, id)
	if err != nil {
		apiutil.WriteDomainError(w, err)
		return
	}
	h.stream(w, loc, "application/json")
}

// ServeImages handles GET /api/documents/{id}/images.
func (h *Handler) ServeImages(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := classify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	names, err := h.Locator.ListImages(ctx, p, id)
	if err != nil {
		apiutil.WriteDomainError(w, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"images": names})
}

// ServeImage handles GET /api/documents/{id}/images/{name}.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := classify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	name := chi.URLParam(r, "name")
	loc, err := h.Locator.Image(ctx, p, id, name)
	if err != nil {
		apiutil.WriteDomainError(w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.stream(w, loc, contentType)
}

// ServePDF handles GET /api/documents/{id}/pdf.
func (h *Handler) ServePDF(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := classify(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	loc, err := h.Locator.PDF(ctx, p, id)
	if err != nil {
		apiutil.WriteDomainError(w, err)
		return
	}
	h.stream(w, loc, "application/pdf")
}

// stream copies a resolved location to the response.
func (h *Handler) stream(w http.ResponseWriter, loc locator.Location, contentType string) {
	rc, err := h.Locator.Open(loc)
	if err != nil {
		h.Log.Error("open resource", zap.String("path", loc.AbsolutePath), zap.Error(err))
		apiutil.WriteError(w, http.StatusInternalServerError, apiutil.KindStorageUnavailable)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is log.
		h.Log.Warn("stream resource", zap.String("path", loc.AbsolutePath), zap.Error(err))
	}
}
