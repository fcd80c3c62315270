package documents_test

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mohammad17ali/doc-flow/internal/app/features/documents"
	"github.com/mohammad17ali/doc-flow/internal/app/policy/docpolicy"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/identifier"
	"github.com/mohammad17ali/doc-flow/internal/app/system/locator"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakePolicy grants the simple ids in allowed, grants every batch id,
// and collapses everything else into the not-found error like the real
// resolver.
type fakePolicy struct {
	allowed map[string]models.Document
}

func (f *fakePolicy) Authorize(_ context.Context, p *auth.Principal, id identifier.Identifier) error {
	if p == nil {
		return auth.ErrSessionInvalid
	}
	if id.Kind == identifier.KindBatchFile {
		return nil
	}
	if _, ok := f.allowed[id.DocumentID]; !ok {
		return docpolicy.ErrNotFoundOrForbidden
	}
	return nil
}

func (f *fakePolicy) ListAccessible(context.Context, *auth.Principal) ([]models.Document, error) {
	out := []models.Document{}
	for _, d := range f.allowed {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakePolicy) GetByDocumentID(_ context.Context, documentID string) (models.Document, error) {
	d, ok := f.allowed[documentID]
	if !ok {
		return models.Document{}, mongo.ErrNoDocuments
	}
	return d, nil
}

// memFS is a path-keyed fake over the locator filesystem contract.
type memFS map[string]string

func (m memFS) Exists(path string) (bool, error) {
	if _, ok := m[path]; ok {
		return true, nil
	}
	prefix := path + string(filepath.Separator)
	for p := range m {
		if strings.HasPrefix(p, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (m memFS) ListDir(path string) ([]string, error) {
	prefix := path + string(filepath.Separator)
	var names []string
	for p := range m {
		if rest, ok := strings.CutPrefix(p, prefix); ok && !strings.ContainsRune(rest, filepath.Separator) {
			names = append(names, rest)
		}
	}
	if len(names) == 0 {
		return nil, fs.ErrNotExist
	}
	return names, nil
}

func (m memFS) Open(path string) (io.ReadCloser, error) {
	body, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

var (
	userPrincipal = &auth.Principal{UserID: "64b0c0ffee0000000000a11c", Role: "user"}
	bmraDoc       = models.Document{
		ID:         primitive.NewObjectID(),
		DocumentID: "BMRA",
		Title:      "Board Meeting Records",
		Status:     models.StatusActive,
	}
)

func newRouter(fsys memFS) http.Handler {
	policy := &fakePolicy{allowed: map[string]models.Document{"BMRA": bmraDoc}}
	loc := locator.New(policy, "/docs", "/batch", fsys)
	h := documents.NewHandler(policy, loc, policy, zap.NewNop())
	return documents.Routes(h)
}

func doGet(t *testing.T, router http.Handler, path string, p *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if p != nil {
		req = auth.WithTestPrincipal(req, p)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServeList_IntersectsWithDisk(t *testing.T) {
	// Record exists but the folder does not; listing must omit it.
	router := newRouter(memFS{})

	rec := doGet(t, router, "/", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Documents []struct {
			DocumentID string `json:"document_id"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(resp.Documents) != 0 {
		t.Errorf("documents = %v, want empty", resp.Documents)
	}

	// Folder present: the record shows up.
	router = newRouter(memFS{filepath.Join("/docs", "BMRA", "structure.json"): "{}"})
	rec = doGet(t, router, "/", userPrincipal)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].DocumentID != "BMRA" {
		t.Errorf("documents = %v, want [BMRA]", resp.Documents)
	}
}

func TestServeDetail(t *testing.T) {
	router := newRouter(memFS{})

	rec := doGet(t, router, "/BMRA", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var doc models.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.DocumentID != "BMRA" || doc.Title != "Board Meeting Records" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestServeDetail_DeniedLooksLikeMissing(t *testing.T) {
	router := newRouter(memFS{})

	forDenied := doGet(t, router, "/SECRET", userPrincipal)
	forMissing := doGet(t, router, "/NOPE", userPrincipal)

	if forDenied.Code != http.StatusNotFound || forMissing.Code != http.StatusNotFound {
		t.Fatalf("statuses = %d, %d, want 404, 404", forDenied.Code, forMissing.Code)
	}
	if forDenied.Body.String() != forMissing.Body.String() {
		t.Errorf("bodies differ: %q vs %q", forDenied.Body.String(), forMissing.Body.String())
	}
}

func TestServeDetail_BatchEnvelope(t *testing.T) {
	router := newRouter(memFS{})

	rec := doGet(t, router, "/ALI10-123.5:pdf1.pdf", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		DocumentID string `json:"document_id"`
		BatchJobID string `json:"batch_job_id"`
		FileName   string `json:"file_name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.BatchJobID != "ALI10-123.5" || resp.FileName != "pdf1.pdf" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestServeDetail_BadIdentifier(t *testing.T) {
	router := newRouter(memFS{})

	rec := doGet(t, router, "/..%2Fetc", userPrincipal)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Error != "identifier_rejected" {
		t.Errorf("error = %q, want identifier_rejected", resp.Error)
	}
}

func TestServeStructure(t *testing.T) {
	router := newRouter(memFS{
		filepath.Join("/docs", "BMRA", "structure.json"): `{"pages":[1,2]}`,
	})

	rec := doGet(t, router, "/BMRA/structure", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != `{"pages":[1,2]}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeStructure_MissingOnDisk(t *testing.T) {
	router := newRouter(memFS{})

	rec := doGet(t, router, "/BMRA/structure", userPrincipal)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Error != "resource_not_found" {
		t.Errorf("error = %q, want resource_not_found", resp.Error)
	}
}

func TestServeImages(t *testing.T) {
	router := newRouter(memFS{
		filepath.Join("/docs", "BMRA", "page_2.png"): "b",
		filepath.Join("/docs", "BMRA", "page_1.jpg"): "a",
		filepath.Join("/docs", "BMRA", "notes.txt"):  "x",
	})

	rec := doGet(t, router, "/BMRA/images", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := []string{"page_1.jpg", "page_2.png"}; !reflect.DeepEqual(resp.Images, want) {
		t.Errorf("images = %v, want %v", resp.Images, want)
	}
}

func TestServeImage(t *testing.T) {
	router := newRouter(memFS{
		filepath.Join("/docs", "BMRA", "page_1.png"): "pngbytes",
	})

	rec := doGet(t, router, "/BMRA/images/page_1.png", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if rec.Body.String() != "pngbytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeImage_BadName(t *testing.T) {
	router := newRouter(memFS{
		filepath.Join("/docs", "BMRA", "page_1.png"): "pngbytes",
	})

	rec := doGet(t, router, "/BMRA/images/page_1.txt", userPrincipal)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServePDF(t *testing.T) {
	router := newRouter(memFS{
		filepath.Join("/batch", "ALI10-123.5", "ALI10-123.5_pdf1.pdf", "input", "original.pdf"): "%PDF-1.4",
	})

	rec := doGet(t, router, "/ALI10-123.5:pdf1.pdf/pdf", userPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServePDF_CatalogRejected(t *testing.T) {
	router := newRouter(memFS{
		filepath.Join("/docs", "BMRA", "structure.json"): "{}",
	})

	rec := doGet(t, router, "/BMRA/pdf", userPrincipal)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDocuments_NoPrincipal(t *testing.T) {
	router := newRouter(memFS{})

	for _, path := range []string{"/", "/BMRA", "/BMRA/structure", "/BMRA/images", "/BMRA/images/a.png", "/BMRA/pdf"} {
		rec := doGet(t, router, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: status = %d, want 401", path, rec.Code)
		}
	}
}
