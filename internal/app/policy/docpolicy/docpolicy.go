// Package docpolicy decides whether a principal may see a document.
//
// Authorization rules:
//   - Admins bypass the ACL entirely, for listing and retrieval alike.
//   - Batch-file identifiers are not gated by the document ACL: any
//     authenticated principal may request them. Batch outputs are
//     treated as ephemeral job artifacts, not catalog documents; this
//     asymmetry is a deliberate policy choice, not an oversight.
//   - Catalog documents are visible iff the record exists, is active,
//     and the principal's groups intersect the record's ACL.
//
// Denials for catalog documents never reveal whether the document
// exists: "not found" and "forbidden" collapse into one error kind of
// identical shape.
package docpolicy

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/identifier"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFoundOrForbidden is the single denial kind for catalog
// documents. Callers must surface it identically for missing and
// forbidden documents.
var ErrNotFoundOrForbidden = errors.New("document not found")

// DocumentSource is the document-store surface the policy needs.
// Implemented by the documents store.
type DocumentSource interface {
	GetByDocumentID(ctx context.Context, documentID string) (models.Document, error)
	ListActive(ctx context.Context) ([]models.Document, error)
	ListActiveByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Document, error)
}

// Resolver evaluates document access for principals. It holds no
// mutable state; every decision is a pure function of its inputs plus
// a read-only lookup against the document store.
type Resolver struct {
	docs DocumentSource
}

func New(docs DocumentSource) *Resolver {
	return &Resolver{docs: docs}
}

// Authorize decides grant (nil) or deny for one identifier. The error
// is ErrNotFoundOrForbidden for every catalog denial and
// auth.ErrSessionInvalid when no principal was supplied; anything else
// is a storage fault.
func (r *Resolver) Authorize(ctx context.Context, p *auth.Principal, id identifier.Identifier) error {
	if p == nil {
		return auth.ErrSessionInvalid
	}
	if p.IsAdmin() {
		return nil
	}
	if id.Kind == identifier.KindBatchFile {
		// Authenticated is the only tier for batch artifacts.
		return nil
	}

	doc, err := r.docs.GetByDocumentID(ctx, id.DocumentID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFoundOrForbidden
	}
	if err != nil {
		return fmt.Errorf("document lookup: %w", err)
	}
	if doc.Status != models.StatusActive {
		return ErrNotFoundOrForbidden
	}
	if !groupsIntersect(p.GroupIDs, doc.Permissions) {
		return ErrNotFoundOrForbidden
	}
	return nil
}

// ListAccessible returns the active documents the principal may see:
// all of them for admins, otherwise exactly those whose ACL intersects
// the principal's groups. The caller intersects the result with what
// exists on disk.
func (r *Resolver) ListAccessible(ctx context.Context, p *auth.Principal) ([]models.Document, error) {
	if p == nil {
		return nil, auth.ErrSessionInvalid
	}
	if p.IsAdmin() {
		return r.docs.ListActive(ctx)
	}
	return r.docs.ListActiveByGroups(ctx, groupObjectIDs(p.GroupIDs))
}

func groupObjectIDs(hexes []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, oid)
		}
	}
	return ids
}

func groupsIntersect(principalGroups []string, acl []primitive.ObjectID) bool {
	if len(principalGroups) == 0 || len(acl) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(acl))
	for _, g := range acl {
		set[g.Hex()] = struct{}{}
	}
	for _, h := range principalGroups {
		if _, ok := set[h]; ok {
			return true
		}
	}
	return false
}
