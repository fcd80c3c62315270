// Package locator turns permission-checked identifiers into concrete,
// traversal-safe filesystem locations.
//
// The load-bearing invariant of the whole access-control subsystem
// lives here: no filesystem path is ever constructed from caller input
// before that input has been authorized. Every resolving method
// authorizes first and only then joins validated path segments.
package locator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/identifier"
)

// Fixed relative sub-paths inside a document or batch folder. These
// match the pre-processing pipeline's on-disk layout exactly.
const (
	StructureFileName = "structure.json"
	batchOutputDir    = "output/processing"
	batchInputPDF     = "input/original.pdf"
)

var (
	// ErrResourceNotFound means the resolved path is absent on disk at
	// resolution time.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrNoPDFResource is returned for PDF requests on catalog
	// documents; only batch folders keep the original PDF.
	ErrNoPDFResource = errors.New("catalog documents expose no pdf resource")
)

// Image extension allow-lists. Catalog documents and batch outputs
// deliberately differ (batch additionally allows gif/webp), mirroring
// the pre-processing pipeline's historical behavior; reconciling them
// is a policy decision, not a cleanup.
var (
	catalogImageExts = map[string]struct{}{
		".jpeg": {}, ".jpg": {}, ".png": {},
	}
	batchImageExts = map[string]struct{}{
		".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}, ".webp": {},
	}
)

// Resource names the three addressable artifact kinds.
type Resource int

const (
	ResourceStructure Resource = iota
	ResourceImage
	ResourcePDF
)

// Location is the only type permitted to reach the filesystem-access
// boundary. It is constructed exclusively here, from validated
// non-traversing segments, after authorization.
type Location struct {
	Resource     Resource
	AbsolutePath string
}

// Authorizer is the policy surface the locator consults before any
// path construction. Implemented by docpolicy.Resolver.
type Authorizer interface {
	Authorize(ctx context.Context, p *auth.Principal, id identifier.Identifier) error
}

// Locator composes the identifier grammar, the access policy, and the
// on-disk layout. It holds no mutable state.
type Locator struct {
	authz         Authorizer
	fs            Filesystem
	documentsRoot string
	batchRoot     string
}

// New builds a locator over the two content roots. A nil fs selects
// the local filesystem.
func New(authz Authorizer, documentsRoot, batchRoot string, fsys Filesystem) *Locator {
	if fsys == nil {
		fsys = OSFilesystem{}
	}
	return &Locator{
		authz:         authz,
		fs:            fsys,
		documentsRoot: documentsRoot,
		batchRoot:     batchRoot,
	}
}

// Structure resolves the parsed-structure JSON for a document or batch
// file.
func (l *Locator) Structure(ctx context.Context, p *auth.Principal, id identifier.Identifier) (Location, error) {
	if err := l.authz.Authorize(ctx, p, id); err != nil {
		return Location{}, err
	}

	var path string
	if id.Kind == identifier.KindBatchFile {
		path = filepath.Join(l.batchRoot, id.BatchJobID, id.FolderSegment(), batchOutputDir, StructureFileName)
	} else {
		path = filepath.Join(l.documentsRoot, id.DocumentID, StructureFileName)
	}
	return l.checked(Location{Resource: ResourceStructure, AbsolutePath: path})
}

// Image resolves one page image by filename. The name comes straight
// from the URL, so it passes the same traversal checks as identifiers
// plus the per-kind extension allow-list.
func (l *Locator) Image(ctx context.Context, p *auth.Principal, id identifier.Identifier, imageName string) (Location, error) {
	if err := l.authz.Authorize(ctx, p, id); err != nil {
		return Location{}, err
	}

	if !identifier.ValidSegment(imageName) || !allowedImage(imageName, id.Kind) {
		return Location{}, identifier.ErrRejected
	}

	var path string
	if id.Kind == identifier.KindBatchFile {
		path = filepath.Join(l.batchRoot, id.BatchJobID, id.FolderSegment(), batchOutputDir, imageName)
	} else {
		path = filepath.Join(l.documentsRoot, id.DocumentID, imageName)
	}
	return l.checked(Location{Resource: ResourceImage, AbsolutePath: path})
}

// PDF resolves the original source PDF. Only batch folders retain it;
// catalog documents answer ErrNoPDFResource regardless of permissions.
func (l *Locator) PDF(ctx context.Context, p *auth.Principal, id identifier.Identifier) (Location, error) {
	if err := l.authz.Authorize(ctx, p, id); err != nil {
		return Location{}, err
	}
	if id.Kind != identifier.KindBatchFile {
		return Location{}, ErrNoPDFResource
	}

	path := filepath.Join(l.batchRoot, id.BatchJobID, id.FolderSegment(), batchInputPDF)
	return l.checked(Location{Resource: ResourcePDF, AbsolutePath: path})
}

// ListImages returns the image filenames of a resolved folder, sorted
// lexicographically and filtered to the allow-listed extensions. A
// missing folder yields an empty list, not an error, so "no images
// yet" stays indistinguishable from "not processed yet" at this layer.
func (l *Locator) ListImages(ctx context.Context, p *auth.Principal, id identifier.Identifier) ([]string, error) {
	if err := l.authz.Authorize(ctx, p, id); err != nil {
		return nil, err
	}

	var dir string
	if id.Kind == identifier.KindBatchFile {
		dir = filepath.Join(l.batchRoot, id.BatchJobID, id.FolderSegment(), batchOutputDir)
	} else {
		dir = filepath.Join(l.documentsRoot, id.DocumentID)
	}

	names, err := l.fs.ListDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images := []string{}
	for _, name := range names {
		if allowedImage(name, id.Kind) {
			images = append(images, name)
		}
	}
	sort.Strings(images)
	return images, nil
}

// ExistsOnDisk reports whether a catalog document's folder is present.
// Used to intersect listings with the filesystem; the document IDs
// come from store records, not caller input.
func (l *Locator) ExistsOnDisk(documentID string) (bool, error) {
	return l.fs.Exists(filepath.Join(l.documentsRoot, documentID))
}

// Open opens a previously resolved location for streaming.
func (l *Locator) Open(loc Location) (io.ReadCloser, error) {
	return l.fs.Open(loc.AbsolutePath)
}

// checked verifies existence at resolution time. The gap between this
// check and the caller's stream is accepted: the path is already
// authorization-gated, so the race is only between "found" and "gone".
func (l *Locator) checked(loc Location) (Location, error) {
	ok, err := l.fs.Exists(loc.AbsolutePath)
	if err != nil {
		return Location{}, fmt.Errorf("stat %s: %w", loc.AbsolutePath, err)
	}
	if !ok {
		return Location{}, ErrResourceNotFound
	}
	return loc, nil
}

func allowedImage(name string, kind identifier.Kind) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if kind == identifier.KindBatchFile {
		_, ok := batchImageExts[ext]
		return ok
	}
	_, ok := catalogImageExts[ext]
	return ok
}
