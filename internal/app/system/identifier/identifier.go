// Package identifier classifies externally supplied document and
// batch-file identifiers before anything downstream touches them.
//
// Two wire forms exist:
//   - a simple identifier: a bare folder name with no ":".
//   - a composite identifier: "<batchJobID>:<fileName>", addressing a
//     single output file of an ad-hoc processing job.
//
// Classification is total: every raw string yields exactly one variant
// or ErrRejected. The package is pure; it never touches the filesystem
// or network, so both the authorization layer and the path locator can
// rely on the same parse without re-reading the raw string.
package identifier

import (
	"errors"
	"strings"
)

// ErrRejected is returned for malformed or traversal-attempting input.
// It is always a client error and never retried.
var ErrRejected = errors.New("identifier rejected")

// Kind discriminates the identifier variants.
type Kind int

const (
	// KindSimple addresses a catalog document by its folder name.
	KindSimple Kind = iota
	// KindBatchFile addresses one output file of a batch job.
	KindBatchFile
)

// Identifier is the tagged result of classifying a raw identifier
// string. For KindSimple only DocumentID is set; for KindBatchFile
// only BatchJobID and FileName are set.
type Identifier struct {
	Kind       Kind
	DocumentID string
	BatchJobID string
	FileName   string
}

// Classify parses and validates a raw identifier string.
//
// A ":" anywhere in the string makes it a composite identifier, split
// at the first ":". Every component must be a traversal-safe path
// segment: non-empty, no "..", no "/" or "\". Batch filenames
// additionally must not contain "_", so that FolderSegment's
// colon-to-underscore substitution stays injective (two distinct
// composite identifiers can never collide on the same folder name).
func Classify(raw string) (Identifier, error) {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		jobID, fileName := raw[:i], raw[i+1:]
		if !validComponent(jobID) || !validComponent(fileName) {
			return Identifier{}, ErrRejected
		}
		if strings.ContainsRune(fileName, ':') {
			return Identifier{}, ErrRejected
		}
		if strings.ContainsRune(fileName, '_') {
			return Identifier{}, ErrRejected
		}
		return Identifier{Kind: KindBatchFile, BatchJobID: jobID, FileName: fileName}, nil
	}

	if !validComponent(raw) {
		return Identifier{}, ErrRejected
	}
	return Identifier{Kind: KindSimple, DocumentID: raw}, nil
}

// FolderSegment maps a validated composite identifier to the single
// filesystem path segment used for its job output folder, replacing
// the separating ":" with "_". Only meaningful for KindBatchFile.
func (id Identifier) FolderSegment() string {
	return id.BatchJobID + "_" + id.FileName
}

// String reassembles the wire form of the identifier.
func (id Identifier) String() string {
	if id.Kind == KindBatchFile {
		return id.BatchJobID + ":" + id.FileName
	}
	return id.DocumentID
}

// ValidSegment reports whether name is safe to use as a single path
// segment: non-empty, no "..", and no path separators. Image filenames
// taken from the URL must pass this before any path is built from them.
func ValidSegment(name string) bool {
	return validComponent(name)
}

func validComponent(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, "..") {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return false
	}
	return true
}
