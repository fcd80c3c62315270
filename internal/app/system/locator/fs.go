package locator

import (
	"io"
	"io/fs"
	"os"
)

// Filesystem is the metadata/read surface the locator needs. The
// default implementation is the local filesystem; tests substitute an
// in-memory one.
type Filesystem interface {
	// Exists reports whether the path exists. An error means the check
	// itself failed, not that the path is absent.
	Exists(path string) (bool, error)

	// ListDir returns the entry names of a directory. A missing
	// directory yields fs.ErrNotExist.
	ListDir(path string) ([]string, error)

	// Open opens the file at path for reading.
	Open(path string) (io.ReadCloser, error)
}

// OSFilesystem serves the real local filesystem.
type OSFilesystem struct{}

func (OSFilesystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (OSFilesystem) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (OSFilesystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
