package dataset

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Source opens reference tables by name. Implementations return *ErrDatasetNotFound
// when the name does not exist. The caller owns the returned reader and must close it.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Type() string
}

// FileSource serves tables from a local data directory.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Type() string {
	return "file"
}

func (s *FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewErrDataSource(name, err)
	}
	if !IsLocalName(name) {
		return nil, NewErrDatasetNotFound(name)
	}

	path := filepath.Join(s.dir, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewErrDatasetNotFound(name)
		}
		return nil, NewErrDataSource(name, pkgerrors.Wrapf(err, "opening %s", path))
	}
	return f, nil
}

// IsLocalName reports whether name stays inside the source root: it must be a
// non-empty relative path without ".." elements.
func IsLocalName(name string) bool {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "\\") {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(name))
}
