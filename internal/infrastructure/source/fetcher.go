package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Fetcher opens a source file by its configured name
type Fetcher interface {
	Fetch(ctx context.Context, file string) (io.ReadCloser, error)
}

// DirFetcher reads source files from a local directory
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a fetcher rooted at dir
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch opens file relative to the fetcher directory
func (d *DirFetcher) Fetch(ctx context.Context, file string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.dir, file)
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
