// Package seed retrieves the static seed documents that populate an empty store.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/at-ishikawa/elearn/internal/apperr"
)

//go:generate mockgen -source=fetcher.go -destination=../mocks/seed/mock_fetcher.go -package=mock_seed Fetcher

// Fetcher retrieves a seed document by its logical path, e.g. "mock-users.json".
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

//go:embed data/*.json
var documents embed.FS

// Embedded returns the seed documents built into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(documents, "data")
	if err != nil {
		panic(fmt.Errorf("fs.Sub(data) > %w", err))
	}
	return sub
}

// DirFetcher reads seed documents from a file system.
type DirFetcher struct {
	fsys fs.FS
}

func NewDirFetcher(fsys fs.FS) *DirFetcher {
	return &DirFetcher{fsys: fsys}
}

// NewLocalDirFetcher reads seed documents from directory on disk.
func NewLocalDirFetcher(directory string) *DirFetcher {
	return NewDirFetcher(os.DirFS(directory))
}

func (f *DirFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Retrieval(fmt.Sprintf("fetch %s", path), err)
	}
	contents, err := fs.ReadFile(f.fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Retrieval(fmt.Sprintf("seed document %s does not exist", path), err)
	}
	if err != nil {
		return nil, apperr.Retrieval(fmt.Sprintf("read %s", path), fmt.Errorf("fs.ReadFile > %w", err))
	}
	return contents, nil
}
