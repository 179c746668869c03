package novx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.NovelStore = (*Store)(nil)

// Store reads and writes novx files on the local filesystem.
type Store struct{}

// NewStore creates a new novx store.
func NewStore() *Store {
	return &Store{}
}

// New returns an empty project.
func (s *Store) New() driven.NovelModel {
	return NewProject()
}

// Load reads the project at path.
func (s *Store) Load(_ context.Context, path string) (driven.NovelModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.DocumentIOError{Op: "open", Path: path, Err: domain.ErrFileNotFound}
		}
		return nil, &domain.DocumentIOError{Op: "open", Path: path, Err: err}
	}

	root, err := parseTree(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.DocumentIOError{Op: "parse", Path: path, Err: err}
	}
	if root.name != tagRoot {
		return nil, &domain.DocumentIOError{
			Op:   "parse",
			Path: path,
			Err:  fmt.Errorf("root element is <%s>, want <%s>", root.name, tagRoot),
		}
	}

	p := decodeProject(root)
	logger.Debug("Loaded project %s: %d chapters, %d sections, %d characters",
		path, p.Chapters().Len(), p.Sections().Len(), p.Characters().Len())
	return p, nil
}

// Save writes novel to path atomically. A project loaded from a file
// keeps the markup this package does not decode.
func (s *Store) Save(_ context.Context, novel driven.NovelModel, path string) error {
	root := newRoot()
	var known map[string]*element
	if p, ok := novel.(*Project); ok && p.root != nil {
		root = p.root
		known = p.elements
	}
	encodeProject(novel, root, known)

	if err := atomic.WriteFile(path, bytes.NewReader(root.marshal())); err != nil {
		return &domain.DocumentIOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
