package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps a document in a single JSON file.
type FileStore[T any] struct {
	path  string
	empty EmptyFunc[T]

	mu sync.RWMutex
}

// NewFileStore creates a store backed by path. The file and its directory
// are created on the first write.
func NewFileStore[T any](path string, empty EmptyFunc[T]) *FileStore[T] {
	return &FileStore[T]{path: path, empty: empty}
}

func (s *FileStore[T]) Load(ctx context.Context) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

func (s *FileStore[T]) Save(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

func (s *FileStore[T]) Update(ctx context.Context, fn func(doc *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	write, err := apply(&doc, fn)
	if err != nil || !write {
		return err
	}
	return s.save(ctx, doc)
}

func (s *FileStore[T]) load(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.empty(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decode(s.path, data, s.empty)
}

// save writes to a temp file in the same directory and renames it over the
// target so readers never observe a partial document.
func (s *FileStore[T]) save(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
