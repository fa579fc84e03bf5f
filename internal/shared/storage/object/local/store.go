package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"career-backend/internal/shared/storage/object"
	"career-backend/internal/shared/util"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the reader under the user's hashed directory with a random prefix.
func (s *Store) Save(ctx context.Context, userID string, fileName string, r io.Reader) (object.Stored, error) {
	key, err := util.ObjectKey(userID, fileName)
	if err != nil {
		return object.Stored{}, fmt.Errorf("object key: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}

	contentType, head, err := object.Sniff(r)
	if err != nil {
		return object.Stored{}, fmt.Errorf("read sniff: %w", err)
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return object.Stored{}, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Stored{}, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Stored{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		_ = os.Remove(fullPath)
		return object.Stored{}, fmt.Errorf("write body: %w", err)
	}

	return object.Stored{Key: key, SizeBytes: written, ContentType: contentType}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storageKey))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
