package filestorages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrFileAlreadyExists = errors.New("file already exists")
	ErrInvalidKey        = errors.New("invalid file key")
	ErrInvalidRootDir    = errors.New("invalid root directory")
)

type PutResult struct {
	FileKey string
}

type PutOptions struct {
	AllowOverwrite bool
}

//go:generate mockgen -source=file_storage.go -destination=./mocks/file_storage_mock.go -package=mocks
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (*PutResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type fileStorage struct {
	dir string
}

func NewFileStorage(rootDir string) (FileStorage, error) {
	absRootDir, err := resolveRootDir(rootDir)
	if err != nil {
		return nil, err
	}
	return &fileStorage{dir: absRootDir}, nil
}

func resolveRootDir(rootDir string) (string, error) {
	if rootDir == "" {
		return "", fmt.Errorf("%w: root directory cannot be empty", ErrInvalidRootDir)
	}
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve absolute path: %w", ErrInvalidRootDir, err)
	}
	return absRootDir, nil
}

// Put writes r under key. The content is staged in a temp file next to the target and
// published atomically: rename when overwriting, hard link when the key must be new.
func (s *fileStorage) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (*PutResult, error) {
	if err := s.validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	finalPath := filepath.Join(s.dir, filepath.Clean(key))
	tmpPath, err := s.writeTemp(ctx, filepath.Dir(finalPath), r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	if opts.AllowOverwrite {
		if err := os.Rename(tmpPath, finalPath); err != nil {
			return nil, err
		}
		return &PutResult{FileKey: key}, nil
	}

	if err := os.Link(tmpPath, finalPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrFileAlreadyExists
		}
		return nil, err
	}
	return &PutResult{FileKey: key}, nil
}

func (s *fileStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

// writeTemp copies r into a synced temp file inside dir and returns its path.
func (s *fileStorage) writeTemp(ctx context.Context, dir string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}

	if _, err := io.Copy(tmp, r); err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

func (s *fileStorage) validateKey(key string) error {
	if key == "" || filepath.IsAbs(key) {
		return ErrInvalidKey
	}
	cleanPath := filepath.Clean(key)
	if cleanPath == "." || strings.HasPrefix(cleanPath, "..") {
		return ErrInvalidKey
	}
	// The resolved path must stay inside the root directory.
	rel, err := filepath.Rel(s.dir, filepath.Join(s.dir, cleanPath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return ErrInvalidKey
	}
	return nil
}
