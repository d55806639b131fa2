package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	domainStorage "innovation-portal/internal/domain/storage"
)

var _ domainStorage.FileStore = (*LocalStore)(nil)

// LocalStore writes objects under dir and serves them from baseURL + "/" + key.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// path rejects keys that would escape dir.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, _ string) (domainStorage.Object, error) {
	if err := ctx.Err(); err != nil {
		return domainStorage.Object{}, err
	}
	p, err := s.path(key)
	if err != nil {
		return domainStorage.Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return domainStorage.Object{}, err
	}

	// write to a temp file first so a failed copy never leaves a partial object
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return domainStorage.Object{}, err
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return domainStorage.Object{}, err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return domainStorage.Object{}, err
	}
	return domainStorage.Object{Key: key, URL: s.baseURL + "/" + key, Size: n}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domainStorage.ErrNotFound
		}
		return err
	}
	return nil
}

// Dir is the root served under the public file route.
func (s *LocalStore) Dir() string { return s.dir }
