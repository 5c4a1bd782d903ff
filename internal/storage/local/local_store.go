// Package local stores artifacts on the local filesystem, mirroring the
// object keys used in S3.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"litrecord/internal/domain"
	"litrecord/internal/port"
)

type localStore struct {
	root string
}

// NewLocalStore creates an ObjectStorage rooted at dir.
func NewLocalStore(dir string) (port.ObjectStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving artifact root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating artifact root: %w", err)
	}
	return &localStore{root: abs}, nil
}

func (s *localStore) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact key %q escapes storage root", key)
	}
	return p, nil
}

// Upload writes to a temporary file and renames it into place so readers
// never observe a partially written artifact.
func (s *localStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dst, err := s.path(input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return nil, fmt.Errorf("local upload mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("local upload create: %w", err)
	}
	if _, err := io.Copy(tmp, input.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("local upload write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("local upload close: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("local upload rename: %w", err)
	}
	return &port.UploadOutput{Location: dst}, nil
}

func (s *localStore) Download(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("local download: %w", err)
	}
	return data, nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}

// GetPresignedURL returns a file URL; local artifacts need no signature.
func (s *localStore) GetPresignedURL(_ context.Context, key string, _ int64) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String(), nil
}
