package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalClient stores objects as plain files in a single directory.
// This is the default backend and mirrors the layout consumed by ops
// tooling: one file per object, named by key.
type LocalClient struct {
	dir string
}

// NewLocalClient constructs a filesystem-backed store rooted at dir.
func NewLocalClient(dir string) (*LocalClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	return &LocalClient{dir: dir}, nil
}

// EnsureBucket creates the storage directory if it does not exist.
func (l *LocalClient) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes the object bytes to a file named by key.
func (l *LocalClient) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// Get opens the file named by key.
func (l *LocalClient) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := l.objectPath(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes the file named by key.
func (l *LocalClient) Delete(_ context.Context, key string) error {
	path, err := l.objectPath(key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Bucket returns the storage directory.
func (l *LocalClient) Bucket() string {
	return l.dir
}

// objectPath joins dir and key, rejecting keys that would escape the
// directory.
func (l *LocalClient) objectPath(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(l.dir, key), nil
}
