// Package storage persists uploaded files.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ObjectStore writes an object under key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
}

// DiskStore writes objects below a local directory.
type DiskStore struct {
	root string
}

// NewDiskStore constructs a DiskStore rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{root: dir}
}

// Put writes body to root/key, replacing any existing file.
func (d *DiskStore) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := filepath.Join(d.root, filepath.Base(key))
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("storage: create: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: write: %w", err)
	}
	return f.Close()
}
