package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix is where the router serves LocalDisk objects.
const PublicPrefix = "/uploads"

type LocalDisk struct {
	dir string
}

func NewLocalDisk(dir string) (*LocalDisk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalDisk{dir: dir}, nil
}

func (d *LocalDisk) Dir() string {
	return d.dir
}

func (d *LocalDisk) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	path, err := d.path(key)
	if err != nil {
		return "", err
	}
	rel, _ := filepath.Rel(d.dir, path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return PublicPrefix + "/" + filepath.ToSlash(rel), nil
}

func (d *LocalDisk) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, PublicPrefix+"/") {
		return ErrForeignURL
	}
	path, err := d.path(strings.TrimPrefix(url, PublicPrefix+"/"))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// path keeps keys inside the upload directory.
func (d *LocalDisk) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", ErrForeignURL
	}
	return filepath.Join(d.dir, clean), nil
}

var _ Storage = (*LocalDisk)(nil)
