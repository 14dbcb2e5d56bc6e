// Package fileloader reads cached files from a served root directory.
package fileloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/krisalay/file-cache-server/types"
)

/*
Loader implements types.Loader over a directory.

Keys are slash separated paths relative to the root ("index.html",
"img/logo.png"). Keys that are absolute, contain "..", or otherwise leave the
root are refused with ErrInvalidKey. The root is opened with os.OpenRoot, so
symlinks cannot escape it either.
*/
type Loader struct {
	root *os.Root
}

// New opens dir as the served root.
func New(dir string) (*Loader, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open root %q: %w", dir, err)
	}
	return &Loader{root: root}, nil
}

// Load reads the whole file named by key.
func (l *Loader) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%q: %w", key, types.ErrInvalidKey)
	}

	f, err := l.root.Open(name)
	if err != nil {
		return nil, classify(key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", key, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory: %w", key, types.ErrNotFound)
	}

	// The size is only a hint; the file may change while it is read.
	var buf bytes.Buffer
	buf.Grow(int(info.Size()))
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Close releases the root directory handle.
func (l *Loader) Close() error {
	return l.root.Close()
}

func classify(key string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%q: %w", key, types.ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%q: %w", key, types.ErrNotFound)
	default:
		return fmt.Errorf("open %q: %w", key, err)
	}
}
