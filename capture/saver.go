package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Saver persists encoded photos.
type Saver interface {
	// Save stores data under name and returns where it went.
	Save(ctx context.Context, name string, data []byte) (location string, err error)

	// Remove deletes a location returned by Save.
	Remove(location string) error
}

// DirSaver writes photos into a directory.
//
// Files are written to a temporary name and renamed into place, so a
// reader never sees a partial photo.
type DirSaver struct {
	dir string
}

// NewDirSaver returns a saver for dir. A leading "~" is expanded. The
// directory is created on first use.
func NewDirSaver(dir string) (*DirSaver, error) {
	if dir == "" {
		return nil, errors.New("capture: empty output directory")
	}
	p, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("capture: output directory: %w", err)
	}
	return &DirSaver{dir: filepath.Clean(p)}, nil
}

// Dir returns the target directory.
func (s *DirSaver) Dir() string {
	return s.dir
}

// Save implements Saver.
func (s *DirSaver) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("capture: invalid file name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("capture: create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("capture: create file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("capture: write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("capture: sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("capture: close file: %w", err)
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		cleanup()
		return "", fmt.Errorf("capture: rename file: %w", err)
	}
	return dst, nil
}

// Remove implements Saver. Locations outside the directory are refused.
func (s *DirSaver) Remove(location string) error {
	if filepath.Dir(filepath.Clean(location)) != s.dir {
		return fmt.Errorf("capture: %q is not in %s", location, s.dir)
	}
	if err := os.Remove(location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
