package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	Dir string
}

// NewLocal prepares the permanent avatar directory
func NewLocal(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory, %w", err)
	}

	return &LocalStorage{Dir: dir}, nil
}

// Store moves the staged file into the avatar directory. Rename is atomic
// on the same filesystem; when staging and permanent storage sit on
// different mounts it degrades to copy-then-delete with the error
// propagated instead of swallowed
func (l *LocalStorage) Store(_ context.Context, src, name string) (string, error) {
	dst := filepath.Join(l.Dir, name)

	err := os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to relocate avatar, %w", err)
	}

	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("failed to drain staging file, %w", err)
	}

	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}

	return out.Close()
}
