// Package meshstore fetches model files by name from wherever the import
// pipeline left them.
package meshstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrNotFound    = errors.New("meshstore: mesh not found")
	ErrInvalidName = errors.New("meshstore: invalid mesh name")
)

type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
}

// cleanName normalizes a mesh name into a slash separated relative key and
// rejects names that escape the store root.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if cleaned != strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return cleaned, nil
}
