// Package storage keeps uploaded files (avatars and proposal documents).
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"projecthub/config"

	"github.com/google/uuid"
)

// Store saves an upload under name and returns the URL clients fetch it from.
// Delete of a missing name is not an error.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.UploadConfig, publicURL string) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.Dir, publicURL)
	case "minio":
		return NewMinioStore(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}

// FileName returns a random object name keeping the extension of original.
func FileName(original string) string {
	ext := strings.ToLower(path.Ext(original))
	return uuid.NewString() + ext
}
