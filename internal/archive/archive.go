// Package archive copies exported journals and reports to cold storage.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/rustyeddy/rjournal/config"
)

// ErrDisabled is returned by New when no archive type is configured.
var ErrDisabled = errors.New("archive disabled")

// Storage defines the interface for archive storage backends
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// New builds the backend selected by cfg.Type.
func New(cfg config.ArchiveConfig) (Storage, error) {
	switch cfg.Type {
	case "":
		return nil, ErrDisabled
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}

// Prefix is the archive folder holding a session's files.
func Prefix(sessionID string) string {
	return path.Join("sessions", sessionID)
}

// Key is the archive path for a file exported from a session.
func Key(sessionID, file string) string {
	return path.Join(Prefix(sessionID), filepath.Base(file))
}
