// Package storage defines the interface for artifact storage operations.
// Artifacts live in a single flat namespace: a key is a plain file name with
// no directory component. Swap implementations by changing the concrete type
// injected at startup.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no artifact is stored under a key.
	ErrNotFound = errors.New("artifact not found")
	// ErrExists is returned by Create when the key is already taken.
	ErrExists = errors.New("artifact already exists")
	// ErrInvalidKey is returned for keys that cannot name a flat artifact.
	ErrInvalidKey = errors.New("invalid artifact key")
)

// Object describes a stored artifact.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Storage is the interface for storing and retrieving artifacts.
type Storage interface {
	// Create streams reader to a new object under key and returns the number
	// of bytes written. It fails with ErrExists if key is taken and leaves no
	// partial object behind on failure. size may be -1 when unknown.
	Create(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (int64, error)
	// Open returns a reader for the object under key.
	Open(ctx context.Context, key string) (io.ReadCloser, *Object, error)
	// Stat describes the object under key.
	Stat(ctx context.Context, key string) (*Object, error)
	// Delete removes an object identified by key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	// List returns every stored object.
	List(ctx context.Context) ([]Object, error)
}

// ValidateKey rejects keys that are empty, contain path separators or
// control characters, or refer to the directory itself.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return ErrInvalidKey
		}
	}
	return nil
}
