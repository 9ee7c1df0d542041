// Package store defines the archive that keeps copies of saved annotation
// projects outside the local annotation directory.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no archived project exists for a key.
var ErrNotFound = errors.New("archived project not found")

// ArchivedProject is one archived project file.
type ArchivedProject struct {
	Key             string
	Project         string
	SourceGraph     string
	AnnotationCount int
	SavedAt         time.Time
	Payload         []byte
}

// Archive stores project files by key.
type Archive interface {
	// Write stores data under key, replacing any previous version.
	Write(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) (*ArchivedProject, error)
	// List returns every archived project without its payload, newest first.
	List(ctx context.Context) ([]*ArchivedProject, error)
	Delete(ctx context.Context, key string) error

	Close() error
}
