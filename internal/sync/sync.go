package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// Destination is the interface for a mirror target (S3, git, postgres).
type Destination interface {
	// Write stores data under key, replacing any previous version.
	Write(ctx context.Context, key string, data []byte) error
}

// Mirror copies saved project files to every configured destination.
// It runs synchronously in the caller's goroutine.
type Mirror struct {
	destinations []Destination
	logger       *slog.Logger
}

// NewMirror creates a mirror over the given destinations.
func NewMirror(destinations []Destination, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{destinations: destinations, logger: logger}
}

// Len returns the number of destinations.
func (m *Mirror) Len() int {
	return len(m.destinations)
}

// Push writes data to every destination. A failing destination does not
// stop the others; all failures are returned joined.
func (m *Mirror) Push(ctx context.Context, key string, data []byte) error {
	var errs []error
	for i, dest := range m.destinations {
		if err := dest.Write(ctx, key, data); err != nil {
			m.logger.Error("mirror destination write failed", "destination", fmt.Sprintf("%d", i), "key", key, "err", err)
			errs = append(errs, fmt.Errorf("destination %d: %w", i, err))
		}
	}
	m.logger.Info("mirror completed", "key", key, "destinations", len(m.destinations), "failed", len(errs), "bytes", len(data))
	return errors.Join(errs...)
}

// PushFile reads path and pushes its contents under key.
func (m *Mirror) PushFile(ctx context.Context, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return m.Push(ctx, key, data)
}
