package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/chemnet/internal/annotation"
	"github.com/alfredjeanlab/chemnet/internal/config"
	"github.com/alfredjeanlab/chemnet/internal/events"
	"github.com/alfredjeanlab/chemnet/internal/graph"
	"github.com/alfredjeanlab/chemnet/internal/linkgen"
	"github.com/alfredjeanlab/chemnet/internal/processor"
	"github.com/alfredjeanlab/chemnet/internal/store/postgres"
	chemsync "github.com/alfredjeanlab/chemnet/internal/sync"
	"github.com/alfredjeanlab/chemnet/internal/ui"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	proc      *processor.Processor
	publisher events.Publisher
	archive   *postgres.Archive
)

// setup builds the processor and its collaborators from the environment
// and the persistent flags.
func setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if annotationsDir != "" {
		cfg.AnnotationsDir = annotationsDir
	}

	linkCfg, err := cfg.LinkConfig()
	if err != nil {
		return err
	}

	switch {
	case cfg.NATSURL != "":
		pub, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = pub
		logger.Debug("events enabled", "nats_url", cfg.NATSURL)
	case verbose:
		publisher = &events.LogPublisher{Logger: logger}
	default:
		publisher = &events.NoopPublisher{}
	}

	mirror, err := buildMirror(ctx)
	if err != nil {
		teardown()
		return err
	}

	store := annotation.NewStore(cfg.AnnotationsDir, logger)
	proc = processor.New(store, linkgen.New(linkCfg, logger), logger,
		processor.WithPublisher(publisher),
		processor.WithMirror(mirror),
	)
	return nil
}

func buildMirror(ctx context.Context) (*chemsync.Mirror, error) {
	var dests []chemsync.Destination
	if cfg.MirrorS3Bucket != "" {
		s3, err := chemsync.NewS3Destination(ctx, cfg.MirrorS3Bucket, cfg.MirrorS3Prefix, cfg.MirrorS3Region, cfg.MirrorS3Endpoint)
		if err != nil {
			return nil, err
		}
		dests = append(dests, s3)
		logger.Debug("mirror enabled", "destination", "s3", "bucket", cfg.MirrorS3Bucket)
	}
	if cfg.MirrorGitRepo != "" {
		dests = append(dests, chemsync.NewGitDestination(cfg.MirrorGitRepo, cfg.MirrorGitDir, cfg.MirrorGitBranch))
		logger.Debug("mirror enabled", "destination", "git", "repo", cfg.MirrorGitRepo)
	}
	if cfg.MirrorDatabaseURL != "" {
		a, err := openArchive()
		if err != nil {
			return nil, err
		}
		dests = append(dests, a)
		logger.Debug("mirror enabled", "destination", "postgres")
	}
	return chemsync.NewMirror(dests, logger), nil
}

func openArchive() (*postgres.Archive, error) {
	if archive != nil {
		return archive, nil
	}
	if cfg.MirrorDatabaseURL == "" {
		return nil, errors.New("no archive configured (set CHEMNET_MIRROR_DATABASE_URL)")
	}
	a, err := postgres.New(cfg.MirrorDatabaseURL)
	if err != nil {
		return nil, err
	}
	archive = a
	return archive, nil
}

func teardown() {
	if publisher != nil {
		if err := publisher.Close(); err != nil && logger != nil {
			logger.Warn("closing event publisher", "err", err)
		}
		publisher = nil
	}
	if archive != nil {
		archive.Close()
		archive = nil
	}
}

// loadAnnotations fills the store from the selected project, or from the
// legacy file when no project is selected. With a graph path only that
// graph's project file is read. A project that does not exist yet becomes
// the active project for graphPath; a missing legacy file is an empty store.
func loadAnnotations(graphPath string) error {
	store := proc.Store()
	if projectName == "" {
		if err := store.LoadLegacy(); err != nil && !errors.Is(err, annotation.ErrProjectNotFound) {
			return err
		}
		return nil
	}
	if err := store.LoadProjectFor(projectName, sourceName(graphPath)); err != nil {
		if !errors.Is(err, annotation.ErrProjectNotFound) {
			return err
		}
		store.SetProject(projectName, sourceName(graphPath))
	}
	return nil
}

// sourceName is the graph file name recorded as a project's source graph.
func sourceName(graphPath string) string {
	if graphPath == "" {
		return ""
	}
	return filepath.Base(graphPath)
}

func readGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	defer f.Close()
	g, err := graph.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	return g, nil
}

// writeGraph writes g to path, or to stdout when path is "-".
func writeGraph(g *graph.Graph, path string) error {
	if path == "-" {
		return g.Encode(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write graph %s: %w", path, err)
	}
	return f.Close()
}
