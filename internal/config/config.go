// Package config loads chemnet settings from the environment and the
// optional TOML link profile.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/chemnet/internal/linkgen"
)

type Config struct {
	AnnotationsDir string // CHEMNET_ANNOTATIONS_DIR (default "annotations")
	NATSURL        string // CHEMNET_NATS_URL (optional, empty = no events)
	LinkProfile    string // CHEMNET_LINK_PROFILE (optional TOML file)

	// Mirror settings
	MirrorS3Bucket    string // CHEMNET_MIRROR_S3_BUCKET (enables S3 when set)
	MirrorS3Endpoint  string // CHEMNET_MIRROR_S3_ENDPOINT (custom endpoint for MinIO)
	MirrorS3Region    string // CHEMNET_MIRROR_S3_REGION (default "us-east-1")
	MirrorS3Prefix    string // CHEMNET_MIRROR_S3_PREFIX (default "chemnet")
	MirrorGitRepo     string // CHEMNET_MIRROR_GIT_REPO (enables git when set; path to clone)
	MirrorGitBranch   string // CHEMNET_MIRROR_GIT_BRANCH (default "main")
	MirrorGitDir      string // CHEMNET_MIRROR_GIT_DIR (subdirectory inside the clone)
	MirrorDatabaseURL string // CHEMNET_MIRROR_DATABASE_URL (enables the postgres archive when set)
}

func Load() (*Config, error) {
	c := &Config{
		AnnotationsDir:    envOrDefault("CHEMNET_ANNOTATIONS_DIR", "annotations"),
		NATSURL:           os.Getenv("CHEMNET_NATS_URL"),
		LinkProfile:       os.Getenv("CHEMNET_LINK_PROFILE"),
		MirrorS3Bucket:    os.Getenv("CHEMNET_MIRROR_S3_BUCKET"),
		MirrorS3Endpoint:  os.Getenv("CHEMNET_MIRROR_S3_ENDPOINT"),
		MirrorS3Region:    envOrDefault("CHEMNET_MIRROR_S3_REGION", "us-east-1"),
		MirrorS3Prefix:    envOrDefault("CHEMNET_MIRROR_S3_PREFIX", "chemnet"),
		MirrorGitRepo:     os.Getenv("CHEMNET_MIRROR_GIT_REPO"),
		MirrorGitBranch:   envOrDefault("CHEMNET_MIRROR_GIT_BRANCH", "main"),
		MirrorGitDir:      os.Getenv("CHEMNET_MIRROR_GIT_DIR"),
		MirrorDatabaseURL: os.Getenv("CHEMNET_MIRROR_DATABASE_URL"),
	}
	if c.MirrorS3Endpoint != "" && c.MirrorS3Bucket == "" {
		return nil, fmt.Errorf("CHEMNET_MIRROR_S3_ENDPOINT is set but CHEMNET_MIRROR_S3_BUCKET is empty")
	}
	return c, nil
}

// Mirroring reports whether any mirror destination is configured.
func (c *Config) Mirroring() bool {
	return c.MirrorS3Bucket != "" || c.MirrorGitRepo != "" || c.MirrorDatabaseURL != ""
}

// LinkProfile overrides the link generator's viewer settings. Zero fields
// keep the defaults.
type LinkProfile struct {
	BaseURL         string   `toml:"base_url"`
	Protocol        string   `toml:"protocol"`
	Provider        string   `toml:"provider"`
	TaskID          string   `toml:"task_id"`
	PPMTolerance    int      `toml:"ppm_tolerance"`
	FilterThreshold *float64 `toml:"filter_threshold"`
}

// LoadLinkProfile decodes the TOML profile at path.
func LoadLinkProfile(path string) (LinkProfile, error) {
	var p LinkProfile
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return LinkProfile{}, fmt.Errorf("link profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return LinkProfile{}, fmt.Errorf("link profile %s: unknown key %q", path, undecoded[0].String())
	}
	if p.PPMTolerance < 0 {
		return LinkProfile{}, fmt.Errorf("link profile %s: ppm_tolerance must not be negative", path)
	}
	return p, nil
}

// Apply returns cfg with the profile's non-zero fields substituted.
func (p LinkProfile) Apply(cfg linkgen.Config) linkgen.Config {
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.Protocol != "" {
		cfg.Protocol = p.Protocol
	}
	if p.Provider != "" {
		cfg.Provider = p.Provider
	}
	if p.TaskID != "" {
		cfg.TaskID = p.TaskID
	}
	if p.PPMTolerance != 0 {
		cfg.PPMTolerance = p.PPMTolerance
	}
	if p.FilterThreshold != nil {
		cfg.FilterThreshold = *p.FilterThreshold
	}
	return cfg
}

// LinkConfig returns the link generator settings: the defaults, overridden
// by the profile when CHEMNET_LINK_PROFILE is set.
func (c *Config) LinkConfig() (linkgen.Config, error) {
	cfg := linkgen.DefaultConfig()
	if c.LinkProfile == "" {
		return cfg, nil
	}
	p, err := LoadLinkProfile(c.LinkProfile)
	if err != nil {
		return linkgen.Config{}, err
	}
	return p.Apply(cfg), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
