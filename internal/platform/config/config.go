package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Storage backend selectors.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Blob backend selectors.
const (
	BlobMemory     = "memory"
	BlobFilesystem = "fs"
)

// Membership mode selectors.
const (
	MembershipLocal     = "local"
	MembershipFederated = "directory"
)

// Config holds the API configuration. Environment variables are parsed from
// the WAYFARE_ prefix, e.g. WAYFARE_HTTP_PORT.
type Config struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// APIKey guards every endpoint except /healthz. Empty disables auth
	// (local development only).
	APIKey string `envconfig:"API_KEY" default:""`

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"memory"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`

	BlobBackend string `envconfig:"BLOB_BACKEND" default:"memory"`
	BlobDir     string `envconfig:"BLOB_DIR" default:"./blobs"`
	BlobBaseURL string `envconfig:"BLOB_BASE_URL" default:"http://localhost:8080/blobs"`

	// MembershipMode selects where trip members are resolved: the local user
	// store or the external identity directory.
	MembershipMode   string `envconfig:"MEMBERSHIP_MODE" default:"local"`
	DirectoryBaseURL string `envconfig:"DIRECTORY_BASE_URL" default:""`
	DirectoryToken   string `envconfig:"DIRECTORY_TOKEN" default:""`

	// Seed loads the demo dataset into the memory backend on startup.
	Seed bool `envconfig:"SEED" default:"false"`
}

// Load parses configuration from the environment and validates it.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("WAYFARE", &c); err != nil {
		return Config{}, err
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("invalid storage backend %q", c.StorageBackend)
	}
	if c.StorageBackend == StoragePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("WAYFARE_DATABASE_URL is required for the postgres backend")
	}
	switch c.BlobBackend {
	case BlobMemory, BlobFilesystem:
	default:
		return fmt.Errorf("invalid blob backend %q", c.BlobBackend)
	}
	switch c.MembershipMode {
	case MembershipLocal, MembershipFederated:
	default:
		return fmt.Errorf("invalid membership mode %q", c.MembershipMode)
	}
	if c.MembershipMode == MembershipFederated && c.DirectoryBaseURL == "" {
		return fmt.Errorf("WAYFARE_DIRECTORY_BASE_URL is required for federated membership")
	}
	if c.Seed && c.StorageBackend != StorageMemory {
		return fmt.Errorf("seeding is only supported on the memory backend")
	}
	return nil
}
