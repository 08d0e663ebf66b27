// Package config loads and validates node configuration.
//
// Configuration is a small YAML document validated against an embedded
// CUE schema before use, so malformed files fail with a constraint
// error instead of surfacing later as odd runtime behavior.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/change"
)

// schema constrains every config document. Optional fields fall back to
// Default() values before validation runs.
const schema = `
db_path:               string & !=""
site_id?:              string & !=""
max_changes_byte_size: int & >0
log_level:             "debug" | "info" | "warn" | "error"
`

// Config is the node configuration. JSON tags mirror the YAML keys so
// the CUE encoder sees the same field names the schema constrains.
type Config struct {
	// DBPath is the SQLite database file for this node.
	DBPath string `yaml:"db_path" json:"db_path"`

	// SiteID optionally pins the node identity. When empty a fresh
	// identity is generated on first init.
	SiteID string `yaml:"site_id,omitempty" json:"site_id,omitempty"`

	// MaxChangesByteSize caps the estimated payload size of a change
	// chunk.
	MaxChangesByteSize int `yaml:"max_changes_byte_size" json:"max_changes_byte_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration used when a field is absent.
func Default() Config {
	return Config{
		MaxChangesByteSize: change.DefaultMaxChangesByteSize,
		LogLevel:           "info",
	}
}

// Load reads a YAML config file, fills in defaults and validates the
// result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, fills in defaults and validates the
// result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	sch := ctx.CompileString(schema)
	if err := sch.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	val := ctx.Encode(c)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := sch.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// CUE cannot cheaply assert UUID shape, so the identity field gets
	// a Go-side parse check.
	if c.SiteID != "" {
		if _, err := base.ParseSiteID(c.SiteID); err != nil {
			return fmt.Errorf("invalid config: site_id: %w", err)
		}
	}
	return nil
}

// ParseSiteID returns the pinned node identity, or ok=false when the
// config leaves identity generation to the store.
func (c Config) ParseSiteID() (base.SiteID, bool, error) {
	if c.SiteID == "" {
		return base.SiteID{}, false, nil
	}
	id, err := base.ParseSiteID(c.SiteID)
	if err != nil {
		return base.SiteID{}, false, err
	}
	return id, true, nil
}

// SlogLevel maps the configured log level to its slog value.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
