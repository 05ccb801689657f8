// Package config loads and saves the tool's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/tessellate"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for a configuration that cannot be
// used.
var ErrInvalid = errors.New("config: invalid")

// Strategy names accepted by the strategy field.
var Strategies = []string{"nested", "instance", "location", "none"}

// Plane scopes accepted by the plane_scope field.
const (
	ScopeOperation = "operation"
	ScopeDocument  = "document"
)

// Config holds the settings of one run.
type Config struct {
	Epsilon       float64 `yaml:"epsilon"`
	Strategy      string  `yaml:"strategy"`    // nested, instance, location, none
	PlaneScope    string  `yaml:"plane_scope"` // operation, document
	DebugLoops    bool    `yaml:"debug_loops"`
	ShapeName     string  `yaml:"shape_name"`
	Category      string  `yaml:"category"`
	Target        string  `yaml:"target"`   // any, solid, mesh
	Fallback      string  `yaml:"fallback"` // mesh, abort
	ApplicationID string  `yaml:"application_id,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Epsilon:    geom.DefaultEpsilon,
		Strategy:   "nested",
		PlaneScope: ScopeOperation,
		DebugLoops: true,
		ShapeName:  "MyShape",
		Category:   "GenericModel",
		Target:     "any",
		Fallback:   "mesh",
	}
}

// DefaultPath returns ~/.directshape/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".directshape", "config.yaml")
}

// Load reads a configuration from path. Fields missing from the file keep
// their defaults, and a missing file yields Default with no error. The
// result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first unusable field, wrapped in ErrInvalid.
func (c Config) Validate() error {
	if !(c.Epsilon > 0) || math.IsInf(c.Epsilon, 0) {
		return fmt.Errorf("%w: epsilon must be a positive number, got %v", ErrInvalid, c.Epsilon)
	}
	if !lo.Contains(Strategies, c.Strategy) {
		return fmt.Errorf("%w: strategy %q, expected one of %v", ErrInvalid, c.Strategy, Strategies)
	}
	if c.PlaneScope != ScopeOperation && c.PlaneScope != ScopeDocument {
		return fmt.Errorf("%w: plane_scope %q, expected %s or %s", ErrInvalid, c.PlaneScope, ScopeOperation, ScopeDocument)
	}
	if c.ShapeName == "" {
		return fmt.Errorf("%w: shape_name is empty", ErrInvalid)
	}
	if _, err := tessellate.ParseTarget(c.Target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := tessellate.ParseFallback(c.Fallback); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.ApplicationID != "" {
		if _, err := uuid.Parse(c.ApplicationID); err != nil {
			return fmt.Errorf("%w: application_id: %v", ErrInvalid, err)
		}
	}
	return nil
}

// Tolerance returns the configured tolerance.
func (c Config) Tolerance() geom.Tolerance {
	return geom.NewTolerance(c.Epsilon)
}
