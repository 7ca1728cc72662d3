package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Config represents a liger.yaml project file.
type Config struct {
	// MaxDepth bounds the nesting depth the parser and checker accept.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// RequireMain rejects programs without `fun main(args: [[int]]): int`.
	// A pointer so that an explicit false survives setDefaults.
	RequireMain *bool `yaml:"require_main,omitempty"`

	// Color is one of auto, always, never.
	Color string `yaml:"color,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`

	// Format selects the check report: text or yaml.
	Format string `yaml:"format,omitempty"`

	// LigerVersion is a semver constraint the running toolchain must satisfy,
	// e.g. ">= 0.3, < 1.0".
	LigerVersion string `yaml:"liger_version,omitempty"`
}

// Default returns the configuration used when no liger.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a liger.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses liger.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for liger.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{ConfigFileName, AltConfigFileName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// LoadNearest finds and loads the liger.yaml governing dir, falling back to
// the defaults when there is none.
func LoadNearest(dir string) (*Config, string, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%s: max_depth must not be negative, got %d", path, c.MaxDepth)
	}

	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be one of auto, always, never; got %q", path, c.Color)
	}

	switch c.Format {
	case "", FormatText, FormatYAML:
	default:
		return fmt.Errorf("%s: format must be text or yaml; got %q", path, c.Format)
	}

	if c.LigerVersion != "" {
		if err := CheckVersion(c.LigerVersion); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// setDefaults fills in default values for optional fields.
func (c *Config) setDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.RequireMain == nil {
		requireMain := true
		c.RequireMain = &requireMain
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Format == "" {
		c.Format = FormatText
	}
}

// MainRequired reports the effective require_main setting.
func (c *Config) MainRequired() bool {
	return c.RequireMain == nil || *c.RequireMain
}

// CheckVersion reports whether the running toolchain satisfies constraint.
func CheckVersion(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid liger_version %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("toolchain version %q: %w", Version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("liger %s does not satisfy liger_version %q", Version, constraint)
	}
	return nil
}
