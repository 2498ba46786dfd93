// Package config loads hazgraph.yaml, falling back to defaults when
// no file is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazgraph/hazgraph/internal/graph"
	"github.com/hazgraph/hazgraph/internal/parser"
)

// Config represents the hazgraph configuration.
type Config struct {
	Load   LoadConfig   `yaml:"load"`
	Route  RouteConfig  `yaml:"route"`
	Server ServerConfig `yaml:"server"`
}

// LoadConfig controls ingestion of the call-graph record stream.
type LoadConfig struct {
	// Policy is "strict" (abort on the first malformed record) or
	// "lenient" (skip malformed records, collecting diagnostics).
	Policy string `yaml:"policy"`
	// MaxLines truncates the load after this many input lines.
	// Zero means no limit.
	MaxLines int `yaml:"max_lines"`
}

// RouteConfig holds defaults for route searches.
type RouteConfig struct {
	// Timeout is the default route deadline as a Go duration string,
	// e.g. "30s". Empty or "0" means no deadline.
	Timeout string `yaml:"timeout"`
	// AvoidAttrs is the default edge-attribute mask to avoid.
	AvoidAttrs uint32 `yaml:"avoid_attrs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Load: LoadConfig{
			Policy: "strict",
		},
		Route: RouteConfig{
			Timeout: "30s",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads configuration from file, falling back to defaults.
// If configPath is empty, it looks for hazgraph.yaml in the current
// directory. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	defaults := Default()

	if configPath == "" {
		configPath = "hazgraph.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return nil, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, err
	}

	defaults.Merge(&fileCfg)
	return defaults, nil
}

// LoadFromDir loads configuration from the specified directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "hazgraph.yaml"))
}

// Merge combines another config into this one, with other taking
// precedence for any field it sets.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Load.Policy != "" {
		c.Load.Policy = other.Load.Policy
	}
	if other.Load.MaxLines > 0 {
		c.Load.MaxLines = other.Load.MaxLines
	}
	if other.Route.Timeout != "" {
		c.Route.Timeout = other.Route.Timeout
	}
	if other.Route.AvoidAttrs != 0 {
		c.Route.AvoidAttrs = other.Route.AvoidAttrs
	}
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
}

// ParserOptions translates the load section into parser options.
func (c *Config) ParserOptions() ([]parser.Option, error) {
	var opts []parser.Option
	switch c.Load.Policy {
	case "", "strict":
	case "lenient":
		opts = append(opts, parser.WithPolicy(parser.Lenient))
	default:
		return nil, fmt.Errorf("unknown load policy %q (want strict or lenient)", c.Load.Policy)
	}
	if c.Load.MaxLines > 0 {
		opts = append(opts, parser.WithMaxLines(c.Load.MaxLines))
	}
	return opts, nil
}

// RouteTimeout parses the route timeout. Zero means no deadline.
func (c *Config) RouteTimeout() (time.Duration, error) {
	if c.Route.Timeout == "" || c.Route.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Route.Timeout)
	if err != nil {
		return 0, fmt.Errorf("route timeout: %w", err)
	}
	return d, nil
}

// RouteAvoidAttrs returns the default avoid mask as graph attributes.
func (c *Config) RouteAvoidAttrs() graph.EdgeAttrs {
	return graph.EdgeAttrs(c.Route.AvoidAttrs)
}
