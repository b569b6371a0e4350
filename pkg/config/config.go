package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/elide/pkg/analyzer/elide"
)

// ErrInvalidConfig is returned when a configuration holds invalid values.
var ErrInvalidConfig = errors.New("invalid configuration")

// OutputFormats lists the accepted values of output.format.
var OutputFormats = []string{"text", "json", "markdown", "toon"}

// Config holds all configuration options for elide.
type Config struct {
	// Elision settings
	Elide ElideConfig `koanf:"elide" toml:"elide" yaml:"elide" json:"elide"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`

	// Workers bounds parallel file processing; 0 means one per CPU.
	Workers int `koanf:"workers" toml:"workers" yaml:"workers" json:"workers"`
}

// ElideConfig controls the analysis pipeline.
type ElideConfig struct {
	// EmitDecoratorMetadata mirrors the tsconfig compiler option.
	EmitDecoratorMetadata bool `koanf:"emit_decorator_metadata" toml:"emit_decorator_metadata" yaml:"emit_decorator_metadata" json:"emit_decorator_metadata"`
	// MetadataPolicy names the rule deciding which type annotations metadata
	// keeps alive: decorated, any or none.
	MetadataPolicy string `koanf:"metadata_policy" toml:"metadata_policy" yaml:"metadata_policy" json:"metadata_policy"`
	// RemoveDecorators lists decorators stripped before elision runs.
	RemoveDecorators []string `koanf:"remove_decorators" toml:"remove_decorators" yaml:"remove_decorators" json:"remove_decorators"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl" json:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Elide: ElideConfig{
			EmitDecoratorMetadata: false,
			MetadataPolicy:        "decorated",
			RemoveDecorators:      []string{},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.bundle.js",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".elide",
				"dist",
				"build",
				"coverage",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".elide/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"elide.toml",
	"elide.yaml",
	"elide.yml",
	"elide.json",
	".elide.toml",
	".elide.yaml",
	".elide.yml",
	".elide.json",
}

// searchDirs are the directories searched for a config file.
var searchDirs = []string{".", ".elide"}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

func loadRaw(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, err
	}
	return k, nil
}

// Load loads configuration from a file and validates it.
func Load(path string) (*Config, error) {
	k, err := loadRaw(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is the config file path, or "" when defaults were used.
	Source string
}

type loadOptions struct {
	path string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching the standard locations.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// LoadConfig loads configuration from an explicit path or from the first
// config file found in the standard locations. Without either, it returns
// the defaults. Unlike LoadOrDefault, errors in a found file are reported.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

func findConfig() string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := findConfig(); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Validate checks that every value is in range.
func (c *Config) Validate() error {
	var problems []string

	if _, err := elide.PolicyByName(c.Elide.MetadataPolicy); err != nil {
		problems = append(problems, "elide.metadata_policy: "+err.Error())
	}
	for i, name := range c.Elide.RemoveDecorators {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, fmt.Sprintf("elide.remove_decorators[%d]: empty name", i))
		}
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		problems = append(problems, fmt.Sprintf("output.format: %q is not one of %v", c.Output.Format, OutputFormats))
	}
	if c.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers: %d is negative", c.Workers))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, fmt.Sprintf("cache.ttl: %d is negative", c.Cache.TTL))
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		problems = append(problems, "cache.dir: required when the cache is enabled")
	}
	for _, p := range c.Exclude.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			problems = append(problems, fmt.Sprintf("exclude.patterns: %q: %v", p, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
