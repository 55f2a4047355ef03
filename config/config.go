package config

import (
	"fmt"
	"os"

	"tsearch/process"
	"tsearch/reader"
	"tsearch/search"

	"gopkg.in/yaml.v3"
)

// Config represents tsearch configuration options
type Config struct {
	// PageSize is the number of bytes scanned by one worker
	PageSize uint `yaml:"page_size"`

	// MaxThreads bounds concurrent workers (0 = one per CPU)
	MaxThreads int `yaml:"max_threads"`

	// Reader selects the byte reader (direct, vm)
	Reader reader.Kind `yaml:"reader"`

	// Module is the mapped file whose span is searched when no base is given
	Module string `yaml:"module"`

	// DumpContext is the number of bytes shown around a match (0 = no dump)
	DumpContext uint `yaml:"dump_context"`

	// Color enables coloured output (auto, always, never)
	Color string `yaml:"color"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		PageSize:    uint(search.DefaultPageSize),
		MaxThreads:  0,
		Reader:      reader.KindDirect,
		DumpContext: 0,
		Color:       "auto",
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.PageSize != 0 {
		cfg.PageSize = yamlCfg.PageSize
	}
	if yamlCfg.MaxThreads != 0 {
		cfg.MaxThreads = yamlCfg.MaxThreads
	}
	if yamlCfg.Reader != "" {
		cfg.Reader = yamlCfg.Reader
	}
	if yamlCfg.Module != "" {
		cfg.Module = yamlCfg.Module
	}
	if yamlCfg.DumpContext != 0 {
		cfg.DumpContext = yamlCfg.DumpContext
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(pageSize *uint, maxThreads *int, kind *string, module *string, dumpContext *uint, color *string) {
	if pageSize != nil {
		c.PageSize = *pageSize
	}
	if maxThreads != nil {
		c.MaxThreads = *maxThreads
	}
	if kind != nil {
		c.Reader = reader.Kind(*kind)
	}
	if module != nil {
		c.Module = *module
	}
	if dumpContext != nil {
		c.DumpContext = *dumpContext
	}
	if color != nil {
		c.Color = *color
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.PageSize == 0 {
		return fmt.Errorf("page_size must be > 0")
	}
	if c.MaxThreads < 0 {
		return fmt.Errorf("max_threads must be >= 0, got %d", c.MaxThreads)
	}
	switch c.Reader {
	case reader.KindDirect, reader.KindVM:
	default:
		return fmt.Errorf("invalid reader %q, must be one of: direct, vm", c.Reader)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}
	return nil
}

// SearchOptions translates the configuration into searcher options
func (c *Config) SearchOptions() ([]search.Option, error) {
	r, err := reader.New(c.Reader)
	if err != nil {
		return nil, err
	}

	options := []search.Option{
		search.WithReader(r),
		search.WithPageSize(process.ProcessMemorySize(c.PageSize)),
	}
	if c.MaxThreads > 0 {
		options = append(options, search.WithMaxThreads(c.MaxThreads))
	}
	return options, nil
}
