package system

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/signadot/itemscript/connector/file"
	"github.com/signadot/itemscript/connector/mem"
)

// Config holds the settings of a System, as read from a YAML file.
type Config struct {
	// DefaultScheme is used for locators without a scheme.
	DefaultScheme string `yaml:"defaultScheme"`

	Mem  MemConfig  `yaml:"mem"`
	File FileConfig `yaml:"file"`
	Log  LogConfig  `yaml:"log"`
}

type MemConfig struct {
	// DefaultNumRows is the page size of paged queries without numRows.
	DefaultNumRows int `yaml:"defaultNumRows"`
	// IDs selects the generator behind ?uuid posts: uuid, uuidv7,
	// nanoid or lex.
	IDs string `yaml:"ids"`
}

// FileConfig configures the file: scheme. An empty Root leaves it
// unregistered.
type FileConfig struct {
	Root     string `yaml:"root"`
	ReadOnly bool   `yaml:"readOnly"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*$`)

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		DefaultScheme: mem.Scheme,
		Mem: MemConfig{
			DefaultNumRows: mem.DefaultNumRows,
			IDs:            "uuid",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML configuration over DefaultConfig. Unknown
// fields are errors.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !schemeRE.MatchString(c.DefaultScheme) {
		return fmt.Errorf("%w: bad defaultScheme %q", ErrConfig, c.DefaultScheme)
	}
	if c.DefaultScheme == file.Scheme && c.File.Root == "" {
		return fmt.Errorf("%w: defaultScheme file without file.root", ErrConfig)
	}
	if c.Mem.DefaultNumRows < 0 {
		return fmt.Errorf("%w: negative mem.defaultNumRows %d", ErrConfig, c.Mem.DefaultNumRows)
	}
	if _, err := idGenerator(c.Mem.IDs); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the slog level named by Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return lvl, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, fmt.Errorf("%w: log.level: %w", ErrConfig, err)
	}
	return lvl, nil
}
