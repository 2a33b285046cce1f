package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	DefaultConfigPath  = "camelot.toml"
	DefaultHost        = "127.0.0.1"
	DefaultPort        = "1215"
	DefaultHistorySize = 64
)

// Flags are the command line options that feed into Config
type Flags struct {
	ConfigPath string
	Script     string
	Serve      bool
}

// TableConfig describes a table seated at startup. Knights are listed
// clockwise from the anchor.
type TableConfig struct {
	Name    string   `toml:"name"`
	Anchor  string   `toml:"anchor"`
	Knights []string `toml:"knights"`
}

type tomlConfig struct {
	Host        string        `toml:"host"`
	Port        string        `toml:"port"`
	LogLevel    string        `toml:"log_level"`
	HistorySize *int          `toml:"history_size"`
	Tables      []TableConfig `toml:"tables"`
}

type Config struct {
	flags Flags
	toml  tomlConfig

	path        string
	host        string
	port        string
	logLevel    zerolog.Level
	historySize int
}

func GetEnvOr(getenv func(string) string, key string, fallback string) string {
	value := getenv(key)
	if value == "" {
		value = fallback
	}
	return value
}

// NewConfig reads the TOML config file named by flags (if any) from fsys,
// then applies environment overrides looked up through getenv.
// A missing file is only an error when its path was given explicitly.
func NewConfig(fsys CamelotFS, flags Flags, getenv func(string) string) (*Config, error) {
	explicit := flags.ConfigPath != ""
	if !explicit {
		flags.ConfigPath = DefaultConfigPath
	}

	path, err := ResolvePath(fsys, flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	c := &Config{
		flags: flags,
		path:  path,
	}

	raw, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, &c.toml); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %s", ErrValidation, path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		c.path = ""
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c.host = GetEnvOr(getenv, "HOST", c.toml.Host)
	if c.host == "" {
		c.host = DefaultHost
	}
	c.port = GetEnvOr(getenv, "PORT", c.toml.Port)
	if c.port == "" {
		c.port = DefaultPort
	}

	c.historySize = DefaultHistorySize
	if c.toml.HistorySize != nil {
		c.historySize = *c.toml.HistorySize
	}

	levelName := GetEnvOr(getenv, "CAMELOT_LOG_LEVEL", c.toml.LogLevel)
	if levelName == "" {
		levelName = zerolog.LevelInfoValue
	}
	if c.logLevel, err = zerolog.ParseLevel(levelName); err != nil {
		return nil, fmt.Errorf("%w: log level: %s", ErrValidation, err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	port, err := strconv.Atoi(c.port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: invalid port %q", ErrValidation, c.port)
	}

	if c.historySize < 0 {
		return fmt.Errorf("%w: history_size cannot be negative", ErrValidation)
	}

	names := make(map[string]bool, len(c.toml.Tables))
	for _, table := range c.toml.Tables {
		if err := ValidateTableName(table.Name); err != nil {
			return err
		}
		if names[table.Name] {
			return fmt.Errorf("%w: table %q is configured twice", ErrValidation, table.Name)
		}
		names[table.Name] = true

		if table.Anchor == "" {
			return fmt.Errorf("%w: table %q has no anchor", ErrValidation, table.Name)
		}

		seen := map[string]bool{table.Anchor: true}
		for _, knight := range table.Knights {
			if knight == "" {
				return fmt.Errorf("%w: table %q has a blank knight", ErrValidation, table.Name)
			}
			if seen[knight] {
				return fmt.Errorf("%w: table %q seats %q twice", ErrValidation, table.Name, knight)
			}
			seen[knight] = true
		}
	}

	return nil
}

// Path is the config file that was loaded, or "" when running on defaults.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Flags() Flags {
	return c.flags
}

func (c *Config) Host() string {
	return c.host
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.host, c.port)
}

func (c *Config) LogLevel() zerolog.Level {
	return c.logLevel
}

// HistorySize is how many table events each session remembers.
func (c *Config) HistorySize() int {
	return c.historySize
}

func (c *Config) Tables() []TableConfig {
	return c.toml.Tables
}
