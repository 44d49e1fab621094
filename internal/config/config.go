package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/sidosera/ttl/internal/database"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/logging"
)

// Config holds application configuration.
type Config struct {
	Log     LogConfig
	Repl    ReplConfig
	Sources []SourceConfig
}

// LogConfig holds logger settings. File "-" means stderr.
type LogConfig struct {
	Level string
	File  string
}

// ReplConfig holds command-line behaviour.
type ReplConfig struct {
	MacroPrefix string `mapstructure:"macro_prefix"`
	PreviewRows int    `mapstructure:"preview_rows"`
}

// SourceConfig describes one extra schema served next to the catalog.
type SourceConfig struct {
	Name   string
	Driver string
	DSN    string
}

// Drivers lists the accepted source drivers.
var Drivers = []string{"sqlite3", "duckdb"}

// DefaultPath is where Load looks when neither an explicit path nor
// TTL_CONFIG is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "ttl", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// TTL_. An explicit path wins over TTL_CONFIG; a missing default file is
// not an error.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(os.Getenv("HOME"), ".local", "state", "ttl", "ttl.log"))
	v.SetDefault("repl.macro_prefix", "/")
	v.SetDefault("repl.preview_rows", 5)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("TTL_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.File == "" {
		return errors.New("log.file: must not be empty")
	}
	if utf8.RuneCountInString(c.Repl.MacroPrefix) != 1 {
		return fmt.Errorf("repl.macro_prefix: want one character, got %q", c.Repl.MacroPrefix)
	}
	if r, _ := utf8.DecodeRuneInString(c.Repl.MacroPrefix); unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.IsDigit(r) {
		return fmt.Errorf("repl.macro_prefix: %q cannot start a command", c.Repl.MacroPrefix)
	}
	if c.Repl.PreviewRows < 1 {
		return fmt.Errorf("repl.preview_rows: must be positive, got %d", c.Repl.PreviewRows)
	}
	seen := map[string]bool{}
	for i, s := range c.Sources {
		if !database.ValidIdent(s.Name) {
			return fmt.Errorf("sources[%d].name: %q is not a bare identifier", i, s.Name)
		}
		if s.Name == executor.CatalogSchema {
			return fmt.Errorf("sources[%d].name: %q is reserved", i, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("sources[%d].name: duplicate %q", i, s.Name)
		}
		seen[s.Name] = true
		if !knownDriver(s.Driver) {
			return fmt.Errorf("sources[%d].driver: %q not one of %s", i, s.Driver, strings.Join(Drivers, ", "))
		}
	}
	return nil
}

func knownDriver(d string) bool {
	for _, k := range Drivers {
		if d == k {
			return true
		}
	}
	return false
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("repl.macro_prefix", cfg.Repl.MacroPrefix)
	v.Set("repl.preview_rows", cfg.Repl.PreviewRows)
	if len(cfg.Sources) > 0 {
		sources := make([]map[string]any, 0, len(cfg.Sources))
		for _, s := range cfg.Sources {
			sources = append(sources, map[string]any{"name": s.Name, "driver": s.Driver, "dsn": s.DSN})
		}
		v.Set("sources", sources)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
