// Package config loads server settings from defaults, an optional YAML
// file, explicit overrides, and BMAD_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they map onto
// keys: BMAD_CORE_PATH sets core.path.
const EnvPrefix = "BMAD_"

// ConfigEnv names a YAML config file when no path is passed to Load.
const ConfigEnv = "BMAD_CONFIG"

type Config struct {
	Core      CoreConfig      `koanf:"core"`
	Expansion ExpansionConfig `koanf:"expansion"`
	Log       LogConfig       `koanf:"log"`
	Ledger    LedgerConfig    `koanf:"ledger"`
	Watch     WatchConfig     `koanf:"watch"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type CoreConfig struct {
	Path string `koanf:"path"`
}

type ExpansionConfig struct {
	// Path defaults to the expansion-packs directory beside Core.Path.
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console, json
}

type LedgerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type WatchConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

type TelemetryConfig struct {
	Exporter string `koanf:"exporter"` // none, stdout
}

// Load builds the configuration. path may be empty, in which case
// BMAD_CONFIG is consulted. overrides are dotted keys applied after the
// file and before the environment.
func Load(path string, overrides map[string]string) (*Config, error) {
	k := koanf.New(".")

	home, _ := os.UserHomeDir()
	defaults := map[string]any{
		"core.path":          "bmad-core",
		"expansion.path":     "",
		"log.level":          "info",
		"log.format":         "console",
		"ledger.enabled":     true,
		"ledger.dir":         filepath.Join(home, ".bmad-mcp"),
		"watch.enabled":      false,
		"watch.debounce":     "250ms",
		"telemetry.exporter": "none",
	}
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("config: default %s: %w", key, err)
		}
	}

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("config: override %s: %w", key, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Core.Path) == "" {
		return fmt.Errorf("config: core.path must not be empty")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format %q: must be console or json", c.Log.Format)
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("config: telemetry.exporter %q: must be none or stdout", c.Telemetry.Exporter)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("config: watch.debounce must be positive")
	}
	return nil
}

// ExpansionPath returns the expansion pack root, resolving the default.
func (c *Config) ExpansionPath() string {
	if c.Expansion.Path != "" {
		return c.Expansion.Path
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.Core.Path)), "expansion-packs")
}
