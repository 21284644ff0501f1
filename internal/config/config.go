package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CHECK_JOURNAL_"

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Defaults for the check command
	Check CheckConfig `mapstructure:"check"`
}

// CheckConfig holds defaults for a check run. Flags override every field.
type CheckConfig struct {
	Journalctl  string   `mapstructure:"journalctl" json:"journalctl"`
	Span        string   `mapstructure:"span" json:"span"`
	Timeout     int      `mapstructure:"timeout" json:"timeout"` // seconds
	Lines       int      `mapstructure:"lines" json:"lines"`
	Bytes       int      `mapstructure:"bytes" json:"bytes"`
	Units       []string `mapstructure:"units" json:"units"`
	User        bool     `mapstructure:"user" json:"user"`
	StateFile   string   `mapstructure:"statefile" json:"statefile"`
	StateFormat string   `mapstructure:"state_format" json:"state_format"`
	Rules       string   `mapstructure:"rules" json:"rules"`
	MetricsFile string   `mapstructure:"metrics_file" json:"metrics_file"`
}

// Meta describes where the loaded configuration came from
type Meta struct {
	ConfigFile string   // empty when built-in defaults were used
	EnvKeys    []string // environment variables that overrode a value
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format: "text",
		Check: CheckConfig{
			Journalctl:  "journalctl",
			Span:        "601s",
			Timeout:     60,
			Lines:       25,
			Bytes:       8192,
			StateFormat: "journal",
		},
	}
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.check_journal.yaml or ./.check_journal.yml
// 2. ~/.check_journal.yaml or ~/.check_journal.yml
// 3. $XDG_CONFIG_HOME/check_journal/config.yaml (or ~/.config/check_journal/config.yaml)
// 4. /etc/check_journal/config.yaml
func Load() (*Config, error) {
	cfg, _, err := LoadWithMeta()
	return cfg, err
}

// LoadWithMeta is Load plus provenance information for `config show`.
func LoadWithMeta() (*Config, *Meta, error) {
	cfg := Default()
	meta := &Meta{}

	if configFile := findConfigFile(); configFile != "" {
		if err := readInto(configFile, cfg); err != nil {
			return nil, nil, err
		}
		meta.ConfigFile = configFile
	}

	meta.EnvKeys = applyEnvOverrides(cfg)
	return cfg, meta, nil
}

func readInto(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".check_journal.yaml", ".check_journal.yml", "check_journal.yaml", "check_journal.yml"}

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}
	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	// Dedicated directories hold a plain config.yaml
	var configDirs []string
	if configDir, err := os.UserConfigDir(); err == nil {
		configDirs = append(configDirs, filepath.Join(configDir, "check_journal"))
	}
	configDirs = append(configDirs, "/etc/check_journal")
	for _, dir := range configDirs {
		for _, name := range []string{"config.yaml", "config.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// applyEnvOverrides applies CHECK_JOURNAL_* variables and returns the names
// of those that took effect. Malformed numbers are ignored.
func applyEnvOverrides(cfg *Config) []string {
	var applied []string
	str := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
			applied = append(applied, envPrefix+name)
		}
	}
	num := func(name string, dst *int) {
		if n, err := strconv.Atoi(os.Getenv(envPrefix + name)); err == nil {
			*dst = n
			applied = append(applied, envPrefix+name)
		}
	}
	flag := func(name string, dst *bool) {
		if v := os.Getenv(envPrefix + name); v == "true" || v == "1" {
			*dst = true
			applied = append(applied, envPrefix+name)
		}
	}

	str("FORMAT", &cfg.Format)
	flag("QUIET", &cfg.Quiet)
	flag("VERBOSE", &cfg.Verbose)

	str("JOURNALCTL", &cfg.Check.Journalctl)
	str("SPAN", &cfg.Check.Span)
	num("TIMEOUT", &cfg.Check.Timeout)
	num("LINES", &cfg.Check.Lines)
	num("BYTES", &cfg.Check.Bytes)
	if v := os.Getenv(envPrefix + "UNITS"); v != "" {
		cfg.Check.Units = splitList(v)
		applied = append(applied, envPrefix+"UNITS")
	}
	flag("USER", &cfg.Check.User)
	str("STATEFILE", &cfg.Check.StateFile)
	str("STATE_FORMAT", &cfg.Check.StateFormat)
	str("RULES", &cfg.Check.Rules)
	str("METRICS_FILE", &cfg.Check.MetricsFile)

	return applied
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := readInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}
