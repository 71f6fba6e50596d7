package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/dotcypress/kvs"
)

// Config holds the defaults used by the "new" command when a flag wasn't
// given explicitly on the command line.
type Config struct {
	Buckets     int    `json:"buckets,omitempty"`
	Slots       int    `json:"slots,omitempty"`
	MaxHops     int    `json:"max_hops,omitempty"` //nolint:tagliatelle
	Strategy    string `json:"strategy,omitempty"`
	MaxKeyLen   int    `json:"max_key_len,omitempty"`   //nolint:tagliatelle
	MaxValueLen int    `json:"max_value_len,omitempty"` //nolint:tagliatelle
}

// ConfigFileName is the project-local config file, checked in the current
// working directory.
const ConfigFileName = ".kvsh.json"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("reading config file")
	errConfigInvalid      = errors.New("invalid config")
	errBucketsEmpty       = errors.New("buckets must be set to a positive value if present")
)

// DefaultConfig is the baseline before any config file or flag is applied.
func DefaultConfig() Config {
	return Config{
		Buckets:     1021,
		Slots:       256,
		MaxHops:     32,
		Strategy:    "maxfit",
		MaxKeyLen:   255,
		MaxValueLen: 4096,
	}
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/kvsh/config.json or
// ~/.config/kvsh/config.json.
func getGlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "kvsh", "config.json")
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kvsh", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "kvsh", "config.json")
	}

	return ""
}

// LoadConfig resolves the effective configuration with the following
// precedence (highest wins):
//
//  1. DefaultConfig
//  2. Global user config (~/.config/kvsh/config.json)
//  3. Project config (.kvsh.json in workDir), or an explicit --config file
//  4. CLI flags, applied by the caller after LoadConfig returns
func LoadConfig(workDir, configPath string, env []string) (Config, error) {
	cfg := DefaultConfig()

	globalCfg, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, err
	}
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, err
	}
	cfg = mergeConfig(cfg, projectCfg)

	return cfg, nil
}

func loadGlobalConfig(env []string) (Config, error) {
	path := getGlobalConfigPath(env)
	if path == "" {
		return Config{}, nil
	}

	cfg, loaded, err := loadConfigFile(path, false)
	if err != nil || !loaded {
		return Config{}, err
	}

	return cfg, nil
}

func loadProjectConfig(workDir, configPath string) (Config, error) {
	var (
		path      string
		mustExist bool
	)

	if configPath != "" {
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		mustExist = true

		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("%w: %s", errConfigFileNotFound, configPath)
		}
	} else {
		path = filepath.Join(workDir, ConfigFileName)
	}

	cfg, loaded, err := loadConfigFile(path, mustExist)
	if err != nil || !loaded {
		return Config{}, err
	}

	return cfg, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}
		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", errConfigFileRead, path)
		}
		return Config{}, false, nil
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Buckets != 0 {
		base.Buckets = overlay.Buckets
	}
	if overlay.Slots != 0 {
		base.Slots = overlay.Slots
	}
	if overlay.MaxHops != 0 {
		base.MaxHops = overlay.MaxHops
	}
	if overlay.Strategy != "" {
		base.Strategy = overlay.Strategy
	}
	if overlay.MaxKeyLen != 0 {
		base.MaxKeyLen = overlay.MaxKeyLen
	}
	if overlay.MaxValueLen != 0 {
		base.MaxValueLen = overlay.MaxValueLen
	}
	return base
}

func validateConfig(cfg Config) error {
	if cfg.Buckets <= 0 {
		return errBucketsEmpty
	}
	return nil
}

func parseStrategy(s string) (kvs.AllocStrategy, error) {
	switch strings.ToLower(s) {
	case "maxfit", "":
		return kvs.AllocMaxFit, nil
	case "minfit":
		return kvs.AllocMinFit, nil
	case "firstfit":
		return kvs.AllocFirstFit, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q (want maxfit, minfit or firstfit)", errConfigInvalid, s)
	}
}
