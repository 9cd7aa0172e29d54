package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the config file relative to project root.
	DefaultConfigPath = "scripts/component_config.yml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "COMPPRUNE"
)

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// LoadConfig loads configuration from the specified path, applies defaults,
// merges environment variables, and validates the result.
// If path is empty, it uses DefaultConfigPath relative to the working directory.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{
			Path:    path,
			Message: "config file not found",
			Err:     err,
		}
	}

	l.v.SetConfigFile(path)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to read config file",
			Err:     err,
		}
	}

	// Start with defaults so unset keys (including booleans that default
	// to true) keep their default value.
	cfg := NewConfig()

	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to parse config file",
			Err:     err,
		}
	}

	spec, err := readRemovalSpec(path)
	if err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to parse components_to_remove",
			Err:     err,
		}
	}
	cfg.ComponentsToRemove = spec

	l.applyEnvOverrides(cfg)

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from DefaultConfigPath in the specified directory.
func (l *Loader) LoadConfigFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, filepath.FromSlash(DefaultConfigPath))
	return l.LoadConfig(path)
}

// readRemovalSpec decodes components_to_remove with yaml.v3. Viper
// lower-cases map keys, which would corrupt component names used as
// mapping keys ("OpenAI: {files: [...]}").
func readRemovalSpec(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		ComponentsToRemove []any `yaml:"components_to_remove"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.ComponentsToRemove == nil {
		return []any{}, nil
	}
	return doc.ComponentsToRemove, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "_PATHS_COMPONENTS_DIR"); v != "" {
		cfg.Paths.ComponentsDir = v
	}

	if v := os.Getenv(EnvPrefix + "_DETECTOR_COMMAND"); v != "" {
		cfg.Detector.Command = strings.Fields(v)
	}
	if v := os.Getenv(EnvPrefix + "_DETECTOR_MARKER"); v != "" {
		cfg.Detector.Marker = v
	}
	if v := os.Getenv(EnvPrefix + "_DETECTOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Detector.Timeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "_DETECTOR_SKIP"); v != "" {
		cfg.Detector.Skip = parseBool(v)
	}

	if v := os.Getenv(EnvPrefix + "_PACKAGE_MANAGER_COMMAND"); v != "" {
		cfg.PackageManager.Command = strings.Fields(v)
	}
	if v := os.Getenv(EnvPrefix + "_PACKAGE_MANAGER_REMOVE_OPTIONAL"); v != "" {
		cfg.PackageManager.RemoveOptional = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "_PACKAGE_MANAGER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PackageManager.Timeout = d
		}
	}
	if v := os.Getenv(EnvPrefix + "_PACKAGE_MANAGER_SKIP"); v != "" {
		cfg.PackageManager.Skip = parseBool(v)
	}

	if v := os.Getenv(EnvPrefix + "_CONFIRM_MODE"); v != "" {
		cfg.Confirm.Mode = ConfirmMode(v)
	}

	if v := os.Getenv(EnvPrefix + "_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "_LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
}

// parseBool parses a string as a boolean value.
// Returns true for "true", "1", "yes" (case-insensitive).
// Returns false for anything else.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// viperDecodeHook composes the standard mapstructure hooks with our custom ones.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToCommandHookFunc(),
		stringToCustomTypeHookFunc(),
	)
}

// stringToCommandHookFunc lets command lists be written as a single string
// ("uv run deptry .") as well as a YAML list.
func stringToCommandHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
			return data, nil
		}
		return strings.Fields(data.(string)), nil
	}
}

// stringToCustomTypeHookFunc creates a decode hook for our custom types.
func stringToCustomTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		switch to {
		case reflect.TypeOf(ConfirmMode("")):
			return ConfirmMode(strings.ToLower(data.(string))), nil
		}

		return data, nil
	}
}

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the error is a missing config file.
func (e *LoadError) NotFound() bool {
	return os.IsNotExist(e.Err)
}

// Load is a convenience function that creates a new Loader and loads configuration.
// If path is empty, it uses DefaultConfigPath.
func Load(path string) (*Config, error) {
	return NewLoader().LoadConfig(path)
}

// LoadFromDir is a convenience function that loads configuration from a directory.
func LoadFromDir(dir string) (*Config, error) {
	return NewLoader().LoadConfigFromDir(dir)
}
