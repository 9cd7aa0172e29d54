// Package config provides configuration data structures for compprune.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete compprune configuration.
type Config struct {
	// ComponentsToRemove is the raw removal specification: plain names and
	// single-key mappings. It is decoded with yaml.v3 rather than viper so
	// component names keep their case.
	ComponentsToRemove []any `mapstructure:"-" yaml:"components_to_remove" json:"components_to_remove"`

	Paths          PathsConfig          `mapstructure:"paths"           yaml:"paths"           json:"paths"`
	Detector       DetectorConfig       `mapstructure:"detector"        yaml:"detector"        json:"detector"`
	PackageManager PackageManagerConfig `mapstructure:"package_manager" yaml:"package_manager" json:"package_manager"`
	Confirm        ConfirmConfig        `mapstructure:"confirm"         yaml:"confirm"         json:"confirm"`
	Hooks          HooksConfig          `mapstructure:"hooks"           yaml:"hooks"           json:"hooks"`
	Log            LogConfig            `mapstructure:"log"             yaml:"log"             json:"log"`
}

// PathsConfig locates the components tree inside the project.
type PathsConfig struct {
	// ComponentsDir is the components root, relative to the project root.
	ComponentsDir string `mapstructure:"components_dir" yaml:"components_dir" json:"components_dir"`
}

// DetectorConfig configures the external unused-dependency detector.
type DetectorConfig struct {
	// Command is the detector invocation, run from the project root.
	Command []string `mapstructure:"command" yaml:"command" json:"command"`
	// Marker is the rule code that flags an unused dependency in the report.
	Marker string `mapstructure:"marker" yaml:"marker" json:"marker"`
	// Timeout bounds the detector run. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	// Skip disables the dependency stage entirely.
	Skip bool `mapstructure:"skip" yaml:"skip" json:"skip"`
}

// PackageManagerConfig configures dependency removal.
type PackageManagerConfig struct {
	// Command is the package manager executable plus any leading arguments.
	// "remove <dep>" is appended for each removal.
	Command []string `mapstructure:"command" yaml:"command" json:"command"`
	// RemoveOptional enables the optional-group fallback (default: true).
	RemoveOptional bool `mapstructure:"remove_optional" yaml:"remove_optional" json:"remove_optional"`
	// Timeout bounds each removal invocation. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	// Skip disables dependency removal while still running the detector.
	Skip bool `mapstructure:"skip" yaml:"skip" json:"skip"`
}

// ConfirmMode selects how removal targets are approved.
type ConfirmMode string

const (
	// ConfirmModePrompt asks on the console for each target.
	ConfirmModePrompt ConfirmMode = "prompt"
	// ConfirmModeAuto approves every target without asking.
	ConfirmModeAuto ConfirmMode = "auto"
	// ConfirmModeManifest approves only targets listed in confirm.approved.
	ConfirmModeManifest ConfirmMode = "manifest"
	// ConfirmModeTUI asks through a terminal dialog.
	ConfirmModeTUI ConfirmMode = "tui"
)

// ValidConfirmModes lists the accepted confirm.mode values.
var ValidConfirmModes = []string{
	string(ConfirmModePrompt),
	string(ConfirmModeAuto),
	string(ConfirmModeManifest),
	string(ConfirmModeTUI),
}

// ConfirmConfig configures the confirmation gate.
type ConfirmConfig struct {
	// Mode selects the confirmer (default: prompt).
	Mode ConfirmMode `mapstructure:"mode" yaml:"mode" json:"mode"`
	// Approved lists component names pre-approved in manifest mode.
	Approved []string `mapstructure:"approved" yaml:"approved" json:"approved"`
}

// HookDefinition defines a single post-stage shell hook.
type HookDefinition struct {
	// Name labels the hook in logs. Defaults to the command.
	Name string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	// Command is run with sh -c from the project root.
	Command string `mapstructure:"command" yaml:"command" json:"command"`
}

// HooksConfig configures hooks that run after each stage.
type HooksConfig struct {
	// PostComponents hooks run after the component stage.
	PostComponents []HookDefinition `mapstructure:"post_components" yaml:"post_components" json:"post_components"`
	// PostDependencies hooks run after the dependency stage.
	PostDependencies []HookDefinition `mapstructure:"post_dependencies" yaml:"post_dependencies" json:"post_dependencies"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Dir is the log directory, relative to the project root. Empty disables file logging.
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
	// Level is the minimum level: debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// JSON writes JSON lines to the console instead of the pretty format.
	JSON bool `mapstructure:"json" yaml:"json" json:"json"`
}

// Default values.
const (
	DefaultComponentsDir = "src/backend/base/langflow/components"
	DefaultMarker        = "DEP002"
	DefaultLogDir        = ".compprune/logs"
	DefaultLogLevel      = "info"
)

// DefaultDetectorCommand is the default unused-dependency detector.
func DefaultDetectorCommand() []string {
	return []string{"uv", "run", "deptry", "."}
}

// DefaultPackageManagerCommand is the default package manager.
func DefaultPackageManagerCommand() []string {
	return []string{"uv"}
}

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		ComponentsToRemove: []any{},
		Paths: PathsConfig{
			ComponentsDir: DefaultComponentsDir,
		},
		Detector: DetectorConfig{
			Command: DefaultDetectorCommand(),
			Marker:  DefaultMarker,
		},
		PackageManager: PackageManagerConfig{
			Command:        DefaultPackageManagerCommand(),
			RemoveOptional: true,
		},
		Confirm: ConfirmConfig{
			Mode:     ConfirmModePrompt,
			Approved: []string{},
		},
		Hooks: HooksConfig{
			PostComponents:   []HookDefinition{},
			PostDependencies: []HookDefinition{},
		},
		Log: LogConfig{
			Dir:   DefaultLogDir,
			Level: DefaultLogLevel,
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.ComponentsToRemove == nil {
		c.ComponentsToRemove = defaults.ComponentsToRemove
	}
	if c.Paths.ComponentsDir == "" {
		c.Paths.ComponentsDir = defaults.Paths.ComponentsDir
	}
	if len(c.Detector.Command) == 0 {
		c.Detector.Command = defaults.Detector.Command
	}
	if c.Detector.Marker == "" {
		c.Detector.Marker = defaults.Detector.Marker
	}
	if len(c.PackageManager.Command) == 0 {
		c.PackageManager.Command = defaults.PackageManager.Command
	}
	// RemoveOptional defaults to true, but an explicit false cannot be told
	// apart from unset here. The loader decodes onto NewConfig() instead.
	if c.Confirm.Mode == "" {
		c.Confirm.Mode = defaults.Confirm.Mode
	}
	if c.Confirm.Approved == nil {
		c.Confirm.Approved = defaults.Confirm.Approved
	}
	if c.Hooks.PostComponents == nil {
		c.Hooks.PostComponents = defaults.Hooks.PostComponents
	}
	if c.Hooks.PostDependencies == nil {
		c.Hooks.PostDependencies = defaults.Hooks.PostDependencies
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// ComponentsRoot returns the absolute components root for a project.
func (c *Config) ComponentsRoot(projectDir string) string {
	return filepath.Join(projectDir, filepath.FromSlash(c.Paths.ComponentsDir))
}

// LogDir returns the log directory for a project, or "" when disabled.
func (c *Config) LogDir(projectDir string) string {
	if c.Log.Dir == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.Dir) {
		return c.Log.Dir
	}
	return filepath.Join(projectDir, filepath.FromSlash(c.Log.Dir))
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
// The removal specification itself is not validated here: malformed
// entries are skipped one by one when the spec is resolved.
func (c *Config) Validate() error {
	var errs ValidationErrors

	dir := filepath.FromSlash(c.Paths.ComponentsDir)
	switch {
	case c.Paths.ComponentsDir == "":
		errs = append(errs, &ValidationError{Field: "paths.components_dir", Message: "must not be empty"})
	case filepath.IsAbs(dir) || !filepath.IsLocal(dir):
		errs = append(errs, &ValidationError{Field: "paths.components_dir", Message: "must be a relative path inside the project"})
	}

	if !c.Detector.Skip {
		if len(c.Detector.Command) == 0 || strings.TrimSpace(c.Detector.Command[0]) == "" {
			errs = append(errs, &ValidationError{Field: "detector.command", Message: "must not be empty"})
		}
		if strings.TrimSpace(c.Detector.Marker) == "" {
			errs = append(errs, &ValidationError{Field: "detector.marker", Message: "must not be empty"})
		}
	}
	if c.Detector.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "detector.timeout", Message: "must be non-negative"})
	}

	if !c.PackageManager.Skip && !c.Detector.Skip {
		if len(c.PackageManager.Command) == 0 || strings.TrimSpace(c.PackageManager.Command[0]) == "" {
			errs = append(errs, &ValidationError{Field: "package_manager.command", Message: "must not be empty"})
		}
	}
	if c.PackageManager.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "package_manager.timeout", Message: "must be non-negative"})
	}

	if c.Confirm.Mode != "" {
		switch c.Confirm.Mode {
		case ConfirmModePrompt, ConfirmModeAuto, ConfirmModeManifest, ConfirmModeTUI:
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "confirm.mode",
				Message: "must be one of " + strings.Join(ValidConfirmModes, ", "),
			})
		}
	}

	for i, hook := range c.Hooks.PostComponents {
		if err := validateHook(hook, "hooks.post_components", i); err != nil {
			errs = append(errs, err)
		}
	}
	for i, hook := range c.Hooks.PostDependencies {
		if err := validateHook(hook, "hooks.post_dependencies", i); err != nil {
			errs = append(errs, err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		// valid
	default:
		errs = append(errs, &ValidationError{Field: "log.level", Message: "must be debug, info, warn or error"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHook(hook HookDefinition, prefix string, index int) *ValidationError {
	if strings.TrimSpace(hook.Command) == "" {
		return &ValidationError{
			Field:   fmt.Sprintf("%s[%d].command", prefix, index),
			Message: "must not be empty",
		}
	}
	return nil
}
