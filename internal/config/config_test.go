package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Empty(t, cfg.ComponentsToRemove)
	assert.NotNil(t, cfg.ComponentsToRemove)
	assert.Equal(t, DefaultComponentsDir, cfg.Paths.ComponentsDir)
	assert.Equal(t, []string{"uv", "run", "deptry", "."}, cfg.Detector.Command)
	assert.Equal(t, "DEP002", cfg.Detector.Marker)
	assert.Equal(t, []string{"uv"}, cfg.PackageManager.Command)
	assert.True(t, cfg.PackageManager.RemoveOptional)
	assert.Equal(t, ConfirmModePrompt, cfg.Confirm.Mode)
	assert.Equal(t, DefaultLogDir, cfg.Log.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultCommandsAreFreshSlices(t *testing.T) {
	a := DefaultDetectorCommand()
	a[0] = "changed"
	assert.Equal(t, "uv", DefaultDetectorCommand()[0])
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.NotNil(t, cfg.ComponentsToRemove)
	assert.Equal(t, DefaultComponentsDir, cfg.Paths.ComponentsDir)
	assert.Equal(t, DefaultDetectorCommand(), cfg.Detector.Command)
	assert.Equal(t, DefaultMarker, cfg.Detector.Marker)
	assert.Equal(t, DefaultPackageManagerCommand(), cfg.PackageManager.Command)
	assert.Equal(t, ConfirmModePrompt, cfg.Confirm.Mode)
	assert.NotNil(t, cfg.Hooks.PostComponents)
	assert.NotNil(t, cfg.Hooks.PostDependencies)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	// An explicitly empty log dir disables file logging and is preserved.
	assert.Empty(t, cfg.Log.Dir)
}

func TestConfig_ApplyDefaults_PreservesExistingValues(t *testing.T) {
	cfg := &Config{
		ComponentsToRemove: []any{"Notion"},
		Paths:              PathsConfig{ComponentsDir: "components"},
		Detector:           DetectorConfig{Command: []string{"deptry", "."}, Marker: "DEP001"},
		PackageManager:     PackageManagerConfig{Command: []string{"pdm"}},
		Confirm:            ConfirmConfig{Mode: ConfirmModeAuto},
		Log:                LogConfig{Level: "debug"},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, []any{"Notion"}, cfg.ComponentsToRemove)
	assert.Equal(t, "components", cfg.Paths.ComponentsDir)
	assert.Equal(t, []string{"deptry", "."}, cfg.Detector.Command)
	assert.Equal(t, "DEP001", cfg.Detector.Marker)
	assert.Equal(t, []string{"pdm"}, cfg.PackageManager.Command)
	assert.Equal(t, ConfirmModeAuto, cfg.Confirm.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_ComponentsRoot(t *testing.T) {
	cfg := NewConfig()
	cfg.Paths.ComponentsDir = "pkg/components"

	root := filepath.Join("tmp", "proj")
	assert.Equal(t, filepath.Join(root, "pkg", "components"), cfg.ComponentsRoot(root))
}

func TestConfig_LogDir(t *testing.T) {
	cfg := NewConfig()
	root := filepath.Join("tmp", "proj")

	assert.Equal(t, filepath.Join(root, ".compprune", "logs"), cfg.LogDir(root))

	cfg.Log.Dir = ""
	assert.Empty(t, cfg.LogDir(root))

	abs, err := filepath.Abs("logs")
	require.NoError(t, err)
	cfg.Log.Dir = abs
	assert.Equal(t, abs, cfg.LogDir(root))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty components dir",
			mutate: func(c *Config) { c.Paths.ComponentsDir = "" },
			field:  "paths.components_dir",
		},
		{
			name:   "components dir escapes project",
			mutate: func(c *Config) { c.Paths.ComponentsDir = "../elsewhere" },
			field:  "paths.components_dir",
		},
		{
			name:   "empty detector command",
			mutate: func(c *Config) { c.Detector.Command = nil },
			field:  "detector.command",
		},
		{
			name:   "blank detector marker",
			mutate: func(c *Config) { c.Detector.Marker = "  " },
			field:  "detector.marker",
		},
		{
			name:   "negative detector timeout",
			mutate: func(c *Config) { c.Detector.Timeout = -time.Second },
			field:  "detector.timeout",
		},
		{
			name:   "empty package manager command",
			mutate: func(c *Config) { c.PackageManager.Command = []string{""} },
			field:  "package_manager.command",
		},
		{
			name:   "negative package manager timeout",
			mutate: func(c *Config) { c.PackageManager.Timeout = -time.Second },
			field:  "package_manager.timeout",
		},
		{
			name:   "unknown confirm mode",
			mutate: func(c *Config) { c.Confirm.Mode = "maybe" },
			field:  "confirm.mode",
		},
		{
			name: "hook without command",
			mutate: func(c *Config) {
				c.Hooks.PostDependencies = []HookDefinition{{Name: "relock"}}
			},
			field: "hooks.post_dependencies[0].command",
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Log.Level = "loud" },
			field:  "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var errs ValidationErrors
			require.True(t, errors.As(err, &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestConfig_Validate_SkippedDetectorIgnoresCommands(t *testing.T) {
	cfg := NewConfig()
	cfg.Detector.Skip = true
	cfg.Detector.Command = nil
	cfg.Detector.Marker = ""
	cfg.PackageManager.Command = nil

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ValidConfirmModes(t *testing.T) {
	for _, mode := range ValidConfirmModes {
		t.Run(mode, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Confirm.Mode = ConfirmMode(mode)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.Paths.ComponentsDir = ""
	cfg.Confirm.Mode = "never"
	cfg.Log.Level = "chatty"

	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 3)
	assert.Contains(t, err.Error(), "multiple validation errors:")
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Empty(t, ValidationErrors{}.Error())

	single := ValidationErrors{{Field: "a", Message: "bad"}}
	assert.Equal(t, "a: bad", single.Error())

	multi := ValidationErrors{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}
	assert.Equal(t, "multiple validation errors:\n  - a: bad\n  - b: worse", multi.Error())
}
