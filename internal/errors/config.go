package errors

import (
	"fmt"
	"strings"
)

// Configuration-related error constructors.

// ConfigNotFound creates an error for a missing configuration file.
func ConfigNotFound(configPath string) *Error {
	return &Error{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("configuration file not found: %s", configPath),
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Create a configuration file:

  Option 1: Write a sample config
    compprune init

  Option 2: Point at an existing file
    compprune --config path/to/component_config.yml`,
	}
}

// ConfigParseError creates an error for YAML parsing failures.
func ConfigParseError(configPath string, parseErr error) *Error {
	return &Error{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("failed to parse configuration: %s", configPath),
		Cause:   parseErr,
		Details: map[string]string{
			"path": configPath,
		},
		Suggestion: `Check the file for YAML syntax errors:
  - Lists need a '- ' prefix
  - Nested keys need consistent indentation (spaces, not tabs)
  - components_to_remove entries are either a name or a single-key mapping:
      components_to_remove:
        - alpha
        - beta:
            files: [x.py]`,
	}
}

// ConfigValidationError creates an error for invalid configuration values.
func ConfigValidationError(field, message string, validOptions []string) *Error {
	suggestion := fmt.Sprintf("Fix the %q field in the configuration file", field)
	if len(validOptions) > 0 {
		suggestion += fmt.Sprintf("\n  Valid options: %s", strings.Join(validOptions, ", "))
	}

	return &Error{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("invalid configuration: %s", message),
		Details: map[string]string{
			"field": field,
		},
		Suggestion: suggestion,
	}
}

// ConfigExists creates an error when init would overwrite a config file.
func ConfigExists(configPath string) *Error {
	return &Error{
		Kind:       ErrConfig,
		Message:    fmt.Sprintf("configuration file already exists: %s", configPath),
		Details:    map[string]string{"path": configPath},
		Suggestion: "Use --force to overwrite it.",
	}
}

// Project-related error constructors.

// ProjectRootNotFound creates an error when no project root can be detected.
func ProjectRootNotFound(startDir string) *Error {
	return &Error{
		Kind:    ErrProject,
		Message: "could not detect the project root",
		Details: map[string]string{
			"searched_from": startDir,
		},
		Suggestion: `Run compprune from inside the project, or pass it explicitly:
    compprune --project-dir /path/to/project

The project root is the first directory containing pyproject.toml, uv.lock or .git.`,
	}
}

// ComponentsRootNotFound creates an error when the components root is missing.
func ComponentsRootNotFound(path string) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("components directory not found: %s", path),
		Details: map[string]string{
			"path": path,
		},
		Suggestion: "Check paths.components_dir in the configuration file.",
	}
}
