package errors

import (
	"fmt"
	"strings"
)

// CommandNotFound creates an error for an executable missing from PATH.
func CommandNotFound(name string, cause error) *Error {
	suggestion := fmt.Sprintf("Install %q or adjust the configured command.", name)
	if name == "uv" {
		suggestion = `Install uv:
    curl -LsSf https://astral.sh/uv/install.sh | sh

or set package_manager.command / detector.command in the configuration file.`
	}
	return &Error{
		Kind:       ErrCommand,
		Message:    fmt.Sprintf("command not found: %s", name),
		Cause:      cause,
		Details:    map[string]string{"command": name},
		Suggestion: suggestion,
	}
}

// CommandStartFailed creates an error for a command that could not be started.
func CommandStartFailed(args []string, cause error) *Error {
	return &Error{
		Kind:    ErrCommand,
		Message: "failed to start command",
		Cause:   cause,
		Details: map[string]string{"command": strings.Join(args, " ")},
	}
}

// InputReadFailed creates an error for interactive input that could not be read.
func InputReadFailed(cause error) *Error {
	return &Error{
		Kind:       ErrInput,
		Message:    "failed to read confirmation input",
		Cause:      cause,
		Suggestion: "Run with --yes to approve every target without prompting.",
	}
}
