package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cdowellmdb/compprune/internal/config"
	cperrors "github.com/cdowellmdb/compprune/internal/errors"
	"github.com/cdowellmdb/compprune/internal/project"
)

// SetupResult contains the results of the setup flow.
type SetupResult struct {
	// ConfigPath is the sample configuration that was written.
	ConfigPath string
	// LogDir is the log directory that was created, if any.
	LogDir string
	// GitignoreUpdated is true if the log directory was added to .gitignore.
	GitignoreUpdated bool
}

// SetupProgressFunc is called with progress updates during setup.
type SetupProgressFunc func(status string)

// Setup prepares a project for compprune: a sample configuration, the log
// directory and a .gitignore entry for it.
type Setup struct {
	// ProjectDir is the root directory of the project.
	ProjectDir string
	// ConfigPath is where the sample configuration is written.
	// Relative paths are resolved against ProjectDir.
	ConfigPath string
	// Force overwrites an existing configuration file.
	Force bool
	// OnProgress is called with status updates.
	OnProgress SetupProgressFunc
}

// NewSetup creates a Setup writing the configuration to its default location.
func NewSetup(projectDir string) *Setup {
	return &Setup{
		ProjectDir: projectDir,
		ConfigPath: config.DefaultConfigPath,
		OnProgress: func(status string) {}, // noop by default
	}
}

// NeedsSetup returns true if the project has no configuration file yet.
func NeedsSetup(projectDir string) bool {
	_, err := os.Stat(filepath.Join(projectDir, config.DefaultConfigPath))
	return os.IsNotExist(err)
}

// Run writes the sample configuration and prepares the log directory.
func (s *Setup) Run() (*SetupResult, error) {
	configPath := s.resolve(s.ConfigPath)

	if err := config.WriteSample(configPath, s.Force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, cperrors.ConfigExists(configPath)
		}
		return nil, fmt.Errorf("failed to write configuration: %w", err)
	}
	s.report(fmt.Sprintf("Created %s", s.display(configPath)))

	result := &SetupResult{ConfigPath: configPath}

	logDir := config.NewConfig().LogDir(s.ProjectDir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	result.LogDir = logDir
	s.report(fmt.Sprintf("Created %s", s.display(logDir)))

	updated, err := s.ignoreLogDir()
	if err != nil {
		// Non-fatal, the project works without it
		s.report(fmt.Sprintf("Warning: failed to update .gitignore: %v", err))
	}
	result.GitignoreUpdated = updated

	return result, nil
}

// ignoreLogDir adds the tool's state directory to .gitignore in git projects.
func (s *Setup) ignoreLogDir() (bool, error) {
	info, err := project.NewDetector().DetectProject(s.ProjectDir)
	if err != nil || info == nil || !info.IsGitRepo {
		return false, err
	}

	entry := "/" + strings.SplitN(config.DefaultLogDir, "/", 2)[0] + "/"
	path := filepath.Join(s.ProjectDir, ".gitignore")

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return false, nil
		}
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(entry)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return false, err
	}
	s.report(fmt.Sprintf("Added %s to .gitignore", entry))
	return true, nil
}

func (s *Setup) resolve(path string) string {
	if path == "" {
		path = config.DefaultConfigPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.ProjectDir, path)
}

func (s *Setup) display(path string) string {
	rel, err := filepath.Rel(s.ProjectDir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return path
	}
	return filepath.ToSlash(rel)
}

// report calls the progress callback.
func (s *Setup) report(status string) {
	if s.OnProgress != nil {
		s.OnProgress(status)
	}
}
