// Package project locates the Python project compprune operates on.
package project

import (
	"os"
	"path/filepath"

	"github.com/cdowellmdb/compprune/internal/errors"
)

// ProjectInfo contains information about a detected project.
type ProjectInfo struct {
	// Path is the absolute path to the project directory.
	Path string `json:"path"`
	// Name is the project name (usually the directory name).
	Name string `json:"name"`
	// IsGitRepo indicates whether this is a git repository.
	IsGitRepo bool `json:"is_git_repo"`
	// IsUVProject indicates a uv lockfile is present.
	IsUVProject bool `json:"is_uv_project"`
	// Markers are the project markers found.
	Markers []string `json:"markers,omitempty"`
}

// ProjectMarker represents a file or directory that marks a project root.
type ProjectMarker struct {
	// Name is the file or directory name to look for.
	Name string
	// IsDir indicates whether this is a directory marker.
	IsDir bool
}

// DefaultMarkers are the project markers checked during detection.
var DefaultMarkers = []ProjectMarker{
	{Name: "pyproject.toml", IsDir: false},
	{Name: "uv.lock", IsDir: false},
	{Name: ".git", IsDir: true},
}

// Detector detects project directories.
type Detector struct {
	// Markers are the project markers to check.
	Markers []ProjectMarker
}

// NewDetector creates a new Detector with default markers.
func NewDetector() *Detector {
	return &Detector{
		Markers: DefaultMarkers,
	}
}

// DetectProject checks if a directory is a project root.
// Returns ProjectInfo if the directory carries a marker, or nil if not.
func (d *Detector) DetectProject(dir string) (*ProjectInfo, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}

	project := &ProjectInfo{
		Path:    absPath,
		Name:    filepath.Base(absPath),
		Markers: []string{},
	}

	for _, marker := range d.Markers {
		if !checkMarker(absPath, marker) {
			continue
		}
		project.Markers = append(project.Markers, marker.Name)
		switch marker.Name {
		case ".git":
			project.IsGitRepo = true
		case "uv.lock":
			project.IsUVProject = true
		}
	}

	if len(project.Markers) == 0 {
		return nil, nil
	}

	return project, nil
}

// FindRoot walks up from start to the first directory that carries a marker.
func (d *Detector) FindRoot(start string) (*ProjectInfo, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	for {
		project, err := d.DetectProject(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if project != nil {
			return project, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errors.ProjectRootNotFound(start)
		}
		dir = parent
	}
}

// IsProjectDirectory returns true if the directory appears to be a project root.
func (d *Detector) IsProjectDirectory(dir string) bool {
	project, err := d.DetectProject(dir)
	return err == nil && project != nil
}

// FindRoot locates the project root above start using the default markers.
func FindRoot(start string) (*ProjectInfo, error) {
	return NewDetector().FindRoot(start)
}

// checkMarker checks if a specific marker exists in the directory.
func checkMarker(dir string, marker ProjectMarker) bool {
	info, err := os.Stat(filepath.Join(dir, marker.Name))
	if err != nil {
		return false
	}
	return info.IsDir() == marker.IsDir
}
