package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdowellmdb/compprune/internal/errors"
)

func TestNewDetector(t *testing.T) {
	d := NewDetector()
	require.NotNil(t, d)
	assert.NotEmpty(t, d.Markers)
}

func TestDetectProject(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, dir string)
		wantNil     bool
		wantGit     bool
		wantUV      bool
		wantMarkers []string
	}{
		{
			name:    "empty directory",
			setup:   func(*testing.T, string) {},
			wantNil: true,
		},
		{
			name: "pyproject",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), nil, 0o644))
			},
			wantMarkers: []string{"pyproject.toml"},
		},
		{
			name: "uv project in git",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), nil, 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "uv.lock"), nil, 0o644))
				require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
			},
			wantGit:     true,
			wantUV:      true,
			wantMarkers: []string{"pyproject.toml", "uv.lock", ".git"},
		},
		{
			name: ".git file is not a marker",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: x"), 0o644))
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			info, err := NewDetector().DetectProject(dir)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, info)
				return
			}
			require.NotNil(t, info)
			assert.Equal(t, filepath.Base(dir), info.Name)
			assert.Equal(t, tt.wantGit, info.IsGitRepo)
			assert.Equal(t, tt.wantUV, info.IsUVProject)
			assert.Equal(t, tt.wantMarkers, info.Markers)
		})
	}
}

func TestDetectProject_InvalidPath(t *testing.T) {
	_, err := NewDetector().DetectProject(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewDetector().DetectProject(file)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindRoot_WalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), nil, 0o644))
	nested := filepath.Join(root, "src", "backend", "base")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	info, err := FindRoot(nested)
	require.NoError(t, err)

	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, info.Path)
}

func TestFindRoot_NearestWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	inner := filepath.Join(root, "packages", "lib")
	require.NoError(t, os.MkdirAll(inner, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inner, "pyproject.toml"), nil, 0o644))

	info, err := FindRoot(filepath.Join(inner))
	require.NoError(t, err)
	assert.Equal(t, "lib", info.Name)
}

func TestFindRoot_NotFound(t *testing.T) {
	d := &Detector{Markers: []ProjectMarker{{Name: "compprune-marker-that-does-not-exist"}}}

	_, err := d.FindRoot(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrProject)
}

func TestIsProjectDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, NewDetector().IsProjectDirectory(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "uv.lock"), nil, 0o644))
	assert.True(t, NewDetector().IsProjectDirectory(dir))
}
