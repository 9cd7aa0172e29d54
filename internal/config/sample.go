package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SampleConfig is the annotated config written by `compprune init`.
const SampleConfig = `# compprune configuration.
#
# Components to remove, relative to paths.components_dir. A plain name
# removes the whole directory. A mapping with a files list removes only
# those files and keeps the directory.
components_to_remove:
  # - Notion
  # - OpenAI:
  #     files:
  #       - openai_chat.py
  #       - openai_embeddings.py

paths:
  components_dir: src/backend/base/langflow/components

detector:
  command: [uv, run, deptry, .]
  marker: DEP002
  timeout: 0s
  skip: false

package_manager:
  command: [uv]
  remove_optional: true
  timeout: 0s
  skip: false

confirm:
  # prompt, auto, manifest or tui
  mode: prompt
  approved: []

hooks:
  post_components: []
  post_dependencies: []
  # post_dependencies:
  #   - name: relock
  #     command: uv lock

log:
  dir: .compprune/logs
  level: info
  json: false
`

// WriteSample writes SampleConfig to path, creating parent directories.
// An existing file is only replaced when force is set.
func WriteSample(path string, force bool) error {
	if path == "" {
		path = DefaultConfigPath
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return &LoadError{Path: path, Message: "config file already exists", Err: os.ErrExist}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(SampleConfig), 0o644) //#nosec G306 -- config is meant to be shared
}

// Save writes cfg to path as YAML, creating parent directories.
// If path is empty, it uses DefaultConfigPath.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644) //#nosec G306 -- config is meant to be shared
}
