// Package removal turns the components_to_remove configuration list into
// removal targets.
package removal

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/cdowellmdb/compprune/internal/logging"
)

// ErrMalformedEntry is returned for configuration entries that are neither a
// plain name nor a single-key mapping.
var ErrMalformedEntry = errors.New("malformed removal entry")

// Target is one unit of removal. Empty Files means the whole directory Name
// is removed; otherwise only the listed paths inside it.
type Target struct {
	Name  string   `json:"name"`
	Files []string `json:"files,omitempty"`
}

// WholeDirectory reports whether the target removes its entire directory.
func (t Target) WholeDirectory() bool {
	return len(t.Files) == 0
}

// Spec is an ordered list of targets. Duplicates are kept and processed
// independently.
type Spec []Target

// Names returns the target names in order.
func (s Spec) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}

// entryBody is the value side of a mapping entry ("beta: {files: [...]}").
type entryBody struct {
	Files []string `mapstructure:"files"`
}

// Resolve normalises one configuration entry.
func Resolve(entry any) (Target, error) {
	switch v := entry.(type) {
	case string:
		return newTarget(v, nil)
	case map[string]any:
		return resolveMapping(v)
	case map[any]any:
		// Older YAML decoders produce interface-keyed maps.
		m := make(map[string]any, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return Target{}, fmt.Errorf("%w: non-string key %v", ErrMalformedEntry, k)
			}
			m[key] = val
		}
		return resolveMapping(m)
	default:
		return Target{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedEntry, entry)
	}
}

func resolveMapping(m map[string]any) (Target, error) {
	if len(m) != 1 {
		return Target{}, fmt.Errorf("%w: mapping must have exactly one key, got %d", ErrMalformedEntry, len(m))
	}

	var name string
	var value any
	for k, v := range m {
		name, value = k, v
	}

	if value == nil {
		return newTarget(name, nil)
	}
	if _, ok := value.(map[string]any); !ok {
		if _, ok := value.(map[any]any); !ok {
			return Target{}, fmt.Errorf("%w: value of %q must be a mapping, got %T", ErrMalformedEntry, name, value)
		}
	}

	var body entryBody
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &body,
		ErrorUnused: false,
	})
	if err != nil {
		return Target{}, err
	}
	if err := decoder.Decode(value); err != nil {
		return Target{}, fmt.Errorf("%w: %q: %v", ErrMalformedEntry, name, err)
	}
	return newTarget(name, body.Files)
}

func newTarget(name string, files []string) (Target, error) {
	if strings.TrimSpace(name) == "" {
		return Target{}, fmt.Errorf("%w: empty component name", ErrMalformedEntry)
	}
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return Target{}, fmt.Errorf("%w: component name %q must stay inside the components directory", ErrMalformedEntry, name)
	}
	if filepath.Clean(local) == "." {
		return Target{}, fmt.Errorf("%w: component name %q names the components directory itself", ErrMalformedEntry, name)
	}
	for _, f := range files {
		if strings.TrimSpace(f) == "" || !filepath.IsLocal(filepath.FromSlash(f)) {
			return Target{}, fmt.Errorf("%w: file %q of %q must be a relative path inside the component", ErrMalformedEntry, f, name)
		}
	}
	if files == nil {
		files = []string{}
	}
	return Target{Name: name, Files: files}, nil
}

// ResolveAll resolves every entry in order. Malformed entries are logged and
// skipped; the rest of the batch is still resolved.
func ResolveAll(entries []any, logger *logging.Logger) Spec {
	if logger == nil {
		logger = logging.NewNoop()
	}

	spec := make(Spec, 0, len(entries))
	for i, entry := range entries {
		target, err := Resolve(entry)
		if err != nil {
			logger.Warn("skipping removal entry", "index", i, "error", err)
			continue
		}
		spec = append(spec, target)
	}
	return spec
}
