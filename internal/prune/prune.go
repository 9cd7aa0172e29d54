// Package prune deletes component directories, or selected files inside
// them, from the components tree.
package prune

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cdowellmdb/compprune/internal/logging"
	"github.com/cdowellmdb/compprune/internal/removal"
)

// Status is the outcome of pruning one target.
type Status string

const (
	// StatusRemoved means every planned deletion succeeded.
	StatusRemoved Status = "removed"
	// StatusIncomplete means some deletions failed or were skipped.
	StatusIncomplete Status = "incomplete"
	// StatusMissing means there was nothing to delete.
	StatusMissing Status = "missing"
	// StatusPlanned means a dry run computed deletions without performing them.
	StatusPlanned Status = "planned"
	// StatusDeclined means the target was not confirmed.
	StatusDeclined Status = "declined"
)

// Result is the outcome of pruning one target.
type Result struct {
	Target removal.Target `json:"target"`
	// Dir is the target directory on disk.
	Dir    string `json:"dir"`
	Status Status `json:"status"`
	// RemovedFiles lists files and symlinks deleted (or planned), relative to Dir.
	RemovedFiles []string `json:"removed_files,omitempty"`
	// RemovedDirs lists directories deleted (or planned), relative to Dir.
	// The target directory itself is ".".
	RemovedDirs []string `json:"removed_dirs,omitempty"`
	// MissingFiles lists requested files that were not regular files on disk.
	MissingFiles []string `json:"missing_files,omitempty"`
	// Warnings collects partial failures. They never abort the target.
	Warnings []string `json:"warnings,omitempty"`
}

// Declined builds the result for a target that was not confirmed.
func Declined(t removal.Target, dir string, reason string) Result {
	r := Result{Target: t, Dir: dir, Status: StatusDeclined}
	if reason != "" {
		r.Warnings = []string{reason}
	}
	return r
}

// Pruner deletes targets below a components root.
type Pruner struct {
	fs     afero.Fs
	root   string
	logger *logging.Logger

	// DryRun computes the deletions without performing them.
	DryRun bool
}

// New creates a Pruner operating on fs below root.
func New(fs afero.Fs, root string, logger *logging.Logger) *Pruner {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Pruner{fs: fs, root: root, logger: logger}
}

// Root returns the components root.
func (p *Pruner) Root() string {
	return p.root
}

// Dir returns the on-disk directory for a target.
func (p *Pruner) Dir(t removal.Target) string {
	return filepath.Join(p.root, filepath.FromSlash(t.Name))
}

// Prune deletes the target. It never returns an error: failures are
// collected in the result and the caller moves on to the next target.
func (p *Pruner) Prune(t removal.Target) Result {
	dir := p.Dir(t)
	res := Result{Target: t, Dir: dir}
	log := p.logger.With("component", t.Name, "dir", dir)

	if filepath.Clean(dir) == filepath.Clean(p.root) {
		log.Warn("target resolves to the components root, skipping")
		res.Status = StatusMissing
		return res
	}

	info, err := p.lstat(dir)
	switch {
	case os.IsNotExist(err):
		log.Info("component directory does not exist")
		res.Status = StatusMissing
		return res
	case err != nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("stat %s: %v", dir, err))
		log.Warn("cannot inspect component directory", "error", err)
		res.Status = StatusIncomplete
		return res
	case !info.IsDir():
		log.Warn("component path is not a directory, skipping", "mode", info.Mode().String())
		res.Status = StatusMissing
		return res
	}

	if t.WholeDirectory() {
		p.pruneTree(dir, &res, log)
	} else {
		p.pruneFiles(dir, t.Files, &res, log)
	}

	res.Status = p.status(t, &res)
	return res
}

// pruneTree removes every file and symlink under dir, then the directories
// bottom-up. Links are never followed.
func (p *Pruner) pruneTree(dir string, res *Result, log *logging.Logger) {
	var files, dirs []string

	walkErr := afero.Walk(p.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("walk %s: %v", path, err))
			log.Warn("cannot read path", "path", path, "error", err)
			return nil
		}
		switch mode := info.Mode(); {
		case mode.IsDir():
			dirs = append(dirs, path)
		case mode.IsRegular(), mode&os.ModeSymlink != 0:
			files = append(files, path)
		default:
			res.Warnings = append(res.Warnings, fmt.Sprintf("skipped special file %s (%s)", p.rel(dir, path), mode.Type()))
			log.Warn("skipping special file", "path", path, "mode", mode.String())
		}
		return nil
	})
	if walkErr != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("walk %s: %v", dir, walkErr))
	}

	for _, f := range files {
		if p.remove(f, log, res) {
			res.RemovedFiles = append(res.RemovedFiles, p.rel(dir, f))
		}
	}
	// Walk visits parents before children, so reverse order is bottom-up.
	for i := len(dirs) - 1; i >= 0; i-- {
		if p.remove(dirs[i], log, res) {
			res.RemovedDirs = append(res.RemovedDirs, p.rel(dir, dirs[i]))
		}
	}

	if p.DryRun {
		log.Info("would delete component directory", "files", len(res.RemovedFiles), "dirs", len(res.RemovedDirs))
	} else {
		log.Info("deleted component directory", "files", len(res.RemovedFiles), "dirs", len(res.RemovedDirs))
	}
}

// pruneFiles removes only the listed files. The directory itself stays.
func (p *Pruner) pruneFiles(dir string, files []string, res *Result, log *logging.Logger) {
	for _, name := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))

		if !p.regularFileWithin(dir, path) {
			log.Info("file not found", "file", name)
			res.MissingFiles = append(res.MissingFiles, name)
			continue
		}
		if p.remove(path, log, res) {
			res.RemovedFiles = append(res.RemovedFiles, name)
			if p.DryRun {
				log.Info("would delete file", "file", name)
			} else {
				log.Info("deleted file", "file", name)
			}
		}
	}
}

// regularFileWithin reports whether path is a regular file reached from dir
// through real directories only.
func (p *Pruner) regularFileWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	cur := dir
	for i, part := range parts {
		cur = filepath.Join(cur, part)
		info, err := p.lstat(cur)
		if err != nil {
			return false
		}
		if i == len(parts)-1 {
			return info.Mode().IsRegular()
		}
		if !info.IsDir() {
			return false
		}
	}
	return false
}

func (p *Pruner) remove(path string, log *logging.Logger, res *Result) bool {
	if p.DryRun {
		return true
	}
	if err := p.fs.Remove(path); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("remove %s: %v", path, err))
		log.Warn("failed to delete", "path", path, "error", err)
		return false
	}
	return true
}

func (p *Pruner) status(t removal.Target, res *Result) Status {
	switch {
	case len(res.Warnings) > 0:
		return StatusIncomplete
	case !t.WholeDirectory() && len(res.RemovedFiles) == 0:
		return StatusMissing
	case p.DryRun:
		return StatusPlanned
	default:
		return StatusRemoved
	}
}

func (p *Pruner) lstat(path string) (os.FileInfo, error) {
	if l, ok := p.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return p.fs.Stat(path)
}

func (p *Pruner) rel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Summary counts results by status.
type Summary struct {
	Total      int `json:"total"`
	Removed    int `json:"removed"`
	Planned    int `json:"planned"`
	Missing    int `json:"missing"`
	Declined   int `json:"declined"`
	Incomplete int `json:"incomplete"`
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusRemoved:
			s.Removed++
		case StatusPlanned:
			s.Planned++
		case StatusMissing:
			s.Missing++
		case StatusDeclined:
			s.Declined++
		case StatusIncomplete:
			s.Incomplete++
		}
	}
	return s
}
