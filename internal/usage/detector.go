package usage

import (
	"context"
	"errors"
	"os/exec"
	"time"

	cperrors "github.com/cdowellmdb/compprune/internal/errors"
	"github.com/cdowellmdb/compprune/internal/logging"
	"github.com/cdowellmdb/compprune/internal/shell"
)

// Detector runs the external unused-dependency detector.
type Detector struct {
	Runner  shell.Runner
	Dir     string
	Command []string
	// Timeout bounds the run. Zero means no timeout.
	Timeout time.Duration
	Logger  *logging.Logger
}

// Run executes the detector and returns its combined stdout and stderr.
// The detector exits non-zero whenever it has findings, so the exit status
// is ignored. Only a failure to run the process is an error.
func (d *Detector) Run(ctx context.Context) (string, error) {
	if len(d.Command) == 0 {
		return "", cperrors.New(cperrors.ErrConfig, "detector command is empty")
	}

	log := d.Logger
	if log == nil {
		log = logging.NewNoop()
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	cmd := shell.Command{Name: d.Command[0], Args: d.Command[1:], Dir: d.Dir}
	log.Debug("running detector", "command", cmd.String(), "dir", d.Dir)

	res, err := d.Runner.Run(ctx, cmd)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", cperrors.CommandNotFound(cmd.Name, err)
		}
		return "", cperrors.CommandStartFailed(cmd.Argv(), err)
	}

	log.Debug("detector finished", "exit_code", res.ExitCode, "bytes", len(res.Combined))
	return res.Combined, nil
}
