package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cdowellmdb/compprune/internal/deps"
	"github.com/cdowellmdb/compprune/internal/hooks"
	"github.com/cdowellmdb/compprune/internal/prune"
	"github.com/cdowellmdb/compprune/internal/tui/styles"
)

// OutputFormat selects how a Report is written.
type OutputFormat string

const (
	// OutputFormatText is the default human-readable summary.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON writes the report as indented JSON.
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat converts a flag value into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputFormatText:
		return OutputFormatText, nil
	case OutputFormatJSON:
		return OutputFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json)", s)
	}
}

// ComponentStage is the outcome of the component stage.
type ComponentStage struct {
	// Root is the components root targets were resolved against.
	Root string `json:"root"`
	// Uncommitted lists paths below Root with uncommitted git changes.
	Uncommitted []string            `json:"uncommitted,omitempty"`
	Results     []prune.Result      `json:"results"`
	Summary     prune.Summary       `json:"summary"`
	Hooks       []*hooks.HookResult `json:"hooks,omitempty"`
}

// DependencyStage is the outcome of the dependency stage.
type DependencyStage struct {
	// Skipped is set when the detector is disabled.
	Skipped bool `json:"skipped,omitempty"`
	// Error is set when the detector could not be run.
	Error string `json:"error,omitempty"`
	// Unused lists the flagged dependencies in report order.
	Unused   []string            `json:"unused"`
	Outcomes []deps.Outcome      `json:"outcomes"`
	Summary  deps.Summary        `json:"summary"`
	Hooks    []*hooks.HookResult `json:"hooks,omitempty"`
}

// Report aggregates a whole run.
type Report struct {
	ProjectDir     string           `json:"project_dir"`
	ComponentsRoot string           `json:"components_root"`
	DryRun         bool             `json:"dry_run"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	Components     *ComponentStage  `json:"components,omitempty"`
	Dependencies   *DependencyStage `json:"dependencies,omitempty"`
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, format OutputFormat) error {
	if format == OutputFormatJSON {
		return r.WriteJSON(w)
	}
	return r.WriteText(w)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// WriteText writes a human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	if r.DryRun {
		b.WriteString(styles.WarningTextStyle.Render("Dry run: nothing was changed."))
		b.WriteString("\n")
	}

	if c := r.Components; c != nil {
		b.WriteString("\n")
		b.WriteString(styles.TitleStyle.Render("Components"))
		b.WriteString("\n")
		b.WriteString(styles.MutedTextStyle.Render(c.Root))
		b.WriteString("\n\n")
		if len(c.Uncommitted) > 0 {
			fmt.Fprintf(&b, "  %s\n\n", styles.WarningTextStyle.Render(
				fmt.Sprintf("%d path(s) had uncommitted changes before pruning", len(c.Uncommitted))))
		}
		if len(c.Results) == 0 {
			b.WriteString(styles.MutedTextStyle.Render("  nothing to remove"))
			b.WriteString("\n")
		}
		for _, res := range c.Results {
			writeComponentLine(&b, res)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d removed, %d missing, %d declined, %d incomplete",
			c.Summary.Removed, c.Summary.Missing, c.Summary.Declined, c.Summary.Incomplete)
		if c.Summary.Planned > 0 {
			fmt.Fprintf(&b, ", %d planned", c.Summary.Planned)
		}
		b.WriteString("\n")
		writeHookLines(&b, c.Hooks)
	}

	if d := r.Dependencies; d != nil {
		b.WriteString("\n")
		b.WriteString(styles.TitleStyle.Render("Dependencies"))
		b.WriteString("\n\n")
		switch {
		case d.Skipped:
			b.WriteString(styles.MutedTextStyle.Render("  skipped"))
			b.WriteString("\n")
		case d.Error != "":
			fmt.Fprintf(&b, "  %s %s\n", styles.IconFailed, styles.ErrorTextStyle.Render(d.Error))
		case len(d.Unused) == 0:
			b.WriteString(styles.MutedTextStyle.Render("  no unused dependencies"))
			b.WriteString("\n")
		case len(d.Outcomes) == 0:
			for _, dep := range d.Unused {
				fmt.Fprintf(&b, "  %s %s %s\n", styles.IconMissing, dep, styles.MutedTextStyle.Render("(unused, not removed)"))
			}
		default:
			for _, o := range d.Outcomes {
				writeDependencyLine(&b, o)
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "%d removed (%d optional), %d failed",
				d.Summary.Removed, d.Summary.RemovedOptional, d.Summary.Failed)
			if d.Summary.Planned > 0 {
				fmt.Fprintf(&b, ", %d planned", d.Summary.Planned)
			}
			b.WriteString("\n")
		}
		writeHookLines(&b, d.Hooks)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeComponentLine(b *strings.Builder, res prune.Result) {
	var icon, detail string
	switch res.Status {
	case prune.StatusRemoved:
		icon = styles.IconRemoved
		detail = componentDetail(res)
	case prune.StatusPlanned:
		icon = styles.IconPlanned
		detail = "would delete " + componentDetail(res)
	case prune.StatusMissing:
		icon = styles.IconMissing
		detail = "not found"
	case prune.StatusDeclined:
		icon = styles.IconDeclined
		detail = "declined"
	default:
		icon = styles.IconFailed
		detail = fmt.Sprintf("%d problem(s)", len(res.Warnings))
	}

	fmt.Fprintf(b, "  %s %s %s\n", icon, res.Target.Name, styles.MutedTextStyle.Render(detail))
	for _, warn := range res.Warnings {
		fmt.Fprintf(b, "      %s\n", styles.WarningTextStyle.Render(warn))
	}
}

func componentDetail(res prune.Result) string {
	if res.Target.WholeDirectory() {
		return "entire directory"
	}
	return strings.Join(res.RemovedFiles, ", ")
}

func writeDependencyLine(b *strings.Builder, o deps.Outcome) {
	switch {
	case o.State == deps.StatePlanned:
		fmt.Fprintf(b, "  %s %s %s\n", styles.IconPlanned, o.Dependency, styles.MutedTextStyle.Render("would remove"))
	case o.Removed() && o.OptionalSucceeded:
		fmt.Fprintf(b, "  %s %s %s\n", styles.IconRemoved, o.Dependency, styles.MutedTextStyle.Render("optional group "+o.OptionalGroup))
	case o.Removed():
		fmt.Fprintf(b, "  %s %s\n", styles.IconRemoved, o.Dependency)
	default:
		detail := "removal failed"
		if o.OptionalAttempted {
			detail = "removal failed, also from optional group " + o.OptionalGroup
		}
		fmt.Fprintf(b, "  %s %s %s\n", styles.IconFailed, o.Dependency, styles.ErrorTextStyle.Render(detail))
	}
}

func writeHookLines(b *strings.Builder, results []*hooks.HookResult) {
	for _, r := range results {
		if r.IsSuccess() {
			fmt.Fprintf(b, "  %s hook %s\n", styles.IconRemoved, r.Name)
			continue
		}
		fmt.Fprintf(b, "  %s hook %s %s\n", styles.IconFailed, r.Name, styles.ErrorTextStyle.Render(r.Error))
	}
}
