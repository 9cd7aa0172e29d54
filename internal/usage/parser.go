// Package usage runs the unused-dependency detector and extracts flagged
// dependency names from its report.
package usage

import (
	"regexp"
	"strings"
)

// DefaultMarker is the rule code the detector prints for an unused dependency.
const DefaultMarker = "DEP002"

// quoted matches the first non-empty single-quoted token on a line.
var quoted = regexp.MustCompile(`'([^']+)'`)

// ReportParser extracts unused dependency names from a detector report.
type ReportParser interface {
	Parse(report string) []string
}

// Parser reads line-oriented reports such as
//
//	pyproject.toml: DEP002 'requests' defined as a dependency but not used in the codebase
type Parser struct {
	// Marker identifies finding lines. Defaults to DefaultMarker.
	Marker string
}

// NewParser creates a Parser for the given marker.
func NewParser(marker string) *Parser {
	return &Parser{Marker: marker}
}

// Parse returns the flagged dependencies in report order. Duplicates are
// kept. Marker lines without a quoted name are skipped.
func (p *Parser) Parse(report string) []string {
	marker := p.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	deps := []string{}
	for _, line := range strings.Split(report, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		m := quoted.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		deps = append(deps, m[1])
	}
	return deps
}

var _ ReportParser = (*Parser)(nil)
