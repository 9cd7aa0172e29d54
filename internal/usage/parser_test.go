package usage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleReport = `Scanning 1423 files...

pyproject.toml: DEP002 'requests' defined as a dependency but not used in the codebase
pyproject.toml: DEP002 'boto3' defined as a dependency but not used in the codebase
src/app/main.py:3:1: DEP001 'yaml' imported but missing from the dependency definitions
pyproject.toml: DEP002 'requests' defined as a dependency but not used in the codebase
pyproject.toml: DEP002 dependency without quotes
Found 3 dependency issues.
`

func TestParser_Parse(t *testing.T) {
	deps := NewParser("DEP002").Parse(sampleReport)
	assert.Equal(t, []string{"requests", "boto3", "requests"}, deps)
}

func TestParser_DefaultMarker(t *testing.T) {
	deps := (&Parser{}).Parse("x: DEP002 'numpy' unused\n")
	assert.Equal(t, []string{"numpy"}, deps)
}

func TestParser_CustomMarker(t *testing.T) {
	deps := NewParser("DEP001").Parse(sampleReport)
	assert.Equal(t, []string{"yaml"}, deps)
}

func TestParser_FirstQuotedTokenWins(t *testing.T) {
	deps := NewParser("DEP002").Parse("DEP002 'first' and 'second'")
	assert.Equal(t, []string{"first"}, deps)
}

func TestParser_NoFindings(t *testing.T) {
	for name, report := range map[string]string{
		"empty":      "",
		"clean":      "Success! No dependency issues found.\n",
		"unquoted":   "pyproject.toml: DEP002 requests unused\n",
		"other rule": "x: DEP003 'transitive' used\n",
	} {
		t.Run(name, func(t *testing.T) {
			deps := NewParser("DEP002").Parse(report)
			assert.NotNil(t, deps)
			assert.Empty(t, deps)
		})
	}
}

func TestParser_WindowsLineEndings(t *testing.T) {
	deps := NewParser("DEP002").Parse("a: DEP002 'one' x\r\nb: DEP002 'two' y\r\n")
	assert.Equal(t, []string{"one", "two"}, deps)
}

func TestParser_ImplementsReportParser(t *testing.T) {
	var p ReportParser = NewParser("DEP002")
	assert.Equal(t, []string{"requests"}, p.Parse("DEP002 'requests'"))
}

func TestParser_LongLinesDoNotHideLaterFindings(t *testing.T) {
	report := strings.Join([]string{
		"pyproject.toml: DEP002 'pkg-a' defined as a dependency but not used in the codebase",
		strings.Repeat("x", 2<<20),
		"pyproject.toml: DEP002 'pkg-b' defined as a dependency but not used in the codebase",
	}, "\n")

	deps := NewParser("DEP002").Parse(report)
	assert.Equal(t, []string{"pkg-a", "pkg-b"}, deps)
}

func TestParser_SkipsMarkerLinesWithoutQuotes(t *testing.T) {
	report := "pyproject.toml: DEP002 'pkg-a' unused\n" +
		"pyproject.toml: DEP002 no quoted name here\n" +
		"pyproject.toml: DEP002 'pkg-b' unused\n"

	deps := NewParser("DEP002").Parse(report)
	assert.Equal(t, []string{"pkg-a", "pkg-b"}, deps)
}
