package components

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_View(t *testing.T) {
	s := NewSpinner()
	s.SetStatusText("Running detector")

	assert.Contains(t, s.View(), "Running detector")
	assert.Zero(t, s.Elapsed())

	s.Start()
	assert.Contains(t, s.View(), "(0s)")

	s.SetShowTime(false)
	assert.NotContains(t, s.View(), "(0s)")
}

func TestSpinner_InitTicks(t *testing.T) {
	s := NewSpinner()
	assert.NotNil(t, s.Init())
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		5 * time.Second:                 "5s",
		90 * time.Second:                "1m30s",
		2*time.Hour + 15*time.Minute:    "2h15m",
		59*time.Minute + 59*time.Second: "59m59s",
	}
	for d, want := range tests {
		assert.Equal(t, want, FormatDuration(d), d.String())
	}
}
