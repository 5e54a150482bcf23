package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/runcollect/internal/models"
)

// colorScheme defines consistent colors for summary counts.
// Yellow: skipped directories
// Red: missing documents and walk errors
// Cyan: labels
type colorScheme struct {
	warn  *color.Color
	fail  *color.Color
	label *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		label: color.New(color.FgCyan),
	}
}

// formatSummaryDetails lists the non-zero skip and failure counts.
// Returns empty string when everything that qualified was collected intact.
// Format: "marker: N, ignored: N, no result: N, no config: N, unreadable: N"
func formatSummaryDetails(s models.CollectSummary, useColor bool) string {
	type metric struct {
		label string
		value int
		fail  bool
	}
	metrics := []metric{
		{"marker", s.SkippedMarker, false},
		{"ignored", s.SkippedIgnore, false},
		{"no result", s.MissingResult, true},
		{"no config", s.MissingConfig, true},
		{"unreadable", s.WalkErrors, true},
	}

	scheme := newColorScheme()
	var parts []string
	for _, m := range metrics {
		if m.value == 0 {
			continue
		}
		if !useColor {
			parts = append(parts, fmt.Sprintf("%s: %d", m.label, m.value))
			continue
		}
		valueColor := scheme.warn
		if m.fail {
			valueColor = scheme.fail
		}
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.label.Sprint(m.label), valueColor.Sprintf("%d", m.value)))
	}

	return strings.Join(parts, ", ")
}
