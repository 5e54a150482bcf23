package logger

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/harrison/runcollect/internal/models"
)

func TestFormatSummaryDetailsPlain(t *testing.T) {
	s := models.CollectSummary{SkippedIgnore: 1, MissingConfig: 2, WalkErrors: 3}

	got := formatSummaryDetails(s, false)
	want := "ignored: 1, no config: 2, unreadable: 3"
	if got != want {
		t.Errorf("formatSummaryDetails() = %q, want %q", got, want)
	}

	if got := formatSummaryDetails(models.CollectSummary{Total: 4, Collected: 4}, false); got != "" {
		t.Errorf("expected empty details for a clean summary, got %q", got)
	}
}

func TestFormatSummaryDetailsColor(t *testing.T) {
	original := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = original }()

	got := formatSummaryDetails(models.CollectSummary{SkippedMarker: 2, MissingResult: 1}, true)

	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI codes in %q", got)
	}
	if !strings.Contains(got, "marker") || !strings.Contains(got, "no result") {
		t.Errorf("expected labels in %q", got)
	}
}
