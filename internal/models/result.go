package models

import "time"

// SkipReason explains why a directory that passed the file check was not collected
type SkipReason string

// Skip reasons
const (
	SkipMarker  SkipReason = "ignore marker present" // marker file found
	SkipIgnored SkipReason = "matches ignore list"   // a file name contains an ignore substring
)

// CollectSummary is the aggregate outcome of one collection
type CollectSummary struct {
	Root          string        // Walk root
	Total         int           // Directories that passed the file check
	Collected     int           // Runs returned
	SkippedMarker int           // Skipped because of the marker file
	SkippedIgnore int           // Skipped because of the ignore list
	MissingResult int           // Runs whose result document is absent
	MissingConfig int           // Runs whose config document is absent
	WalkErrors    int           // Unreadable subdirectories
	Duration      time.Duration // Time taken by the walk
}

// Skipped returns the number of qualifying directories that were not collected
func (s CollectSummary) Skipped() int {
	return s.SkippedMarker + s.SkippedIgnore
}
