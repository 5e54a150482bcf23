package models

import (
	"github.com/harrison/runcollect/internal/jsonvalue"
)

// Default file names inside a run directory
const (
	DefaultResultFile = "results.json"
	DefaultConfigFile = "conf.json"
	DefaultMarkerFile = "ignore.txt"
)

// Run is one collected run directory. Result and Config hold the parsed
// documents, or the absent jsonvalue.Value when the file was missing or
// could not be parsed.
type Run struct {
	Path   string          `json:"path"`
	Result jsonvalue.Value `json:"result"`
	Config jsonvalue.Value `json:"config"`
}

// Complete reports whether both documents were read successfully
func (r Run) Complete() bool {
	return !r.Result.IsAbsent() && !r.Config.IsAbsent()
}

// Document returns the result or config document by name ("results" or "conf").
func (r Run) Document(name string) (jsonvalue.Value, bool) {
	switch name {
	case "results", "result":
		return r.Result, true
	case "conf", "config":
		return r.Config, true
	default:
		return jsonvalue.Value{}, false
	}
}
