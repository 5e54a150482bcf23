package collector

import (
	"github.com/harrison/runcollect/internal/jsonvalue"
	"github.com/harrison/runcollect/internal/models"
)

// Collection is the outcome of Load: the runs in traversal order and a
// summary of what was seen.
type Collection struct {
	Runs    []models.Run
	Summary models.CollectSummary
}

// Len returns the number of collected runs
func (c *Collection) Len() int {
	return len(c.Runs)
}

// Paths returns the directory of each run in order
func (c *Collection) Paths() []string {
	paths := make([]string, len(c.Runs))
	for i, r := range c.Runs {
		paths[i] = r.Path
	}
	return paths
}

// Filter returns the runs for which keep returns true, preserving order
func (c *Collection) Filter(keep func(models.Run) bool) []models.Run {
	out := make([]models.Run, 0, len(c.Runs))
	for _, r := range c.Runs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Documents returns the named document ("results" or "conf") of every run.
// Absent documents are included so indexes line up with Runs.
func (c *Collection) Documents(name string) []jsonvalue.Value {
	docs := make([]jsonvalue.Value, 0, len(c.Runs))
	for _, r := range c.Runs {
		doc, _ := r.Document(name)
		docs = append(docs, doc)
	}
	return docs
}
