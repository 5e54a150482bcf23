package models

import (
	"testing"

	"github.com/harrison/runcollect/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
)

func TestRunComplete(t *testing.T) {
	doc := jsonvalue.ObjectValue()

	assert.True(t, Run{Result: doc, Config: doc}.Complete())
	assert.False(t, Run{Result: doc}.Complete())
	assert.False(t, Run{Config: doc}.Complete())
	// JSON null is a document that was read
	assert.True(t, Run{Result: jsonvalue.NullValue(), Config: doc}.Complete())
}

func TestRunDocument(t *testing.T) {
	result := jsonvalue.StringValue("result")
	config := jsonvalue.StringValue("config")
	run := Run{Path: "/data/run-1", Result: result, Config: config}

	tests := []struct {
		name   string
		want   jsonvalue.Value
		wantOK bool
	}{
		{"results", result, true},
		{"result", result, true},
		{"conf", config, true},
		{"config", config, true},
		{"params", jsonvalue.Value{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := run.Document(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestCollectSummarySkipped(t *testing.T) {
	s := CollectSummary{Total: 5, Collected: 2, SkippedMarker: 1, SkippedIgnore: 2}
	assert.Equal(t, 3, s.Skipped())
	assert.Equal(t, s.Total, s.Collected+s.Skipped())
}
