package logger

import "github.com/harrison/runcollect/internal/models"

// CollectLogger is the set of events emitted while collecting runs.
type CollectLogger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogRunSkipped(path string, reason models.SkipReason)
	LogSummary(summary models.CollectSummary)
}

// MultiLogger forwards every event to each of its loggers in order.
type MultiLogger []CollectLogger

// NewMultiLogger drops nil entries from loggers.
func NewMultiLogger(loggers ...CollectLogger) MultiLogger {
	m := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m MultiLogger) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

func (m MultiLogger) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m MultiLogger) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m MultiLogger) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m MultiLogger) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

func (m MultiLogger) LogRunSkipped(path string, reason models.SkipReason) {
	for _, l := range m {
		l.LogRunSkipped(path, reason)
	}
}

func (m MultiLogger) LogSummary(summary models.CollectSummary) {
	for _, l := range m {
		l.LogSummary(summary)
	}
}
