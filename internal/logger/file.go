package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/runcollect/internal/models"
)

// FileLogger writes one timestamped log file per invocation into a log
// directory and keeps a latest.log symlink pointing at the newest one.
// It is safe for concurrent use.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates logDir if needed and opens run-YYYYMMDD-HHMMSS.log inside it.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== runcollect log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\nArgs: %s\n\n", time.Now().Format(time.RFC3339), strings.Join(os.Args[1:], " ")))

	return logger, nil
}

// Path returns the file this logger writes to.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

func (fl *FileLogger) LogTrace(message string) { fl.logWithLevel("TRACE", message) }
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }
func (fl *FileLogger) LogInfo(message string)  { fl.logWithLevel("INFO", message) }
func (fl *FileLogger) LogWarn(message string)  { fl.logWithLevel("WARN", message) }
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogRunSkipped records a skipped run directory at DEBUG level.
func (fl *FileLogger) LogRunSkipped(path string, reason models.SkipReason) {
	fl.logWithLevel("DEBUG", fmt.Sprintf("skip %s: %s", path, reason))
}

// LogSummary writes a multi-line collection summary at INFO level.
func (fl *FileLogger) LogSummary(summary models.CollectSummary) {
	if !fl.shouldLog("info") {
		return
	}

	var sb strings.Builder
	sb.WriteString("\n=== Collection Summary ===\n")
	sb.WriteString(fmt.Sprintf("Root: %s\n", summary.Root))
	sb.WriteString(fmt.Sprintf("Qualifying: %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("Collected: %d\n", summary.Collected))
	sb.WriteString(fmt.Sprintf("Skipped (marker): %d\n", summary.SkippedMarker))
	sb.WriteString(fmt.Sprintf("Skipped (ignore): %d\n", summary.SkippedIgnore))
	if summary.MissingResult > 0 || summary.MissingConfig > 0 {
		sb.WriteString(fmt.Sprintf("Unreadable documents: %d result, %d config\n", summary.MissingResult, summary.MissingConfig))
	}
	if summary.WalkErrors > 0 {
		sb.WriteString(fmt.Sprintf("Unreadable directories: %d\n", summary.WalkErrors))
	}
	sb.WriteString(fmt.Sprintf("Duration: %s\n", formatDuration(summary.Duration)))

	fl.writeRunLog(sb.String())
}

// Close syncs and closes the log file. Later writes are dropped.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
