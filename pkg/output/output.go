package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pterm/pterm"
)

// Logger wraps slog.Logger with context-aware methods
type Logger interface {
	// Component returns a logger for a specific component
	Component(name string) Logger
	// With returns a logger with additional attributes
	With(args ...any) Logger

	// Standard log levels
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// OutputLogger handles both user output and structured logging
type OutputLogger struct {
	Logger
	jsonMode bool
}

// DownloadState represents the state of a file download
type DownloadState int

const (
	StateExists DownloadState = iota
	StateDownloaded
	StateError
	StateNotAvailable // file does not exist on the server
)

// FileInfo represents information about a downloaded file
type FileInfo struct {
	Type  string // "ZIP" or "TCX"
	State DownloadState
}

// New creates a new OutputLogger.
// If jsonMode is true, only structured logs go to stdout.
// If jsonMode is false, structured logs go to file and user messages use pterm.
func New(jsonMode bool) (*OutputLogger, error) {
	var slogLogger *slog.Logger

	if jsonMode {
		// JSON mode: structured logs only to stdout
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: getLogLevel(),
		})
		slogLogger = slog.New(handler)
	} else {
		// Interactive mode: structured logs to file
		logFile, err := getLogFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to get log file path: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		handler := slog.NewTextHandler(file, &slog.HandlerOptions{
			Level: getLogLevel(),
		})
		slogLogger = slog.New(handler)

		// pterm will automatically detect TTY and color support
	}

	logger := &loggerImpl{slog: slogLogger}

	return &OutputLogger{
		Logger:   logger,
		jsonMode: jsonMode,
	}, nil
}

// getLogLevel returns the log level from LOG_LEVEL env var, defaulting to debug
func getLogLevel() slog.Level {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "trace":
		return slog.LevelDebug - 4 // Trace is lower than debug
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// getLogFilePath returns the path to the log file
func getLogFilePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".garmindump", "garmindump.log"), nil
}

// WeekHeader shows a week range header
func (ol *OutputLogger) WeekHeader(startDate, endDate time.Time) {
	if ol.jsonMode {
		ol.Logger.Info("week_start", "start_date", startDate.Format("2006-01-02"), "end_date", endDate.Format("2006-01-02"))
	} else {
		// Newline before the week header for proper spacing
		pterm.Println()
		headerText := fmt.Sprintf("📅 Week from %s to %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
		pterm.Info.Println(headerText)
	}
}

// ActivityLine shows a single activity result line
func (ol *OutputLogger) ActivityLine(emoji, activityID string, fileInfo FileInfo) {
	if ol.jsonMode {
		ol.Logger.Info("activity_status",
			"activity_id", activityID,
			"file_type", fileInfo.Type,
			"state", fileInfo.State)
		return
	}

	pterm.Println(ol.buildActivityLine(emoji, activityID, fileInfo))
}

// buildActivityLine creates a formatted activity line
func (ol *OutputLogger) buildActivityLine(emoji, activityID string, fileInfo FileInfo) string {
	parts := []string{
		emoji,
		activityID,
		ol.formatFileDisplay(fileInfo),
		ol.formatStatusDisplay(fileInfo),
	}
	return strings.Join(parts, " ")
}

// formatFileDisplay formats the file type with appropriate styling
func (ol *OutputLogger) formatFileDisplay(fileInfo FileInfo) string {
	switch fileInfo.State {
	case StateExists:
		return pterm.NewStyle(pterm.BgGray, pterm.FgBlack).Sprint(fileInfo.Type)
	case StateDownloaded:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite).Sprint(fileInfo.Type)
	case StateError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint(fileInfo.Type)
	case StateNotAvailable:
		return pterm.NewStyle(pterm.FgGray).Sprintf("%s (not available)", fileInfo.Type)
	default:
		return fileInfo.Type
	}
}

// formatStatusDisplay formats the status part of the line
func (ol *OutputLogger) formatStatusDisplay(fileInfo FileInfo) string {
	switch fileInfo.State {
	case StateExists:
		return pterm.NewStyle(pterm.FgGreen).Sprint("✅ Already downloaded")
	case StateDownloaded:
		return pterm.NewStyle(pterm.FgGreen).Sprint("✅ Downloaded")
	case StateError:
		return pterm.NewStyle(pterm.FgRed).Sprint("❌ Error")
	case StateNotAvailable:
		return pterm.NewStyle(pterm.FgRed).Sprint("❌ Not available")
	default:
		return ""
	}
}

// Progress shows ongoing operations
func (ol *OutputLogger) Progress(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Info("progress", "message", fmt.Sprintf(format, args...))
	} else {
		pterm.Info.Printf(format+"\n", args...)
	}
}

// Status shows important state changes
func (ol *OutputLogger) Status(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Info("status", "message", fmt.Sprintf(format, args...))
	} else {
		pterm.Success.Printf(format+"\n", args...)
	}
}

// Result shows final results/summaries
func (ol *OutputLogger) Result(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Info("result", "message", fmt.Sprintf(format, args...))
	} else {
		pterm.Success.Printf("🎯 "+format+"\n", args...)
	}
}

// Error shows user-facing errors
func (ol *OutputLogger) Error(format string, args ...any) {
	if ol.jsonMode {
		ol.Logger.Error("user_error", "message", fmt.Sprintf(format, args...))
	} else {
		pterm.Error.Printf(format+"\n", args...)
	}
}

// JSON outputs structured data (only in JSON mode)
func (ol *OutputLogger) JSON(data any) error {
	if !ol.jsonMode {
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(data)
}

// LogAndShowError logs an error with full context and shows a user-friendly message
func (ol *OutputLogger) LogAndShowError(err error, userMsg string, args ...any) {
	ol.Logger.Error("operation_failed", "error", err.Error(), "user_message", fmt.Sprintf(userMsg, args...))
	ol.Error(userMsg, args...)
}

// loggerImpl implements Logger interface
type loggerImpl struct {
	slog *slog.Logger
}

func (l *loggerImpl) Component(name string) Logger {
	return &loggerImpl{slog: l.slog.With("component", name)}
}

func (l *loggerImpl) With(args ...any) Logger {
	return &loggerImpl{slog: l.slog.With(args...)}
}

func (l *loggerImpl) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

func (l *loggerImpl) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

func (l *loggerImpl) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

func (l *loggerImpl) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}
