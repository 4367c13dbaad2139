package gc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tverrfjellet/garmindump/garmin"
)

// ConnectClient abstracts the Garmin client for testing.
type ConnectClient interface {
	Login(ctx context.Context) error
	ActivitiesByDate(ctx context.Context, start, end, activityType string) ([]json.RawMessage, error)
	DownloadActivity(ctx context.Context, activityID int64, format garmin.DownloadFormat) ([]byte, error)
	UserSummary(ctx context.Context, date string) (json.RawMessage, error)
	UploadActivity(ctx context.Context, path string) (*garmin.UploadResult, error)
	DumpSession(dir string) error
}

// FileSystem abstracts file operations for testing.
type FileSystem interface {
	WriteFile(path string, data []byte, perm int) error
	Exists(path string) bool
	MkdirAll(path string, perm int) error
}

// Logger abstracts structured logging for testing.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ActivityInfo is the slice of an activity-list entry this tool needs:
// enough to name a file and print a line.
type ActivityInfo struct {
	ID        int64
	Name      string
	Type      string
	TypeEmoji string
	StartTime time.Time
	WeekStart time.Time
	WeekEnd   time.Time
}

// DownloadResult represents the result of downloading a single activity.
type DownloadResult struct {
	ActivityID int64
	Success    bool
	FileType   string // "ZIP", "TCX", or "NONE"
	FilePath   string
	Error      error
	Existed    bool // true if the file already existed
}

// DownloadSummary represents the overall download results.
type DownloadSummary struct {
	Processed int
	Errors    int
	Since     time.Time
	Until     time.Time
	Results   []DownloadResult
}
