package gc

import (
	"context"
	"encoding/json"

	"github.com/tverrfjellet/garmindump/garmin"
)

// MockConnectClient implements ConnectClient for testing
type MockConnectClient struct {
	ZipData         []byte
	TcxData         []byte
	ZipError        error
	TcxError        error
	LoginError      error
	ActivitiesRaw   []json.RawMessage
	ActivitiesError error
	SummaryRaw      json.RawMessage
	SummaryError    error
	UploadResult    *garmin.UploadResult
	UploadError     error
	DumpError       error
	LoginCalled     bool
	DumpCalled      bool
	DumpDir         string
	UploadedPaths   []string
}

func (m *MockConnectClient) Login(ctx context.Context) error {
	m.LoginCalled = true
	return m.LoginError
}

func (m *MockConnectClient) ActivitiesByDate(ctx context.Context, start, end, activityType string) ([]json.RawMessage, error) {
	return m.ActivitiesRaw, m.ActivitiesError
}

func (m *MockConnectClient) DownloadActivity(ctx context.Context, activityID int64, format garmin.DownloadFormat) ([]byte, error) {
	if format == garmin.FormatOriginal {
		if m.ZipError != nil {
			return nil, m.ZipError
		}
		return m.ZipData, nil
	}
	if m.TcxError != nil {
		return nil, m.TcxError
	}
	return m.TcxData, nil
}

func (m *MockConnectClient) UserSummary(ctx context.Context, date string) (json.RawMessage, error) {
	return m.SummaryRaw, m.SummaryError
}

func (m *MockConnectClient) UploadActivity(ctx context.Context, path string) (*garmin.UploadResult, error) {
	m.UploadedPaths = append(m.UploadedPaths, path)
	return m.UploadResult, m.UploadError
}

func (m *MockConnectClient) DumpSession(dir string) error {
	m.DumpCalled = true
	m.DumpDir = dir
	return m.DumpError
}

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	Files      map[string][]byte
	WriteError error
	MkdirError error
	WriteCalls []WriteCall
	MkdirCalls []string
}

type WriteCall struct {
	Path string
	Data []byte
	Perm int
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string][]byte),
	}
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm int) error {
	m.WriteCalls = append(m.WriteCalls, WriteCall{Path: path, Data: data, Perm: perm})
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Files[path] = data
	return nil
}

func (m *MockFileSystem) Exists(path string) bool {
	_, exists := m.Files[path]
	return exists
}

func (m *MockFileSystem) MkdirAll(path string, perm int) error {
	m.MkdirCalls = append(m.MkdirCalls, path)
	return m.MkdirError
}

// MockLogger implements Logger for testing
type MockLogger struct {
	InfoCalls  []LogCall
	DebugCalls []LogCall
	WarnCalls  []LogCall
}

type LogCall struct {
	Message string
	Args    []any
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Args: args})
}

// Helper to build the 404 the download service treats as "not there"
func createNotFoundError() error {
	return &garmin.APIError{Status: 404, Path: "/download-service/files/activity/12345"}
}
