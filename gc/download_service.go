package gc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/tverrfjellet/garmindump/garmin"
)

// isNotFoundError reports whether the error is an HTTP 404 from the
// download service, meaning the file simply is not there.
func isNotFoundError(err error) bool {
	var apiErr *garmin.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// DownloadService handles the core download logic without presentation
// concerns.
type DownloadService struct {
	client ConnectClient
	fs     FileSystem
	logger Logger
}

// NewDownloadService creates a new download service.
func NewDownloadService(client ConnectClient, fs FileSystem, logger Logger) *DownloadService {
	return &DownloadService{
		client: client,
		fs:     fs,
		logger: logger,
	}
}

func zipPath(saveDir string, id int64) string {
	return filepath.Join(saveDir, fmt.Sprintf("%d.zip", id))
}

func tcxPath(saveDir string, id int64) string {
	return filepath.Join(saveDir, fmt.Sprintf("%d.tcx", id))
}

// DownloadActivity downloads a single activity and returns structured
// results. The original upload (a zip around the FIT file) is preferred;
// activities without one (manual entries) fall back to a TCX export.
func (ds *DownloadService) DownloadActivity(ctx context.Context, activity ActivityInfo, saveDir string) DownloadResult {
	zipFile := zipPath(saveDir, activity.ID)
	tcxFile := tcxPath(saveDir, activity.ID)

	if ds.fs.Exists(zipFile) {
		return DownloadResult{
			ActivityID: activity.ID,
			Success:    true,
			FileType:   "ZIP",
			FilePath:   zipFile,
			Existed:    true,
		}
	}
	if ds.fs.Exists(tcxFile) {
		return DownloadResult{
			ActivityID: activity.ID,
			Success:    true,
			FileType:   "TCX",
			FilePath:   tcxFile,
			Existed:    true,
		}
	}

	zipData, err := ds.client.DownloadActivity(ctx, activity.ID, garmin.FormatOriginal)
	if err != nil {
		if isNotFoundError(err) {
			tcxData, err := ds.client.DownloadActivity(ctx, activity.ID, garmin.FormatTCX)
			if err != nil {
				if isNotFoundError(err) {
					return DownloadResult{
						ActivityID: activity.ID,
						Success:    false,
						FileType:   "NONE",
						Error:      fmt.Errorf("neither original nor TCX available for activity %d", activity.ID),
					}
				}
				return DownloadResult{
					ActivityID: activity.ID,
					Success:    false,
					FileType:   "TCX",
					Error:      fmt.Errorf("failed to download TCX for activity %d: %w", activity.ID, err),
				}
			}

			if err := ds.fs.WriteFile(tcxFile, tcxData, 0644); err != nil {
				return DownloadResult{
					ActivityID: activity.ID,
					Success:    false,
					FileType:   "TCX",
					Error:      fmt.Errorf("failed to save TCX for activity %d: %w", activity.ID, err),
				}
			}

			return DownloadResult{
				ActivityID: activity.ID,
				Success:    true,
				FileType:   "TCX",
				FilePath:   tcxFile,
			}
		}

		return DownloadResult{
			ActivityID: activity.ID,
			Success:    false,
			FileType:   "ZIP",
			Error:      fmt.Errorf("failed to download original file for activity %d: %w", activity.ID, err),
		}
	}

	if err := ds.fs.WriteFile(zipFile, zipData, 0644); err != nil {
		return DownloadResult{
			ActivityID: activity.ID,
			Success:    false,
			FileType:   "ZIP",
			Error:      fmt.Errorf("failed to save original file for activity %d: %w", activity.ID, err),
		}
	}

	return DownloadResult{
		ActivityID: activity.ID,
		Success:    true,
		FileType:   "ZIP",
		FilePath:   zipFile,
	}
}

// DownloadActivities downloads every activity in the list and returns a
// summary.
func (ds *DownloadService) DownloadActivities(ctx context.Context, activities []ActivityInfo, saveDir string) (*DownloadSummary, error) {
	if err := ds.fs.MkdirAll(saveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	var results []DownloadResult
	processedCount := 0
	errorCount := 0

	for _, activity := range activities {
		ds.logger.Debug("processing activity", "activity_id", activity.ID, "type", activity.Type)

		result := ds.DownloadActivity(ctx, activity, saveDir)
		results = append(results, result)

		processedCount++
		if !result.Success {
			errorCount++
		}

		// Small delay to be nice to the server
		if !result.Existed {
			time.Sleep(300 * time.Millisecond)
		}
	}

	return &DownloadSummary{
		Processed: processedCount,
		Errors:    errorCount,
		Results:   results,
	}, nil
}
