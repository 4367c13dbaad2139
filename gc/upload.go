package gc

import (
	"context"
	"errors"
	"fmt"

	"github.com/tverrfjellet/garmindump/garmin"
)

// UploadConfig holds configuration for the upload command.
type UploadConfig struct {
	Email    string
	Password string
	TokenDir string
	Paths    []string
	JSONMode bool
}

// Upload sends one or more local activity files to Garmin Connect.
// Duplicates count as success; unsupported file types fail before any
// network traffic.
func Upload(config UploadConfig) error {
	ctx := context.Background()

	if len(config.Paths) == 0 {
		return fmt.Errorf("no files to upload; pass one or more .fit, .gpx, or .tcx paths")
	}

	ol, logger, presentation, err := setupDependencies(DownloadConfig{JSONMode: config.JSONMode})
	if err != nil {
		return err
	}

	if err := validateCredentials(DownloadConfig{Email: config.Email, Password: config.Password}); err != nil {
		return err
	}

	client, err := createAndAuthenticateClient(ctx, DownloadConfig{
		Email:    config.Email,
		Password: config.Password,
		TokenDir: config.TokenDir,
	}, logger, presentation)
	if err != nil {
		return err
	}

	type uploadOutcome struct {
		Path       string `json:"path"`
		ActivityID int64  `json:"activity_id,omitempty"`
		Duplicate  bool   `json:"duplicate"`
		Error      string `json:"error,omitempty"`
	}

	var outcomes []uploadOutcome
	errorCount := 0

	for _, path := range config.Paths {
		logger.Debug("uploading activity file", "path", path)

		result, err := client.UploadActivity(ctx, path)
		if err != nil {
			var formatErr *garmin.UnsupportedFormatError
			if errors.As(err, &formatErr) {
				presentation.ShowError(err, "Unsupported file type: %s", path)
			} else {
				presentation.ShowError(err, "Failed to upload %s", path)
			}
			outcomes = append(outcomes, uploadOutcome{Path: path, Error: err.Error()})
			errorCount++
			continue
		}

		if result.Duplicate {
			presentation.ShowStatus("Already uploaded: %s", path)
		} else {
			presentation.ShowStatus("Uploaded %s (activity %d)", path, result.ActivityID)
		}
		outcomes = append(outcomes, uploadOutcome{
			Path:       path,
			ActivityID: result.ActivityID,
			Duplicate:  result.Duplicate,
		})
	}

	if config.JSONMode {
		if err := ol.JSON(map[string]any{"uploads": outcomes}); err != nil {
			return err
		}
	} else {
		ol.Result("Upload complete: %d processed, %d errors", len(config.Paths), errorCount)
	}

	logger.Info("upload completed", "processed", len(config.Paths), "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("%d of %d uploads failed", errorCount, len(config.Paths))
	}
	return nil
}
