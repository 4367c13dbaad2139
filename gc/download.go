package gc

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/tverrfjellet/garmindump/garmin"
	"github.com/tverrfjellet/garmindump/pkg/output"
)

// DownloadConfig holds all configuration needed for downloading activities
type DownloadConfig struct {
	Email    string
	Password string
	TokenDir string
	UntilStr string
	SinceStr string
	SaveDir  string
	JSONMode bool
}

// Download performs the main download orchestration.
func Download(config DownloadConfig) error {
	ctx := context.Background()

	// 1. Validate and parse dates before touching the network
	since, until, err := ValidateAndParseDates(config.UntilStr, config.SinceStr)
	if err != nil {
		return err
	}

	// 2. Setup dependencies
	_, logger, presentation, err := setupDependencies(config)
	if err != nil {
		return err
	}

	// 3. Validate credentials
	if err := validateCredentials(config); err != nil {
		return err
	}

	logger.Info("starting download process", "email", config.Email)

	// 4. Create and authenticate client
	client, err := createAndAuthenticateClient(ctx, config, logger, presentation)
	if err != nil {
		return err
	}

	// 5. Setup services
	fs := NewOSFileSystem()
	downloadService := NewDownloadService(client, fs, logger)

	// 6. Prepare download directory
	expandedSaveDir, err := prepareDownloadDirectory(config.SaveDir, fs, presentation)
	if err != nil {
		return err
	}

	// 7. Download activities
	summary, err := downloadActivities(ctx, client, downloadService, presentation, since, until, expandedSaveDir, logger)
	if err != nil {
		return err
	}

	// 8. Show final results
	summary.Since = since
	summary.Until = until
	presentation.ShowFinalResults(summary)
	presentation.ShowJSONResults(summary, config.JSONMode)

	logger.Info("download completed",
		"processed", summary.Processed,
		"errors", summary.Errors)

	return nil
}

// setupDependencies creates the output logger and presentation service
func setupDependencies(config DownloadConfig) (*output.OutputLogger, Logger, *PresentationService, error) {
	ol, err := output.New(config.JSONMode)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create output system: %w", err)
	}

	logger := ol.Component("download")
	presentation := NewPresentationService(ol)

	return ol, logger, presentation, nil
}

// validateCredentials checks that email and password are provided
func validateCredentials(config DownloadConfig) error {
	if config.Email == "" || config.Password == "" {
		return fmt.Errorf("email and password must be provided via config file, environment variables, or command line flags")
	}
	return nil
}

// createAndAuthenticateClient creates a Garmin client and ensures it has a
// working session, resuming stored tokens when possible.
func createAndAuthenticateClient(ctx context.Context, config DownloadConfig, logger Logger, presentation *PresentationService) (*garmin.Client, error) {
	tokenDir, err := homedir.Expand(config.TokenDir)
	if err != nil {
		presentation.ShowError(err, "Failed to expand token directory path")
		return nil, err
	}
	if tokenDir == "" {
		tokenDir, err = garmin.DefaultTokenDir()
		if err != nil {
			presentation.ShowError(err, "Failed to resolve token directory")
			return nil, err
		}
	}

	client, err := garmin.New(
		garmin.Credentials{Email: config.Email, Password: config.Password},
		garmin.WithTokenDir(tokenDir),
	)
	if err != nil {
		presentation.ShowError(err, "Failed to create Garmin Connect client")
		return nil, err
	}

	presentation.ShowProgress("Verifying login credentials...")
	authService := NewAuthService(client, tokenDir, logger)

	if err := authService.EnsureAuthenticated(ctx); err != nil {
		presentation.ShowError(err, "Failed to authenticate with Garmin Connect")
		return nil, err
	}

	presentation.ShowStatus("Successfully authenticated with Garmin Connect")
	return client, nil
}

// prepareDownloadDirectory expands and creates the download directory
func prepareDownloadDirectory(saveDir string, fs FileSystem, presentation *PresentationService) (string, error) {
	expandedSaveDir, err := homedir.Expand(saveDir)
	if err != nil {
		presentation.ShowError(err, "Failed to expand save directory path")
		return "", err
	}

	if err := fs.MkdirAll(expandedSaveDir, 0755); err != nil {
		presentation.ShowError(err, "Failed to create save directory: %s", expandedSaveDir)
		return "", err
	}

	return expandedSaveDir, nil
}

// downloadActivities fetches the activity list for the date range and
// downloads each activity, grouping the presentation by week.
func downloadActivities(ctx context.Context, client ConnectClient, downloadService *DownloadService, presentation *PresentationService, since, until time.Time, saveDir string, logger Logger) (*DownloadSummary, error) {
	logger.Info("download configuration",
		"since", since.Format("2006-01-02"),
		"until", until.Format("2006-01-02"))

	presentation.ShowStatus("Downloading activities from %s to %s", since.Format("2006-01-02"), until.Format("2006-01-02"))

	raw, err := client.ActivitiesByDate(ctx, since.Format("2006-01-02"), until.Format("2006-01-02"), "")
	if err != nil {
		presentation.ShowError(err, "Failed to list activities")
		return nil, err
	}

	activities, err := ParseActivities(raw)
	if err != nil {
		presentation.ShowError(err, "Failed to parse activity list")
		return nil, err
	}

	logger.Info("found activities", "count", len(activities))

	// Track for week headers
	var currentWeekStart time.Time
	var results []DownloadResult
	processedCount := 0
	errorCount := 0

	for _, activity := range activities {
		// Show week header when we encounter a new week
		if !activity.WeekStart.Equal(currentWeekStart) {
			currentWeekStart = activity.WeekStart
			presentation.ShowWeekHeader(activity.WeekStart, activity.WeekEnd)
		}

		logger.Debug("processing activity", "activity_id", activity.ID, "type", activity.Type)

		result := downloadService.DownloadActivity(ctx, activity, saveDir)
		results = append(results, result)

		presentation.ShowActivityResult(activity, result)

		processedCount++
		if !result.Success {
			errorCount++
		}

		// Small delay to be nice to the server (only if we actually downloaded)
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
