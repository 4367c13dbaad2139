package gc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// StatsConfig holds configuration for the stats command.
type StatsConfig struct {
	Email    string
	Password string
	TokenDir string
	DateStr  string
	JSONMode bool
}

// Stats fetches and displays the daily user summary for a single date.
func Stats(config StatsConfig) error {
	ctx := context.Background()

	date := config.DateStr
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else {
		parsed, err := parseDate(date)
		if err != nil {
			return fmt.Errorf("failed to parse date: %w", err)
		}
		date = parsed.Format("2006-01-02")
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

	summary, err := client.UserSummary(ctx, date)
	if err != nil {
		presentation.ShowError(err, "Failed to fetch daily summary for %s", date)
		return err
	}

	if config.JSONMode {
		var decoded any
		if err := json.Unmarshal(summary, &decoded); err != nil {
			return fmt.Errorf("failed to decode daily summary: %w", err)
		}
		return ol.JSON(decoded)
	}

	// Interactive mode: the summary itself, indented.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, summary, "", "  "); err != nil {
		return fmt.Errorf("failed to decode daily summary: %w", err)
	}

	presentation.ShowStatus("Daily summary for %s", date)
	fmt.Println(pretty.String())

	logger.Info("stats fetched", "date", date)
	return nil
}
