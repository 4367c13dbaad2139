package gc

import (
	"context"
)

// LoginConfig holds configuration for the login command.
type LoginConfig struct {
	Email    string
	Password string
	TokenDir string
	JSONMode bool
}

// Login establishes a session and persists it to the token directory so
// later commands can skip the interactive flow.
func Login(config LoginConfig) error {
	ctx := context.Background()

	_, logger, presentation, err := setupDependencies(DownloadConfig{JSONMode: config.JSONMode})
	if err != nil {
		return err
	}

	if err := validateCredentials(DownloadConfig{Email: config.Email, Password: config.Password}); err != nil {
		return err
	}

	if _, err := createAndAuthenticateClient(ctx, DownloadConfig{
		Email:    config.Email,
		Password: config.Password,
		TokenDir: config.TokenDir,
	}, logger, presentation); err != nil {
		return err
	}

	presentation.ShowStatus("Session saved; future commands will reuse it")
	return nil
}
