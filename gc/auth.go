package gc

import (
	"context"
	"errors"

	"github.com/tverrfjellet/garmindump/garmin"
)

// AuthService handles authentication and session persistence.
type AuthService struct {
	client   ConnectClient
	tokenDir string
	logger   Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(client ConnectClient, tokenDir string, logger Logger) *AuthService {
	return &AuthService{
		client:   client,
		tokenDir: tokenDir,
		logger:   logger,
	}
}

// EnsureAuthenticated establishes a working session. The client resumes a
// stored session when possible and falls back to credential login; a
// clean AuthenticationError means the caller should fix credentials, so
// it is surfaced as-is rather than wrapped.
func (a *AuthService) EnsureAuthenticated(ctx context.Context) error {
	a.logger.Debug("establishing session")

	if err := a.client.Login(ctx); err != nil {
		var authErr *garmin.AuthenticationError
		if errors.As(err, &authErr) {
			a.logger.Warn("authentication failed", "reason", authErr.Reason)
		}
		return err
	}

	// Persist the session immediately so the next run can skip the
	// interactive flow.
	if err := a.client.DumpSession(a.tokenDir); err != nil {
		a.logger.Warn("failed to persist session", "error", err)
	}

	a.logger.Info("authenticated with Garmin Connect")
	return nil
}
