package gc

import (
	"context"
	"fmt"
	"testing"

	"github.com/tverrfjellet/garmindump/garmin"
)

func TestAuthService_EnsureAuthenticated_Success(t *testing.T) {
	// Arrange
	mockClient := &MockConnectClient{}
	mockLogger := &MockLogger{}
	authService := NewAuthService(mockClient, "/tmp/tokens", mockLogger)

	// Act
	err := authService.EnsureAuthenticated(context.Background())

	// Assert
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !mockClient.LoginCalled {
		t.Error("Expected Login to be called")
	}

	// Session should be persisted to the token dir right after login
	if !mockClient.DumpCalled {
		t.Error("Expected DumpSession to be called")
	}
	if mockClient.DumpDir != "/tmp/tokens" {
		t.Errorf("Expected session dumped to /tmp/tokens, got %s", mockClient.DumpDir)
	}

	foundSuccess := false
	for _, call := range mockLogger.InfoCalls {
		if call.Message == "authenticated with Garmin Connect" {
			foundSuccess = true
		}
	}
	if !foundSuccess {
		t.Error("Expected authentication success log message")
	}
}

func TestAuthService_EnsureAuthenticated_AuthFailure(t *testing.T) {
	// Arrange - login rejects the credentials
	authErr := &garmin.AuthenticationError{Status: 401, Reason: "invalid credentials"}
	mockClient := &MockConnectClient{LoginError: authErr}
	mockLogger := &MockLogger{}
	authService := NewAuthService(mockClient, "/tmp/tokens", mockLogger)

	// Act
	err := authService.EnsureAuthenticated(context.Background())

	// Assert - the auth error surfaces unwrapped so callers can classify it
	if err != authErr {
		t.Errorf("Expected the AuthenticationError as-is, got: %v", err)
	}
	if mockClient.DumpCalled {
		t.Error("Expected no session dump after failed login")
	}
	if len(mockLogger.WarnCalls) == 0 {
		t.Error("Expected a warning log for the failed authentication")
	}
}

func TestAuthService_EnsureAuthenticated_NetworkFailure(t *testing.T) {
	// Arrange - login fails for a non-auth reason
	netErr := fmt.Errorf("connection refused")
	mockClient := &MockConnectClient{LoginError: netErr}
	mockLogger := &MockLogger{}
	authService := NewAuthService(mockClient, "/tmp/tokens", mockLogger)

	// Act
	err := authService.EnsureAuthenticated(context.Background())

	// Assert
	if err != netErr {
		t.Errorf("Expected the network error as-is, got: %v", err)
	}
	if len(mockLogger.WarnCalls) != 0 {
		t.Errorf("Expected no auth warning for network errors, got %d", len(mockLogger.WarnCalls))
	}
}

func TestAuthService_EnsureAuthenticated_DumpFailureIsNonFatal(t *testing.T) {
	// Arrange - login works but the token dir is unwritable
	mockClient := &MockConnectClient{DumpError: fmt.Errorf("read-only filesystem")}
	mockLogger := &MockLogger{}
	authService := NewAuthService(mockClient, "/tmp/tokens", mockLogger)

	// Act
	err := authService.EnsureAuthenticated(context.Background())

	// Assert - a failed dump is logged but does not fail the login
	if err != nil {
		t.Errorf("Expected no error when only the session dump fails, got: %v", err)
	}
	if len(mockLogger.WarnCalls) == 0 {
		t.Error("Expected a warning log for the failed session dump")
	}
}
