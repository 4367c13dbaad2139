package garmin

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Credentials holds the email/password pair used for interactive login.
// They are handed to the SessionProvider once and not retained by the
// client itself.
type Credentials struct {
	Email    string
	Password string
}

// Session is the opaque token bundle owned by the SessionProvider. The
// client only moves it between the provider and disk; its internal shape
// is never inspected here.
type Session []byte

// SessionProvider performs the OAuth login handshake, issues
// authenticated requests, and persists/restores session state. The client
// core never re-implements token handling; it only calls through this
// boundary.
type SessionProvider interface {
	// Login establishes a fresh session from credentials.
	Login(ctx context.Context, creds Credentials) (Session, error)
	// Resume re-establishes a session from a previously dumped blob. It
	// returns an *AuthenticationError if the blob cannot yield a valid
	// session anymore.
	Resume(ctx context.Context, sess Session) (Session, error)
	// Do executes a request with auth attached, refreshing tokens
	// transparently if the provider detects expiry.
	Do(req *http.Request) (*http.Response, error)
	// DumpSession writes the current session state under dir.
	DumpSession(dir string) error
	// LoadSession reads a previously dumped session state from dir.
	LoadSession(dir string) (Session, error)
}

const sessionFile = "session.json"

// DefaultTokenDir returns the directory used for persisted session state.
// The GARMINTOKENS environment variable takes precedence, matching the
// convention of other Garmin tooling.
func DefaultTokenDir() (string, error) {
	if dir := os.Getenv("GARMINTOKENS"); dir != "" {
		return homedir.Expand(dir)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".garmindump", "tokens"), nil
}

// writeSessionBlob persists an opaque session blob under dir.
func writeSessionBlob(dir string, sess Session) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sessionFile), sess, 0600)
}

// readSessionBlob loads an opaque session blob from dir.
func readSessionBlob(dir string) (Session, error) {
	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		return nil, err
	}
	return Session(data), nil
}
