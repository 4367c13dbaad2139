package garmin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSessionBlobRoundTrip(t *testing.T) {
	dir := t.TempDir()
	blob := Session(`{"domain":"garmin.com","token":{"access_token":"abc","refresh_token":"def"}}`)

	require.NoError(t, writeSessionBlob(dir, blob))
	loaded, err := readSessionBlob(dir)
	require.NoError(t, err)
	assert.Equal(t, []byte(blob), []byte(loaded), "the blob is opaque and must round-trip byte-identically")

	info, err := os.Stat(filepath.Join(dir, sessionFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestReadSessionBlobMissing(t *testing.T) {
	_, err := readSessionBlob(t.TempDir())
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultTokenDirEnvOverride(t *testing.T) {
	t.Setenv("GARMINTOKENS", filepath.Join(t.TempDir(), "tokens"))
	dir, err := DefaultTokenDir()
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("GARMINTOKENS"), dir)
}

func TestSSOResumeRejectsGarbage(t *testing.T) {
	p := NewSSOProvider("garmin.com")
	_, err := p.Resume(context.Background(), Session(`not json`))
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestSSOResumeRejectsExpiredWithoutRefreshToken(t *testing.T) {
	state := sessionState{
		Domain: "garmin.com",
		Token: &oauth2.Token{
			AccessToken: "stale",
			Expiry:      time.Now().Add(-time.Hour),
		},
	}
	blob, err := json.Marshal(state)
	require.NoError(t, err)

	p := NewSSOProvider("garmin.com")
	_, err = p.Resume(context.Background(), Session(blob))
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestSSOResumeAcceptsValidToken(t *testing.T) {
	state := sessionState{
		Domain: "garmin.com",
		Token: &oauth2.Token{
			AccessToken: "fresh",
			TokenType:   "Bearer",
			Expiry:      time.Now().Add(time.Hour),
		},
	}
	blob, err := json.Marshal(state)
	require.NoError(t, err)

	p := NewSSOProvider("garmin.com")
	out, err := p.Resume(context.Background(), Session(blob))
	require.NoError(t, err)

	var roundTripped sessionState
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Equal(t, "fresh", roundTripped.Token.AccessToken)
	assert.Equal(t, "garmin.com", roundTripped.Domain)
}

func TestSSODoWithoutSession(t *testing.T) {
	p := NewSSOProvider("garmin.com")
	client, err := New(Credentials{}, WithSessionProvider(p), WithTokenDir(t.TempDir()))
	require.NoError(t, err)

	_, err = client.Devices(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestSSODumpAndLoadSession(t *testing.T) {
	state := sessionState{
		Domain: "garmin.com",
		Token: &oauth2.Token{
			AccessToken: "fresh",
			Expiry:      time.Now().Add(time.Hour),
		},
	}
	blob, err := json.Marshal(state)
	require.NoError(t, err)

	p := NewSSOProvider("garmin.com")
	_, err = p.Resume(context.Background(), Session(blob))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, p.DumpSession(dir))

	loaded, err := p.LoadSession(dir)
	require.NoError(t, err)
	var loadedState sessionState
	require.NoError(t, json.Unmarshal(loaded, &loadedState))
	assert.Equal(t, "fresh", loadedState.Token.AccessToken)
}
