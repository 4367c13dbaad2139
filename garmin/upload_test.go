package garmin

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeActivityFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte{0x0e, 0x10, 'F', 'I', 'T'}, 0644))
	return path
}

func TestUploadUnsupportedExtension(t *testing.T) {
	var requests atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	path := writeActivityFile(t, "notes.txt")
	_, err := client.UploadActivity(context.Background(), path)

	var fmtErr *UnsupportedFormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, path, fmtErr.Path)
	assert.Zero(t, requests.Load(), "no network call may happen for an unsupported format")
}

func TestUploadSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, pathUpload, r.URL.Path)
		require.True(t, strings.HasPrefix(r.Header.Get("content-type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "MY_ACTIVITY.fit", header.Filename)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"detailedImportResult": {"successes": [{"internalId": 135061340}], "failures": []}}`))
	}))

	result, err := client.UploadActivity(context.Background(), writeActivityFile(t, "MY_ACTIVITY.fit"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, int64(135061340), result.ActivityID)
	assert.NotEmpty(t, result.Raw)
}

func TestUploadDuplicateIsSuccessVariant(t *testing.T) {
	body := `{"detailedImportResult": {"successes": [], "failures": [{"internalId": 135061340, "messages": [{"code": 202, "content": "Duplicate Activity"}]}]}}`

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(body))
	}))

	result, err := client.UploadActivity(context.Background(), writeActivityFile(t, "MY_ACTIVITY.fit"))
	require.NoError(t, err, "a duplicate upload is not a hard failure")
	assert.True(t, result.Duplicate)
	assert.Equal(t, int64(135061340), result.ActivityID)
}

func TestUploadConflictWithoutImportResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`busy, come back later`))
	}))

	_, err := client.UploadActivity(context.Background(), writeActivityFile(t, "MY_ACTIVITY.fit"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestUploadCaseInsensitiveExtension(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detailedImportResult": {"successes": [{"internalId": 7}], "failures": []}}`))
	}))

	result, err := client.UploadActivity(context.Background(), writeActivityFile(t, "RIDE.TCX"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.ActivityID)
}
