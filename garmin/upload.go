package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const pathUpload = "/upload-service/upload"

// uploadContentTypes whitelists the supported activity file extensions
// and their multipart content types.
var uploadContentTypes = map[string]string{
	".fit": "application/octet-stream",
	".gpx": "application/gpx+xml",
	".tcx": "application/vnd.garmin.tcx+xml",
}

// UploadResult describes the outcome of an activity upload. A duplicate
// is not a hard failure: the service already has the activity, so the
// caller gets a distinguishable success variant instead of an error.
type UploadResult struct {
	// ActivityID is the server-assigned identifier, when the service
	// reported one.
	ActivityID int64
	// Duplicate is true when the service reported the activity as
	// already existing.
	Duplicate bool
	// Raw is the import result exactly as the service returned it.
	Raw json.RawMessage
}

// UploadActivity uploads an activity file (.fit, .gpx or .tcx) as a
// multipart POST. The extension is checked before any network call.
func (c *Client) UploadActivity(ctx context.Context, path string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := uploadContentTypes[ext]
	if !ok {
		return nil, &UnsupportedFormatError{Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc := c.rest(backendUpload)
	req := rc.R().
		SetContext(ctx).
		SetMultipartField("file", filepath.Base(path), contentType, f)

	c.logger.Debug("uploading activity", "file", path)

	resp, err := req.Post(pathUpload)
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, &ConnectionError{URL: rc.BaseURL + pathUpload, Err: err}
	}

	// 409 with an import-result body is the service's way of saying the
	// activity already exists. Everything else classifies as usual.
	if resp.StatusCode() == http.StatusConflict {
		if result, ok := parseImportResult(resp.Body()); ok {
			result.Duplicate = true
			return result, nil
		}
		return nil, &APIError{Status: resp.StatusCode(), Path: pathUpload, Body: resp.Body()}
	}
	if err := statusError(pathUpload, resp); err != nil {
		return nil, err
	}

	body := resp.Body()
	if len(body) == 0 {
		return &UploadResult{}, nil
	}
	result, ok := parseImportResult(body)
	if !ok {
		return nil, &DecodeError{Path: pathUpload, Size: len(body)}
	}
	return result, nil
}

// parseImportResult extracts the server-assigned activity id from a
// detailed import result body.
func parseImportResult(body []byte) (*UploadResult, bool) {
	var payload struct {
		DetailedImportResult struct {
			Successes []struct {
				InternalID int64 `json:"internalId"`
			} `json:"successes"`
			Failures []struct {
				InternalID int64 `json:"internalId"`
				Messages   []struct {
					Code    int    `json:"code"`
					Content string `json:"content"`
				} `json:"messages"`
			} `json:"failures"`
		} `json:"detailedImportResult"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}

	result := &UploadResult{Raw: json.RawMessage(body)}
	if len(payload.DetailedImportResult.Successes) > 0 {
		result.ActivityID = payload.DetailedImportResult.Successes[0].InternalID
	} else if len(payload.DetailedImportResult.Failures) > 0 {
		result.ActivityID = payload.DetailedImportResult.Failures[0].InternalID
	}
	return result, true
}
