package garmin

import "fmt"

// ConnectionError is returned when the request failed before any HTTP
// response was received (DNS, TCP, TLS, cancelled context).
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthenticationError is returned when no valid session could be
// established or refreshed, or when the service rejected the session
// (401/403). The caller is expected to re-run the login flow.
type AuthenticationError struct {
	Status int
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// RateLimitError is returned on HTTP 429. This layer never sleeps or
// retries; backoff is up to the caller.
type RateLimitError struct {
	Status int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by remote service (status %d)", e.Status)
}

// APIError is returned for any other non-2xx response.
type APIError struct {
	Status int
	Path   string
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.Path, e.Status)
}

// DecodeError is returned when a 2xx response expected to be JSON could
// not be parsed.
type DecodeError struct {
	Path string
	Size int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("response from %s is not valid JSON (%d bytes)", e.Path, e.Size)
}

// UnsupportedFormatError is returned when an upload file extension is not
// one of the supported activity formats.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported activity file format: %s", e.Path)
}
