package mediawiki

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// MediaWiki-specific errors.
var (
	// ErrInvalidEndpoint indicates a configured api.php URL cannot be used.
	ErrInvalidEndpoint = errors.New("mediawiki: invalid api endpoint")

	// ErrMalformedResponse indicates the API returned something other than the expected JSON.
	ErrMalformedResponse = errors.New("mediawiki: malformed response")

	// ErrLoginFailed indicates the wiki rejected the bot credentials.
	ErrLoginFailed = errors.New("mediawiki: login failed")
)

// Error codes returned in the API's error object that mean "slow down".
const (
	codeMaxLag      = "maxlag"
	codeRateLimited = "ratelimited"
	codeBadToken    = "badtoken"
)

// RateLimitError represents a request the wiki asked us to repeat later.
type RateLimitError struct {
	Code       string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("mediawiki: rate limited (%s), retry after %s", e.Code, e.RetryAfter)
}

// APIError represents a failed API call: either an HTTP failure or an
// error object in the response body.
type APIError struct {
	StatusCode int
	Code       string
	Info       string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("mediawiki: HTTP %d from %s: %s", e.StatusCode, e.Endpoint, e.Info)
	}
	return fmt.Sprintf("mediawiki: %s: %s (%s)", e.Code, e.Info, e.Endpoint)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsBadToken checks if the error indicates an expired or invalid edit token.
func IsBadToken(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == codeBadToken
	}
	return false
}

// IsUnauthorized checks if the error indicates missing or rejected credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrLoginFailed) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "assertuserfailed", "assertbotfailed", "mwoauth-invalid-authorization", "notloggedin":
			return true
		}
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsForbidden checks if the error indicates the account may not edit the page.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "permissiondenied", "protectedpage", "blocked", "cascadeprotected":
			return true
		}
		return apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// isTransient reports whether a read may succeed if repeated.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.Code == "readonly"
	}
	if errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrLoginFailed) || errors.Is(err, ErrInvalidEndpoint) {
		return false
	}
	// Transport failures: connection refused, reset, timeouts.
	return true
}
