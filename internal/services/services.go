// package services defines the HTTP client for the saved-tracks library API
package services

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/shared"
)

// APIError describes a non-200 response from the library API.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}
