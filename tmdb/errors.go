package tmdb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid tmdb configuration")
	// ErrInvalidSort indicates a sort key the listing endpoint does not serve
	ErrInvalidSort = errors.New("invalid sort key")
	// ErrEmptyQuery indicates a search without a search term
	ErrEmptyQuery = errors.New("empty search query")
	// ErrUnauthorized indicates authentication failure
	ErrUnauthorized = errors.New("unauthorized: invalid API key or token")
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
)

// APIError represents a TMDB API error
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb API error: status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match an APIError against ErrNotFound and ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.IsNotFound()
	case ErrUnauthorized:
		return e.IsUnauthorized()
	}
	return false
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
