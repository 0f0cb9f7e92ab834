package tableau

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned by operations that need a session when
// SignIn has not succeeded yet (or SignOut already ran).
var ErrNotAuthenticated = errors.New("not authenticated: connect first")

// ErrMalformedResponse marks a 2xx response whose body could not be used.
var ErrMalformedResponse = errors.New("malformed response")

// AuthenticationError reports a sign-in rejected by the server.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %d - %s", e.StatusCode, e.Body)
}

// APIRequestError reports any other request rejected by the server.
type APIRequestError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIRequestError) Error() string {
	return fmt.Sprintf("%s error: %d - %s", e.Op, e.StatusCode, e.Body)
}
