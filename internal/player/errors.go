package player

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a player could not be shown or could not continue.
type ErrorKind int

const (
	// ErrorKindNone means there is no error to present
	ErrorKindNone ErrorKind = iota
	// ErrorKindUnauthenticated means no credential was found or the session expired
	ErrorKindUnauthenticated
	// ErrorKindForbidden means the credential is valid but lacks access to the content
	ErrorKindForbidden
	// ErrorKindNotFound means the content does not exist or was removed
	ErrorKindNotFound
	// ErrorKindUnknown covers network failures and unexpected responses
	ErrorKindUnknown
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindUnauthenticated:
		return "unauthenticated"
	case ErrorKindForbidden:
		return "forbidden"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Common player errors
var (
	// ErrNoCredential indicates none of the configured credential keys held a token
	ErrNoCredential = errors.New("no credential token found")
	// ErrControlsInert indicates a transport control was used before the player was ready
	ErrControlsInert = errors.New("player controls are not available in the current state")
	// ErrNotLocalStream indicates a transport control was used on an externally embedded source
	ErrNotLocalStream = errors.New("transport controls are owned by the embedded player")
	// ErrNoMediaElement indicates the controller has no media element attached
	ErrNoMediaElement = errors.New("no media element attached")
	// ErrNotFailed indicates a retry was requested while the player was not failed
	ErrNotFailed = errors.New("player is not in a failed state")
)

// PlaybackError is a classified player failure
type PlaybackError struct {
	Kind   ErrorKind
	Status int // HTTP status when the failure came from the streaming endpoint, 0 otherwise
	Cause  error
}

// NewPlaybackError creates a new PlaybackError
func NewPlaybackError(kind ErrorKind, status int, cause error) *PlaybackError {
	return &PlaybackError{Kind: kind, Status: status, Cause: cause}
}

// Error implements the error interface
func (e *PlaybackError) Error() string {
	switch {
	case e.Cause != nil && e.Status != 0:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	default:
		return e.Kind.String()
	}
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PlaybackError) Unwrap() error {
	return e.Cause
}

// ClassifyStatus maps a streaming endpoint status code to an ErrorKind.
// Any 2xx status yields ErrorKindNone.
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code >= 200 && code < 300:
		return ErrorKindNone
	case code == http.StatusUnauthorized:
		return ErrorKindUnauthenticated
	case code == http.StatusForbidden:
		return ErrorKindForbidden
	case code == http.StatusNotFound:
		return ErrorKindNotFound
	default:
		return ErrorKindUnknown
	}
}

// ClassifyError extracts the ErrorKind from err. Unclassified errors are ErrorKindUnknown.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var playbackErr *PlaybackError
	if errors.As(err, &playbackErr) {
		return playbackErr.Kind
	}

	if errors.Is(err, ErrNoCredential) {
		return ErrorKindUnauthenticated
	}

	return ErrorKindUnknown
}
