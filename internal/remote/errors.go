package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable matches any *RemoteUnavailableError.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrRemoteRejected matches any *RemoteRejectedError.
	ErrRemoteRejected = errors.New("remote rejected request")

	// ErrEntryNotFound is returned by GetEntry when the remote has no entry at that id.
	ErrEntryNotFound = errors.New("entry not found on remote")

	// ErrNoOrigin is returned when a client is built without an origin.
	ErrNoOrigin = errors.New("remote origin is not configured")
)

// RemoteUnavailableError is a transport failure: the request never produced a response.
type RemoteUnavailableError struct {
	Method string
	URL    string
	Err    error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

func (e *RemoteUnavailableError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// RemoteRejectedError is a response outside the 2xx range. Detail carries the
// server's reason when the body had one.
type RemoteRejectedError struct {
	Method     string
	URL        string
	StatusCode int
	Detail     string
}

func (e *RemoteRejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("remote rejected %s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("remote rejected %s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
}

func (e *RemoteRejectedError) Is(target error) bool {
	return target == ErrRemoteRejected
}
