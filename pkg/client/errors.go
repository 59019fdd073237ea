package client

import (
	"errors"
	"fmt"
)

// GenericMessage is shown when the server gave no usable message.
const GenericMessage = "Something went wrong. Please try again."

// ErrUnauthorized is returned after a 401 has torn the session down.
var ErrUnauthorized = errors.New("client: unauthorized")

// APIError is any non-2xx, non-401 response.
type APIError struct {
	Status  int
	Code    string
	Message string

	fromServer bool
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// HasServerMessage reports whether Message came from the response body.
func (e *APIError) HasServerMessage() bool {
	return e.fromServer
}

// MessageOr picks the text to show a user for err: the server message
// when one was sent, else fallback, else GenericMessage.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.fromServer {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return GenericMessage
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
