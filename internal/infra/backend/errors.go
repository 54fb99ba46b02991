package backend

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports a transport failure: the backend could not be reached or the
// response could not be read.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// errorBody covers the message keys the backend has been seen to use.
type errorBody struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b *errorBody) text() string {
	if b == nil {
		return ""
	}
	switch {
	case b.Msg != "":
		return b.Msg
	case b.Message != "":
		return b.Message
	default:
		return b.Error
	}
}
