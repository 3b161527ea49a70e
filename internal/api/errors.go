package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNetwork wraps transport-level failures. Callers surface it as a
// generic network error and keep already-rendered state.
var ErrNetwork = errors.New("network error")

// Error is a rejected or malformed server response. Msg carries the
// server-provided message when one was available.
type Error struct {
	StatusCode int
	ResultCode string
	Msg        string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "request failed"
	}
	if e.ResultCode != "" {
		return fmt.Sprintf("%s (%s)", msg, e.ResultCode)
	}
	return fmt.Sprintf("%s (http %d)", msg, e.StatusCode)
}

// Fields parses the server message into per-field validation errors.
// Returns nil when the message carries none.
func (e *Error) Fields() FieldErrors {
	return ParseFieldErrors(e.Msg)
}

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// FieldErrors is a collection of per-field validation failures. It is
// used both for server-side rejections and for local pre-submit checks.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Message
	}
	return strings.Join(parts, "; ")
}

// ParseFieldErrors parses the backend's multi-line "field-code-message"
// validation format. Lines that don't match the format are skipped; the
// first error per field wins.
func ParseFieldErrors(msg string) FieldErrors {
	var out FieldErrors
	seen := map[string]bool{}

	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "-", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		if seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true

		message := parts[1]
		if len(parts) == 3 && parts[2] != "" {
			message = parts[2]
		}
		out = append(out, FieldError{Field: parts[0], Code: parts[1], Message: message})
	}
	return out
}
