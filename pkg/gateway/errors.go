package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies the outcome of one exchange with the remote service.
type Kind string

const (
	Success        Kind = "Success"
	AuthExpired    Kind = "AuthExpired"
	ClientError    Kind = "ClientError"
	ServerError    Kind = "ServerError"
	TransportError Kind = "TransportError"
)

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrAuthExpired = &Error{Kind: AuthExpired}
	ErrClient      = &Error{Kind: ClientError}
	ErrServer      = &Error{Kind: ServerError}
	ErrTransport   = &Error{Kind: TransportError}
)

// Error is the failed form of an outcome. Status is zero when no response
// was received or the failure was detected before dispatch.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = strings.ToLower(string(e.Kind))
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare sentinel (Kind only) against any error of that Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Status == 0 && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, Success for nil, and "" for errors
// that did not come from the gateway.
func KindOf(err error) Kind {
	if err == nil {
		return Success
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// FieldsOf returns the per-field messages carried by err, if any.
func FieldsOf(err error) map[string][]string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Fields
	}
	return nil
}

// Invalid builds the ClientError reported when input is rejected before any
// request is sent.
func Invalid(fields map[string][]string, message string) *Error {
	if message == "" {
		message = formatFields(fields)
	}
	return &Error{Kind: ClientError, Message: message, Fields: fields}
}

func transportError(err error) *Error {
	return &Error{Kind: TransportError, Message: err.Error(), Err: err}
}

func classify(status int) Kind {
	switch {
	case status >= 200 && status < 300:
		return Success
	case status == http.StatusUnauthorized:
		return AuthExpired
	case status >= 400 && status < 500:
		return ClientError
	default:
		// 5xx, and anything else the transport let through unexpectedly.
		return ServerError
	}
}

// errorFromPayload extracts a human readable message from the error bodies
// the remote service produces: {"detail": ...}, {"error": ...} or field
// errors of the form {"field": ["message", ...]}.
func errorFromPayload(kind Kind, status int, body []byte) *Error {
	e := &Error{Kind: kind, Status: status}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err == nil {
			for _, key := range []string{"detail", "error", "message"} {
				if raw, ok := obj[key]; ok {
					var s string
					if json.Unmarshal(raw, &s) == nil && s != "" {
						e.Message = s
						return e
					}
				}
			}
			if fields := fieldErrors(obj); len(fields) > 0 {
				e.Fields = fields
				e.Message = formatFields(fields)
				return e
			}
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func fieldErrors(obj map[string]json.RawMessage) map[string][]string {
	out := make(map[string][]string, len(obj))
	for key, raw := range obj {
		var list []string
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
			out[key] = list
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			out[key] = []string{s}
		}
	}
	return out
}

func formatFields(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		msg := strings.Join(fields[k], " ")
		if k == "non_field_errors" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, k+": "+msg)
	}
	return strings.Join(parts, "; ")
}
