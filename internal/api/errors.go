package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// maxRawMessage bounds how much of a non-JSON error body ends up in a message.
const maxRawMessage = 200

// Error is returned for every failed request. Status is 0 when the request
// never produced an HTTP response (DNS, connection refused, timeout).
type Error struct {
	Status  int
	Message string

	// Body is the parsed JSON error body, or nil when the body was not JSON.
	Body map[string]any

	// RetryAfter is the server-suggested wait for 429/503 responses.
	RetryAfter time.Duration

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("request failed (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same request may succeed.
func (e *Error) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// FieldErrors returns per-field validation messages from a field-keyed body.
// Keys "detail" and "non_field_errors" are not fields and are skipped.
func (e *Error) FieldErrors() map[string][]string {
	out := make(map[string][]string)
	for k, v := range e.Body {
		if k == "detail" || k == "non_field_errors" {
			continue
		}
		if msgs := stringList(v); len(msgs) > 0 {
			out[k] = msgs
		}
	}
	return out
}

// IsValidation reports whether err is a 400 carrying a field-keyed body.
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest && len(apiErr.Body) > 0
}

// IsUnauthorized reports whether err is a 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage turns err into a short sentence fit for a screen.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch {
	case apiErr.Status == 0:
		return "Can't reach the server. Check your connection and try again."
	case apiErr.Status == http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case apiErr.Message != "":
		return apiErr.Message
	default:
		return http.StatusText(apiErr.Status)
	}
}

// newHTTPError builds an Error from a non-2xx response body.
func newHTTPError(status int, raw []byte) *Error {
	e := &Error{Status: status}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil && body != nil {
		e.Body = body
		e.Message = messageFromBody(body)
	} else {
		e.Message = truncate(strings.TrimSpace(string(raw)), maxRawMessage)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// messageFromBody picks the best human-readable message from an error body:
// detail first, then non_field_errors, then the per-field arrays in key order.
func messageFromBody(body map[string]any) string {
	if d, ok := body["detail"]; ok {
		if msgs := stringList(d); len(msgs) > 0 {
			return strings.Join(msgs, " ")
		}
	}
	if nf, ok := body["non_field_errors"]; ok {
		if msgs := stringList(nf); len(msgs) > 0 {
			return strings.Join(msgs, " ")
		}
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if msgs := stringList(body[k]); len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(msgs, " ")))
		}
	}
	return strings.Join(parts, "; ")
}

// stringList flattens a string or an array of strings.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
