package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	detail string
}

func (e *StatusError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.detail)
	}
	return fmt.Sprintf("%s %s: status %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Detail is the server supplied message, empty when none was sent.
func (e *StatusError) Detail() string { return e.detail }

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// extractDetail pulls a human message out of an error body: the "message" or
// "error" key of a JSON object, a bare JSON string, or the trimmed text.
func extractDetail(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	switch text[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err != nil {
			return ""
		}
		for _, key := range []string{"message", "error"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return ""
	case '<':
		// HTML error pages are not useful as notices
		return ""
	}
	return text
}
