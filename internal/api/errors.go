package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/face-auth/internal/validation"
)

var (
	// ErrNotFound is returned for 404 responses. Callers route it to a
	// not-found view; it never carries field errors.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork wraps failures to reach the server at all.
	ErrNetwork = errors.New("network error")

	// ErrStale is returned when a newer request of the same kind was issued
	// while this one was in flight. The response must be ignored.
	ErrStale = errors.New("response superseded by a newer request")
)

// FieldError is one entry of a validation error list.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// APIError is a non-2xx, non-404 response.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 && e.Message == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Fields[0].Msg)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Violations projects the server's field errors onto the same paths the
// client-side validator uses, so both render the same way.
func (e *APIError) Violations() []validation.Violation {
	out := make([]validation.Violation, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, validation.Violation{Path: locPath(f.Loc), Message: f.Msg})
	}
	return out
}

// HasViolations reports whether the error carries field-level errors.
func (e *APIError) HasViolations() bool {
	return len(e.Fields) > 0
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// locPath converts a location like ["body", "image_data"] into "imageData".
// Request-part prefixes are dropped and indexes are rendered as [n].
func locPath(loc []any) string {
	var b strings.Builder
	for i, part := range loc {
		switch v := part.(type) {
		case string:
			if i == 0 && (v == "body" || v == "form" || v == "query") {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(camelCase(v))
		case float64:
			b.WriteString("[" + strconv.Itoa(int(v)) + "]")
		default:
			b.WriteString(fmt.Sprintf("[%v]", v))
		}
	}
	return b.String()
}

func camelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// errorBody covers the error shapes the API is known to send:
// {detail: string}, {detail: [FieldError]} and {message, details: [FieldError]}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Details []FieldError    `json:"details"`
	Error   string          `json:"error"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	if len(eb.Detail) > 0 {
		var msg string
		if err := json.Unmarshal(eb.Detail, &msg); err == nil {
			apiErr.Message = msg
		} else {
			_ = json.Unmarshal(eb.Detail, &apiErr.Fields)
		}
	}

	if eb.Message != "" {
		apiErr.Message = eb.Message
	}
	if len(eb.Details) > 0 {
		apiErr.Fields = eb.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = eb.Error
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = http.StatusText(status)
	}

	return apiErr
}
