// Package response decodes Elasticsearch response bodies into typed values.
// Sections keyed by variant tags (bulk items, rank-eval metric details) are
// decoded through the same registries that encode requests.
package response

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Shards reports how many shards took part in an operation.
type Shards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// ErrorCause is the cluster's structured error description.
type ErrorCause struct {
	Type      string       `json:"type"`
	Reason    string       `json:"reason"`
	Index     string       `json:"index,omitempty"`
	RootCause []ErrorCause `json:"root_cause,omitempty"`
	CausedBy  *ErrorCause  `json:"caused_by,omitempty"`
}

func (c ErrorCause) String() string {
	if c.Reason == "" {
		return c.Type
	}
	return c.Type + ": " + c.Reason
}

// Error is a non-2xx response.
type Error struct {
	Status int
	Cause  ErrorCause
	// Body is the raw response when it did not carry a structured error.
	Body []byte
}

func (e *Error) Error() string {
	if e.Cause.Type == "" {
		body := strings.TrimSpace(string(e.Body))
		if body == "" {
			return fmt.Sprintf("elasticsearch: status %d", e.Status)
		}
		return fmt.Sprintf("elasticsearch: status %d: %s", e.Status, body)
	}
	return fmt.Sprintf("elasticsearch: status %d: %s", e.Status, e.Cause)
}

// ParseError builds an Error from a failed response body. Both the
// structured {"error": {...}} shape and a bare string error are accepted.
func ParseError(status int, body []byte) *Error {
	e := &Error{Status: status}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		e.Body = body
		return e
	}
	if err := json.Unmarshal(envelope.Error, &e.Cause); err == nil {
		return e
	}
	var reason string
	if err := json.Unmarshal(envelope.Error, &reason); err == nil {
		e.Cause = ErrorCause{Type: "error", Reason: reason}
		return e
	}
	e.Body = body
	return e
}

func decode[T any](data []byte, what string) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", what, err)
	}
	return &v, nil
}
