package dataverse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSolutionNotFound is returned when no solution matches a unique name.
var ErrSolutionNotFound = errors.New("solution not found")

// APIError is a non-2xx response from the Web API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dataverse: status %d: %s (code %s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("dataverse: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == status
}

// decodeAPIError builds an APIError from an OData error body.
func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
		return apiErr
	}
	apiErr.Message = summarizeBody(body)
	return apiErr
}

func summarizeBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}
