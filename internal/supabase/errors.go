package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Error is an error reported by the backend. Its message is meant to be shown
// to the user unchanged.
type Error struct {
	Code       string
	Message    string
	Details    string
	Hint       string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// codeNoRows is PostgREST's code for a single-object request matching no row.
const codeNoRows = "PGRST116"

// IsNoRows reports whether err is a single-object query that matched nothing.
func IsNoRows(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == codeNoRows
}

// IsNotFound reports whether err is a backend "resource not found" error.
func IsNotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.StatusCode == http.StatusNotFound || e.Code == codeNoRows {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "not found")
}

// parseError turns an error response into an *Error. GoTrue, PostgREST and
// Storage each use a slightly different body shape.
func parseError(body []byte, statusCode int) error {
	var errResp struct {
		Code             json.RawMessage `json:"code"`
		ErrorCode        string          `json:"error_code"`
		StatusCode       string          `json:"statusCode"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Details          string          `json:"details"`
		Hint             string          `json:"hint"`
		Error            string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return &Error{
			Code:       "unknown",
			Message:    strings.TrimSpace(string(body)),
			StatusCode: statusCode,
		}
	}

	msg := errResp.Message
	for _, alt := range []string{errResp.Msg, errResp.ErrorDescription, errResp.Error} {
		if msg == "" {
			msg = alt
		}
	}

	code := errResp.ErrorCode
	if code == "" {
		var s string
		if json.Unmarshal(errResp.Code, &s) == nil {
			code = s
		}
	}

	// Storage reports its own status inside the body and may answer 400 for
	// a missing object.
	if errResp.StatusCode == "404" {
		statusCode = http.StatusNotFound
	}

	return &Error{
		Code:       code,
		Message:    msg,
		Details:    errResp.Details,
		Hint:       errResp.Hint,
		StatusCode: statusCode,
	}
}
