// Package handlers implements the HTTP handlers for plate generation and
// health probes.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/brailleforge/brailleforge/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps an application error to its HTTP status via the error
// code table. Server-side codes are masked so internal detail never reaches
// the client.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	msg := err.Error()
	if status >= 500 {
		msg = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	}
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: msg})
}
