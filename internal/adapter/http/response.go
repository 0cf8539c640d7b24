// Package http exposes the REST surface: routing, middleware, handlers
// and the response envelope.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/qaforge/qaforge/pkg/apperror"
)

// errorBody is the error half of the response envelope
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError maps any error onto the typed taxonomy and renders the
// error envelope with the taxonomy's HTTP status
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.Map(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": errorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
