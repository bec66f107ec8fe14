package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/docsmart/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, models.ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// JobIDParam extracts the jobId query parameter. Returns false (and
// writes a 400) when missing.
func JobIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "jobId query parameter is required")
		return "", false
	}
	return jobID, true
}
