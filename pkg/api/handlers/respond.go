// Package handlers provides the HTTP handlers of the nsmd API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
)

// ContentTypeProblemJSON is the media type of error bodies (RFC 7807).
const ContentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 error body. Title is the status text.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport is the body of the health endpoints.
type HealthReport struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// WriteProblem replies with status and a problem body carrying detail.
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	send(w, status, ContentTypeProblemJSON, Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	send(w, status, "application/json", v)
}

func send(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode API response", logger.Err(err))
	}
}

func healthy(data any) HealthReport {
	return HealthReport{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthy(reason string) HealthReport {
	return HealthReport{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: reason}
}
