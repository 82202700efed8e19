package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/internal/logger"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/dispatch"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/location"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/payload"
)

// maxRequestBody bounds the size of a submitted request.
const maxRequestBody = 1 << 20

// Dispatcher is the part of *dispatch.Dispatcher the API drives.
type Dispatcher interface {
	Registry() *location.Registry
	Async(ctx context.Context, serverID int64, typ string, opcode dispatch.Opcode, extras payload.Map) string
	Sync(ctx context.Context, serverID int64, typ string, opcode dispatch.Opcode, extras payload.Map) payload.Map
	Cancel(serverID int64) bool
	Retry(ctx context.Context, serverID int64) (string, bool)
	InFlight() []dispatch.RequestInfo
	RegisterResultCallback(cb dispatch.ResultCallback)
	UnregisterResultCallback()
	RegisterProgressCallback(cb dispatch.ProgressCallback)
	UnregisterProgressCallback()
}

// SubmitRequest is the body of POST /api/v1/requests and /requests/sync.
type SubmitRequest struct {
	ServerID int64       `json:"serverId"`
	Type     string      `json:"type,omitempty"`
	Opcode   *int32      `json:"opcode"`
	Extras   payload.Map `json:"extras,omitempty"`
}

// SubmitResponse is returned for an accepted asynchronous request.
type SubmitResponse struct {
	RequestID string `json:"requestId"`
}

// RetryResponse is returned by the retry endpoint.
type RetryResponse struct {
	Retried   bool   `json:"retried"`
	RequestID string `json:"requestId,omitempty"`
}

// RequestHandler exposes the dispatcher's request operations.
type RequestHandler struct {
	dispatcher Dispatcher
}

// NewRequestHandler creates a request handler.
func NewRequestHandler(d Dispatcher) *RequestHandler {
	return &RequestHandler{dispatcher: d}
}

// Submit handles POST /api/v1/requests.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubmit(w, r)
	if !ok {
		return
	}
	id := h.dispatcher.Async(r.Context(), req.ServerID, req.Type, dispatch.Opcode(*req.Opcode), req.Extras)
	writeJSON(w, http.StatusAccepted, SubmitResponse{RequestID: id})
}

// SubmitSync handles POST /api/v1/requests/sync. The result map is the
// response body.
func (h *RequestHandler) SubmitSync(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubmit(w, r)
	if !ok {
		return
	}
	res := h.dispatcher.Sync(r.Context(), req.ServerID, req.Type, dispatch.Opcode(*req.Opcode), req.Extras)
	writeJSON(w, http.StatusOK, res)
}

// List handles GET /api/v1/requests.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dispatcher.InFlight())
}

// Cancel handles POST /api/v1/requests/{serverId}/cancel.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	serverID, ok := serverIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": h.dispatcher.Cancel(serverID)})
}

// Retry handles POST /api/v1/requests/{serverId}/retry.
func (h *RequestHandler) Retry(w http.ResponseWriter, r *http.Request) {
	serverID, ok := serverIDParam(w, r)
	if !ok {
		return
	}
	id, retried := h.dispatcher.Retry(r.Context(), serverID)
	writeJSON(w, http.StatusOK, RetryResponse{Retried: retried, RequestID: id})
}

// decodeSubmit decodes and checks a SubmitRequest. On failure the problem
// response has already been written. Numbers inside extras are kept as
// json.Number so large server ids survive.
func decodeSubmit(w http.ResponseWriter, r *http.Request) (*SubmitRequest, bool) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, maxRequestBody)); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Request body too large or unreadable")
		return nil, false
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var req SubmitRequest
	if err := dec.Decode(&req); err != nil {
		WriteProblem(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if req.Opcode == nil {
		WriteProblem(w, http.StatusBadRequest, "opcode is required")
		return nil, false
	}

	logger.Debug("API request decoded",
		logger.KeyServerID, req.ServerID,
		logger.KeyOpcode, dispatch.Opcode(*req.Opcode).String(),
		logger.KeyType, req.Type)
	return &req, true
}

func serverIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "serverId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "serverId must be an integer")
		return 0, false
	}
	return id, true
}
