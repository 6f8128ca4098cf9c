package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wozniakbe/viewswitch"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg, Code: status, RequestID: w.Header().Get(requestIDHeader)})
}

// switchError adapts writeError to viewswitch.ErrorFunc.
func switchError(w http.ResponseWriter, _ *http.Request, status int, err error) {
	writeError(w, status, err.Error())
}

// writeRenderError maps a render failure to a response. Only the terminal
// not-found from the resolver chain is a client error.
func writeRenderError(w http.ResponseWriter, logger *slog.Logger, view string, err error) {
	var nf *viewswitch.NotFoundError
	if errors.As(err, &nf) {
		logger.Warn("view not found", "view", view, "resolvers", nf.Tried)
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	logger.Error("render failed", "view", view, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to render view")
}
