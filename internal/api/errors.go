/**
 * @description
 * The boundary error translator. Every error raised by the service layer is
 * classified by internal/apperr; this file turns the classification into a
 * status code and a structured body, and logs it. Stack traces are included
 * only in a development-mode configuration.
 */
package api

import (
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"github.com/financeplanner/aggregator-service/internal/apperr"
)

// errorResponse is the structured body returned for every failed request.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace,omitempty"`
}

// writeError translates err at the request boundary.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)

	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", apperr.KindOf(err).String(),
		"error", err,
	)

	response := errorResponse{
		StatusCode: status,
		Message:    err.Error(),
	}
	if h.development {
		response.StackTrace = string(debug.Stack())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		h.logger.Error("failed to write error response", "error", encodeErr)
	}
}

// writeJSON writes a success payload.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
