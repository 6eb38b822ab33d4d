package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// maxBodyBytes bounds request bodies for every write endpoint.
const maxBodyBytes = 1 << 20

// ErrorResponse is the wire format for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to HTTP status codes: validation 400, not found 404,
// invalid transition 409, anything else 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var ve *types.ValidationError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp.Field = ve.Field
	case errors.Is(err, types.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		logger.Error("Request failed", zap.Error(err))
		resp.Error = "internal error"
	}
	writeJSON(w, logger, status, resp)
}

// decodeBody reads a JSON body into v. Malformed input is a ValidationError.
func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return &types.ValidationError{Field: "body", Reason: "must not be empty"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &types.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
