package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
)

const maxBodyBytes = 1 << 20

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return "req_" + uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes the request body into dst, rejecting unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewErrInvalidArgument("request body is empty")
		}
		return apperrors.Wrap(apperrors.KindInvalidArgument, "malformed request body", err)
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	RequestID string    `json:"request_id"`
	Error     errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID(r),
		Error:     errorBody{Code: code, Message: message},
	})
}

// handleError renders err. Causes of application errors and unknown errors
// are logged, never sent.
func handleError(w http.ResponseWriter, r *http.Request, logger *logger.Logger, err error) {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Err != nil {
			logger.Warn("HTTP request failed",
				"path", r.URL.Path,
				"kind", appErr.Kind,
				"error", appErr.Err.Error())
		}
		writeError(w, r, appErr.HTTPStatus(), string(appErr.Kind), appErr.Message)
		return
	}

	logger.Error("HTTP request failed", "path", r.URL.Path, "error", err.Error())
	writeError(w, r, http.StatusInternalServerError, string(apperrors.KindInternal), "internal server error")
}
