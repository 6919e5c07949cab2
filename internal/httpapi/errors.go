// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rushplatform/rush/pkg/errutil"
)

// errorBody is the JSON shape of all error responses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForCode maps service error codes to HTTP status codes. Codes
// not listed here are treated as internal errors.
var statusForCode = map[string]int{
	"ACCOUNT_INVALID_EMAIL":    http.StatusBadRequest,
	"ACCOUNT_INVALID_NAME":     http.StatusBadRequest,
	"ACCOUNT_INVALID_PASSWORD": http.StatusBadRequest,
	"ACCOUNT_EMAIL_TAKEN":      http.StatusBadRequest,
	"TOKEN_NOT_FOUND":          http.StatusBadRequest,
	"INSTANCE_INVALID_NAME":    http.StatusBadRequest,
	"INSTANCE_NAME_TAKEN":      http.StatusBadRequest,
	"AUTH_INVALID_CREDENTIALS": http.StatusUnauthorized,
	"SESSION_INVALID":          http.StatusUnauthorized,
}

// writeServiceError maps a service error to an HTTP response. Client
// errors expose their code and message; everything else collapses into
// a generic 500 so internal details never leak.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := errutil.ErrorCode(err)
	status, ok := statusForCode[code]
	if !ok {
		errutil.LogError(r.Context(), s.logger, "request failed", err)
		writeInternalError(w)
		return
	}

	if status == http.StatusUnauthorized {
		// Uniform body regardless of whether the account exists, the
		// password mismatched, or the token was malformed.
		writeUnauthorized(w)
		return
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: err.Error(),
	}})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
		Code:    "UNAUTHORIZED",
		Message: "invalid credentials",
	}})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
		Code:    "NOT_FOUND",
		Message: "not found",
	}})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:    "BAD_REQUEST",
		Message: message,
	}})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
		Code:    "INTERNAL",
		Message: "internal server error",
	}})
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client is gone
	json.NewEncoder(w).Encode(v)
}
