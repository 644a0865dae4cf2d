// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package api provides the HTTP surface of the storefront: personalized
// picks, lazy panel lifecycle operations and section preference management.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/vitrina-app/vitrina/internal/logging"
)

// APIResponse is the envelope every endpoint returns.
//
// Example success:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z"}
//	}
//
// Example error:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "limit out of range"},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Machine-readable error codes shared across endpoints.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// writeJSON sends a success envelope.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, queryTime time.Duration) {
	resp := APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	}
	encode(w, r, status, resp)
}

// writeError sends an error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := APIResponse{
		Status: "error",
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	}
	encode(w, r, status, resp)
}

func encode(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("encoding response failed")
	}
}
