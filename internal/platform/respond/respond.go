// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response follows the same JSON envelope: successes carry
// {"status":"success", ...} and failures carry {"status":"failed",
// "message": string | []string}. This consistency is what API clients key on.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/constants"
	"github.com/thachln/userbase/internal/platform/ctxutil"
)

// Envelope is the standard JSON shape for success responses.
//
// Token and User are optional and only populated by the flows that return
// them (registration, login, current-user lookup).
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    any    `json:"user,omitempty"`
}

// errorEnvelope is the JSON shape for failure responses.
//
// Message is a single string for most failures, or a []string when
// field-level validation details exist.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message any    `json:"message"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// Success writes a success envelope with the given HTTP status and message.
func Success(writer http.ResponseWriter, statusCode int, message string) {
	JSON(writer, statusCode, Envelope{Status: constants.StatusSuccess, Message: message})
}

// SuccessToken writes a success envelope carrying a bearer token.
func SuccessToken(writer http.ResponseWriter, statusCode int, message, token string) {
	JSON(writer, statusCode, Envelope{Status: constants.StatusSuccess, Message: message, Token: token})
}

// User writes a 200 OK envelope carrying the authenticated account.
func User(writer http.ResponseWriter, user any) {
	JSON(writer, http.StatusOK, Envelope{Status: constants.StatusSuccess, User: user})
}

// Failure writes a failure envelope with a single message string.
//
// Use this only where no [apperr.AppError] exists (health probes); handlers
// should return errors and let [Error] render them.
func Failure(writer http.ResponseWriter, statusCode int, message string) {
	JSON(writer, statusCode, errorEnvelope{Status: constants.StatusFailed, Message: message})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	// Validation failures report every offending field as an array of messages.
	var message any = appError.Message
	if len(appError.Details) > 0 {
		messages := make([]string, 0, len(appError.Details))
		for _, detail := range appError.Details {
			messages = append(messages, detail.Field+": "+detail.Message)
		}
		message = messages
	}

	JSON(writer, appError.HTTPStatus, errorEnvelope{
		Status:  constants.StatusFailed,
		Message: message,
	})
}
