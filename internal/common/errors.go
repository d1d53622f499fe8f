// Package common provides shared utilities used across all features
package common

import (
	"fmt"
	"net/http"
)

// HttpError is an API error: StatusCode goes on the response line, Code and
// Message into the body.
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

func NewHttpError(status int, code, msg string) *HttpError {
	return &HttpError{StatusCode: status, Code: code, Message: msg}
}

// HTTP Error constructors

func HTTPErrorBadRequest(msg string) *HttpError {
	return NewHttpError(http.StatusBadRequest, "bad_request", messageOrDefault(msg, "Bad request"))
}

func HTTPErrorInvalidRequest(msg string) *HttpError {
	return NewHttpError(http.StatusBadRequest, "invalid_request", messageOrDefault(msg, "Invalid request"))
}

func HTTPErrorNotFound(msg string) *HttpError {
	return NewHttpError(http.StatusNotFound, "not_found", messageOrDefault(msg, "Not found"))
}

func HTTPErrorTooManyRequests(msg string) *HttpError {
	return NewHttpError(http.StatusTooManyRequests, "too_many_requests", messageOrDefault(msg, "Rate limit exceeded"))
}

func HTTPErrorInternalError(msg string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, "internal_server_error", messageOrDefault(msg, "Unexpected error occurred"))
}

// Settlement errors

func HTTPErrorQuoteOfferNotFound() *HttpError {
	return NewHttpError(http.StatusNotFound, "quote_offer_not_found", "Quote offer not found or expired")
}

func HTTPErrorInvalidQuote() *HttpError {
	return NewHttpError(http.StatusBadRequest, "invalid_quote", "Invalid quote")
}

func HTTPErrorUnsupportedAlgorithm() *HttpError {
	return NewHttpError(http.StatusBadRequest, "unsupported_algorithm", "Unsupported signing algorithm")
}

func HTTPErrorInvalidIntent() *HttpError {
	return NewHttpError(http.StatusBadRequest, "invalid_intent", "Intent rejected")
}

func HTTPErrorExecuteIntentsFailed() *HttpError {
	return NewHttpError(http.StatusBadRequest, "suintents_execute_intents_failed", "Failed to execute intents transaction")
}
