// Package response writes the JSON envelopes shared by every endpoint.
//
// Success bodies look like {"success":true,"data":...} with optional listing
// metadata. Failures look like {"success":false,"error":{"message":...}}.
// Formatter.Error is the only place where an error is mapped to a status code.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"catalog-api/internal/model"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Envelope is the body of a successful response.
type Envelope struct {
	Success    bool    `json:"success"`
	Data       any     `json:"data"`
	Message    string  `json:"message,omitempty"`
	Count      *int    `json:"count,omitempty"`
	Total      *int    `json:"total,omitempty"`
	Page       *int    `json:"page,omitempty"`
	TotalPages *int    `json:"totalPages,omitempty"`
	Query      *string `json:"query,omitempty"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

// Failure is the body of a failed response.
type Failure struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// Int returns a pointer to v, for the optional Envelope fields.
func Int(v int) *int { return &v }

// String returns a pointer to v, for the optional Envelope fields.
func String(v string) *string { return &v }

// Formatter renders envelopes and classifies errors.
type Formatter struct {
	exposeStack bool
	logger      zerolog.Logger
}

// NewFormatter creates a formatter. When exposeStack is set, failures carry the
// underlying message and stack trace; it should only be enabled in development.
func NewFormatter(exposeStack bool, logger zerolog.Logger) *Formatter {
	return &Formatter{
		exposeStack: exposeStack,
		logger:      logger.With().Str("component", "response").Logger(),
	}
}

// Success writes env with success set to true.
func (f *Formatter) Success(w http.ResponseWriter, status int, env Envelope) {
	env.Success = true
	f.writeJSON(w, status, env)
}

// Error classifies err and writes the matching failure envelope.
func (f *Formatter) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := f.classify(err)

	event := f.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = f.logger.Error().Err(err)
	}
	event.
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("message", body.Message).
		Msg("request failed")

	f.writeJSON(w, status, Failure{Error: body})
}

// Fail writes a failure envelope with an explicit status and message.
func (f *Formatter) Fail(w http.ResponseWriter, status int, message string) {
	f.writeJSON(w, status, Failure{Error: ErrorBody{Message: message}})
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (f *Formatter) classify(err error) (int, ErrorBody) {
	var de *model.DomainError
	if errors.As(err, &de) && de.Kind != model.KindInternal {
		body := ErrorBody{Message: de.Message, Errors: de.Errors}
		if f.exposeStack {
			body.Stack = de.Stack()
		}
		return StatusFor(de.Kind), body
	}

	// Outside development, unclassified failures never leak their message.
	if !f.exposeStack {
		return http.StatusInternalServerError, ErrorBody{Message: model.MsgInternalError}
	}
	body := ErrorBody{Message: err.Error(), Stack: fmt.Sprintf("%+v", err)}
	if de != nil {
		body.Stack = de.Stack()
	}
	return http.StatusInternalServerError, body
}

// writeJSON writes a JSON response with the given status code.
func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		f.logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}
