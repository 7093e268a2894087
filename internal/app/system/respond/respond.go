// internal/app/system/respond/respond.go
//
// Package respond is the single JSON response boundary for all
// handlers: success payloads and the error taxonomy (400 validation,
// 401/403 auth, 404 not found, 409 conflict, 500 unexpected) both go
// through here so every route answers in the same shape.
package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorBody is the JSON error envelope: a human-readable message plus,
// where available, the underlying error's message string.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Logger pairs response writing with structured logging so handlers
// never log and respond separately (and never forget one of the two).
type Logger struct {
	log *zap.Logger
}

// NewLogger constructs a respond Logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{log: logger}
}

// BadRequest writes a 400 with the given user-facing message.
func (l *Logger) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	l.log.Info("bad request",
		zap.String("path", r.URL.Path),
		zap.String("reason", msg))
	JSON(w, http.StatusBadRequest, ErrorBody{Error: msg})
}

// NotFound writes a 404 with the given user-facing message.
func (l *Logger) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, http.StatusNotFound, ErrorBody{Error: msg})
}

// Conflict writes a 409 with the given user-facing message.
func (l *Logger) Conflict(w http.ResponseWriter, r *http.Request, msg string) {
	l.log.Info("conflict",
		zap.String("path", r.URL.Path),
		zap.String("reason", msg))
	JSON(w, http.StatusConflict, ErrorBody{Error: msg})
}

// ServerError logs the underlying error and writes a 500 carrying the
// user message plus the error's message string as details.
func (l *Logger) ServerError(w http.ResponseWriter, r *http.Request, op string, err error, msg string) {
	l.log.Error(op,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	body := ErrorBody{Error: msg}
	if err != nil {
		body.Details = err.Error()
	}
	JSON(w, http.StatusInternalServerError, body)
}

// Unauthorized writes a 401.
func (l *Logger) Unauthorized(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusUnauthorized, ErrorBody{Error: "unauthorized"})
}

// Forbidden writes a 403.
func (l *Logger) Forbidden(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusForbidden, ErrorBody{Error: "forbidden"})
}

// DecodeJSON decodes the request body into dst, rejecting unknown
// fields. Returns false (after writing a 400) when the body is
// malformed; handlers just `return` on false.
func (l *Logger) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		l.BadRequest(w, r, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
