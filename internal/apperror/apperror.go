// Package apperror defines the error taxonomy shared by the aggregation
// engine and the HTTP layer. Every error is scoped to one entity.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Kind classifies an error.
type Kind string

const (
	KindDataIntegrity Kind = "data_integrity"
	KindReference     Kind = "reference"
	KindIO            Kind = "io"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindPermission    Kind = "permission"
	KindRateLimit     Kind = "rate_limit"
	KindInternal      Kind = "internal"
)

// Error is an application error carrying the entity it concerns.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Entity   string
	EntityID string
	Err      error
	Context  map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Entity != "" {
		msg = fmt.Sprintf("%s (%s %s)", msg, e.Entity, e.EntityID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithContext adds a key/value pair reported by LogFields.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *Error) LogFields() []interface{} {
	fields := []interface{}{
		"error_kind", e.Kind,
		"error_code", e.Code,
		"error_message", e.Message,
	}
	if e.Entity != "" {
		fields = append(fields, "entity", e.Entity, "entity_id", e.EntityID)
	}
	if e.Err != nil {
		fields = append(fields, "internal_error", e.Err.Error())
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// Sentinels for errors.Is checks. Only Kind (and Code where set) are compared.
var (
	ErrDataIntegrity = &Error{Kind: KindDataIntegrity}
	ErrReference     = &Error{Kind: KindReference}
	ErrIO            = &Error{Kind: KindIO}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrPermission    = &Error{Kind: KindPermission}
	ErrRateLimit     = &Error{Kind: KindRateLimit}
)

// DataIntegrity reports an entity that violates a data invariant, such as a
// negative amount or an incomplete nutrient profile.
func DataIntegrity(entity, id, message string) *Error {
	return &Error{
		Kind:     KindDataIntegrity,
		Code:     "DATA_INTEGRITY",
		Message:  message,
		Entity:   entity,
		EntityID: id,
	}
}

// Reference reports a reference to an entity that is not in the supplied data.
func Reference(entity, id string) *Error {
	return &Error{
		Kind:     KindReference,
		Code:     "REFERENCE",
		Message:  "unresolved reference",
		Entity:   entity,
		EntityID: id,
	}
}

// NotFound reports a missing top-level entity requested by the caller.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Code:     "NOT_FOUND",
		Message:  entity + " not found",
		Entity:   entity,
		EntityID: id,
	}
}

// Validation reports malformed caller input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION", Message: message}
}

// IO wraps a store or network failure. The core never retries these.
func IO(err error) *Error {
	return &Error{Kind: KindIO, Code: "IO", Message: "record store failure", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Handler logs errors at a level chosen by their kind.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle logs err. Caller-correctable kinds log at warn, the rest at error.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
		return
	}

	switch appErr.Kind {
	case KindDataIntegrity, KindReference, KindValidation, KindNotFound, KindPermission, KindRateLimit:
		h.logger.WarnContext(ctx, "Request error", appErr.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Critical error", appErr.LogFields()...)
	}
}
