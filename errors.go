package formwave

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeRemote       ErrorType = "remote"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeConfig       ErrorType = "config"
)

// Error is the unified error returned by the store, the remote clients and
// the supporting backends.
type Error struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	FormID  string         `json:"formId,omitempty"`
	Field   string         `json:"field,omitempty"`
	Status  int            `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e.FormID != "" && e.Field != "" {
		return fmt.Sprintf("[%s:%s] form %s field '%s': %s", e.Type, e.Code, e.FormID, e.Field, e.Message)
	}
	if e.FormID != "" {
		return fmt.Sprintf("[%s:%s] form %s: %s", e.Type, e.Code, e.FormID, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same type and code. An empty code on
// the target matches any code of that type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Type != e.Type {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail adds a single detail to the error
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adds a cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithForm adds form context to the error
func (e *Error) WithForm(formID string) *Error {
	e.FormID = formID
	return e
}

// WithField adds field context to the error
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithStatus records the HTTP status that produced the error
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// Error codes
const (
	// Document store
	ErrCodeFormNotFound     = "FORM_NOT_FOUND"
	ErrCodeFieldNotFound    = "FIELD_NOT_FOUND"
	ErrCodeIndexOutOfRange  = "INDEX_OUT_OF_RANGE"
	ErrCodeNoCurrentForm    = "NO_CURRENT_FORM"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Remote API
	ErrCodeRemoteRequestFailed = "REMOTE_REQUEST_FAILED"
	ErrCodeRemoteUnavailable   = "REMOTE_UNAVAILABLE"
	ErrCodeAuthRequired        = "AUTH_REQUIRED"
	ErrCodePermissionDenied    = "PERMISSION_DENIED"
	ErrCodeInvalidResponse     = "INVALID_RESPONSE"
	ErrCodeResourceNotFound    = "RESOURCE_NOT_FOUND"

	// Responses
	ErrCodeResponseInvalid = "RESPONSE_INVALID"
	ErrCodeSchemaInvalid   = "SCHEMA_INVALID"

	// Backends
	ErrCodeStorageFailed = "STORAGE_FAILED"
	ErrCodeExportFailed  = "EXPORT_FAILED"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeInvalidConfig = "INVALID_CONFIG"
)

// NewError creates a new Error
func NewError(errorType ErrorType, code, message string) *Error {
	return &Error{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
}

// NewValidationError creates a validation error
func NewValidationError(field, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: message,
		Field:   field,
		Details: make(map[string]any),
	}
}

// NewNoCurrentFormError reports a mutation or save attempted with no form open.
func NewNoCurrentFormError() *Error {
	return NewError(ErrorTypeValidation, ErrCodeNoCurrentForm, "no form is currently open")
}

// NewIndexOutOfRangeError reports a reorder with an index outside the field list.
func NewIndexOutOfRangeError(index, length int) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range for %d fields", index, length),
		Details: map[string]any{
			"index":  index,
			"length": length,
		},
	}
}

// NewFormNotFoundError creates a form not found error
func NewFormNotFoundError(formID string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeFormNotFound,
		Message: "form not found",
		FormID:  formID,
		Details: make(map[string]any),
	}
}

// NewAuthRequiredError is returned before any round trip when no session token is stored.
func NewAuthRequiredError() *Error {
	return NewError(ErrorTypeUnauthorized, ErrCodeAuthRequired, "Authentication required. Please log in.")
}

// NewRemoteError creates an error for a failed backend call
func NewRemoteError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeRemote,
		Code:    ErrCodeRemoteRequestFailed,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// NewRemoteUnavailableError is returned while the client circuit breaker is open.
func NewRemoteUnavailableError() *Error {
	return NewError(ErrorTypeRemote, ErrCodeRemoteUnavailable, "remote API temporarily unavailable")
}

// NewResponseInvalidError creates a response validation error for one field
func NewResponseInvalidError(field, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeResponseInvalid,
		Message: message,
		Field:   field,
		Details: make(map[string]any),
	}
}

// NewStorageError creates an error for a failed analytics or token backend operation
func NewStorageError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeStorageFailed,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// IsNotFound reports whether err is a not_found Error.
func IsNotFound(err error) bool {
	return errorTypeOf(err) == ErrorTypeNotFound
}

// IsUnauthorized reports whether err is an unauthorized Error.
func IsUnauthorized(err error) bool {
	return errorTypeOf(err) == ErrorTypeUnauthorized
}

// IsValidation reports whether err is a validation Error.
func IsValidation(err error) bool {
	return errorTypeOf(err) == ErrorTypeValidation
}

func errorTypeOf(err error) ErrorType {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ""
}
