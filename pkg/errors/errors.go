package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError application error.
// Design notes:
// 1. Code lets the client branch on the failure kind (never the raw HTTP status)
// 2. Message is safe to show to the user
// 3. Err is the internal cause, logged only and never serialized
// 4. Data carries figures the client needs to correct the request (shortfall list, balance)
type AppError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so a copy produced by WithData or
// Withf still satisfies errors.Is against the declared sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithData returns a copy of the error carrying data for the client.
func (e *AppError) WithData(data interface{}) *AppError {
	cp := *e
	cp.Data = data
	return &cp
}

// Withf returns a copy whose message gets extra detail appended.
// The sentinel message stays the prefix so logs stay searchable.
func (e *AppError) Withf(format string, args ...interface{}) *AppError {
	cp := *e
	cp.Message = e.Message + ": " + fmt.Sprintf(format, args...)
	cp.Err = &detailError{base: e}
	return &cp
}

// detailError keeps the original sentinel reachable through Unwrap after
// the message was specialised.
type detailError struct {
	base *AppError
}

func (d *detailError) Error() string { return d.base.Message }

func (d *detailError) Unwrap() error { return d.base }

// New creates an AppError.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps a system error (database, network) as an internal failure,
// hiding implementation details from the client.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf formats and wraps.
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// Error codes
// =========================================
// Convention:
// - 4xxxx: client errors (bad input, business rule rejected)
// - 5xxxx: server errors (store failure, broker failure)

const (
	// system (50000-50099)
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002

	// auth (40100-40199)
	ErrCodeUnauthorized = 40100
	ErrCodeInvalidToken = 40101
	ErrCodeTokenExpired = 40102
	ErrCodeForbidden    = 40104

	// resources (40400-40499)
	ErrCodeNotFound          = 40400
	ErrCodeBookingNotFound   = 40401
	ErrCodeInventoryNotFound = 40402
	ErrCodeOrderNotFound     = 40403
	ErrCodeRefundNotFound    = 40404

	// business rules (40000-40099)
	ErrCodeBusinessError      = 40000
	ErrCodeInsufficientStock  = 40001
	ErrCodeInvalidOrderStatus = 40002
	ErrCodeExceedsBalance     = 40006
	ErrCodeAlreadyPaid        = 40007
	ErrCodeOrderExists        = 40008
	ErrCodeDuplicateEntry     = 40009
	ErrCodeRefundResolved     = 40010

	// parameters (40900-40999)
	ErrCodeInvalidParams = 40900
	ErrCodeBindError     = 40901
)

// =========================================
// Predefined errors
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "internal error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrRedisError    = New(ErrCodeRedisError, "cache error")

	ErrUnauthorized = New(ErrCodeUnauthorized, "login required")
	ErrInvalidToken = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "token expired")
	ErrForbidden    = New(ErrCodeForbidden, "forbidden")

	ErrNotFound = New(ErrCodeNotFound, "resource not found")

	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "malformed request body")
)

// =========================================
// Helpers
// =========================================

// IsAppError reports whether err is (or wraps) an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError, wrapping anything else as an internal failure.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal error")
}

// HTTPStatus maps a business code onto the HTTP status the handler layer returns.
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code >= 40100 && code < 40104:
		return http.StatusUnauthorized
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code == ErrCodeOrderExists, code == ErrCodeDuplicateEntry, code == ErrCodeAlreadyPaid:
		return http.StatusConflict
	case code == ErrCodeInsufficientStock, code == ErrCodeExceedsBalance, code == ErrCodeInvalidOrderStatus,
		code == ErrCodeRefundResolved:
		return http.StatusUnprocessableEntity
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
