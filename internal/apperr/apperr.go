package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind membedakan kelas error untuk mapping HTTP & kebijakan retry.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindExternal   Kind = "EXTERNAL"
	KindInternal   Kind = "INTERNAL"
)

// Error: discriminated result untuk semua operasi core.
// Code = machine-readable (mis. INSUFFICIENT_STOCK), Message = untuk client.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code, msg string) *Error { return newErr(KindValidation, code, msg) }
func NotFound(code, msg string) *Error   { return newErr(KindNotFound, code, msg) }
func Forbidden(code, msg string) *Error  { return newErr(KindForbidden, code, msg) }
func Conflict(code, msg string) *Error   { return newErr(KindConflict, code, msg) }

func External(code, msg string, err error) *Error {
	return &Error{Kind: KindExternal, Code: code, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "terjadi kesalahan server", Err: err}
}

// KindOf: error apa pun yang bukan *Error dianggap INTERNAL.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf mengembalikan code machine-readable, atau "INTERNAL".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsKind memudahkan assert di test & service.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
