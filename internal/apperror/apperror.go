// Package apperror описывает таксономию ошибок, видимых клиенту:
// BadRequest, NotFound и ServerError.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindBadRequest      Kind = "BAD_REQUEST"
	KindNotFound        Kind = "NOT_FOUND"
	KindServerError     Kind = "SERVER_ERROR"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindTooManyRequests Kind = "TOO_MANY_REQUESTS"
)

// FieldError описывает одно нарушение валидации.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	// Исходная причина, клиенту не показывается.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по виду и сообщению, чтобы работал errors.Is с сентинелами.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal оборачивает неожиданную ошибку хранилища или инфраструктуры.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindServerError, Message: msg, Err: err}
}

func Validation(details []FieldError) *Error {
	return &Error{Kind: KindBadRequest, Message: "validation failed", Details: details}
}

// KindOf возвращает вид ошибки; всё нераспознанное считается ServerError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

// Public возвращает сообщение и детали, безопасные для клиента.
func Public(err error) (Kind, string, []FieldError) {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindServerError {
		return KindServerError, "internal server error", nil
	}
	return e.Kind, e.Message, e.Details
}
