package domain

import (
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"

	"arbscan/pkg/errcodes"
)

// AppError is a domain error carrying a stable machine-readable code.
type AppError struct {
	Code    failure.ErrorCode
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewError(code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func WrapError(err error, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// ErrUnknownAsset marks an opportunity referencing a coin the price model no
// longer knows. Treated as fatal for the single operation that hit it.
func ErrUnknownAsset(symbol string) *AppError {
	return NewError(errcodes.UnknownAsset, fmt.Sprintf("unknown asset %q", symbol))
}
