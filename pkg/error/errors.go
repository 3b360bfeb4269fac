package error

import "net/http"

// GenericError is the contract the recovery middleware uses to translate
// panics into structured API responses.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}

type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

type validationError string

func (err validationError) Error() string {
	return string(err)
}

func (err validationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err validationError) StatusCode() int {
	return http.StatusBadRequest
}

// ValidationError wraps a validation failure message into a GenericError.
func ValidationError(message string) GenericError {
	return validationError(message)
}

type forbiddenError string

func (err forbiddenError) Error() string {
	return string(err)
}

func (err forbiddenError) ErrCode() string {
	return "FORBIDDEN_ERROR"
}

func (err forbiddenError) StatusCode() int {
	return http.StatusForbidden
}

// ForbiddenError wraps an authorization failure message into a GenericError.
func ForbiddenError(message string) GenericError {
	return forbiddenError(message)
}
