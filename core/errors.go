package core

import "github.com/pkg/errors"

// FieldError attaches an error message to a single input field,
// e.g. {"email", "a user with this email already exists"}.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a business-rule failure on user-supplied input.
// The API layer renders Fields as a field→message map with a 400 status;
// uniqueness checks (student/user emails) are the main producers.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable integrity problem; the server drains
// and exits rather than keep serving.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks if an error of type shutdown is contained in the
// specified error's chain.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
