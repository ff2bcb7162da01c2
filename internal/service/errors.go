package service

import (
	"errors"

	"github.com/rogerio-castellano/pixel-canvas/internal/validation"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError carries the failed fields of a submitted form.
type ValidationError struct {
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Errors.Error()
}

func invalid(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// DuplicateError reports a username or email that is already taken.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " is already taken"
}

// Message is the text shown next to the offending form field.
func (e *DuplicateError) Message() string {
	if e.Field == "email" {
		return "This email is already registered, please use another one"
	}
	return "This username is already taken, please choose another one"
}
