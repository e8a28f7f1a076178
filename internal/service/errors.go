package service

import (
	"errors"
	"fmt"

	"storefront-api/internal/store"
)

// Errors returned by the services; the API layer maps them onto status codes
var (
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrValidation                = errors.New("validation failed")
	ErrConflict                  = errors.New("conflict")
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrCheckoutInProgress        = errors.New("a checkout for this cart is already in progress")
	ErrNotificationNotConfigured = errors.New("admin WhatsApp number not configured")
)

// fromStore maps repository errors onto service errors
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return &storeError{kind: ErrConflict, cause: err}
	case errors.Is(err, store.ErrInvalidInput):
		return &storeError{kind: ErrValidation, cause: err}
	}
	return err
}

// storeError reports only its kind; the repository error behind it can name
// tables and constraints, so it stays reachable through StoreCause for logging.
type storeError struct {
	kind  error
	cause error
}

func (e *storeError) Error() string { return e.kind.Error() }

func (e *storeError) Unwrap() []error { return []error{e.kind, e.cause} }

// StoreCause returns the repository error behind a rejected write, or nil
func StoreCause(err error) error {
	var se *storeError
	if errors.As(err, &se) {
		return se.cause
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
