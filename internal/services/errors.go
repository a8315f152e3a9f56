package services

import (
	"errors"
	"fmt"

	"github.com/pomotrack/apiserver/internal/store"
)

var (
	// ErrInvalidInput marks requests rejected by validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated is returned when no valid session identifies the caller.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials is returned for both unknown names and wrong
	// passwords so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrDuplicate = store.ErrDuplicate
	ErrNotFound  = store.ErrNotFound
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
