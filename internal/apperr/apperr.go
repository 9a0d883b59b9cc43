package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors services wrap so handlers can map outcomes onto HTTP
// statuses without string matching.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Message strips the sentinel suffix for client-facing bodies.
func Message(err error) string {
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrValidation} {
		if errors.Is(err, sentinel) {
			msg := err.Error()
			suffix := ": " + sentinel.Error()
			if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
				return msg[:len(msg)-len(suffix)]
			}
		}
	}
	return err.Error()
}
