package clinic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput agrupa los errores de validación (recuperables, 400).
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrUnavailable marca fallas de transporte del store (503).
	ErrUnavailable = errors.New("store unavailable")

	ErrDuplicatePet   = fmt.Errorf("%w: pet id already exists", ErrInvalidInput)
	ErrDuplicateOwner = fmt.Errorf("%w: owner id already exists", ErrInvalidInput)
	ErrOwnerNotFound  = fmt.Errorf("%w: owner does not exist", ErrInvalidInput)

	ErrDuplicateVaccination = fmt.Errorf("%w: vaccination id already exists", ErrInvalidInput)
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
