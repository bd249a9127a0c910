package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a referenced entity is missing where
	// existence is required: relation endpoints on create, the root of an
	// analytical view, or the target of add-observations. Delete
	// operations never return it; they treat missing names as no-ops.
	ErrNotFound = errors.New("entity not found")

	// ErrValidation indicates an entity type, relation type, or
	// status/priority value outside its closed enumeration. Validation
	// failures reject the whole batch before any state is mutated.
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates an underlying read/write failure other than
	// "store file absent", which is the documented empty-graph case.
	ErrStorage = errors.New("storage failure")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Storagef wraps ErrStorage with a formatted message.
func Storagef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStorage)...)
}
