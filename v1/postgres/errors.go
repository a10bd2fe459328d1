package postgres

import (
	"errors"

	"gorm.io/gorm"
)

// Exported sentinels so callers never need to import gorm to classify
// failures. gorm.Open runs with TranslateError, so driver errors arrive
// already normalized.
var (
	// ErrRecordNotFound is returned when a lookup matches no row.
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// ErrDuplicateKey is returned when an insert violates a unique
	// constraint.
	ErrDuplicateKey = gorm.ErrDuplicatedKey

	// ErrForeignKeyViolated is returned when a write violates a foreign
	// key constraint.
	ErrForeignKeyViolated = gorm.ErrForeignKeyViolated
)

// IsNotFoundError checks if the error is a "record not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsDuplicateKeyError checks if the error is a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}
