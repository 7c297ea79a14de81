package dictionary

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCode is returned when a game code fails validation.
	ErrInvalidCode = errors.New("invalid game code")
	// ErrInvalidInput is returned when a required field is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate is returned when a unique name or code already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrCategoryInUse is returned when deleting a category that entries still reference.
	ErrCategoryInUse = errors.New("category is in use")
	// ErrInvalidReference is returned when an entry points at a missing game or category.
	ErrInvalidReference = errors.New("invalid reference")
)

// isUniqueViolation recognizes unique constraint failures from sqlite and mysql.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// isForeignKeyViolation recognizes foreign key failures from sqlite and mysql.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "foreign key constraint fails")
}
