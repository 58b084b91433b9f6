package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsNotFound reports whether err is a GORM record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique constraint violation. GORM's
// error translation covers most cases; the string check catches SQLite
// errors raised inside transactions where translation does not apply.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
