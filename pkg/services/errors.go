package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error kinds surfaced to controllers. Wrap with fmt.Errorf("%w: ...") to add
// detail; controllers map them onto HTTP statuses.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// isDuplicateErr reports whether err is a unique-constraint violation. The
// mysql driver translates to gorm.ErrDuplicatedKey; sqlite without error
// translation falls through to the message check.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "Duplicate entry")
}
