package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsTransientErr reports store errors worth retrying: serialization
// conflicts, deadlocks, dropped connections.
func IsTransientErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "could not serialize access"): // postgres 40001
		return true
	case strings.Contains(msg, "deadlock detected"): // postgres 40P01
		return true
	case strings.Contains(msg, "Deadlock found"): // mysql 1213
		return true
	case strings.Contains(msg, "database is locked"): // sqlite busy
		return true
	case strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"):
		return true
	default:
		return false
	}
}
