package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	pgIntegrityClassHead = "23"
)

// IsNotFound reports whether err is GORM's "no row" sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation from any supported driver. When constraintName is provided the
// violated constraint (or its text in the message) must match it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation && constraintMatches(pgxErr.ConstraintName, pgxErr.Message, constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && constraintMatches(pqErr.Constraint, pqErr.Message, constraintName)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		unique := liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
		return unique && constraintMatches("", liteErr.Error(), constraintName)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraintMatches("", err.Error(), constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraintMatches("", msg, constraintName)
}

// IsConstraintViolation reports whether err is any integrity constraint
// violation (unique, not-null, check, foreign key).
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return strings.HasPrefix(pgxErr.Code, pgIntegrityClassHead)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return strings.HasPrefix(string(pqErr.Code), pgIntegrityClassHead)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}

	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated)
}

func constraintMatches(constraint, message, want string) bool {
	if want == "" {
		return true
	}
	if constraint != "" {
		return constraint == want
	}
	return strings.Contains(message, want)
}
