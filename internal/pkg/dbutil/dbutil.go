package dbutil

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Finalize rebinds gendry-style "?" placeholders for the active driver.
// sqlite keeps question marks, postgres wants $N.
func Finalize(driver, query string, args []interface{}) (string, []interface{}) {
	if driver == "postgres" {
		return sqlx.Rebind(sqlx.DOLLAR, query), args
	}
	return query, args
}

// In expands slice arguments for IN clauses and rebinds for the driver.
func In(driver, query string, args ...interface{}) (string, []interface{}, error) {
	q, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	if driver == "postgres" {
		q = sqlx.Rebind(sqlx.DOLLAR, q)
	}
	return q, expanded, nil
}

// IsConflict reports whether err is a unique-constraint violation, for
// either driver.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if pgErr, ok := err.(*pq.Error); ok {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
