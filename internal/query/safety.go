package query

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnsafeSQL means the generated statement failed read-only validation and
// was never executed.
var ErrUnsafeSQL = errors.New("query: generated SQL failed read-only validation")

var selectRe = regexp.MustCompile(`(?i)^\s*SELECT\b`)

// Statements that mutate or touch the database beyond reading. Word-boundary
// matched so column names like "created_at" don't false-positive.
var forbiddenRe = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|REPLACE|ATTACH|DETACH|PRAGMA|VACUUM|REINDEX|TRUNCATE)\b`)

// ValidateSQL enforces the read-only contract on model-generated SQL: one
// statement, starting with SELECT, containing no write or DDL keyword. The
// generated text runs against real financial data, so this check is a hard
// gate, not hardening.
func ValidateSQL(sql string) error {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if trimmed == "" {
		return ErrUnsafeSQL
	}
	if !selectRe.MatchString(trimmed) {
		return ErrUnsafeSQL
	}
	// a second statement smuggled in after the SELECT
	if strings.Contains(trimmed, ";") {
		return ErrUnsafeSQL
	}
	if forbiddenRe.MatchString(trimmed) {
		return ErrUnsafeSQL
	}
	return nil
}
