// Package sql provides SQL statement classification and cleanup of raw
// language-model output.
package sql

import (
	"regexp"
	"strings"
)

// StatementType represents the type of SQL statement.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementDDL     StatementType = "DDL"     // CREATE, ALTER, DROP, TRUNCATE
	StatementUnknown StatementType = "UNKNOWN" // Unrecognized or blocked statement types
)

// modifyingCTEPattern matches CTEs that contain data-modifying operations.
// Example: WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE)\b`)

// DetectStatementType determines the type of SQL statement based on the
// first keyword. CTEs with data-modifying bodies are classified as unknown.
func DetectStatementType(sql string) StatementType {
	normalized := strings.ToUpper(strings.TrimSpace(sql))

	switch {
	case strings.HasPrefix(normalized, "SELECT"):
		return StatementSelect

	case strings.HasPrefix(normalized, "WITH"):
		// WITH could front a pure SELECT or a data-modifying CTE.
		if modifyingCTEPattern.MatchString(sql) {
			return StatementUnknown
		}
		return StatementSelect

	case strings.HasPrefix(normalized, "INSERT"):
		return StatementInsert

	case strings.HasPrefix(normalized, "UPDATE"):
		return StatementUpdate

	case strings.HasPrefix(normalized, "DELETE"):
		return StatementDelete

	case strings.HasPrefix(normalized, "CREATE"),
		strings.HasPrefix(normalized, "ALTER"),
		strings.HasPrefix(normalized, "DROP"),
		strings.HasPrefix(normalized, "TRUNCATE"):
		return StatementDDL

	default:
		return StatementUnknown
	}
}

// IsReadOnly reports whether the statement type is safe for a read-only
// pipeline. Only SELECT-shaped statements qualify.
func IsReadOnly(t StatementType) bool {
	return t == StatementSelect
}
