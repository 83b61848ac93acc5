package sql

import (
	"strings"
)

// sqlLabelPrefixes are leading labels models sometimes attach despite being
// asked for only the SQL query.
var sqlLabelPrefixes = []string{"sql:", "sqlquery:", "query:"}

// CleanModelOutput normalizes raw model output into a bare SQL statement:
// code fences, leading labels, surrounding quotes, and any trailing
// commentary after the statement's terminating semicolon are stripped.
func CleanModelOutput(raw string) string {
	s := strings.TrimSpace(raw)

	// Fenced code block: keep only the fenced content.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Language tag on the opening fence, e.g. ```sql
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(s[:nl])
			if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, " \t") {
				s = s[nl+1:]
			}
		}
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	// Leading label.
	lower := strings.ToLower(s)
	for _, prefix := range sqlLabelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}

	// Surrounding quotes (the model may echo the quoted fallback query).
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Trailing commentary after the statement terminator.
	if semi := strings.IndexByte(s, ';'); semi >= 0 {
		s = s[:semi+1]
	}

	return strings.TrimSpace(s)
}

// IsUsableSQL reports whether cleaned output looks like a runnable read-only
// statement. Empty output, refusals, and prose all fail this check.
func IsUsableSQL(cleaned string) bool {
	if cleaned == "" {
		return false
	}
	return IsReadOnly(DetectStatementType(cleaned))
}
