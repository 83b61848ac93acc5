package schema

import (
	"regexp"
	"sort"
	"strings"
)

// PatternType classifies a table-name pattern.
type PatternType string

const (
	// PatternStatic is a standalone table.
	PatternStatic PatternType = "static"
	// PatternTemporal is a family of period-partitioned tables sharing a
	// base name and distinguished by a trailing YYYYMM suffix.
	PatternTemporal PatternType = "temporal"
)

// TablePattern groups the tables behind one base name.
type TablePattern struct {
	Type   PatternType
	Tables []string
}

// recentTableCount is how many period tables stand in for "most recent"
// when a question names no date. Suffixes are zero-padded YYYYMM, so
// lexicographic order equals chronological order.
const recentTableCount = 3

// temporalSuffix matches names whose final six runes are digits and whose
// preceding rune, if any, is not a digit. Group 1 is the base name.
var temporalSuffix = regexp.MustCompile(`^(.*[^0-9])?([0-9]{6})$`)

// dateToken finds year-month references in a question: a four-digit year,
// an optional separator, and a two-digit month.
var dateToken = regexp.MustCompile(`([0-9]{4})[-/]?([0-9]{2})`)

// Classify maps table names to patterns. Every name lands in exactly one
// pattern entry; grouping derives purely from name structure.
func Classify(tableNames []string) map[string]TablePattern {
	patterns := make(map[string]TablePattern)

	for _, table := range tableNames {
		if m := temporalSuffix.FindStringSubmatch(table); m != nil {
			base := m[1]
			entry := patterns[base]
			entry.Type = PatternTemporal
			entry.Tables = append(entry.Tables, table)
			patterns[base] = entry
			continue
		}

		entry := patterns[table]
		entry.Type = PatternStatic
		entry.Tables = append(entry.Tables, table)
		patterns[table] = entry
	}

	return patterns
}

// Select picks the minimal relevant table subset for a question. For each
// temporal group, a year-month token in the question selects exactly the
// matching period tables; with no date token the three most recent period
// tables are used. Static tables are always selected. An empty outcome
// falls back to the three most recent tables across all groups. Pure
// function: identical inputs always produce the identical sorted result.
func Select(patterns map[string]TablePattern, question string) []string {
	var relevant []string

	dates := dateToken.FindAllStringSubmatch(question, -1)

	for base, info := range patterns {
		if info.Type != PatternTemporal {
			relevant = append(relevant, info.Tables...)
			continue
		}

		if len(dates) > 0 {
			for _, m := range dates {
				want := base + m[1] + m[2]
				for _, table := range info.Tables {
					if strings.Contains(table, want) {
						relevant = append(relevant, table)
					}
				}
			}
			continue
		}

		relevant = append(relevant, lastN(info.Tables, recentTableCount)...)
	}

	if len(relevant) == 0 && len(patterns) > 0 {
		var all []string
		for _, info := range patterns {
			all = append(all, info.Tables...)
		}
		relevant = lastN(all, recentTableCount)
	}

	return dedupeSorted(relevant)
}

// lastN returns the n lexicographically-largest entries.
func lastN(tables []string, n int) []string {
	sorted := make([]string, len(tables))
	copy(sorted, tables)
	sort.Strings(sorted)

	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}

// dedupeSorted removes duplicates and sorts for deterministic output.
func dedupeSorted(tables []string) []string {
	seen := make(map[string]struct{}, len(tables))
	var out []string
	for _, t := range tables {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
