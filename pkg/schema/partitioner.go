package schema

import (
	"strings"
)

// createTableMarker is the boundary marker for splitting schema text.
// Definitions are never split internally.
const createTableMarker = "CREATE TABLE"

// EstimateTokens approximates the token cost of text as characters/4.
// This is an upper-bound heuristic, not an exact count; callers re-chunk
// when the estimate exceeds their ceiling.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Chunk splits schema text into at most maxChunks pieces at table-definition
// boundaries. If the number of definitions is within maxChunks the input is
// returned as a single chunk. Otherwise the definitions are grouped into
// exactly maxChunks consecutive runs of roughly equal size, with the
// remainder folded into the last chunk. Concatenating the returned chunks in
// order reproduces the input exactly.
func Chunk(schemaText string, maxChunks int) []string {
	if schemaText == "" {
		return nil
	}
	if maxChunks < 1 {
		maxChunks = 1
	}

	defs := splitDefinitions(schemaText)
	if len(defs) <= maxChunks {
		return []string{schemaText}
	}

	perChunk := len(defs) / maxChunks

	chunks := make([]string, 0, maxChunks)
	for i := 0; i < maxChunks-1; i++ {
		chunks = append(chunks, strings.Join(defs[i*perChunk:(i+1)*perChunk], ""))
	}
	chunks = append(chunks, strings.Join(defs[(maxChunks-1)*perChunk:], ""))

	return chunks
}

// splitDefinitions cuts schema text at CREATE TABLE boundaries. Any prefix
// before the first marker stays attached to the first definition so nothing
// is lost in the round trip.
func splitDefinitions(schemaText string) []string {
	var starts []int
	for from := 0; ; {
		idx := strings.Index(schemaText[from:], createTableMarker)
		if idx < 0 {
			break
		}
		starts = append(starts, from+idx)
		from += idx + len(createTableMarker)
	}

	if len(starts) == 0 {
		return []string{schemaText}
	}

	// Fold any leading prefix into the first definition.
	starts[0] = 0

	defs := make([]string, 0, len(starts))
	for i, start := range starts {
		end := len(schemaText)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		defs = append(defs, schemaText[start:end])
	}

	return defs
}
