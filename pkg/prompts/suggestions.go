package prompts

import (
	"fmt"
	"strings"
)

// BuildSuggestionsPrompt renders the prompt asking for starter analytical
// questions over the described tables.
func BuildSuggestionsPrompt(insights string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Given this database structure:\n%s\n\n", insights)
	b.WriteString(`Generate 3 basic analytical questions that could be answered with this data. Focus on:
1. Basic counts and distributions
2. Time-based analysis if date fields are available
3. Category or group comparisons if categorical fields exist

Return just the numbered list.`)

	return b.String()
}
