package prompts

import (
	"fmt"
	"strings"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
)

// AnswerSystemMessage frames the synthesis stage.
const AnswerSystemMessage = "You are Quipu AI, a data analyst. You explain query results clearly and analytically."

// maxResultRows caps how many result rows are rendered into the prompt so a
// large result set cannot blow the context window.
const maxResultRows = 50

// AnswerInput carries everything the answer synthesis prompt needs.
type AnswerInput struct {
	Question       string
	SQLQuery       string
	SchemaText     string
	ResultText     string
	SelectedTables []string
	Insights       string
	Suggestions    string
}

// BuildAnswerPrompt renders the results-to-answer prompt. The closing
// instruction tells the model to append numerical results in the structured
// DATA block so they can be extracted for visualization.
func BuildAnswerPrompt(in AnswerInput) string {
	var b strings.Builder

	b.WriteString("You are Quipu AI, a data analyst specialized in exploring and providing insights.\n")
	b.WriteString("Always maintain a professional, analytical tone and focus on data possibilities.\n\n")

	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Question: %s\n", in.Question)
	fmt.Fprintf(&b, "- Selected Tables: %s\n", strings.Join(in.SelectedTables, ", "))
	fmt.Fprintf(&b, "- Available Schema: %s\n", in.SchemaText)
	fmt.Fprintf(&b, "- SQL Query Used: %s\n", in.SQLQuery)
	fmt.Fprintf(&b, "- Query Results: %s\n", in.ResultText)
	if in.Insights != "" {
		fmt.Fprintf(&b, "- Schema Insights: %s\n", in.Insights)
	}
	if in.Suggestions != "" {
		fmt.Fprintf(&b, "- Suggested Analyses: %s\n", in.Suggestions)
	}
	b.WriteString("\n")

	b.WriteString(`Response Guidelines:
1. Greetings/General Questions:
   - Briefly acknowledge (1 sentence max)
   - Share insights about selected tables
   - Focus on data overview for selected tables
   - Suggest concrete analytical questions for these tables

2. Specific Analysis Questions:
   - Provide direct answer with numerical details
   - Add context and patterns
   - Compare with related metrics when possible
   - Suggest follow-up analyses within selected tables

Important:
- Always be data-centric and analytical
- Minimize casual conversation
- Focus on metrics, patterns, and insights
- ALWAYS respond in the same language as the question
- If sharing numerical results, add them at the end as:
DATA:[("category1",number1),("category2",number2),...]`)

	return b.String()
}

// FormatQueryResult renders a result set as tab-separated text for the
// synthesis prompt, capped at maxResultRows rows.
func FormatQueryResult(res *datasource.QueryResult) string {
	if res == nil || len(res.Rows) == 0 {
		return "(no rows returned)"
	}

	var b strings.Builder
	b.WriteString(strings.Join(res.Columns, "\t"))
	b.WriteString("\n")

	rows := res.Rows
	truncated := false
	if len(rows) > maxResultRows {
		rows = rows[:maxResultRows]
		truncated = true
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteString("\n")
	}

	if truncated {
		fmt.Fprintf(&b, "... (%d more rows)\n", len(res.Rows)-maxResultRows)
	}

	return b.String()
}
