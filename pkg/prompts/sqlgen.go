// Package prompts builds the text sent to the language model for each stage
// of the pipeline: SQL generation, answer synthesis, and question
// suggestions.
package prompts

import (
	"fmt"
	"strings"
)

// NeedMoreChunks is the sentinel the model returns when the schema chunk it
// was shown does not contain the tables the question needs.
const NeedMoreChunks = "NEED_MORE_CHUNKS"

// SQLGenSystemMessage frames the generation stage.
const SQLGenSystemMessage = "You are an expert SQL analyst. You translate questions into PostgreSQL queries."

// SQLGenInput carries everything the SQL generation prompt needs.
type SQLGenInput struct {
	SchemaChunk string
	ChunkNumber int // 1-based
	TotalChunks int
	Question    string
	TableList   string   // quoted, comma-separated, for the IN clause
	Passages    []string // retrieved reference passages, may be empty
}

// BuildSQLGenerationPrompt renders the question-to-SQL prompt for one schema
// chunk. When the schema spans multiple chunks the prompt tells the model it
// may answer NEED_MORE_CHUNKS instead of guessing.
func BuildSQLGenerationPrompt(in SQLGenInput) string {
	var b strings.Builder

	b.WriteString("Based on the provided table schema for the selected tables, analyze if the user's question requires a specific SQL query.\n")
	b.WriteString("If it's a greeting or general question, return this SQL to get an overview of the selected tables:\n")
	fmt.Fprintf(&b, "\"SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = 'public' AND table_name IN (%s)\"\n\n", in.TableList)
	b.WriteString("If it's a specific analytical question, write a SQL query that answers it using only the selected tables.\n\n")

	if in.TotalChunks > 1 {
		fmt.Fprintf(&b, "Selected Tables Schema (chunk %d of %d):\n%s\n\n", in.ChunkNumber, in.TotalChunks, in.SchemaChunk)
	} else {
		fmt.Fprintf(&b, "Selected Tables Schema:\n%s\n\n", in.SchemaChunk)
	}

	if len(in.Passages) > 0 {
		b.WriteString("Reference Context:\n")
		for _, p := range in.Passages {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n\n", in.Question)

	if in.TotalChunks > 1 {
		fmt.Fprintf(&b, "This is chunk %d of %d. Only write a SQL query if you're confident this chunk contains the relevant tables.\n", in.ChunkNumber, in.TotalChunks)
		fmt.Fprintf(&b, "If you need to see other chunks, return: \"%s\"\n\n", NeedMoreChunks)
	}

	b.WriteString("Write only the SQL query without any additional text:")
	return b.String()
}

// QuoteTableList renders table names as a quoted, comma-separated list for a
// SQL IN clause. Single quotes inside names are doubled. An empty selection
// yields '' so the clause stays syntactically valid.
func QuoteTableList(tables []string) string {
	if len(tables) == 0 {
		return "''"
	}

	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = "'" + strings.ReplaceAll(t, "'", "''") + "'"
	}
	return strings.Join(quoted, ",")
}

// FallbackIntrospectionSQL returns the overview query used when the model
// never produces usable SQL. It lists columns of the selected tables.
func FallbackIntrospectionSQL(tables []string) string {
	return fmt.Sprintf(
		"SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_schema = 'public' AND table_name IN (%s)",
		QuoteTableList(tables))
}
