package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
)

func TestBuildSQLGenerationPromptSingleChunk(t *testing.T) {
	prompt := BuildSQLGenerationPrompt(SQLGenInput{
		SchemaChunk: "CREATE TABLE \"orders\" (\n\t\"id\" integer\n);\n",
		ChunkNumber: 1,
		TotalChunks: 1,
		Question:    "How many orders?",
		TableList:   "'orders'",
	})

	assert.Contains(t, prompt, "CREATE TABLE \"orders\"")
	assert.Contains(t, prompt, "How many orders?")
	assert.Contains(t, prompt, "IN ('orders')")
	assert.NotContains(t, prompt, NeedMoreChunks)
}

func TestBuildSQLGenerationPromptMultiChunk(t *testing.T) {
	prompt := BuildSQLGenerationPrompt(SQLGenInput{
		SchemaChunk: "CREATE TABLE \"a\" ();\n",
		ChunkNumber: 2,
		TotalChunks: 3,
		Question:    "question",
		TableList:   "'a'",
	})

	assert.Contains(t, prompt, "chunk 2 of 3")
	assert.Contains(t, prompt, NeedMoreChunks)
}

func TestBuildSQLGenerationPromptIncludesPassages(t *testing.T) {
	prompt := BuildSQLGenerationPrompt(SQLGenInput{
		SchemaChunk: "schema",
		ChunkNumber: 1,
		TotalChunks: 1,
		Question:    "q",
		TableList:   "''",
		Passages:    []string{"revenue is recognized at delivery"},
	})

	assert.Contains(t, prompt, "Reference Context:")
	assert.Contains(t, prompt, "revenue is recognized at delivery")
}

func TestQuoteTableList(t *testing.T) {
	tests := []struct {
		name   string
		tables []string
		want   string
	}{
		{"empty", nil, "''"},
		{"single", []string{"orders"}, "'orders'"},
		{"multiple", []string{"orders", "customers"}, "'orders','customers'"},
		{"embedded quote", []string{"o'brien"}, "'o''brien'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteTableList(tt.tables))
		})
	}
}

func TestFallbackIntrospectionSQL(t *testing.T) {
	sql := FallbackIntrospectionSQL([]string{"orders", "customers"})

	assert.Contains(t, sql, "information_schema.columns")
	assert.Contains(t, sql, "table_schema = 'public'")
	assert.Contains(t, sql, "IN ('orders','customers')")
}

func TestBuildAnswerPromptMentionsDataBlock(t *testing.T) {
	prompt := BuildAnswerPrompt(AnswerInput{
		Question:       "Total sales?",
		SQLQuery:       "SELECT SUM(total) FROM orders",
		SchemaText:     "CREATE TABLE \"orders\" ();\n",
		ResultText:     "sum\n42\n",
		SelectedTables: []string{"orders"},
	})

	assert.Contains(t, prompt, "Total sales?")
	assert.Contains(t, prompt, "SELECT SUM(total) FROM orders")
	assert.Contains(t, prompt, `DATA:[("category1",number1),("category2",number2),...]`)
	assert.NotContains(t, prompt, "Schema Insights")
}

func TestFormatQueryResult(t *testing.T) {
	res := &datasource.QueryResult{
		Columns: []string{"region", "total"},
		Rows:    [][]any{{"north", 10}, {"south", 20}},
	}

	text := FormatQueryResult(res)
	assert.Contains(t, text, "region\ttotal")
	assert.Contains(t, text, "north\t10")
	assert.Contains(t, text, "south\t20")
}

func TestFormatQueryResultEmpty(t *testing.T) {
	assert.Equal(t, "(no rows returned)", FormatQueryResult(nil))
	assert.Equal(t, "(no rows returned)", FormatQueryResult(&datasource.QueryResult{Columns: []string{"a"}}))
}

func TestFormatQueryResultCapsRows(t *testing.T) {
	rows := make([][]any, 120)
	for i := range rows {
		rows[i] = []any{i}
	}
	text := FormatQueryResult(&datasource.QueryResult{Columns: []string{"n"}, Rows: rows})

	assert.Contains(t, text, "70 more rows")
	assert.Equal(t, maxResultRows+2, strings.Count(text, "\n"))
}
