// Package models holds the value types that flow through the query pipeline.
package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryRequest is one user interaction: a question over a selected subset of
// tables. Immutable once handed to the pipeline.
type QueryRequest struct {
	ID             uuid.UUID `json:"id"`
	Question       string    `json:"question"`
	SelectedTables []string  `json:"selected_tables"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewQueryRequest creates a request with a fresh identifier.
func NewQueryRequest(question string, selectedTables []string) *QueryRequest {
	return &QueryRequest{
		ID:             uuid.New(),
		Question:       question,
		SelectedTables: selectedTables,
		CreatedAt:      time.Now().UTC(),
	}
}

// DataPoint is one category/value pair extracted from a structured-data
// block, ready for visualization.
type DataPoint struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Passage is one retrieved document fragment surfaced for transparency.
type Passage struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// QueryResult is the outcome of one request. Produced once, appended to the
// session history, never mutated afterwards.
type QueryResult struct {
	RequestID      uuid.UUID   `json:"request_id"`
	Question       string      `json:"question"`
	SQL            string      `json:"sql"`
	Answer         string      `json:"answer"`
	Columns        []string    `json:"columns,omitempty"`
	Rows           [][]any     `json:"rows,omitempty"`
	Data           []DataPoint `json:"data,omitempty"`
	ContextUsed    []Passage   `json:"context_used,omitempty"`
	RAGUsed        bool        `json:"rag_used"`
	SelectedTables []string    `json:"selected_tables"`
	CreatedAt      time.Time   `json:"created_at"`
}

// DebugRecord is one append-only entry in the session debug log.
// Write-once, read-many, process-lifetime only.
type DebugRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Question       string    `json:"question"`
	SQL            string    `json:"sql"`
	RawModelOutput string    `json:"raw_model_output"`
	Flags          []string  `json:"flags,omitempty"`
}

// Debug flags recorded on DebugRecord entries.
const (
	FlagUsedFallbackSQL    = "used_fallback_sql"
	FlagSchemaDegraded     = "schema_degraded"
	FlagExecutionFailed    = "execution_failed"
	FlagRAGUsed            = "rag_used"
	FlagHasVisualization   = "has_visualization"
	FlagSuspiciousQuestion = "suspicious_question"
)
