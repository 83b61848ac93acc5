// Package datasource defines the database boundary for the query pipeline:
// schema introspection and read-only query execution.
package datasource

import "context"

// SchemaIntrospector discovers tables and produces per-table DDL text.
// Requesting DDL per table name from the introspection boundary removes any
// need to scan and filter a monolithic schema dump.
// Each implementation owns its connection and must be closed when done.
type SchemaIntrospector interface {
	// ListTables returns all user table names, ordered.
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable returns a CREATE TABLE-style definition for one table.
	DescribeTable(ctx context.Context, table string) (string, error)

	// TableProfile returns row count and column names for one table.
	// Used for schema insights in answer synthesis.
	TableProfile(ctx context.Context, table string) (*TableProfile, error)

	// TestConnection verifies the database is reachable.
	TestConnection(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// TableProfile summarizes one table for insight generation.
type TableProfile struct {
	Table    string   `json:"table"`
	RowCount int64    `json:"row_count"`
	Columns  []string `json:"columns"`
}

// QueryExecutor runs finalized SQL against the database. The pipeline only
// ever issues SELECT-shaped statements; implementations must reject anything
// else before it reaches the store.
type QueryExecutor interface {
	// Query runs a read-only statement and returns ordered rows.
	// Results are bounded by the executor's configured row limit.
	Query(ctx context.Context, sqlQuery string) (*QueryResult, error)

	// Close releases any resources held by the executor.
	Close() error
}

// QueryResult holds ordered columns and row tuples from one execution.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
