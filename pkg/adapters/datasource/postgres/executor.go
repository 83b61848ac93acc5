package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	sqlutil "github.com/quipu-ai/quipu-engine/pkg/sql"
)

// MaxQueryLimit is the hard cap on rows returned by Query.
// This protects against unbounded model-generated queries.
const MaxQueryLimit = 1000

// Executor provides PostgreSQL query execution for generated SQL.
// Read-only: statements that are not SELECT-shaped are rejected before the
// driver sees them.
type Executor struct {
	pool     *pgxpool.Pool
	rowLimit int
	logger   *zap.Logger
}

// NewExecutor creates a PostgreSQL query executor with its own pool.
// A rowLimit <= 0 or above MaxQueryLimit is capped to MaxQueryLimit.
func NewExecutor(ctx context.Context, cfg *Config, rowLimit int, logger *zap.Logger) (*Executor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rowLimit <= 0 || rowLimit > MaxQueryLimit {
		rowLimit = MaxQueryLimit
	}

	pool, err := pgxpool.New(ctx, buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Executor{pool: pool, rowLimit: rowLimit, logger: logger.Named("executor")}, nil
}

// Close releases the connection pool.
func (e *Executor) Close() error {
	if e.pool != nil {
		e.pool.Close()
	}
	return nil
}

// Query runs a read-only statement and returns ordered rows. Failures are
// surfaced immediately as query-execution errors carrying the driver
// message; the caller decides whether to regenerate the SQL.
func (e *Executor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	stmtType := sqlutil.DetectStatementType(sqlQuery)
	if !sqlutil.IsReadOnly(stmtType) {
		return nil, apperrors.QueryExecution(sqlQuery,
			fmt.Errorf("statement type %s is not allowed", stmtType))
	}

	wrapped := wrapWithLimit(sqlQuery, e.rowLimit)

	rows, err := e.pool.Query(ctx, wrapped)
	if err != nil {
		e.logger.Warn("query failed", zap.String("sql", sqlQuery), zap.Error(err))
		return nil, apperrors.QueryExecution(sqlQuery, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperrors.QueryExecution(sqlQuery, fmt.Errorf("read row values: %w", err))
		}
		resultRows = append(resultRows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.QueryExecution(sqlQuery, fmt.Errorf("iterate rows: %w", err))
	}

	e.logger.Debug("query executed",
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(resultRows)))

	return &datasource.QueryResult{
		Columns: columns,
		Rows:    resultRows,
	}, nil
}

// wrapWithLimit bounds a query with a subquery LIMIT so results can never
// exceed the configured cap.
func wrapWithLimit(sqlQuery string, limit int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(sqlQuery), ";")
	return fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", trimmed, limit)
}

// Ensure Executor implements datasource.QueryExecutor at compile time.
var _ datasource.QueryExecutor = (*Executor)(nil)
