package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
)

// Introspector provides PostgreSQL schema introspection.
type Introspector struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewIntrospector creates a PostgreSQL introspector with its own pool.
// If logger is nil, a no-op logger is used.
func NewIntrospector(ctx context.Context, cfg *Config, logger *zap.Logger) (*Introspector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Introspector{pool: pool, logger: logger.Named("introspector")}, nil
}

// Close releases the connection pool.
func (i *Introspector) Close() error {
	if i.pool != nil {
		i.pool.Close()
	}
	return nil
}

// TestConnection verifies the database is reachable.
func (i *Introspector) TestConnection(ctx context.Context) error {
	if err := i.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// ListTables returns all user table names, ordered.
func (i *Introspector) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY table_name
	`

	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// columnDef is one row from the column introspection query.
type columnDef struct {
	name       string
	dataType   string
	isNullable bool
	defaultVal *string
}

// DescribeTable builds a CREATE TABLE-style definition from
// information_schema. The text is synthesized rather than fetched so the
// format is stable across server versions.
func (i *Introspector) DescribeTable(ctx context.Context, table string) (string, error) {
	cols, err := i.tableColumns(ctx, table)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("table %q not found", table)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", pgx.Identifier{table}.Sanitize())
	for idx, col := range cols {
		fmt.Fprintf(&b, "\t%s %s", pgx.Identifier{col.name}.Sanitize(), col.dataType)
		if !col.isNullable {
			b.WriteString(" NOT NULL")
		}
		if col.defaultVal != nil {
			fmt.Fprintf(&b, " DEFAULT %s", *col.defaultVal)
		}
		if idx < len(cols)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");\n")

	return b.String(), nil
}

// TableProfile returns row count and column names for one table.
func (i *Introspector) TableProfile(ctx context.Context, table string) (*datasource.TableProfile, error) {
	cols, err := i.tableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q not found", table)
	}

	names := make([]string, len(cols))
	for idx, col := range cols {
		names[idx] = col.name
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{table}.Sanitize())

	var count int64
	if err := i.pool.QueryRow(ctx, countQuery).Scan(&count); err != nil {
		return nil, fmt.Errorf("count rows for %s: %w", table, err)
	}

	return &datasource.TableProfile{
		Table:    table,
		RowCount: count,
		Columns:  names,
	}, nil
}

// tableColumns fetches column definitions ordered by ordinal position.
func (i *Introspector) tableColumns(ctx context.Context, table string) ([]columnDef, error) {
	const query = `
		SELECT
			column_name,
			data_type,
			is_nullable = 'YES' AS is_nullable,
			column_default
		FROM information_schema.columns
		WHERE table_name = $1
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY ordinal_position
	`

	rows, err := i.pool.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []columnDef
	for rows.Next() {
		var c columnDef
		if err := rows.Scan(&c.name, &c.dataType, &c.isNullable, &c.defaultVal); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return cols, nil
}

// Ensure Introspector implements datasource.SchemaIntrospector at compile time.
var _ datasource.SchemaIntrospector = (*Introspector)(nil)
