// Package schema provides schema discovery, token-budget partitioning, and
// question-driven table selection for the query pipeline.
package schema

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
)

// noTablesPlaceholder keeps downstream chains supplied with text to reason
// over when nothing is selected.
const noTablesPlaceholder = "No tables available for querying."

// TableDescriptor is one table's name and definition text.
type TableDescriptor struct {
	Name string
	DDL  string
}

// Schema is an ordered snapshot of table definitions. Degraded is set when
// the snapshot was produced under a connectivity failure and contains
// placeholder text instead of real definitions.
type Schema struct {
	Tables   []TableDescriptor
	Degraded bool
}

// Text serializes the snapshot for prompt composition. Concatenation order
// matches the descriptor order.
func (s *Schema) Text() string {
	var b strings.Builder
	for _, t := range s.Tables {
		b.WriteString(t.DDL)
	}
	return b.String()
}

// Provider discovers tables and assembles schema snapshots, enforcing the
// ignore-list. Read-only; holds no per-request state.
type Provider struct {
	introspector datasource.SchemaIntrospector
	ignored      map[string]struct{}
	logger       *zap.Logger
}

// NewProvider creates a schema provider. Tables in ignoredTables never
// appear in listings or snapshots.
func NewProvider(introspector datasource.SchemaIntrospector, ignoredTables []string, logger *zap.Logger) *Provider {
	ignored := make(map[string]struct{}, len(ignoredTables))
	for _, name := range ignoredTables {
		ignored[name] = struct{}{}
	}

	return &Provider{
		introspector: introspector,
		ignored:      ignored,
		logger:       logger.Named("schema"),
	}
}

// ListTables returns all available table names minus the ignore-list.
// Fails hard with a connectivity error when the store is unreachable.
func (p *Provider) ListTables(ctx context.Context) ([]string, error) {
	tables, err := p.introspector.ListTables(ctx)
	if err != nil {
		return nil, apperrors.Connectivity(fmt.Errorf("list tables: %w", err))
	}

	var available []string
	for _, name := range tables {
		if _, skip := p.ignored[name]; skip {
			continue
		}
		available = append(available, name)
	}

	return available, nil
}

// DescribeSchema assembles a snapshot for the selected tables. This path is
// deliberately fail-soft: a transient store error degrades query quality
// instead of crashing the interaction, so errors become placeholder text and
// the Degraded flag rather than a returned error. An empty selection yields
// a single descriptor stating that no tables are available.
func (p *Provider) DescribeSchema(ctx context.Context, tableNames []string) *Schema {
	if len(tableNames) == 0 {
		return &Schema{Tables: []TableDescriptor{{Name: "", DDL: noTablesPlaceholder + "\n"}}}
	}

	available, err := p.ListTables(ctx)
	if err != nil {
		p.logger.Error("schema discovery failed, degrading to placeholder", zap.Error(err))
		return &Schema{
			Tables: []TableDescriptor{{
				Name: "",
				DDL:  fmt.Sprintf("Error getting schema information: %s\n", apperrors.UserMessage(err)),
			}},
			Degraded: true,
		}
	}

	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}

	schema := &Schema{}
	for _, name := range tableNames {
		if _, ok := availableSet[name]; !ok {
			continue
		}

		ddl, err := p.introspector.DescribeTable(ctx, name)
		if err != nil {
			p.logger.Warn("table description failed",
				zap.String("table", name),
				zap.Error(err))
			schema.Tables = append(schema.Tables, TableDescriptor{
				Name: name,
				DDL:  fmt.Sprintf("-- definition unavailable for table %s\n", name),
			})
			schema.Degraded = true
			continue
		}

		schema.Tables = append(schema.Tables, TableDescriptor{Name: name, DDL: ddl})
	}

	if len(schema.Tables) == 0 {
		schema.Tables = []TableDescriptor{{Name: "", DDL: noTablesPlaceholder + "\n"}}
	}

	p.logger.Debug("schema snapshot assembled",
		zap.Int("tables", len(schema.Tables)),
		zap.Bool("degraded", schema.Degraded))

	return schema
}
