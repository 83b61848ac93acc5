package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
	"github.com/quipu-ai/quipu-engine/pkg/llm"
	"github.com/quipu-ai/quipu-engine/pkg/prompts"
)

// InsightsService summarizes selected tables (row counts, column lists) and
// proposes starter questions. Both paths are fail-soft enrichments: a failure
// yields empty text, never an error, since the answer can be synthesized
// without them.
type InsightsService struct {
	introspector datasource.SchemaIntrospector
	client       llm.Client
	temperature  float64
	logger       *zap.Logger
}

// NewInsightsService creates an insights service.
func NewInsightsService(introspector datasource.SchemaIntrospector, client llm.Client, temperature float64, logger *zap.Logger) *InsightsService {
	return &InsightsService{
		introspector: introspector,
		client:       client,
		temperature:  temperature,
		logger:       logger.Named("insights"),
	}
}

// Collect profiles each selected table into one line of overview text.
// Tables that cannot be profiled are reported with zero rows.
func (s *InsightsService) Collect(ctx context.Context, tables []string) string {
	var lines []string
	for _, table := range tables {
		profile, err := s.introspector.TableProfile(ctx, table)
		if err != nil {
			s.logger.Warn("table profile failed", zap.String("table", table), zap.Error(err))
			lines = append(lines, fmt.Sprintf("- %s: 0 rows", table))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %d rows, columns: %s",
			profile.Table, profile.RowCount, strings.Join(profile.Columns, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Suggest asks the model for starter analytical questions over the collected
// insights. Returns empty text when insights are empty or the call fails.
func (s *InsightsService) Suggest(ctx context.Context, insights string) string {
	if insights == "" {
		return ""
	}

	suggestions, err := s.client.Complete(ctx, prompts.BuildSuggestionsPrompt(insights), prompts.AnswerSystemMessage, s.temperature)
	if err != nil {
		s.logger.Warn("suggestion generation failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(suggestions)
}
