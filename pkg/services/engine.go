package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/models"
	"github.com/quipu-ai/quipu-engine/pkg/sql"
)

// Engine orchestrates one full interaction: question in, answer plus
// extracted data out, with history and debug records appended to the
// session.
type Engine struct {
	generation *QueryGenerationChain
	synthesis  *ResponseSynthesisChain
	logger     *zap.Logger
}

// NewEngine creates the pipeline orchestrator.
func NewEngine(generation *QueryGenerationChain, synthesis *ResponseSynthesisChain, logger *zap.Logger) *Engine {
	return &Engine{
		generation: generation,
		synthesis:  synthesis,
		logger:     logger.Named("engine"),
	}
}

// Ask runs the two-stage pipeline for one question. Injection findings on
// the question are advisory: they are flagged in the debug log but never
// block the interaction, since the executor only ever runs read-only
// statements anyway. Returns an error only when a model call fails.
func (e *Engine) Ask(ctx context.Context, session *models.Session, question string, selectedTables []string) (*models.QueryResult, error) {
	request := models.NewQueryRequest(question, selectedTables)
	var flags []string

	if finding := sql.CheckQuestion(question); finding != nil {
		e.logger.Warn("question matched injection fingerprint",
			zap.String("fingerprint", finding.Fingerprint))
		flags = append(flags, models.FlagSuspiciousQuestion)
	}

	gen, err := e.generation.Generate(ctx, question, selectedTables)
	if err != nil {
		return nil, err
	}
	if gen.UsedFallback {
		flags = append(flags, models.FlagUsedFallbackSQL)
	}
	if gen.SchemaDegraded {
		flags = append(flags, models.FlagSchemaDegraded)
	}
	if len(gen.Passages) > 0 {
		flags = append(flags, models.FlagRAGUsed)
	}

	synth, err := e.synthesis.Synthesize(ctx, question, gen, gen.SchemaText)
	if err != nil {
		return nil, err
	}
	if synth.ExecutionFailed {
		flags = append(flags, models.FlagExecutionFailed)
	}

	answer, data, parseErr := ExtractStructuredData(synth.Answer)
	if parseErr != nil {
		// Absorbed: a malformed block degrades to a prose-only answer.
		e.logger.Debug("structured block rejected", zap.Error(parseErr))
	}
	if len(data) > 0 {
		flags = append(flags, models.FlagHasVisualization)
	}

	result := &models.QueryResult{
		RequestID:      request.ID,
		Question:       question,
		SQL:            gen.SQL,
		Answer:         answer,
		Columns:        synth.Columns,
		Rows:           synth.Rows,
		Data:           data,
		ContextUsed:    gen.Passages,
		RAGUsed:        len(gen.Passages) > 0,
		SelectedTables: gen.SelectedTables,
		CreatedAt:      request.CreatedAt,
	}

	session.AppendHistory(result)
	session.AppendDebug(&models.DebugRecord{
		Timestamp:      time.Now().UTC(),
		Question:       question,
		SQL:            gen.SQL,
		RawModelOutput: synth.RawOutput,
		Flags:          flags,
	})

	e.logger.Info("question answered",
		zap.String("request_id", request.ID.String()),
		zap.Strings("tables", gen.SelectedTables),
		zap.Strings("flags", flags))

	return result, nil
}
