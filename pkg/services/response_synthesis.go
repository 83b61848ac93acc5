package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	"github.com/quipu-ai/quipu-engine/pkg/llm"
	"github.com/quipu-ai/quipu-engine/pkg/prompts"
)

// SynthesizedResponse is the outcome of the execution-and-answer stage.
type SynthesizedResponse struct {
	Answer          string
	RawOutput       string
	Columns         []string
	Rows            [][]any
	ExecutionFailed bool
}

// ResponseSynthesisChain runs the generated SQL and turns the result set
// into a natural-language answer.
type ResponseSynthesisChain struct {
	executor    datasource.QueryExecutor
	insights    *InsightsService
	client      llm.Client
	temperature float64
	logger      *zap.Logger
}

// NewResponseSynthesisChain creates the synthesis chain. insights may be nil
// to skip schema enrichment.
func NewResponseSynthesisChain(executor datasource.QueryExecutor, insights *InsightsService, client llm.Client, temperature float64, logger *zap.Logger) *ResponseSynthesisChain {
	return &ResponseSynthesisChain{
		executor:    executor,
		insights:    insights,
		client:      client,
		temperature: temperature,
		logger:      logger.Named("response_synthesis"),
	}
}

// Synthesize executes the generated query and asks the model to explain the
// results. Execution failures do not abort the interaction: the user gets a
// readable failure answer and ExecutionFailed is set. Only a failed model
// call returns an error.
func (c *ResponseSynthesisChain) Synthesize(ctx context.Context, question string, gen *GeneratedQuery, schemaText string) (*SynthesizedResponse, error) {
	res, err := c.executor.Query(ctx, gen.SQL)
	if err != nil {
		c.logger.Warn("query execution failed",
			zap.String("sql", gen.SQL),
			zap.Error(err))
		return &SynthesizedResponse{
			Answer: fmt.Sprintf("%s\n\nThe query that was attempted:\n%s",
				apperrors.UserMessage(err), gen.SQL),
			ExecutionFailed: true,
		}, nil
	}

	var insightsText, suggestionsText string
	if c.insights != nil {
		insightsText = c.insights.Collect(ctx, gen.SelectedTables)
		suggestionsText = c.insights.Suggest(ctx, insightsText)
	}

	prompt := prompts.BuildAnswerPrompt(prompts.AnswerInput{
		Question:       question,
		SQLQuery:       gen.SQL,
		SchemaText:     schemaText,
		ResultText:     prompts.FormatQueryResult(res),
		SelectedTables: gen.SelectedTables,
		Insights:       insightsText,
		Suggestions:    suggestionsText,
	})

	output, err := c.client.Complete(ctx, prompt, prompts.AnswerSystemMessage, c.temperature)
	if err != nil {
		return nil, apperrors.Generation(err)
	}

	return &SynthesizedResponse{
		Answer:    strings.TrimSpace(output),
		RawOutput: output,
		Columns:   res.Columns,
		Rows:      res.Rows,
	}, nil
}
