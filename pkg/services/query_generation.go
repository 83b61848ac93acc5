package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	"github.com/quipu-ai/quipu-engine/pkg/llm"
	"github.com/quipu-ai/quipu-engine/pkg/models"
	"github.com/quipu-ai/quipu-engine/pkg/prompts"
	"github.com/quipu-ai/quipu-engine/pkg/rag"
	"github.com/quipu-ai/quipu-engine/pkg/schema"
	"github.com/quipu-ai/quipu-engine/pkg/sql"
)

// GenerationOptions tunes the SQL generation chain.
type GenerationOptions struct {
	TokenCeiling int // schema text above this estimate is chunked
	MaxChunks    int
	RAGTopK      int
	Temperature  float64
}

// GeneratedQuery is the outcome of the question-to-SQL stage.
type GeneratedQuery struct {
	SQL            string
	RawOutput      string // last model output before cleaning
	SchemaText     string
	SelectedTables []string
	Passages       []models.Passage
	UsedFallback   bool
	ChunksTried    int
	SchemaDegraded bool
}

// QueryGenerationChain turns a question into a SQL statement. It resolves
// the table selection, assembles a schema snapshot bounded by the token
// ceiling, enriches the prompt with retrieved passages, and walks schema
// chunks until the model commits to a query.
type QueryGenerationChain struct {
	provider  *schema.Provider
	retriever *rag.Retriever
	client    llm.Client
	opts      GenerationOptions
	logger    *zap.Logger
}

// NewQueryGenerationChain creates the generation chain. retriever may be nil
// when retrieval is disabled.
func NewQueryGenerationChain(provider *schema.Provider, retriever *rag.Retriever, client llm.Client, opts GenerationOptions, logger *zap.Logger) *QueryGenerationChain {
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = 3
	}
	if opts.TokenCeiling <= 0 {
		opts.TokenCeiling = 4000
	}

	return &QueryGenerationChain{
		provider:  provider,
		retriever: retriever,
		client:    client,
		opts:      opts,
		logger:    logger.Named("query_generation"),
	}
}

// Generate produces SQL for the question over the selected tables. An empty
// selection is resolved from the question against the full table list. The
// returned query always holds runnable SQL; when every model attempt fails
// or is refused, it falls back to the column-overview introspection query
// and sets UsedFallback.
func (c *QueryGenerationChain) Generate(ctx context.Context, question string, selectedTables []string) (*GeneratedQuery, error) {
	tables := selectedTables
	degraded := false

	if len(tables) == 0 {
		all, err := c.provider.ListTables(ctx)
		if err != nil {
			c.logger.Warn("table listing failed, proceeding without selection", zap.Error(err))
			degraded = true
		} else {
			tables = schema.Select(schema.Classify(all), question)
			c.logger.Debug("tables resolved from question",
				zap.String("question", question),
				zap.Strings("tables", tables))
		}
	}

	snapshot := c.provider.DescribeSchema(ctx, tables)
	if snapshot.Degraded {
		degraded = true
	}

	schemaText := snapshot.Text()
	chunks := []string{schemaText}
	if schema.EstimateTokens(schemaText) > c.opts.TokenCeiling {
		chunks = schema.Chunk(schemaText, c.opts.MaxChunks)
		c.logger.Info("schema exceeds token ceiling, chunking",
			zap.Int("estimated_tokens", schema.EstimateTokens(schemaText)),
			zap.Int("chunks", len(chunks)))
	}

	var passages []models.Passage
	if c.retriever != nil && c.retriever.Ready() {
		passages = c.retriever.Search(ctx, question, c.opts.RAGTopK)
	}
	passageTexts := make([]string, len(passages))
	for i, p := range passages {
		passageTexts[i] = p.Text
	}

	tableList := prompts.QuoteTableList(tables)

	result := &GeneratedQuery{
		SchemaText:     schemaText,
		SelectedTables: tables,
		Passages:       passages,
		SchemaDegraded: degraded,
	}

	for i, chunk := range chunks {
		prompt := prompts.BuildSQLGenerationPrompt(prompts.SQLGenInput{
			SchemaChunk: chunk,
			ChunkNumber: i + 1,
			TotalChunks: len(chunks),
			Question:    question,
			TableList:   tableList,
			Passages:    passageTexts,
		})

		output, err := c.client.Complete(ctx, prompt, prompts.SQLGenSystemMessage, c.opts.Temperature)
		if err != nil {
			return nil, apperrors.Generation(err)
		}

		result.RawOutput = output
		result.ChunksTried = i + 1

		if strings.Contains(output, prompts.NeedMoreChunks) {
			c.logger.Debug("model requested another chunk", zap.Int("chunk", i+1))
			continue
		}

		cleaned := sql.CleanModelOutput(output)
		if !sql.IsUsableSQL(cleaned) {
			c.logger.Debug("model output not usable as SQL", zap.Int("chunk", i+1))
			continue
		}

		result.SQL = cleaned
		return result, nil
	}

	// Every chunk was exhausted without a committed query.
	result.SQL = prompts.FallbackIntrospectionSQL(tables)
	result.UsedFallback = true
	c.logger.Info("falling back to introspection query",
		zap.Int("chunks_tried", result.ChunksTried))

	return result, nil
}
