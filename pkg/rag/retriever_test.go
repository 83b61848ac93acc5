package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/llm"
)

// keywordEmbedder returns a simple deterministic embedding where each
// dimension counts occurrences of one keyword.
func keywordEmbedder(keywords ...string) func(ctx context.Context, inputs []string, model string) ([][]float32, error) {
	return func(_ context.Context, inputs []string, _ string) ([][]float32, error) {
		vectors := make([][]float32, len(inputs))
		for i, input := range inputs {
			vec := make([]float32, len(keywords))
			lower := strings.ToLower(input)
			for j, kw := range keywords {
				vec[j] = float32(strings.Count(lower, kw))
			}
			vectors[i] = vec
		}
		return vectors, nil
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CreateEmbeddingsFunc = keywordEmbedder("revenue", "inventory")

	docs := []Document{
		{Text: "Monthly revenue reports cover revenue by region.", Source: "revenue.md"},
		{Text: "Inventory levels are tracked per warehouse.", Source: "inventory.md"},
	}
	retriever := NewRetriever(mock, docs, Options{}, zap.NewNop())
	retriever.BuildIndex(context.Background())
	require.True(t, retriever.Ready())

	passages := retriever.Search(context.Background(), "how is revenue doing?", 1)
	require.Len(t, passages, 1)
	assert.Equal(t, "revenue.md", passages[0].Source)
}

func TestSearchCapsAtAvailableChunks(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CreateEmbeddingsFunc = keywordEmbedder("alpha")

	retriever := NewRetriever(mock, []Document{{Text: "alpha", Source: "a.txt"}}, Options{}, zap.NewNop())
	retriever.BuildIndex(context.Background())

	passages := retriever.Search(context.Background(), "alpha", 5)
	assert.Len(t, passages, 1)
}

func TestSearchTruncatesToPreviewLength(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CreateEmbeddingsFunc = keywordEmbedder("data")

	long := strings.Repeat("data ", 40)
	retriever := NewRetriever(mock, []Document{{Text: long, Source: "long.txt"}},
		Options{PreviewLength: 50}, zap.NewNop())
	retriever.BuildIndex(context.Background())

	passages := retriever.Search(context.Background(), "data", 1)
	require.Len(t, passages, 1)
	assert.LessOrEqual(t, len(passages[0].Text), 53) // 50 plus ellipsis
	assert.True(t, strings.HasSuffix(passages[0].Text, "..."))
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// Each rune is 2 bytes; an odd limit lands mid-rune.
	text := strings.Repeat("é", 30)
	got := truncate(text, 7)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "ééé...", got)
}

func TestBuildIndexDisabledWithoutDocuments(t *testing.T) {
	retriever := NewRetriever(llm.NewMockClient(), nil, Options{}, zap.NewNop())
	retriever.BuildIndex(context.Background())

	assert.False(t, retriever.Ready())
	assert.Nil(t, retriever.Search(context.Background(), "anything", 3))
}

func TestBuildIndexDisabledWithoutEmbeddingSupport(t *testing.T) {
	mock := llm.NewMockClient()
	mock.Embeddings = false

	retriever := NewRetriever(mock, []Document{{Text: "text", Source: "a.txt"}}, Options{}, zap.NewNop())
	retriever.BuildIndex(context.Background())

	assert.False(t, retriever.Ready())
	assert.Zero(t, mock.CreateEmbeddingsCalls)
}

func TestBuildIndexFailsSoftOnEmbeddingError(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CreateEmbeddingsFunc = func(_ context.Context, _ []string, _ string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	retriever := NewRetriever(mock, []Document{{Text: "text", Source: "a.txt"}}, Options{}, zap.NewNop())
	retriever.BuildIndex(context.Background())

	assert.False(t, retriever.Ready())
	assert.Nil(t, retriever.Search(context.Background(), "anything", 3))
}

func TestBuildIndexIsIdempotent(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CreateEmbeddingsFunc = keywordEmbedder("x")

	retriever := NewRetriever(mock, []Document{{Text: "x", Source: "a.txt"}}, Options{}, zap.NewNop())
	retriever.BuildIndex(context.Background())
	calls := mock.CreateEmbeddingsCalls
	retriever.BuildIndex(context.Background())

	assert.Equal(t, calls, mock.CreateEmbeddingsCalls)
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 2500)
	pieces := splitText(text, 1000, 200)

	require.Len(t, pieces, 3)
	assert.Len(t, pieces[0], 1000)
	assert.Len(t, pieces[1], 1000)
	// Last piece starts at 1600 and runs to the end.
	assert.Len(t, pieces[2], 900)
}

func TestSplitTextShortInput(t *testing.T) {
	pieces := splitText("short", 1000, 200)
	assert.Equal(t, []string{"short"}, pieces)
}
