package rag

import (
	"context"
	"math"
	"sort"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/llm"
	"github.com/quipu-ai/quipu-engine/pkg/models"
	"github.com/quipu-ai/quipu-engine/pkg/retry"
)

// Options tunes index construction and retrieval.
type Options struct {
	EmbeddingModel string
	ChunkSize      int
	ChunkOverlap   int
	PreviewLength  int
}

// embeddingBatchSize bounds requests so a large corpus does not exceed the
// provider's per-call input limit.
const embeddingBatchSize = 64

type indexedChunk struct {
	text      string
	source    string
	embedding []float32
}

// Retriever holds an in-memory embedding index over loaded documents and
// answers similarity searches against it. Construction is fail-soft: when no
// documents exist or the provider cannot embed, the retriever stays disabled
// and searches return nothing.
type Retriever struct {
	client llm.Client
	docs   []Document
	opts   Options
	logger *zap.Logger

	mu     sync.RWMutex
	chunks []indexedChunk
	ready  bool
}

// NewRetriever creates a retriever over docs. Call BuildIndex before
// searching.
func NewRetriever(client llm.Client, docs []Document, opts Options, logger *zap.Logger) *Retriever {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 200
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = 500
	}

	return &Retriever{
		client: client,
		docs:   docs,
		opts:   opts,
		logger: logger.Named("rag"),
	}
}

// BuildIndex chunks the documents and embeds every chunk. Safe to call more
// than once; the index is built at most one time. A failure leaves the
// retriever disabled rather than propagating, since retrieval is an
// enrichment and never a prerequisite.
func (r *Retriever) BuildIndex(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return
	}
	if len(r.docs) == 0 {
		r.logger.Info("no documents available, retrieval disabled")
		return
	}
	if !r.client.SupportsEmbeddings() {
		r.logger.Warn("provider does not support embeddings, retrieval disabled")
		return
	}

	var chunks []indexedChunk
	for _, doc := range r.docs {
		for _, piece := range splitText(doc.Text, r.opts.ChunkSize, r.opts.ChunkOverlap) {
			chunks = append(chunks, indexedChunk{text: piece, source: doc.Source})
		}
	}

	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		inputs := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			inputs = append(inputs, c.text)
		}

		var vectors [][]float32
		err := retry.Do(ctx, retry.DefaultConfig(), func() error {
			var embErr error
			vectors, embErr = r.client.CreateEmbeddings(ctx, inputs, r.opts.EmbeddingModel)
			return embErr
		})
		if err != nil {
			r.logger.Error("embedding failed, retrieval disabled", zap.Error(err))
			return
		}
		if len(vectors) != len(inputs) {
			r.logger.Error("embedding count mismatch, retrieval disabled",
				zap.Int("expected", len(inputs)),
				zap.Int("got", len(vectors)))
			return
		}

		for i := range vectors {
			chunks[start+i].embedding = vectors[i]
		}
	}

	r.chunks = chunks
	r.ready = true
	r.logger.Info("index built",
		zap.Int("documents", len(r.docs)),
		zap.Int("chunks", len(chunks)))
}

// Ready reports whether the index was built and searches can return results.
func (r *Retriever) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Search returns up to k passages most similar to question, ordered by
// descending similarity. Passage text is truncated to the configured preview
// length. Returns nothing when the index is unavailable or the question
// cannot be embedded.
func (r *Retriever) Search(ctx context.Context, question string, k int) []models.Passage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready || k <= 0 {
		return nil
	}

	vectors, err := r.client.CreateEmbeddings(ctx, []string{question}, r.opts.EmbeddingModel)
	if err != nil || len(vectors) != 1 {
		r.logger.Warn("question embedding failed, skipping retrieval", zap.Error(err))
		return nil
	}
	query := vectors[0]

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(r.chunks))
	for i, c := range r.chunks {
		ranked = append(ranked, scored{idx: i, score: cosineSimilarity(query, c.embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}

	passages := make([]models.Passage, 0, k)
	for _, s := range ranked[:k] {
		c := r.chunks[s.idx]
		passages = append(passages, models.Passage{
			Text:   truncate(c.text, r.opts.PreviewLength),
			Source: c.source,
		})
	}

	return passages
}

// splitText cuts text into pieces of at most chunkSize characters with
// overlap characters shared between consecutive pieces.
func splitText(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	var pieces []string
	for start := 0; start < len(text); start += step {
		end := start + chunkSize
		if end >= len(text) {
			pieces = append(pieces, text[start:])
			break
		}
		pieces = append(pieces, text[start:end])
	}
	return pieces
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
