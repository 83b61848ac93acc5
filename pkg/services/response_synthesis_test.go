package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/adapters/datasource"
	"github.com/quipu-ai/quipu-engine/pkg/apperrors"
	"github.com/quipu-ai/quipu-engine/pkg/llm"
)

// fakeExecutor is an in-memory QueryExecutor for pipeline tests.
type fakeExecutor struct {
	result   *datasource.QueryResult
	err      error
	lastSQL  string
	queryCnt int
}

func (f *fakeExecutor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	f.queryCnt++
	f.lastSQL = sqlQuery
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExecutor) Close() error { return nil }

func TestSynthesizeHappyPath(t *testing.T) {
	exec := &fakeExecutor{result: &datasource.QueryResult{
		Columns: []string{"count"},
		Rows:    [][]any{{int64(42)}},
	}}

	mock := llm.NewMockClient()
	mock.CompleteFunc = func(_ context.Context, _ string, _ string, _ float64) (string, error) {
		return "There are 42 orders in total.", nil
	}

	chain := NewResponseSynthesisChain(exec, nil, mock, 0.7, zap.NewNop())
	gen := &GeneratedQuery{SQL: "SELECT COUNT(*) FROM orders", SelectedTables: []string{"orders"}}

	resp, err := chain.Synthesize(context.Background(), "How many orders total?", gen, "schema")
	require.NoError(t, err)

	assert.Equal(t, "There are 42 orders in total.", resp.Answer)
	assert.Equal(t, []string{"count"}, resp.Columns)
	assert.False(t, resp.ExecutionFailed)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", exec.lastSQL)
	// The synthesis prompt carried the query and its results.
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "SELECT COUNT(*) FROM orders")
	assert.Contains(t, mock.Prompts[0], "42")
}

func TestSynthesizeExecutionFailureFailsSoft(t *testing.T) {
	exec := &fakeExecutor{err: apperrors.QueryExecution("SELECT bogus", errors.New("column does not exist"))}

	mock := llm.NewMockClient()
	chain := NewResponseSynthesisChain(exec, nil, mock, 0.7, zap.NewNop())
	gen := &GeneratedQuery{SQL: "SELECT bogus", SelectedTables: []string{"orders"}}

	resp, err := chain.Synthesize(context.Background(), "question", gen, "schema")
	require.NoError(t, err)

	assert.True(t, resp.ExecutionFailed)
	assert.Contains(t, resp.Answer, "could not be run")
	assert.Contains(t, resp.Answer, "SELECT bogus")
	// Raw driver detail never surfaces.
	assert.NotContains(t, resp.Answer, "column does not exist")
	assert.Zero(t, mock.CompleteCalls)
}

func TestSynthesizeModelErrorIsGeneration(t *testing.T) {
	exec := &fakeExecutor{result: &datasource.QueryResult{Columns: []string{"a"}, Rows: [][]any{{1}}}}

	mock := llm.NewMockClient()
	mock.CompleteFunc = func(_ context.Context, _ string, _ string, _ float64) (string, error) {
		return "", errors.New("server overloaded")
	}

	chain := NewResponseSynthesisChain(exec, nil, mock, 0.7, zap.NewNop())
	gen := &GeneratedQuery{SQL: "SELECT 1", SelectedTables: []string{"orders"}}

	_, err := chain.Synthesize(context.Background(), "question", gen, "schema")
	require.Error(t, err)

	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindGeneration, kind)
}

func TestSynthesizeIncludesInsights(t *testing.T) {
	exec := &fakeExecutor{result: &datasource.QueryResult{Columns: []string{"a"}, Rows: [][]any{{1}}}}

	intro := ordersIntrospector()
	intro.profiles = map[string]*datasource.TableProfile{
		"orders": {Table: "orders", RowCount: 1200, Columns: []string{"id", "total"}},
	}

	mock := llm.NewMockClient()
	mock.CompleteFunc = func(_ context.Context, _ string, _ string, _ float64) (string, error) {
		return "answer", nil
	}

	insights := NewInsightsService(intro, mock, 0.7, zap.NewNop())
	chain := NewResponseSynthesisChain(exec, insights, mock, 0.7, zap.NewNop())
	gen := &GeneratedQuery{SQL: "SELECT 1", SelectedTables: []string{"orders"}}

	_, err := chain.Synthesize(context.Background(), "question", gen, "schema")
	require.NoError(t, err)

	// Suggestion call plus the final synthesis call.
	assert.Equal(t, 2, mock.CompleteCalls)
	final := mock.Prompts[len(mock.Prompts)-1]
	assert.Contains(t, final, "orders: 1200 rows")
}
