package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	calls    int
	lastText string
	err      error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	e.lastText = text
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.5, 0.5}, nil
}

type stubSearchRepo struct {
	results       []*SearchResult
	err           error
	lastLimit     int
	lastThreshold float64
	statsResult   *CollectionStats
}

func (r *stubSearchRepo) Query(ctx context.Context, queryVector []float32, limit int, threshold float64) ([]*SearchResult, error) {
	r.lastLimit = limit
	r.lastThreshold = threshold
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}

func (r *stubSearchRepo) Stats(ctx context.Context) (*CollectionStats, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.statsResult, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeResults(n int) []*SearchResult {
	results := make([]*SearchResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, &SearchResult{
			ID:          uuid.New(),
			Filename:    fmt.Sprintf("img-%d.png", i),
			Description: fmt.Sprintf("description %d", i),
			CreatedAt:   time.Now(),
			Score:       0.9 - float64(i)*0.01,
		})
	}
	return results
}

func TestSearchService_AppliesDefaults(t *testing.T) {
	repo := &stubSearchRepo{results: makeResults(2)}
	svc := NewSearchService(repo, &stubEmbedder{}, WithSearchLogger(discardLogger()))

	response, err := svc.Search(context.Background(), SearchParams{Query: "sunset over the sea"})
	require.NoError(t, err)

	assert.Equal(t, DefaultLimit, repo.lastLimit)
	assert.Equal(t, DefaultScoreThreshold, repo.lastThreshold)
	assert.Equal(t, "sunset over the sea", response.Query)
	assert.Len(t, response.Results, 2)
	assert.Empty(t, response.Suggestions)
}

func TestSearchService_ClampsLimit(t *testing.T) {
	repo := &stubSearchRepo{results: makeResults(1)}
	svc := NewSearchService(repo, &stubEmbedder{}, WithSearchLogger(discardLogger()))

	_, err := svc.Search(context.Background(), SearchParams{Query: "cats", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, repo.lastLimit)

	_, err = svc.Search(context.Background(), SearchParams{Query: "cats", Limit: -5})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, repo.lastLimit)
}

func TestSearchService_ClampsThreshold(t *testing.T) {
	repo := &stubSearchRepo{results: makeResults(1)}
	svc := NewSearchService(repo, &stubEmbedder{}, WithSearchLogger(discardLogger()))

	over := 2.0
	_, err := svc.Search(context.Background(), SearchParams{Query: "cats", ScoreThreshold: &over})
	require.NoError(t, err)
	assert.Equal(t, 1.0, repo.lastThreshold)

	under := -1.0
	_, err = svc.Search(context.Background(), SearchParams{Query: "cats", ScoreThreshold: &under})
	require.NoError(t, err)
	assert.Equal(t, 0.0, repo.lastThreshold)
}

func TestSearchService_RejectsEmptyQuery(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := NewSearchService(&stubSearchRepo{}, embedder, WithSearchLogger(discardLogger()))

	_, err := svc.Search(context.Background(), SearchParams{Query: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	// バリデーションで弾かれた場合はEmbeddingを呼ばない
	assert.Zero(t, embedder.calls)
}

func TestSearchService_TrimsQueryBeforeEmbedding(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := NewSearchService(&stubSearchRepo{results: makeResults(1)}, embedder, WithSearchLogger(discardLogger()))

	_, err := svc.Search(context.Background(), SearchParams{Query: "  red car  "})
	require.NoError(t, err)
	assert.Equal(t, "red car", embedder.lastText)
}

func TestSearchService_SuggestionsOnZeroResults(t *testing.T) {
	repo := &stubSearchRepo{results: nil}
	svc := NewSearchService(repo, &stubEmbedder{}, WithSearchLogger(discardLogger()))

	response, err := svc.Search(context.Background(), SearchParams{Query: "Mountain cat Snow"})
	require.NoError(t, err)
	assert.Empty(t, response.Results)

	// 固定カテゴリ＋3文字を超えるクエリ単語（小文字化、cat は短いので除外）
	assert.Equal(t, []string{"landscape", "nature", "city", "mountain", "snow"}, response.Suggestions)
}

func TestSearchService_SuggestionsCappedAndDeduped(t *testing.T) {
	svc := NewSearchService(&stubSearchRepo{}, &stubEmbedder{}, WithSearchLogger(discardLogger()))

	response, err := svc.Search(context.Background(), SearchParams{Query: "nature NATURE rivers forests valleys glaciers"})
	require.NoError(t, err)

	require.Len(t, response.Suggestions, maxSuggestions)
	seen := make(map[string]struct{})
	for _, suggestion := range response.Suggestions {
		_, dup := seen[suggestion]
		assert.False(t, dup, "duplicate suggestion %q", suggestion)
		seen[suggestion] = struct{}{}
	}
	// nature は固定カテゴリ側で既出のため重複しない
	assert.Equal(t, []string{"landscape", "nature", "city", "rivers", "forests"}, response.Suggestions)
}

func TestSearchService_EmbedderErrorPropagates(t *testing.T) {
	svc := NewSearchService(&stubSearchRepo{}, &stubEmbedder{err: fmt.Errorf("quota exceeded")}, WithSearchLogger(discardLogger()))

	_, err := svc.Search(context.Background(), SearchParams{Query: "cats"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
}

func TestSearchService_Stats(t *testing.T) {
	repo := &stubSearchRepo{statsResult: &CollectionStats{
		Count:          42,
		Dimension:      1536,
		DistanceMetric: "cosine",
		Status:         "ok",
	}}
	svc := NewSearchService(repo, &stubEmbedder{}, WithSearchLogger(discardLogger()))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.Count)
	assert.Equal(t, 1536, stats.Dimension)
	assert.Equal(t, "cosine", stats.DistanceMetric)
}
