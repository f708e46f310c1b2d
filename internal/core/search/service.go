package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultLimit は件数未指定時のデフォルト
	DefaultLimit = 10

	// MaxLimit は1回の検索で返す最大件数
	MaxLimit = 50

	// DefaultScoreThreshold は類似度の足切りのデフォルト
	DefaultScoreThreshold = 0.7
)

// ErrInvalidQuery は検索クエリが空の場合のエラー
var ErrInvalidQuery = errors.New("query is required")

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Repository は検索関連のデータアクセスを統合するインターフェース
type Repository interface {
	// Query は類似度が threshold 以上のレコードを類似度降順で最大 limit 件返す
	Query(ctx context.Context, queryVector []float32, limit int, threshold float64) ([]*SearchResult, error)

	// Stats はコレクション統計を返す
	Stats(ctx context.Context) (*CollectionStats, error)
}

// SearchService は自然文検索のビジネスロジックを提供する
type SearchService struct {
	repo     Repository
	embedder Embedder
	logger   *slog.Logger
}

type searchServiceOptions struct {
	logger *slog.Logger
}

// SearchServiceOption は SearchService のオプション設定
type SearchServiceOption func(*searchServiceOptions)

// WithSearchLogger は SearchService にロガーを設定する
func WithSearchLogger(logger *slog.Logger) SearchServiceOption {
	return func(o *searchServiceOptions) {
		o.logger = logger
	}
}

// NewSearchService は新しいSearchServiceを作成する
func NewSearchService(repo Repository, embedder Embedder, opts ...SearchServiceOption) *SearchService {
	options := searchServiceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &SearchService{
		repo:     repo,
		embedder: embedder,
		logger:   options.logger,
	}
}

// SearchParams は検索パラメータを表す
type SearchParams struct {
	Query string

	// Limit は0以下の場合デフォルト値、MaxLimit 超は MaxLimit に丸められる
	Limit int

	// ScoreThreshold は未指定（nil）の場合デフォルト値、[0,1] に丸められる
	ScoreThreshold *float64
}

// Search はクエリに基づいてベクトル検索を実行する。
// 結果が0件の場合は、再検索の手がかりとなる候補語を付与する
// （Embeddingの再呼び出しは行わない）。
func (s *SearchService) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	threshold := DefaultScoreThreshold
	if params.ScoreThreshold != nil {
		threshold = clamp(*params.ScoreThreshold, 0, 1)
	}

	// クエリをEmbeddingに変換
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.repo.Query(ctx, queryVector, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	response := &SearchResponse{
		Query:   query,
		Results: results,
	}
	if len(results) == 0 {
		response.Suggestions = buildSuggestions(query)
	}

	s.logger.Info("検索が完了",
		"query", query,
		"limit", limit,
		"threshold", threshold,
		"hits", len(results),
	)

	return response, nil
}

// Stats はコレクション統計を返す
func (s *SearchService) Stats(ctx context.Context) (*CollectionStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection stats: %w", err)
	}
	return stats, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
