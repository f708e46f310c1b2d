package search

import (
	"time"

	"github.com/google/uuid"
)

// SearchResult はベクトル検索の結果1件を表す
type SearchResult struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`

	// Score は [0,1] の類似度。大きいほど近い。
	Score float64 `json:"score"`
}

// SearchResponse は検索結果の応答を表す。
// Suggestions は Results が空の場合にのみ設定される。
type SearchResponse struct {
	Query       string          `json:"query"`
	Results     []*SearchResult `json:"results"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// CollectionStats はベクトルストアのコレクション統計を表す
type CollectionStats struct {
	Count          int64  `json:"count"`
	Dimension      int    `json:"dimension"`
	DistanceMetric string `json:"distanceMetric"`
	Status         string `json:"status"`
}
