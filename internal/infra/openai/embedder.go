package openai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jinford/image-rag/internal/core/ingest"
	"github.com/jinford/image-rag/internal/core/search"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultEmbeddingModel はモデル未指定時のデフォルトモデル
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultEmbeddingDimension はOpenAI推奨のデフォルト次元
	DefaultEmbeddingDimension = 1536

	// DefaultEmbedTimeout はEmbedding生成のデフォルトタイムアウト
	DefaultEmbedTimeout = 30 * time.Second

	// maxEmbeddingTokens は入力テキストのトークン上限。
	// 超過分は切り詰めてから送信する。
	maxEmbeddingTokens = 8000
)

// Embedder は OpenAI API を使用してテキストをベクトルに変換する
type Embedder struct {
	client    openai.Client
	model     string
	dimension int
	timeout   time.Duration

	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
}

type embedderOptions struct {
	model     string
	dimension int
	timeout   time.Duration
}

// EmbedderOption は Embedder のオプション設定
type EmbedderOption func(*embedderOptions)

// WithEmbeddingModel はモデル名を上書きする
func WithEmbeddingModel(model string) EmbedderOption {
	return func(o *embedderOptions) {
		o.model = model
	}
}

// WithEmbeddingDimension はベクトル次元を上書きする
func WithEmbeddingDimension(dimension int) EmbedderOption {
	return func(o *embedderOptions) {
		o.dimension = dimension
	}
}

// WithEmbedTimeout はAPIコールのタイムアウトを上書きする
func WithEmbedTimeout(timeout time.Duration) EmbedderOption {
	return func(o *embedderOptions) {
		o.timeout = timeout
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(apiKey string, opts ...EmbedderOption) *Embedder {
	options := embedderOptions{
		model:     DefaultEmbeddingModel,
		dimension: DefaultEmbeddingDimension,
		timeout:   DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Embedder{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:     options.model,
		dimension: options.dimension,
		timeout:   options.timeout,
	}
}

// Embed は単一テキストの Embedding を生成する
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("no text provided")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(e.trimToTokenLimit(text, maxEmbeddingTokens)),
		},
	}

	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, mapAPIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings generated")
	}

	data := resp.Data[0]
	vector := make([]float32, len(data.Embedding))
	for i, v := range data.Embedding {
		vector[i] = float32(v)
	}

	return vector, nil
}

// trimToTokenLimit はテキストを maxTokens 以内に切り詰める。
// tiktoken のエンコーディングが読み込めない場合は文字数ベースの概算で代用する。
func (e *Embedder) trimToTokenLimit(text string, maxTokens int) string {
	e.encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			e.encoding = enc
		}
	})

	if e.encoding == nil {
		// 概算: 平均3文字で1トークン
		runes := []rune(text)
		if len(runes) <= maxTokens*3 {
			return text
		}
		return string(runes[:maxTokens*3])
	}

	tokens := e.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return e.encoding.Decode(tokens[:maxTokens])
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return e.dimension
}

// インターフェース実装の確認
var (
	_ ingest.Embedder = (*Embedder)(nil)
	_ search.Embedder = (*Embedder)(nil)
)
