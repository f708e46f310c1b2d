package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jinford/image-rag/internal/core/ingest"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultVisionModel はデフォルトで使用するVisionモデル
	DefaultVisionModel = "gpt-4o-mini"

	// DefaultDescribeTimeout は説明文生成のデフォルトタイムアウト
	DefaultDescribeTimeout = 30 * time.Second

	// describeMaxTokens は説明文の最大トークン数
	describeMaxTokens = 300
)

// defaultDescribePrompt は説明文生成の指示文
const defaultDescribePrompt = "Describe this image in detail. Mention the main subjects, the setting, notable colors, and the overall mood. Keep it under 100 words."

// Describer は OpenAI の Vision モデルで画像の説明文を生成する
type Describer struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

type describerOptions struct {
	model   string
	timeout time.Duration
}

// DescriberOption は Describer のオプション設定
type DescriberOption func(*describerOptions)

// WithVisionModel はモデル名を上書きする
func WithVisionModel(model string) DescriberOption {
	return func(o *describerOptions) {
		o.model = model
	}
}

// WithDescribeTimeout はAPIコールのタイムアウトを上書きする
func WithDescribeTimeout(timeout time.Duration) DescriberOption {
	return func(o *describerOptions) {
		o.timeout = timeout
	}
}

// NewDescriber は新しい Describer を作成する
func NewDescriber(apiKey string, opts ...DescriberOption) *Describer {
	options := describerOptions{
		model:   DefaultVisionModel,
		timeout: DefaultDescribeTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Describer{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   options.model,
		timeout: options.timeout,
	}
}

// Describe は画像データから説明文を生成する。
// 画像は data URL としてリクエストに埋め込む。
func (d *Describer) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image data is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(defaultDescribePrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		MaxTokens: openai.Int(describeMaxTokens),
	}

	completion, err := d.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", mapAPIError(err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	description := strings.TrimSpace(completion.Choices[0].Message.Content)
	if description == "" {
		return "", fmt.Errorf("empty description returned")
	}

	return description, nil
}

// ModelName はモデル名を返す
func (d *Describer) ModelName() string {
	return d.model
}

// インターフェース実装の確認
var _ ingest.Describer = (*Describer)(nil)
