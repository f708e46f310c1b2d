package openai

import (
	"errors"
	"fmt"

	"github.com/jinford/image-rag/internal/core/llm"
	"github.com/openai/openai-go/v3"
)

// mapAPIError はOpenAI APIのエラーをドメインのエラー種別に対応付ける。
// 対応付けできないものはそのままラップして返す。
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return fmt.Errorf("%w: %v", llm.ErrUnauthorized, err)
		case 429:
			return fmt.Errorf("%w: %v", llm.ErrRateLimitExceeded, err)
		case 400, 413, 422:
			return fmt.Errorf("%w: %v", llm.ErrInvalidRequest, err)
		case 404:
			return fmt.Errorf("%w: %v", llm.ErrModelNotAvailable, err)
		}
	}

	return fmt.Errorf("OpenAI API call failed: %w", err)
}
