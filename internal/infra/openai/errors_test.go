package openai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/image-rag/internal/core/llm"
	"github.com/openai/openai-go/v3"
)

func TestMapAPIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       error
	}{
		{name: "401は認証エラー", statusCode: 401, want: llm.ErrUnauthorized},
		{name: "403は認証エラー", statusCode: 403, want: llm.ErrUnauthorized},
		{name: "429はレート制限", statusCode: 429, want: llm.ErrRateLimitExceeded},
		{name: "400は不正リクエスト", statusCode: 400, want: llm.ErrInvalidRequest},
		{name: "413は不正リクエスト", statusCode: 413, want: llm.ErrInvalidRequest},
		{name: "422は不正リクエスト", statusCode: 422, want: llm.ErrInvalidRequest},
		{name: "404はモデル未提供", statusCode: 404, want: llm.ErrModelNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapAPIError(&openai.Error{StatusCode: tt.statusCode})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapAPIError_UnknownStatusWrapped(t *testing.T) {
	original := &openai.Error{StatusCode: 500}
	err := mapAPIError(original)
	require.Error(t, err)
	assert.ErrorIs(t, err, original)
	assert.NotErrorIs(t, err, llm.ErrUnauthorized)
	assert.NotErrorIs(t, err, llm.ErrRateLimitExceeded)
}

func TestMapAPIError_NonAPIErrorWrapped(t *testing.T) {
	original := fmt.Errorf("connection reset")
	err := mapAPIError(original)
	require.Error(t, err)
	assert.ErrorIs(t, err, original)
	assert.Contains(t, err.Error(), "OpenAI API call failed")
}

func TestMapAPIError_NilPassesThrough(t *testing.T) {
	assert.NoError(t, mapAPIError(nil))
}
