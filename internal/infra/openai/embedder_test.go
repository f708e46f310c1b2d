package openai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEmbedderDefaults(t *testing.T) {
	embedder := NewEmbedder("test-api-key")

	assert.Equal(t, DefaultEmbeddingModel, embedder.ModelName())
	assert.Equal(t, DefaultEmbeddingDimension, embedder.Dimension())
	assert.Equal(t, DefaultEmbedTimeout, embedder.timeout)
}

func TestNewEmbedderOptionsOverrideDefaults(t *testing.T) {
	embedder := NewEmbedder("test-api-key",
		WithEmbeddingModel("text-embedding-3-large"),
		WithEmbeddingDimension(3072),
		WithEmbedTimeout(10*time.Second),
	)

	assert.Equal(t, "text-embedding-3-large", embedder.ModelName())
	assert.Equal(t, 3072, embedder.Dimension())
	assert.Equal(t, 10*time.Second, embedder.timeout)
}

func TestTrimToTokenLimit_ShortTextUnchanged(t *testing.T) {
	embedder := NewEmbedder("test-api-key")

	text := "a short description of a photo"
	assert.Equal(t, text, embedder.trimToTokenLimit(text, maxEmbeddingTokens))
}

func TestTrimToTokenLimit_LongTextTruncated(t *testing.T) {
	embedder := NewEmbedder("test-api-key")

	long := strings.Repeat("mountain lake sunrise ", 5000)
	trimmed := embedder.trimToTokenLimit(long, 100)

	assert.Less(t, len(trimmed), len(long))
	assert.True(t, strings.HasPrefix(long, trimmed))
}

func TestNewDescriberDefaults(t *testing.T) {
	describer := NewDescriber("test-api-key")

	assert.Equal(t, DefaultVisionModel, describer.ModelName())
	assert.Equal(t, DefaultDescribeTimeout, describer.timeout)
}

func TestNewDescriberOptionsOverrideDefaults(t *testing.T) {
	describer := NewDescriber("test-api-key",
		WithVisionModel("gpt-4o"),
		WithDescribeTimeout(5*time.Second),
	)

	assert.Equal(t, "gpt-4o", describer.ModelName())
	assert.Equal(t, 5*time.Second, describer.timeout)
}
