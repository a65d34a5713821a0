package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smartnote/internal/model"
)

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	gen, err := NewGenerator(ctx, model.AIConfig{Provider: "openai"}, "")
	require.NoError(t, err)
	assert.Nil(t, gen, "no key means no provider")

	gen, err = NewGenerator(ctx, model.AIConfig{Provider: "openai", Model: "gemini-2.5-flash"}, "k")
	require.NoError(t, err)
	oai, ok := gen.(*OpenAIGenerator)
	require.True(t, ok)
	assert.Equal(t, defaultOpenAIModel, oai.model)

	gen, err = NewGenerator(ctx, model.AIConfig{Provider: "anthropic", Model: "claude-custom"}, "k")
	require.NoError(t, err)
	claude, ok := gen.(*AnthropicGenerator)
	require.True(t, ok)
	assert.Equal(t, "claude-custom", claude.model)

	_, err = NewGenerator(ctx, model.AIConfig{Provider: "mystery"}, "k")
	assert.ErrorContains(t, err, "unknown AI provider")
}

func TestModelFor(t *testing.T) {
	assert.Equal(t, defaultGeminiModel, modelFor(model.AIConfig{}))
	assert.Equal(t, "gemini-2.0-pro", modelFor(model.AIConfig{Provider: "gemini", Model: "gemini-2.0-pro"}))
	assert.Equal(t, defaultAnthropicModel, modelFor(model.AIConfig{Provider: "anthropic", Model: "gemini-2.5-flash"}))
	assert.Equal(t, "gpt-4.1", modelFor(model.AIConfig{Provider: "openai", Model: "gpt-4.1"}))
}
