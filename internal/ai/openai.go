package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls the OpenAI chat completions API, or any endpoint
// compatible with it.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIGenerator creates a client. An empty baseURL uses api.openai.com.
func NewOpenAIGenerator(apiKey, baseURL, model string, maxTokens int) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate sends one user message. Images travel as data URLs; other
// binary parts are rejected. Structured output uses a JSON schema response
// format with an object root.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Parts) == 0 {
		msg.Content = req.Prompt
	} else {
		parts := make([]openai.ChatMessagePart, 0, len(req.Parts)+1)
		for _, p := range req.Parts {
			if !strings.HasPrefix(p.MimeType, "image/") {
				return "", fmt.Errorf("%s: %w", p.MimeType, ErrUnsupportedMedia)
			}
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: "data:" + p.MimeType + ";base64," + base64.StdEncoding.EncodeToString(p.Data),
				},
			})
		}
		parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: req.Prompt})
		msg.MultiContent = parts
	}

	creq := openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  []openai.ChatCompletionMessage{msg},
		MaxTokens: g.maxTokens,
	}

	wrapped := false
	if req.Schema != nil {
		var root *Schema
		root, wrapped = wrapRoot(req.Schema)
		def := root.toOpenAI()
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: &def,
			},
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	text := resp.Choices[0].Message.Content
	if wrapped {
		// Undecodable envelopes are passed through for the parser to reject.
		if inner, err := unwrapRoot(text); err == nil {
			return inner, nil
		}
	}
	return text, nil
}
