package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultMaxTokens      = 4096
	anthropicURL          = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"

	// respondTool is the forced tool whose input carries structured output.
	respondTool = "respond"
)

// AnthropicGenerator calls the Claude Messages API over HTTP.
type AnthropicGenerator struct {
	apiKey    string
	url       string
	model     string
	maxTokens int
	client    *http.Client
}

// NewAnthropicGenerator creates a Claude generator. An empty baseURL uses
// the public endpoint.
func NewAnthropicGenerator(apiKey, baseURL, modelName string, maxTokens int) *AnthropicGenerator {
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	url := anthropicURL
	if baseURL != "" {
		url = strings.TrimRight(baseURL, "/") + "/v1/messages"
	}

	return &AnthropicGenerator{
		apiKey:    apiKey,
		url:       url,
		model:     modelName,
		maxTokens: maxTokens,
		client:    &http.Client{},
	}
}

// Generate sends a single user turn. When a schema is requested the model
// is forced to call the respond tool, and the tool input is returned as the
// JSON response.
func (a *AnthropicGenerator) Generate(ctx context.Context, req Request) (string, error) {
	content := make([]apiContentBlock, 0, len(req.Parts)+1)
	for _, p := range req.Parts {
		block, err := mediaBlock(p)
		if err != nil {
			return "", err
		}
		content = append(content, block)
	}
	content = append(content, apiContentBlock{Type: "text", Text: req.Prompt})

	reqBody := apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []apiMessage{{Role: "user", Content: content}},
	}

	wrapped := false
	if req.Schema != nil {
		var root *Schema
		root, wrapped = wrapRoot(req.Schema)
		inputSchema, err := json.Marshal(root)
		if err != nil {
			return "", fmt.Errorf("marshaling schema: %w", err)
		}
		reqBody.Tools = []apiTool{{
			Name:        respondTool,
			Description: "Return the answer in the required structure.",
			InputSchema: inputSchema,
		}}
		reqBody.ToolChoice = &apiToolChoice{Type: "tool", Name: respondTool}
	}

	resp, err := a.callAPI(ctx, reqBody)
	if err != nil {
		return "", err
	}

	var textParts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			if block.Name != respondTool {
				continue
			}
			if wrapped {
				if inner, err := unwrapRoot(string(block.Input)); err == nil {
					return inner, nil
				}
			}
			return string(block.Input), nil
		}
	}
	return strings.Join(textParts, ""), nil
}

func mediaBlock(p InlinePart) (apiContentBlock, error) {
	src := &apiSource{
		Type:      "base64",
		MediaType: p.MimeType,
		Data:      base64.StdEncoding.EncodeToString(p.Data),
	}
	switch {
	case strings.HasPrefix(p.MimeType, "image/"):
		return apiContentBlock{Type: "image", Source: src}, nil
	case p.MimeType == "application/pdf":
		return apiContentBlock{Type: "document", Source: src}, nil
	default:
		return apiContentBlock{}, fmt.Errorf("%s: %w", p.MimeType, ErrUnsupportedMedia)
	}
}

// callAPI makes a single request to the Claude Messages API.
func (a *AnthropicGenerator) callAPI(ctx context.Context, reqBody apiRequest) (*apiResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, a.url, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, &StatusError{Code: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: string(respBody)}
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// --- Claude API types ---

type apiRequest struct {
	Model      string         `json:"model"`
	MaxTokens  int            `json:"max_tokens"`
	System     string         `json:"system,omitempty"`
	Messages   []apiMessage   `json:"messages"`
	Tools      []apiTool      `json:"tools,omitempty"`
	ToolChoice *apiToolChoice `json:"tool_choice,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`

	// For text blocks
	Text string `json:"text,omitempty"`

	// For image and document blocks
	Source *apiSource `json:"source,omitempty"`

	// For tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type apiSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type apiToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}
