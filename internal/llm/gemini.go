package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// GeminiClient adapts the Gemini API to the Client interface.
type GeminiClient struct {
	models *genai.Models

	// Gemini expects the thought signature of a function call to be sent
	// back with it on the next request.
	mu         sync.Mutex
	signatures map[string][]byte
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{models: client.Models, signatures: make(map[string][]byte)}, nil
}

// GeminiOption customizes the underlying genai client configuration.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at another endpoint.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = baseURL
	}
}

func (c *GeminiClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	system, contents, err := c.toContents(req.Messages)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(contents) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("gemini request has no user content")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(req.Temperature),
	}
	if tools := toFunctionDeclarations(req.Tools); len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: tools}}
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		}
	}

	resp, err := c.models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	return c.fromResponse(req.Model, resp), nil
}

// toContents converts chat messages. System messages are merged into the
// system instruction; consecutive messages with the same Gemini role are
// merged into one content.
func (c *GeminiClient) toContents(messages []openai.ChatCompletionMessage) (*genai.Content, []*genai.Content, error) {
	var systemParts []string
	var contents []*genai.Content
	callNames := make(map[string]string)

	appendParts := func(role string, parts ...*genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	for _, msg := range messages {
		switch msg.Role {
		case openai.ChatMessageRoleSystem:
			if msg.Content != "" {
				systemParts = append(systemParts, msg.Content)
			}

		case openai.ChatMessageRoleUser:
			appendParts(genai.RoleUser, genai.NewPartFromText(msg.Content))

		case openai.ChatMessageRoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if strings.TrimSpace(tc.Function.Arguments) != "" {
					if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
						return nil, nil, fmt.Errorf("invalid arguments for tool call %s: %w", tc.Function.Name, err)
					}
				}
				callNames[tc.ID] = tc.Function.Name
				parts = append(parts, &genai.Part{
					FunctionCall:     &genai.FunctionCall{ID: tc.ID, Name: tc.Function.Name, Args: args},
					ThoughtSignature: c.signature(tc.ID),
				})
			}
			appendParts(genai.RoleModel, parts...)

		case openai.ChatMessageRoleTool:
			name := msg.Name
			if name == "" {
				name = callNames[msg.ToolCallID]
			}
			appendParts(genai.RoleUser, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     name,
					Response: map[string]any{"output": msg.Content},
				},
			})

		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}
	return system, contents, nil
}

func toFunctionDeclarations(tools []openai.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 tool.Function.Name,
			Description:          tool.Function.Description,
			ParametersJsonSchema: tool.Function.Parameters,
		})
	}
	return decls
}

func (c *GeminiClient) fromResponse(model string, resp *genai.GenerateContentResponse) openai.ChatCompletionResponse {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
	finish := openai.FinishReasonStop

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			switch {
			case part.FunctionCall != nil:
				msg.ToolCalls = append(msg.ToolCalls, c.toToolCall(part))
			case part.Text != "" && !part.Thought:
				text.WriteString(part.Text)
			}
		}
		msg.Content = text.String()
	}
	if len(msg.ToolCalls) > 0 {
		finish = openai.FinishReasonToolCalls
	}

	out := openai.ChatCompletionResponse{
		ID:      resp.ResponseID,
		Model:   model,
		Choices: []openai.ChatCompletionChoice{{Message: msg, FinishReason: finish}},
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = openai.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out
}

func (c *GeminiClient) toToolCall(part *genai.Part) openai.ToolCall {
	fc := part.FunctionCall
	id := fc.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}
	if len(part.ThoughtSignature) > 0 {
		c.mu.Lock()
		c.signatures[id] = part.ThoughtSignature
		c.mu.Unlock()
	}

	args := "{}"
	if len(fc.Args) > 0 {
		if b, err := json.Marshal(fc.Args); err == nil {
			args = string(b)
		}
	}
	return openai.ToolCall{
		ID:       id,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: fc.Name, Arguments: args},
	}
}

func (c *GeminiClient) signature(id string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signatures[id]
}
