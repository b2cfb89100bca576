package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ykykj/assistant/internal/config"
)

func TestNewOpenAIClient_DeepSeek(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		require.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","model":"deepseek-chat","choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`))
	}))
	defer srv.Close()

	client := &Instrumented{Client: NewOpenAIClient("sk-test", srv.URL), Provider: config.ProviderDeepSeek}
	resp, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:    "deepseek-chat",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello!", resp.Choices[0].Message.Content)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

type failingClient struct{ err error }

func (f failingClient) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, f.err
}

func TestInstrumented_PropagatesError(t *testing.T) {
	boom := errors.New("insufficient balance")
	client := &Instrumented{Client: failingClient{err: boom}, Provider: config.ProviderDeepSeek}
	_, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{Model: "m"})
	assert.ErrorIs(t, err, boom)
}

func TestNew_UnsupportedProvider(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{Provider: "claude"}}
	_, err := New(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

func TestTokenCounter(t *testing.T) {
	counter, err := NewTokenCounter("deepseek-chat")
	require.NoError(t, err)

	empty, err := counter.Count([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser}})
	require.NoError(t, err)
	assert.Equal(t, messageOverhead, empty)

	short, err := counter.Count([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hello"}})
	require.NoError(t, err)

	long, err := counter.Count([]openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleUser,
		Content: strings.Repeat("hello world ", 50),
	}})
	require.NoError(t, err)
	assert.Greater(t, short, empty)
	assert.Greater(t, long, short)

	withCall, err := counter.Count([]openai.ChatCompletionMessage{{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:       "1",
			Function: openai.FunctionCall{Name: "getWeather", Arguments: `{"city":"Beijing"}`},
		}},
	}})
	require.NoError(t, err)
	assert.Greater(t, withCall, empty)
}

func TestGeminiToContents(t *testing.T) {
	c := &GeminiClient{signatures: map[string][]byte{"call-1": []byte("sig")}}

	system, contents, err := c.toContents([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are helpful."},
		{Role: openai.ChatMessageRoleUser, Content: "Weather in Beijing?"},
		{Role: openai.ChatMessageRoleAssistant, ToolCalls: []openai.ToolCall{{
			ID:       "call-1",
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: "getWeather", Arguments: `{"city":"Beijing"}`},
		}}},
		{Role: openai.ChatMessageRoleTool, ToolCallID: "call-1", Content: "Sunny"},
		{Role: openai.ChatMessageRoleUser, Content: "Thanks"},
	})
	require.NoError(t, err)

	require.NotNil(t, system)
	assert.Equal(t, "You are helpful.", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)

	assert.Equal(t, genai.RoleModel, contents[1].Role)
	call := contents[1].Parts[0]
	require.NotNil(t, call.FunctionCall)
	assert.Equal(t, "getWeather", call.FunctionCall.Name)
	assert.Equal(t, map[string]any{"city": "Beijing"}, call.FunctionCall.Args)
	assert.Equal(t, []byte("sig"), call.ThoughtSignature)

	// The tool response and the next user line share one user content.
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	fr := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "getWeather", fr.Name)
	assert.Equal(t, map[string]any{"output": "Sunny"}, fr.Response)
	assert.Equal(t, "Thanks", contents[2].Parts[1].Text)
}

func TestGeminiToContents_InvalidArguments(t *testing.T) {
	c := &GeminiClient{signatures: map[string][]byte{}}
	_, _, err := c.toContents([]openai.ChatCompletionMessage{{
		Role:      openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{ID: "1", Function: openai.FunctionCall{Name: "x", Arguments: "{not json"}}},
	}})
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestGeminiFromResponse(t *testing.T) {
	c := &GeminiClient{signatures: map[string][]byte{}}

	resp := c.fromResponse("gemini-2.5-flash", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "Let me check."},
			{FunctionCall: &genai.FunctionCall{Name: "getCurrentTime", Args: map[string]any{"timezone": "UTC"}}, ThoughtSignature: []byte("s")},
		}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 3, TotalTokenCount: 13},
	})

	require.Len(t, resp.Choices, 1)
	msg := resp.Choices[0].Message
	assert.Equal(t, openai.FinishReasonToolCalls, resp.Choices[0].FinishReason)
	assert.Equal(t, "Let me check.", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	tc := msg.ToolCalls[0]
	assert.True(t, strings.HasPrefix(tc.ID, "call_"))
	assert.Equal(t, "getCurrentTime", tc.Function.Name)
	assert.JSONEq(t, `{"timezone":"UTC"}`, tc.Function.Arguments)
	assert.Equal(t, []byte("s"), c.signature(tc.ID))
	assert.Equal(t, 10, resp.Usage.PromptTokens)
	assert.Equal(t, 3, resp.Usage.CompletionTokens)
}

func TestToFunctionDeclarations(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`)
	decls := toFunctionDeclarations([]openai.Tool{
		{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{Name: "getWeather", Description: "Weather", Parameters: schema}},
		{Type: openai.ToolTypeFunction},
	})
	require.Len(t, decls, 1)
	assert.Equal(t, "getWeather", decls[0].Name)
	assert.Equal(t, schema, decls[0].ParametersJsonSchema)
}

func TestGeminiClient_CreateChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")
		assert.Contains(t, body, "tools")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":2,"totalTokenCount":6}}`))
	}))
	defer srv.Close()

	client, err := NewGeminiClient(context.Background(), "test-key", WithGeminiBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	resp, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: "gemini-2.5-flash",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Be brief."},
			{Role: openai.ChatMessageRoleUser, Content: "hello"},
		},
		Tools: []openai.Tool{{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
			Name:       "getCurrentTime",
			Parameters: json.RawMessage(`{"type":"object","properties":{}}`),
		}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", resp.Choices[0].Message.Content)
	assert.Equal(t, openai.FinishReasonStop, resp.Choices[0].FinishReason)
	assert.Equal(t, 6, resp.Usage.TotalTokens)
}
