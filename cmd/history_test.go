package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykykj/assistant/internal/history"
)

func TestPrintTranscript(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	id, err := store.NewSession(ctx, "me@example.com")
	require.NoError(t, err)

	for _, msg := range []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
		{Role: openai.ChatMessageRoleUser, Content: "What's the weather in Beijing?"},
		{Role: openai.ChatMessageRoleAssistant, ToolCalls: []openai.ToolCall{{
			ID:       "call_1",
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: "getWeather", Arguments: `{"city":"Beijing"}`},
		}}},
		{Role: openai.ChatMessageRoleTool, ToolCallID: "call_1", Content: "Sunny, 25°C"},
		{Role: openai.ChatMessageRoleAssistant, Content: "It is sunny and 25°C in Beijing."},
	} {
		require.NoError(t, store.Append(ctx, id, msg))
	}

	var out bytes.Buffer
	require.NoError(t, printTranscript(ctx, &out, store, id))
	assert.Equal(t,
		"\nYou: What's the weather in Beijing?\n"+
			"[tool call] getWeather({\"city\":\"Beijing\"})\n"+
			"[tool result] Sunny, 25°C\n"+
			"Assistant: It is sunny and 25°C in Beijing.\n",
		out.String())

	err = printTranscript(ctx, &out, store, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, history.ErrSessionNotFound)
}

func TestPrintSessions(t *testing.T) {
	var out bytes.Buffer
	printSessions(&out, nil)
	assert.Equal(t, "No stored conversations.\n", out.String())

	ctx := context.Background()
	store, err := history.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	id, err := store.NewSession(ctx, "me@example.com")
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, id, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: "Book a meeting\nwith Alice tomorrow at 10",
	}))

	sessions, err := store.Sessions(ctx, 10)
	require.NoError(t, err)

	out.Reset()
	printSessions(&out, sessions)
	assert.Contains(t, out.String(), "FIRST MESSAGE")
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "Book a meeting with Alice tomorrow at 10")
}

func TestWithHistoryStore_DisabledByEmptyPath(t *testing.T) {
	t.Setenv("ASSISTANT_HISTORY_PATH", "")

	called := false
	err := withHistoryStore(func(*history.Store) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "history is disabled")
	assert.False(t, called)
}
