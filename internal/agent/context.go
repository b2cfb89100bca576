package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ykykj/assistant/internal/instrumentation"
)

const (
	// keepToolResults is how many of the newest tool results survive clearing.
	keepToolResults = 5
	// keepRecentMessages is how many of the newest messages survive summarizing.
	keepRecentMessages = 10

	ClearedToolResult = "[Cleared: old tool call result]"
	summaryPrefix     = "Summary of the earlier conversation:\n"
)

const summarizerPrompt = `You condense conversations between a user and their personal assistant.
Write a short factual summary of the transcript below. Keep names, email addresses, dates, times,
links, document ids, decisions and open requests. Leave out pleasantries. Reply with the summary only.`

// manageContext keeps the conversation within the token budget: first by
// clearing old tool results, then by summarizing older messages.
func (a *Agent) manageContext(ctx context.Context) error {
	if a.counter == nil || a.maxContextTokens <= 0 {
		return nil
	}

	tokens, err := a.counter.Count(a.messages)
	if err != nil {
		return err
	}
	if tokens <= a.maxContextTokens {
		return nil
	}

	if cleared := clearOldToolResults(a.messages, keepToolResults); cleared > 0 {
		a.metrics.RecordContextTrim(ctx, instrumentation.TrimStrategyClearToolResults)
		a.logger.DebugContext(ctx, "cleared old tool results",
			slog.Int("cleared", cleared), slog.Int("tokens_before", tokens))

		if tokens, err = a.counter.Count(a.messages); err != nil {
			return err
		}
		if tokens <= a.maxContextTokens {
			return nil
		}
	}

	return a.summarize(ctx, tokens)
}

// clearOldToolResults replaces the content of all but the newest keep tool
// results with a placeholder. Tool call arguments are left alone.
func clearOldToolResults(messages []openai.ChatCompletionMessage, keep int) int {
	seen, cleared := 0, 0
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != openai.ChatMessageRoleTool {
			continue
		}
		seen++
		if seen <= keep || messages[i].Content == ClearedToolResult {
			continue
		}
		messages[i].Content = ClearedToolResult
		cleared++
	}
	return cleared
}

// summaryCut returns the index of the first message kept verbatim. Messages
// in [start, cut) are summarized. The cut never lands on a tool result, so a
// tool call and its results stay together.
func summaryCut(messages []openai.ChatCompletionMessage, start, keep int) int {
	cut := len(messages) - keep
	for cut > start && messages[cut].Role == openai.ChatMessageRoleTool {
		cut--
	}
	if cut <= start {
		return start
	}
	return cut
}

func (a *Agent) summarize(ctx context.Context, tokens int) error {
	start := 0
	if len(a.messages) > 0 && a.messages[0].Role == openai.ChatMessageRoleSystem {
		start = 1
	}
	cut := summaryCut(a.messages, start, keepRecentMessages)
	if cut == start {
		a.logger.WarnContext(ctx, "context over budget but nothing left to summarize", slog.Int("tokens", tokens))
		return nil
	}

	if err := a.waitForRateLimit(ctx); err != nil {
		return err
	}
	resp, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript(a.messages[start:cut])},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to summarize conversation: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return errors.New("failed to summarize conversation: empty summary")
	}

	kept := make([]openai.ChatCompletionMessage, 0, start+1+len(a.messages)-cut)
	kept = append(kept, a.messages[:start]...)
	kept = append(kept, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: summaryPrefix + strings.TrimSpace(resp.Choices[0].Message.Content),
	})
	kept = append(kept, a.messages[cut:]...)

	a.metrics.RecordContextTrim(ctx, instrumentation.TrimStrategySummarize)
	a.logger.DebugContext(ctx, "summarized conversation",
		slog.Int("summarized", cut-start), slog.Int("tokens_before", tokens))
	a.messages = kept
	return nil
}

func transcript(messages []openai.ChatCompletionMessage) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case openai.ChatMessageRoleTool:
			fmt.Fprintf(&b, "tool %s returned: %s\n", m.Name, m.Content)
		case openai.ChatMessageRoleAssistant:
			if m.Content != "" {
				fmt.Fprintf(&b, "assistant: %s\n", m.Content)
			}
			for _, tc := range m.ToolCalls {
				fmt.Fprintf(&b, "assistant called %s(%s)\n", tc.Function.Name, tc.Function.Arguments)
			}
		default:
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}
	return b.String()
}
