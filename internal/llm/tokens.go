package llm

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/tiktoken-go/tokenizer"
)

// messageOverhead approximates the per-message framing tokens of the chat format.
const messageOverhead = 4

// TokenCounter estimates prompt sizes with tiktoken. Models it does not know,
// such as deepseek-chat, use cl100k_base.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter returns a counter for model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil, fmt.Errorf("failed to get fallback tokenizer: %w", err)
		}
	}
	return &TokenCounter{codec: codec}, nil
}

// Count returns the estimated token count of messages, including tool call
// names and arguments.
func (c *TokenCounter) Count(messages []openai.ChatCompletionMessage) (int, error) {
	total := 0
	for _, msg := range messages {
		total += messageOverhead
		texts := []string{msg.Content, msg.ReasoningContent}
		for _, tc := range msg.ToolCalls {
			texts = append(texts, tc.Function.Name, tc.Function.Arguments)
		}
		for _, text := range texts {
			if text == "" {
				continue
			}
			ids, _, err := c.codec.Encode(text)
			if err != nil {
				return 0, fmt.Errorf("failed to encode message: %w", err)
			}
			total += len(ids)
		}
	}
	return total, nil
}
