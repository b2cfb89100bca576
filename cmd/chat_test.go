package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykykj/assistant/internal/config"
)

type fakeRunner struct {
	inputs  []string
	answers map[string]string
	err     error
}

func (f *fakeRunner) Run(_ context.Context, input string) (string, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return "", f.err
	}
	return f.answers[input], nil
}

func runREPL(t *testing.T, ctx context.Context, input string, agent runner) string {
	t.Helper()
	var out strings.Builder
	r := &repl{in: strings.NewReader(input), out: &out, agent: agent}
	require.NoError(t, r.run(ctx))
	return out.String()
}

func TestREPL_AnswersUntilExit(t *testing.T) {
	agent := &fakeRunner{answers: map[string]string{"what can you do?": "I can send email."}}

	out := runREPL(t, context.Background(), "what can you do?\n\n   \nEXIT\nnever read\n", agent)

	assert.Equal(t, []string{"what can you do?"}, agent.inputs)
	assert.Contains(t, out, welcomeMessage)
	assert.Contains(t, out, usageMessage)
	assert.Contains(t, out, promptMessage)
	assert.Contains(t, out, workingMessage+"\n\n"+answerHeader+"\nI can send email.\n")
	assert.True(t, strings.HasSuffix(out, goodbyeMessage+"\n"), out)
}

func TestREPL_QuitAndEOF(t *testing.T) {
	agent := &fakeRunner{}

	out := runREPL(t, context.Background(), "quit\n", agent)
	assert.Contains(t, out, goodbyeMessage)

	out = runREPL(t, context.Background(), "", agent)
	assert.Contains(t, out, goodbyeMessage)
	assert.Empty(t, agent.inputs)
}

func TestREPL_ErrorKeepsLooping(t *testing.T) {
	agent := &fakeRunner{err: errors.New("401 unauthorized")}

	out := runREPL(t, context.Background(), "hello\nagain\nexit\n", agent)

	assert.Equal(t, []string{"hello", "again"}, agent.inputs)
	assert.Equal(t, 2, strings.Count(out, "Error: 401 unauthorized\n"+errorHint))
	assert.NotContains(t, out, answerHeader)
}

func TestREPL_CancelledContextExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := runREPL(t, ctx, "", &blockingRunner{})
	// EOF and cancellation race here; either ends the loop cleanly.
	assert.True(t, strings.Contains(out, exitingMessage) || strings.Contains(out, goodbyeMessage), out)
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestREPL_CancelDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	agent := runnerFunc(func(ctx context.Context, _ string) (string, error) {
		cancel()
		<-ctx.Done()
		return "", ctx.Err()
	})

	out := runREPL(t, ctx, "book a meeting\n", agent)
	assert.Contains(t, out, workingMessage+"\n\n"+exitingMessage)
	assert.NotContains(t, out, errorHint)
}

type runnerFunc func(ctx context.Context, input string) (string, error)

func (f runnerFunc) Run(ctx context.Context, input string) (string, error) { return f(ctx, input) }

func TestApplyLLMFlags(t *testing.T) {
	tests := []struct {
		name            string
		provider, model string
		wantProvider    string
		wantModel       string
		wantGeminiModel string
	}{
		{name: "no flags", wantProvider: "deepseek", wantModel: "deepseek-chat", wantGeminiModel: "gemini-2.5-flash"},
		{name: "deepseek model", model: "deepseek-reasoner", wantProvider: "deepseek", wantModel: "deepseek-reasoner", wantGeminiModel: "gemini-2.5-flash"},
		{name: "gemini provider", provider: " Gemini ", wantProvider: "gemini", wantModel: "deepseek-chat", wantGeminiModel: "gemini-2.5-flash"},
		{name: "gemini model", provider: "gemini", model: "gemini-2.5-pro", wantProvider: "gemini", wantModel: "deepseek-chat", wantGeminiModel: "gemini-2.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LLM: config.LLMConfig{
				Provider:    config.ProviderDeepSeek,
				Model:       "deepseek-chat",
				GeminiModel: "gemini-2.5-flash",
			}}
			applyLLMFlags(cfg, tt.provider, tt.model)
			assert.Equal(t, tt.wantProvider, cfg.LLM.Provider)
			assert.Equal(t, tt.wantModel, cfg.LLM.Model)
			assert.Equal(t, tt.wantGeminiModel, cfg.LLM.GeminiModel)
		})
	}
}
