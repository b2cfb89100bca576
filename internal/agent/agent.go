// Package agent runs the tool-calling conversation loop.
//
// Each user message drives a small state machine: the LLM is called, any tool
// calls it requests are executed and fed back, and the loop repeats until the
// model answers in text or the round trip limit is reached.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/llm"
	"github.com/ykykj/assistant/internal/logging"
)

// DefaultMaxTurns bounds the LLM round trips spent on one user message.
const DefaultMaxTurns = 10

const defaultCheckInterval = 100 * time.Millisecond

// States of one turn.
const (
	StateIdle           = "Idle"
	StateReadyToCallLLM = "ReadyToCallLLM"
	StateExecutingTools = "ExecutingTools"
	StateDone           = "Done"
	StateError          = "Error"
)

// Triggers of one turn.
const (
	triggerUserInput = "UserInput"
	triggerToolCalls = "LLMRequestedTools"
	triggerAnswer    = "LLMAnswered"
	triggerToolsDone = "ToolsCompleted"
	triggerError     = "ErrorOccurred"
)

// CancelledToolResult stands in for the output of a tool call that was
// abandoned because the turn was cancelled.
const CancelledToolResult = "Error: cancelled"

// ErrMaxTurns is returned when the model keeps requesting tools past MaxTurns.
var ErrMaxTurns = errors.New("exceeded maximum LLM round trips")

// History receives every message appended to the conversation.
type History interface {
	Append(ctx context.Context, msg openai.ChatCompletionMessage) error
}

// Options configures an Agent. LLM, Model and Tools are required.
type Options struct {
	LLM         llm.Client
	Model       string
	Temperature float32
	Tools       *mcpserver.MCPServer

	// SystemPrompt defaults to SystemPrompt(DefaultUserName).
	SystemPrompt string
	MaxTurns     int

	// Counter and MaxContextTokens enable context trimming.
	Counter          *llm.TokenCounter
	MaxContextTokens int

	// Limiter, when set, is waited on before every LLM call. The wait polls
	// every CheckInterval.
	Limiter       *rate.Limiter
	CheckInterval time.Duration

	History History
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Agent holds a single conversation thread. It is safe for concurrent use,
// but calls to Run are serialized.
type Agent struct {
	llm         llm.Client
	model       string
	temperature float32
	tools       *mcpserver.MCPServer
	toolDefs    []openai.Tool

	maxTurns         int
	counter          *llm.TokenCounter
	maxContextTokens int
	limiter          *rate.Limiter
	checkInterval    time.Duration

	history History
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	messages []openai.ChatCompletionMessage
}

// New creates an agent whose conversation starts with the system prompt.
func New(ctx context.Context, opts Options) (*Agent, error) {
	if opts.LLM == nil {
		return nil, errors.New("agent requires an LLM client")
	}
	if opts.Model == "" {
		return nil, errors.New("agent requires a model name")
	}
	if opts.Tools == nil {
		return nil, errors.New("agent requires a tool registry")
	}

	a := &Agent{
		llm:              opts.LLM,
		model:            opts.Model,
		temperature:      opts.Temperature,
		tools:            opts.Tools,
		toolDefs:         OpenAITools(opts.Tools),
		maxTurns:         opts.MaxTurns,
		counter:          opts.Counter,
		maxContextTokens: opts.MaxContextTokens,
		limiter:          opts.Limiter,
		checkInterval:    opts.CheckInterval,
		history:          opts.History,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
	}
	if a.maxTurns <= 0 {
		a.maxTurns = DefaultMaxTurns
	}
	if a.checkInterval <= 0 {
		a.checkInterval = defaultCheckInterval
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}

	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = SystemPrompt(DefaultUserName)
	}
	a.append(ctx, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: prompt})
	return a, nil
}

// Restore appends previously stored messages after the system prompt without
// sending them to History again. Stored system prompts are skipped, as are
// assistant tool_calls messages whose calls were not all answered.
func (a *Agent) Restore(messages []openai.ChatCompletionMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range dropUnansweredToolCalls(messages) {
		if m.Role == openai.ChatMessageRoleSystem {
			continue
		}
		a.messages = append(a.messages, m)
	}
}

// dropUnansweredToolCalls removes every assistant tool_calls message that is
// not directly followed by a tool response for each of its call IDs, together
// with the partial responses and any tool message left without its request.
func dropUnansweredToolCalls(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for i := 0; i < len(messages); i++ {
		m := messages[i]
		if m.Role == openai.ChatMessageRoleTool {
			continue
		}
		if m.Role != openai.ChatMessageRoleAssistant || len(m.ToolCalls) == 0 {
			out = append(out, m)
			continue
		}
		j := i + 1
		answered := make(map[string]bool, len(m.ToolCalls))
		for ; j < len(messages) && messages[j].Role == openai.ChatMessageRoleTool; j++ {
			answered[messages[j].ToolCallID] = true
		}
		complete := true
		for _, call := range m.ToolCalls {
			if !answered[call.ID] {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, messages[i:j]...)
		}
		i = j - 1
	}
	return out
}

// Messages returns a copy of the conversation.
func (a *Agent) Messages() []openai.ChatCompletionMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]openai.ChatCompletionMessage(nil), a.messages...)
}

// turn is the mutable state of one Run.
type turn struct {
	roundTrips int
	answer     string
	err        error
}

// Run sends input to the model, executes any tools it asks for and returns
// the final answer.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.append(ctx, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input})

	t := &turn{}
	sm := a.newStateMachine(t)
	if err := sm.FireCtx(ctx, triggerUserInput); err != nil && t.err == nil {
		t.err = err
	}

	status := instrumentation.StatusSuccess
	if t.err != nil {
		status = instrumentation.StatusError
	}
	a.metrics.RecordAgentTurn(ctx, status, t.roundTrips)
	a.logger.DebugContext(ctx, "turn finished",
		slog.String("state", fmt.Sprint(sm.MustState())),
		logging.Turn(t.roundTrips),
		logging.Status(status),
		logging.Err(t.err))

	if t.err != nil {
		return "", t.err
	}
	return t.answer, nil
}

func (a *Agent) newStateMachine(t *turn) *stateless.StateMachine {
	sm := stateless.NewStateMachineWithMode(StateIdle, stateless.FiringQueued)

	fail := func(ctx context.Context, err error) error {
		t.err = err
		return sm.FireCtx(ctx, triggerError)
	}

	sm.Configure(StateIdle).
		Permit(triggerUserInput, StateReadyToCallLLM)

	sm.Configure(StateReadyToCallLLM).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if t.roundTrips >= a.maxTurns {
				return fail(ctx, fmt.Errorf("%w (%d)", ErrMaxTurns, a.maxTurns))
			}
			t.roundTrips++

			msg, err := a.callLLM(ctx)
			if err != nil {
				return fail(ctx, err)
			}
			a.append(ctx, msg)

			if len(msg.ToolCalls) > 0 {
				return sm.FireCtx(ctx, triggerToolCalls)
			}
			t.answer = msg.Content
			return sm.FireCtx(ctx, triggerAnswer)
		}).
		Permit(triggerToolCalls, StateExecutingTools).
		Permit(triggerAnswer, StateDone).
		Permit(triggerError, StateError)

	sm.Configure(StateExecutingTools).
		OnEntry(func(ctx context.Context, _ ...any) error {
			calls := a.messages[len(a.messages)-1].ToolCalls
			for i, call := range calls {
				if err := ctx.Err(); err != nil {
					a.abandonToolCalls(ctx, calls[i:])
					return fail(ctx, err)
				}
				a.logger.DebugContext(ctx, "executing tool", logging.Tool(call.Function.Name))
				a.append(ctx, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    a.callTool(ctx, call),
					ToolCallID: call.ID,
					Name:       call.Function.Name,
				})
			}
			return sm.FireCtx(ctx, triggerToolsDone)
		}).
		Permit(triggerToolsDone, StateReadyToCallLLM).
		Permit(triggerError, StateError)

	sm.Configure(StateDone)
	sm.Configure(StateError)

	return sm
}

// callLLM trims the context, waits for the rate limiter and requests the next
// assistant message.
func (a *Agent) callLLM(ctx context.Context) (openai.ChatCompletionMessage, error) {
	if err := a.manageContext(ctx); err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if err := a.waitForRateLimit(ctx); err != nil {
		return openai.ChatCompletionMessage{}, err
	}

	resp, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    a.messages,
		Tools:       a.toolDefs,
		Temperature: a.temperature,
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("LLM returned no choices")
	}

	msg := resp.Choices[0].Message
	msg.Role = openai.ChatMessageRoleAssistant
	// DeepSeek rejects requests that echo reasoning_content back.
	msg.ReasoningContent = ""
	return msg, nil
}

// waitForRateLimit polls the limiter until a token is available.
func (a *Agent) waitForRateLimit(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	if a.limiter.Allow() {
		return nil
	}

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if a.limiter.Allow() {
				return nil
			}
		}
	}
}

// abandonToolCalls answers calls that will not run so the conversation stays
// valid for the next request and for a resumed session.
func (a *Agent) abandonToolCalls(ctx context.Context, calls []openai.ToolCall) {
	for _, call := range calls {
		a.append(ctx, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleTool, Content: CancelledToolResult,
			ToolCallID: call.ID, Name: call.Function.Name,
		})
	}
}

func (a *Agent) append(ctx context.Context, msg openai.ChatCompletionMessage) {
	a.messages = append(a.messages, msg)
	if a.history == nil {
		return
	}
	// A cancelled turn must still reach the store.
	if err := a.history.Append(context.WithoutCancel(ctx), msg); err != nil {
		a.logger.WarnContext(ctx, "failed to record message", logging.Err(err))
	}
}
