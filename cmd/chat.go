package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ykykj/assistant/internal/agent"
	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/history"
	"github.com/ykykj/assistant/internal/llm"
	"github.com/ykykj/assistant/internal/logging"
)

const banner = `
__        __   _                            _
\ \      / /__| | ___ ___  _ __ ___   ___  | |
 \ \ /\ / / _ \ |/ __/ _ \| '_ ` + "`" + ` _ \ / _ \ | |
  \ V  V /  __/ | (_| (_) | | | | | |  __/ |_|
   \_/\_/ \___|_|\___\___/|_| |_| |_|\___| (_)
`

// Messages printed by the chat loop.
const (
	welcomeMessage = "Welcome to Personal Assistant Agent!"
	usageMessage   = "Type your query like 'what can you do?' or type 'exit' to quit."
	promptMessage  = "You: "
	workingMessage = "Working on it..."
	answerHeader   = "Assistant:"
	goodbyeMessage = "Goodbye! Have a great day!"
	exitingMessage = "Exiting..."
	errorHint      = "An error occurred. Please check your API key and balance, then retry."
)

// maxLineBytes bounds a single line of user input.
const maxLineBytes = 1 << 20

type chatFlags struct {
	provider  string
	model     string
	debug     bool
	noHistory bool
	resume    string
}

func newChatCmd() *cobra.Command {
	var flags chatFlags

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant",
		Long: `Start an interactive conversation with the assistant.

Each request is answered by the configured LLM, which may call Gmail, Calendar,
Docs, Drive, Maps, weather, web search and time tools on your behalf. Type
'exit' or 'quit' to leave, or press Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(flags)
		},
	}

	cmd.Flags().StringVar(&flags.provider, "provider", "", "LLM provider: deepseek or gemini (overrides LLM_PROVIDER)")
	cmd.Flags().StringVar(&flags.model, "model", "", "Model name for the selected provider")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Keep the conversation in memory only")
	cmd.Flags().StringVar(&flags.resume, "resume", "", "Continue a stored session by id")

	return cmd
}

// applyLLMFlags overrides the provider and model settings from flags.
func applyLLMFlags(cfg *config.Config, provider, model string) {
	if provider != "" {
		cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(provider))
	}
	if model == "" {
		return
	}
	if cfg.LLM.Provider == config.ProviderGemini {
		cfg.LLM.GeminiModel = model
	} else {
		cfg.LLM.Model = model
	}
}

func runChat(flags chatFlags) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyLLMFlags(cfg, flags.provider, flags.model)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	if flags.resume != "" && flags.noHistory {
		return errors.New("--resume cannot be combined with --no-history")
	}
	if flags.resume != "" {
		if _, err := uuid.Parse(flags.resume); err != nil {
			return fmt.Errorf("invalid session id %q: %w", flags.resume, err)
		}
	}

	a, err := newApp(ctx, cfg, appOptions{
		Debug:      flags.debug,
		LogOutput:  os.Stderr,
		AuthOutput: os.Stdout,
	})
	if err != nil {
		return err
	}
	defer a.close(ctx)

	historyPath := cfg.History.Path
	if flags.noHistory {
		historyPath = ""
	}
	store, err := history.Open(historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var restored []history.Message
	sessionID := flags.resume
	if sessionID != "" {
		if restored, err = store.Messages(ctx, sessionID); err != nil {
			return err
		}
	} else if sessionID, err = store.NewSession(ctx, cfg.Google.AuthEmail); err != nil {
		return err
	}
	logger := logging.WithSession(a.logger, sessionID)
	logger.Debug("session started",
		logging.UserHash(cfg.Google.AuthEmail),
		slog.Bool("resumed", flags.resume != ""))

	client, err := llm.New(ctx, cfg, a.provider.Metrics(), logger)
	if err != nil {
		return err
	}

	counter, err := llm.NewTokenCounter(cfg.Model())
	if err != nil {
		logger.Warn("Context trimming is disabled", logging.Err(err))
		counter = nil
	}

	assistant, err := agent.New(ctx, agent.Options{
		LLM:              client,
		Model:            cfg.Model(),
		Temperature:      float32(cfg.LLM.Temperature),
		Tools:            a.tools,
		SystemPrompt:     agent.SystemPrompt(userName(ctx, a)),
		Counter:          counter,
		MaxContextTokens: cfg.LLM.MaxContextTokens,
		Limiter:          rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.MaxBurst),
		CheckInterval:    cfg.RateLimit.CheckIntervalDuration(),
		History:          store.Recorder(sessionID),
		Metrics:          a.provider.Metrics(),
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	if len(restored) > 0 {
		previous := make([]openai.ChatCompletionMessage, 0, len(restored))
		for _, m := range restored {
			previous = append(previous, m.ChatMessage())
		}
		assistant.Restore(previous)
		fmt.Fprintf(os.Stdout, "Resumed session %s (%d messages).\n", sessionID, len(restored))
	}

	r := &repl{in: os.Stdin, out: os.Stdout, agent: assistant}
	return r.run(ctx)
}

// userName resolves the name used to address the user. An explicit setting
// wins over the Google profile.
func userName(ctx context.Context, a *app) string {
	if a.cfg.UserName != "" {
		return a.cfg.UserName
	}
	if a.authenticator == nil {
		return agent.DefaultUserName
	}
	info, err := a.serverContext.UserInfo(ctx)
	if err != nil {
		a.logger.Warn("Failed to fetch the Google profile", logging.Err(err))
		return agent.DefaultUserName
	}
	return info.DisplayName()
}

// runner answers one user message.
type runner interface {
	Run(ctx context.Context, input string) (string, error)
}

// repl reads queries line by line and prints the agent's answers. One query
// is answered completely before the next prompt.
type repl struct {
	in    io.Reader
	out   io.Writer
	agent runner
}

func (r *repl) printBanner() {
	fmt.Fprintf(r.out, "%s\n", banner)
	fmt.Fprintln(r.out, welcomeMessage)
	fmt.Fprintln(r.out, usageMessage)
}

// readLines feeds lines from r.in until EOF or done is closed.
func (r *repl) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

func (r *repl) run(ctx context.Context) error {
	r.printBanner()

	done := make(chan struct{})
	defer close(done)
	lines := r.readLines(done)

	for {
		fmt.Fprint(r.out, "\n"+promptMessage)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, "\n"+exitingMessage)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out, "\n"+goodbyeMessage)
				return nil
			}
			line = l
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		switch strings.ToLower(query) {
		case "exit", "quit":
			fmt.Fprintln(r.out, "\n"+goodbyeMessage)
			return nil
		}

		fmt.Fprintln(r.out, workingMessage)
		answer, err := r.agent.Run(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(r.out, "\n"+exitingMessage)
				return nil
			}
			fmt.Fprintf(r.out, "Error: %v\n", err)
			fmt.Fprintln(r.out, errorHint)
			continue
		}
		if strings.TrimSpace(answer) != "" {
			fmt.Fprintf(r.out, "\n%s\n%s\n", answerHeader, answer)
		}
	}
}
