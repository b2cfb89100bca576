package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/history"
	"github.com/ykykj/assistant/internal/logging"
)

// previewLength bounds the first-message preview in session listings.
const previewLength = 60

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored conversations",
		Long: `List the most recent conversations stored in the history database
(ASSISTANT_HISTORY_PATH). Use "history show <id>" to print one of them, or
"chat --resume <id>" to continue it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(func(store *history.Store) error {
				sessions, err := store.Sessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printSessions(cmd.OutOrStdout(), sessions)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultSessionLimit, "Maximum number of sessions to list")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the transcript of a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(func(store *history.Store) error {
				return printTranscript(cmd.Context(), cmd.OutOrStdout(), store, args[0])
			})
		},
	})

	return cmd
}

func withHistoryStore(fn func(*history.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history is disabled: ASSISTANT_HISTORY_PATH is empty")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func printSessions(w io.Writer, sessions []history.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No stored conversations.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMESSAGES\tFIRST MESSAGE")
	for _, s := range sessions {
		preview := strings.Join(strings.Fields(s.Preview), " ")
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.MessageCount,
			logging.Truncate(preview, previewLength))
	}
	_ = tw.Flush()
}

func printTranscript(ctx context.Context, w io.Writer, store *history.Store, sessionID string) error {
	messages, err := store.Messages(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, m := range messages {
		switch {
		case m.Role == openai.ChatMessageRoleSystem:
			continue
		case len(m.ToolCalls) > 0:
			for _, call := range m.ToolCalls {
				fmt.Fprintf(w, "[tool call] %s(%s)\n", call.Function.Name, call.Function.Arguments)
			}
			if m.Content != "" {
				fmt.Fprintf(w, "Assistant: %s\n", m.Content)
			}
		case m.Role == openai.ChatMessageRoleTool:
			fmt.Fprintf(w, "[tool result] %s\n", logging.Truncate(m.Content, 200))
		case m.Role == openai.ChatMessageRoleUser:
			fmt.Fprintf(w, "\nYou: %s\n", m.Content)
		default:
			fmt.Fprintf(w, "Assistant: %s\n", m.Content)
		}
	}
	return nil
}
