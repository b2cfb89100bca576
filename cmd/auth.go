package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/google"
	"github.com/ykykj/assistant/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to your Google account",
		Long: `Run the Google OAuth flow and cache the token so later runs do not need
to log in again. Use --revoke to delete the cached token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if revoke {
				return runRevoke(google.NewFileTokenStore(cfg.Google.TokenPath), cmd.OutOrStdout())
			}

			logger, _ := logging.New(cfg.Log.Level, os.Stderr)
			authenticator, err := newAuthenticator(cfg, cmd.OutOrStdout(), nil, logger)
			if err != nil {
				return err
			}
			return runAuth(ctx, authenticator, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Delete the cached token")

	return cmd
}

func runAuth(ctx context.Context, authenticator *google.Authenticator, out io.Writer) error {
	client, err := authenticator.HTTPClient(ctx)
	if err != nil {
		return err
	}
	info, err := google.GetUserInfo(ctx, option.WithHTTPClient(client))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Authorized as %s <%s>.\n", info.DisplayName(), info.Email)
	return nil
}

func runRevoke(store google.TokenStore, out io.Writer) error {
	if !store.Exists() {
		fmt.Fprintln(out, "No cached token to revoke.")
		return nil
	}
	if err := store.Delete(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Cached token deleted. Run `assistant auth` to authorize again.")
	return nil
}
