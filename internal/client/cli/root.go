package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/membrocelestial/internal/buildinfo"
	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/config"
)

// NewRootCommand builds the celestial command tree. Without a subcommand
// it starts the interactive session.
func NewRootCommand() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:           "celestial",
		Short:         "Celestial - church administration client",
		Long:          "Terminal client for the multi-tenant church administration service: members, tithes and notices.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				return a.Run(ctx)
			})
		},
	}
	flags = config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSummaryCommand(flags))
	cmd.AddCommand(newMembersCommand(flags))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// withApp resolves configuration, builds an App on the command's streams
// and runs fn with it.
func withApp(cmd *cobra.Command, flags *config.Flags, fn func(context.Context, *App) error) error {
	cfg, err := flags.Resolve()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := NewApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// requireSession turns a non-authenticated session into an error for the
// one-shot commands.
func requireSession(a *App) error {
	if a.isLoggedIn() {
		return nil
	}
	return client.NewError(client.KindUnauthenticated, nil)
}

// userError keeps the raw error for errors.Is but prints as the user
// message.
type userError struct{ err error }

func (e userError) Error() string {
	if msg := client.UserMessage(e.err); msg != "" {
		return msg
	}
	return e.err.Error()
}

func (e userError) Unwrap() error { return e.err }

func newSummaryCommand(flags *config.Flags) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print monthly and annual tithe figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				if err := requireSession(a); err != nil {
					return userError{err}
				}
				var sargs []string
				if year != 0 {
					sargs = []string{fmt.Sprint(year)}
				}
				if err := a.Summary(ctx, sargs); err != nil {
					return userError{err}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "year to summarize (default: current year)")
	return cmd
}

func newMembersCommand(flags *config.Flags) *cobra.Command {
	var find string
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List the church members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *App) error {
				if err := requireSession(a); err != nil {
					return userError{err}
				}
				margs := []string{"list"}
				if find != "" {
					margs = []string{"find", find}
				}
				if err := a.Members(ctx, margs); err != nil {
					return userError{err}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&find, "find", "f", "", "only names containing this text")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
