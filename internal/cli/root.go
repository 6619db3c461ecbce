package cli

import (
	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	URL        string
	Token      string
	ConfigPath string // defaults to ~/.qna/config.json
}

// NewRootCommand creates the root command for the qna CLI. Run without a
// subcommand it starts the server.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qna",
		Short: "Questions and answers service",
		Long: `Questions and answers service.

Without a subcommand qna starts the HTTP server, configured from QNA_*
environment variables (and an optional .env file). The other commands talk
to a running server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.URL, "url", "", "server URL (default from saved config, then "+defaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token (default from saved config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "client config file (default ~/.qna/config.json)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAskCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewAnswerCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
