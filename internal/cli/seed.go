package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabot-ai/qna/internal/store/seed"
	"github.com/alphabot-ai/qna/internal/store/sqlite"
)

// NewSeedCommand creates the seed command. It writes straight into a sqlite
// database rather than going through the API.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load questions from a YAML or JSON file into a sqlite database",
		Long: `Load questions from a YAML or JSON file into a sqlite database.

Questions whose id is already taken are skipped, so seeding is idempotent.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sqlite.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", dbPath, err)
			}
			defer st.Close()

			added, err := seed.LoadFile(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d question(s) into %s\n", added, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "qna.db", "sqlite database path")
	return cmd
}
