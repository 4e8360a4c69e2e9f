package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit <project>",
		Short: "Rewrite a project's metadata file from its current state",
		Long: `Force a rewrite of the project's metadata file.

Normal operations persist as they go; commit exists to repair a metadata
file that was restored from its backup or edited out-of-band.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCommit(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	if err := s.Commit(name); err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"committed": name})
	}
	fmt.Fprintf(formatter.Writer, "✓ Committed project %s\n", name)
	return nil
}
