package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <project>",
		Short: "Show a single project",
		Long: `Show one project's metadata, permission table and flow ids.

Requires READ on the project. A project the acting user cannot read is
reported as denied, not as missing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	p, err := s.GetProject(name, opts.User)
	if err != nil {
		return storeError(formatter, err)
	}

	view := viewProject(p)
	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	printProjectText(formatter.Writer, view)
	return nil
}
