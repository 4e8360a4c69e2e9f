package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <project>",
		Short: "Create a new project",
		Long: `Create a new, empty project in the store.

The acting user becomes the project's admin. Project names must start with
a letter and contain only letters, digits, underscore or dash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], description, cmd)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "project description (required)")

	return cmd
}

func runCreate(opts *RootOptions, name, description string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	p, err := s.Create(name, description, opts.User)
	if err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(viewProject(p))
	}
	fmt.Fprintf(formatter.Writer, "✓ Created project %s\n", p.Name)
	return nil
}
