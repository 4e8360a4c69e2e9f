package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects readable by the acting user",
		Long: `List every project the acting user holds READ on, sorted by name.

With --names, print every registered project name without filtering by
access; names themselves are not treated as secret.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, namesOnly, cmd)
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "names", false, "print all project names, unfiltered")

	return cmd
}

func runList(opts *RootOptions, namesOnly bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	if namesOnly {
		names := s.ProjectNames()
		if formatter.Format == "json" {
			return formatter.Success(names)
		}
		for _, name := range names {
			fmt.Fprintln(formatter.Writer, name)
		}
		return nil
	}

	projects := s.GetProjects(opts.User)
	if formatter.Format == "json" {
		views := make([]ProjectView, 0, len(projects))
		for _, p := range projects {
			views = append(views, viewProject(p))
		}
		return formatter.Success(views)
	}

	if len(projects) == 0 {
		fmt.Fprintln(formatter.Writer, "no projects")
		return nil
	}
	for _, p := range projects {
		printProjectText(formatter.Writer, viewProject(p))
	}
	return nil
}
