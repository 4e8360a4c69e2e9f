package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPropertiesCommand creates the properties command.
func NewPropertiesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties <project> <path>",
		Short: "Resolve a configuration file from a project's installed sources",
		Long: `Resolve and print a configuration file shipped inside the project's
currently installed version. Requires READ.

The path is relative to the uploaded source tree. Flat key=value files and
YAML files (flattened to dotted keys) are supported.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProperties(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runProperties(opts *RootOptions, name, rel string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	p, err := s.Properties(name, opts.User, rel)
	if err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		values := make(map[string]string, p.Len())
		for _, key := range p.Keys() {
			values[key] = p.GetDefault(key, "")
		}
		return formatter.Success(values)
	}
	for _, key := range p.Keys() {
		fmt.Fprintf(formatter.Writer, "%s=%s\n", key, p.GetDefault(key, ""))
	}
	return nil
}
