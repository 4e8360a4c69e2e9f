package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "upload <project> <source-dir>",
		Short: "Upload flow definitions to a project",
		Long: `Upload a directory of flow definitions, installing a new project version.

The sources are copied into a timestamped version directory and parsed.
If any flow has structural errors the upload is rejected and every error
is reported; --force installs the version anyway.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(rootOpts, args[0], args[1], force, cmd)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "install even when flows have errors")

	return cmd
}

func runUpload(opts *RootOptions, name, sourceDir string, force bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	formatter.VerboseLog("Uploading %s to project %s", sourceDir, name)
	p, err := s.Upload(name, opts.User, sourceDir, force)
	if err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(viewProject(p))
	}
	fmt.Fprintf(formatter.Writer, "✓ Installed version %s with %d flow(s)\n", p.Source, p.Flows.Len())
	return nil
}
