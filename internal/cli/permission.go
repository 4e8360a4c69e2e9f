package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flowvault/internal/access"
)

// NewPermissionCommand creates the permission command.
func NewPermissionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission <project> <user> <capability>...",
		Short: "Grant or revoke a user's capabilities on a project",
		Long: `Set a user's capabilities on a project. Requires ADMIN.

Capabilities are READ, WRITE and ADMIN; the given set replaces whatever the
user held before. Passing the single capability NONE removes the user from
the project's permission table.`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermission(rootOpts, args[0], args[1], args[2:], cmd)
		},
	}

	return cmd
}

func runPermission(opts *RootOptions, name, user string, capNames []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cap, err := parseCapabilities(capNames)
	if err != nil {
		_ = formatter.Error(ErrCodeValidation, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}

	if err := s.UpdatePermission(name, opts.User, user, cap); err != nil {
		return storeError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"project":      name,
			"user":         user,
			"capabilities": cap.Names(),
		})
	}
	if cap == access.None {
		fmt.Fprintf(formatter.Writer, "✓ Removed %s from project %s\n", user, name)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ Granted %s %s on project %s\n", user, cap, name)
	}
	return nil
}

func parseCapabilities(names []string) (access.Capability, error) {
	if len(names) == 1 && strings.EqualFold(names[0], "NONE") {
		return access.None, nil
	}
	return access.ParseAll(names)
}
