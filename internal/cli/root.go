// Package cli implements the flowvault command line interface: project
// lifecycle, uploads and permission management against a store rooted at a
// local directory.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/flowvault/internal/store"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Root    string // store root directory
	User    string // acting user for permission checks
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flowvault CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flowvault",
		Short: "Filesystem-backed project and flow store",
		Long:  "Manage named projects and their versioned flow definitions in a durable directory-backed store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.User == "" {
				return fmt.Errorf("--user is required")
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Root, "root", defaultRoot(), "store root directory")
	cmd.PersistentFlags().StringVarP(&opts.User, "user", "u", defaultUser(), "acting user")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUploadCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewCommitCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewPermissionCommand(opts))
	cmd.AddCommand(NewPropertiesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes the store's structured logs to stderr so they
// never corrupt JSON output on stdout. Verbose lowers the level to debug.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func defaultRoot() string {
	if root := os.Getenv("FLOWVAULT_ROOT"); root != "" {
		return root
	}
	return "flowvault-data"
}

func defaultUser() string {
	return os.Getenv("FLOWVAULT_USER")
}

// openStore opens the store named by the global --root flag, mapping the
// failure to a command-level exit error.
func openStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	s, err := store.Open(opts.Root)
	if err != nil {
		_ = formatter.Error(ErrCodePersistence, err.Error(), nil)
		return nil, NewExitError(ExitCommandError, err.Error())
	}
	return s, nil
}
