// Package cli implements the speakerdesk command line: the portal server and
// a terminal client for the same authentication flow.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the speakerdesk command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "speakerdesk",
		Short: "Events admin portal",
		Long: `speakerdesk serves the events admin portal and lets you drive its
authentication flow from a terminal.

Examples:
  speakerdesk serve
  speakerdesk auth login --email admin@example.com --password secret
  speakerdesk auth whoami`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newAuthCommand())
	return root
}

// ExecuteContext runs the command line with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
