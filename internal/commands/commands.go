// Package commands builds the smartnote command line.
package commands

import (
	"github.com/spf13/cobra"
)

// New returns the root command. Without a subcommand it opens the
// terminal app.
func New() *cobra.Command {
	g := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "smartnote",
		Short: "AI-assisted notes in the terminal.",
		Example: `
smartnote
smartnote --config ./dev.yaml --verbose
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd.Context(), g)
		},
	}
	AddGlobalArgs(cmd, g)

	AddCommands(cmd, g)
	return cmd
}

// AddCommands attaches every subcommand to topLevel.
func AddCommands(topLevel *cobra.Command, g *GlobalOptions) {
	addList(topLevel, g)
	addExport(topLevel, g)
	addImport(topLevel, g)
	addMailin(topLevel, g)
	addBackup(topLevel, g)
	addVersion(topLevel)
}
