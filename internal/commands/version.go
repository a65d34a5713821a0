package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/nhle/smartnote/internal/commands.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func addVersion(topLevel *cobra.Command) {
	short := false
	asJSON := false

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the smartnote version.",
		Example: `
smartnote version
smartnote version --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case short:
				_, _ = fmt.Fprintln(out, Version)
			case asJSON:
				return json.NewEncoder(out).Encode(map[string]string{
					"version": Version,
					"commit":  Commit,
					"date":    Date,
				})
			default:
				_, _ = fmt.Fprintf(out, "smartnote %s (commit %s, built %s)\n", Version, Commit, Date)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print just the version number.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON.")

	topLevel.AddCommand(cmd)
}
