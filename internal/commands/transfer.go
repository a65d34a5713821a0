package commands

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/nhle/smartnote/internal/transfer"
)

func addExport(topLevel *cobra.Command, g *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every note to a Markdown file.",
		Long: `Write every note outside the Recycle Bin to <dir> as Markdown with a
YAML front matter block. The folder is recorded in the front matter.
Attachments are not exported.`,
		Example: `
smartnote export ~/notes-export
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := homedir.Expand(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer e.Close()

			paths, err := transfer.ExportMarkdown(dir, e.notebook.Live(), e.notebook.Folders())
			if err != nil {
				return fmt.Errorf("exporting notes: %w", err)
			}
			e.log.Info("exported notes", "dir", dir, "count", len(paths))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s.\n", len(paths), dir)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command, g *GlobalOptions) {
	glob := ""

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Create notes from Markdown files.",
		Long: `Create a note from each Markdown file under <dir>. Front matter, when
present, supplies the title, tags, folder and pin state. Missing folders
are created.`,
		Example: `
smartnote import ~/notes-export
smartnote import ~/vault --glob "journal/**/*.md"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := homedir.Expand(args[0])
			if err != nil {
				return err
			}
			items, err := transfer.ImportMarkdown(root, glob)
			if err != nil {
				return fmt.Errorf("reading %s: %w", root, err)
			}

			e, err := openEnv(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer e.Close()

			notes, err := transfer.Save(cmd.Context(), e.notebook, items)
			if err != nil {
				return fmt.Errorf("saving imported notes (%d saved): %w", len(notes), err)
			}
			e.log.Info("imported notes", "root", root, "count", len(notes))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes.\n", len(notes))
			return nil
		},
	}

	cmd.Flags().StringVar(&glob, "glob", "", `Pattern of files to import (default "**/*.md").`)

	topLevel.AddCommand(cmd)
}
