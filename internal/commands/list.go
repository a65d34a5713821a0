package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
)

var bold = color.New(color.Bold).SprintFunc()

// ListOptions select which notes list prints.
type ListOptions struct {
	Folder  string
	Deleted bool
	JSON    bool
}

// noteRow is one line of list output.
type noteRow struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Folder  string    `json:"folder,omitempty"`
	Tags    []string  `json:"tags"`
	Pinned  bool      `json:"pinned"`
	Deleted bool      `json:"deleted"`
	Updated time.Time `json:"updated"`
}

func addList(topLevel *cobra.Command, g *GlobalOptions) {
	lo := &ListOptions{}

	cmd := &cobra.Command{
		Use:     "list [query]",
		Aliases: []string{"ls"},
		Short:   "List notes, pinned first.",
		Example: `
smartnote list
smartnote list groceries
smartnote list --folder work
smartnote list --deleted --json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer e.Close()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			rows, err := listNotes(e.notebook, lo, query)
			if err != nil {
				return err
			}

			if lo.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printNotes(cmd.OutOrStdout(), rows, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&lo.Folder, "folder", "", "Only notes in the named folder.")
	cmd.Flags().BoolVar(&lo.Deleted, "deleted", false, "List the Recycle Bin instead.")
	cmd.Flags().BoolVar(&lo.JSON, "json", false, "Output as JSON.")

	topLevel.AddCommand(cmd)
}

func listNotes(nb *notebook.Notebook, lo *ListOptions, query string) ([]noteRow, error) {
	if lo.Folder != "" {
		id, ok := folderByName(nb.Folders(), lo.Folder)
		if !ok {
			return nil, fmt.Errorf("no folder named %q", lo.Folder)
		}
		if err := nb.SetFolderFilter(id); err != nil {
			return nil, err
		}
	}

	notes := nb.Visible(query)
	if lo.Deleted {
		notes = notebook.SearchNotes(nb.Deleted(), query)
	}
	pinned, others := notebook.SplitPinned(notes)
	notes = append(pinned, others...)

	rows := make([]noteRow, 0, len(notes))
	for _, n := range notes {
		if lo.Deleted && lo.Folder != "" && n.FolderID != nb.FolderFilter() {
			continue
		}
		row := noteRow{
			ID:      n.ID,
			Title:   n.Title,
			Tags:    n.Tags,
			Pinned:  n.IsPinned,
			Deleted: n.IsDeleted,
			Updated: n.UpdatedAt,
		}
		if f, ok := nb.Folder(n.FolderID); ok {
			row.Folder = f.Name
		}
		if strings.TrimSpace(row.Title) == "" {
			row.Title = "Untitled"
		}
		if row.Tags == nil {
			row.Tags = []string{}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func folderByName(folders []model.Folder, name string) (string, bool) {
	for _, f := range folders {
		if strings.EqualFold(f.Name, name) {
			return f.ID, true
		}
	}
	return "", false
}

func printNotes(w io.Writer, rows []noteRow, now time.Time) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "No notes.")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold("ID"), bold("Title"), bold("Folder"), bold("Tags"), bold("Updated"))
	for _, r := range rows {
		title := r.Title
		if r.Pinned {
			title = "★ " + title
		}
		tags := make([]string, len(r.Tags))
		for i, t := range r.Tags {
			tags[i] = "#" + t
		}
		tbl.AddRow(r.ID, title, r.Folder, strings.Join(tags, " "), humanize.RelTime(r.Updated, now, "ago", "from now"))
	}
	_, _ = fmt.Fprintln(w, tbl)
}
