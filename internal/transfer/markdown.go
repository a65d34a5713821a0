// Package transfer moves notes in and out of the application: Markdown
// files with YAML front matter, and JSON snapshots uploaded to S3.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
)

// DefaultPattern matches Markdown files at any depth.
const DefaultPattern = "**/*.md"

var errNoClosingDelimiter = errors.New("front matter started but no closing delimiter found")

// FrontMatter is the YAML header of an exported note.
type FrontMatter struct {
	ID      string    `yaml:"id,omitempty"`
	Title   string    `yaml:"title"`
	Tags    []string  `yaml:"tags,omitempty"`
	Folder  string    `yaml:"folder,omitempty"`
	Pinned  bool      `yaml:"pinned,omitempty"`
	Created time.Time `yaml:"created,omitempty"`
	Updated time.Time `yaml:"updated,omitempty"`
}

// Document is a parsed Markdown file.
type Document struct {
	Meta FrontMatter
	Body string
}

// Render writes n as Markdown with front matter. folderName is the
// display name of the note's folder, if any.
func Render(n model.Note, folderName string) ([]byte, error) {
	meta := FrontMatter{
		ID:      n.ID,
		Title:   n.Title,
		Tags:    n.Tags,
		Folder:  folderName,
		Pinned:  n.IsPinned,
		Created: n.CreatedAt.UTC(),
		Updated: n.UpdatedAt.UTC(),
	}
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	if !strings.HasSuffix(n.Content, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Parse splits data into front matter and body. Files without front
// matter are all body.
func Parse(data []byte) (Document, error) {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return Document{Body: string(data)}, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) == 1 {
		return Document{}, errNoClosingDelimiter
	}

	var doc Document
	if err := yaml.Unmarshal(parts[0], &doc.Meta); err != nil {
		return Document{}, fmt.Errorf("parsing front matter: %w", err)
	}

	body := strings.TrimPrefix(string(parts[1]), "\r")
	body = strings.TrimPrefix(body, "\n")
	doc.Body = strings.TrimSuffix(body, "\n")
	return doc, nil
}

var slugUnsafe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug turns a title into a file name stem.
func Slug(title string) string {
	s := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if r := []rune(s); len(r) > 60 {
		s = strings.TrimRight(string(r[:60]), "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// ExportMarkdown writes one file per live note into dir and returns the
// paths written. Names collide-proof by appending a counter.
func ExportMarkdown(dir string, notes []model.Note, folders []model.Folder) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	folderNames := make(map[string]string, len(folders))
	for _, f := range folders {
		folderNames[f.ID] = f.Name
	}

	used := make(map[string]bool)
	var written []string
	for _, n := range notes {
		if n.IsDeleted {
			continue
		}

		base := Slug(n.Title)
		stem := base
		for c := 2; used[stem]; c++ {
			stem = fmt.Sprintf("%s-%d", base, c)
		}
		used[stem] = true

		data, err := Render(n, folderNames[n.FolderID])
		if err != nil {
			return written, fmt.Errorf("rendering note %s: %w", n.ID, err)
		}
		p := filepath.Join(dir, stem+".md")
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// Imported is a Markdown file read back as a note draft. Created and
// Updated are zero when the front matter does not record them.
type Imported struct {
	Path    string
	Draft   notebook.NoteDraft
	Pinned  bool
	Folder  string
	Created time.Time
	Updated time.Time
}

// ImportMarkdown reads every file under root matching pattern, which is a
// doublestar glob relative to root. A file without a title in its front
// matter takes the file name.
func ImportMarkdown(root, pattern string) ([]Imported, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	fsys := os.DirFS(root)

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}

	out := make([]Imported, 0, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return out, fmt.Errorf("reading %s: %w", m, err)
		}
		doc, err := Parse(data)
		if err != nil {
			return out, fmt.Errorf("parsing %s: %w", m, err)
		}

		title := doc.Meta.Title
		if title == "" {
			title = strings.TrimSuffix(path.Base(m), path.Ext(m))
		}
		out = append(out, Imported{
			Path:    filepath.Join(root, filepath.FromSlash(m)),
			Draft:   notebook.NoteDraft{Title: title, Content: doc.Body, Tags: doc.Meta.Tags},
			Pinned:  doc.Meta.Pinned,
			Folder:  doc.Meta.Folder,
			Created: doc.Meta.Created,
			Updated: doc.Meta.Updated,
		})
	}
	return out, nil
}

// Library is the part of *notebook.Notebook that imports are saved into.
type Library interface {
	Folders() []model.Folder
	CreateFolder(ctx context.Context, name string) model.Folder
	SaveNote(ctx context.Context, id string, d notebook.NoteDraft) model.Note
	UpdateNote(ctx context.Context, id string, p notebook.NotePatch) error
	TogglePin(ctx context.Context, id string) error
	StampNote(ctx context.Context, id string, created, updated time.Time) error
	Note(id string) (model.Note, bool)
}

// Save stores imported files as new notes. A named folder is matched
// case-insensitively and created when missing. Recorded timestamps are
// kept.
func Save(ctx context.Context, lib Library, items []Imported) ([]model.Note, error) {
	folderIDs := make(map[string]string)
	for _, f := range lib.Folders() {
		folderIDs[strings.ToLower(f.Name)] = f.ID
	}

	notes := make([]model.Note, 0, len(items))
	for _, im := range items {
		n := lib.SaveNote(ctx, "", im.Draft)

		if name := strings.TrimSpace(im.Folder); name != "" {
			id, ok := folderIDs[strings.ToLower(name)]
			if !ok {
				id = lib.CreateFolder(ctx, name).ID
				folderIDs[strings.ToLower(name)] = id
			}
			if err := lib.UpdateNote(ctx, n.ID, notebook.NotePatch{FolderID: &id}); err != nil {
				return notes, fmt.Errorf("filing %s: %w", im.Path, err)
			}
			n.FolderID = id
		}
		if im.Pinned {
			if err := lib.TogglePin(ctx, n.ID); err != nil {
				return notes, fmt.Errorf("pinning %s: %w", im.Path, err)
			}
			n.IsPinned = true
		}
		if !im.Created.IsZero() || !im.Updated.IsZero() {
			if err := lib.StampNote(ctx, n.ID, im.Created, im.Updated); err != nil {
				return notes, fmt.Errorf("dating %s: %w", im.Path, err)
			}
			if stamped, ok := lib.Note(n.ID); ok {
				n = stamped
			}
		}
		notes = append(notes, n)
	}
	return notes, nil
}
