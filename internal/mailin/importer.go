package mailin

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nhle/smartnote/internal/model"
	"github.com/nhle/smartnote/internal/notebook"
)

// MaxAttachmentSize bounds attachments copied into notes. Larger parts are
// skipped and mentioned in the note body instead.
const MaxAttachmentSize = 5 << 20

// Mailbox is the part of Client used by Import.
type Mailbox interface {
	FetchUnseen(ctx context.Context, limit int) ([]Message, error)
	MarkSeen(ctx context.Context, uids []uint32) error
}

// NoteSaver stores drafts as notes. *notebook.Notebook satisfies it.
type NoteSaver interface {
	SaveNote(ctx context.Context, id string, d notebook.NoteDraft) model.Note
}

// Import saves every unseen message as a note and marks the messages
// seen. It returns the created notes.
func Import(ctx context.Context, mb Mailbox, nb NoteSaver, limit int, newID notebook.IDFunc, log *slog.Logger) ([]model.Note, error) {
	messages, err := mb.FetchUnseen(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching mail: %w", err)
	}

	notes := make([]model.Note, 0, len(messages))
	uids := make([]uint32, 0, len(messages))
	for _, msg := range messages {
		n := nb.SaveNote(ctx, "", ToDraft(msg, newID))
		log.Info("imported mail", "uid", msg.Envelope.UID, "note", n.ID, "subject", msg.Envelope.Subject)
		notes = append(notes, n)
		uids = append(uids, msg.Envelope.UID)
	}

	if err := mb.MarkSeen(ctx, uids); err != nil {
		return notes, err
	}
	return notes, nil
}

// ToDraft converts a message into a note draft. The subject becomes the
// title and the plain text body, or the HTML body stripped of tags, the
// content.
func ToDraft(msg Message, newID notebook.IDFunc) notebook.NoteDraft {
	body := msg.TextBody
	if strings.TrimSpace(body) == "" && msg.HTMLBody != "" {
		body = stripHTML(msg.HTMLBody)
	}
	body = strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))

	var header []string
	if msg.Envelope.From != "" {
		header = append(header, "From: "+msg.Envelope.From)
	}
	if !msg.Envelope.Date.IsZero() {
		header = append(header, "Date: "+msg.Envelope.Date.Format("2006-01-02 15:04"))
	}

	d := notebook.NoteDraft{Title: strings.TrimSpace(msg.Envelope.Subject)}
	var skipped []string
	for _, a := range msg.Attachments {
		if len(a.Data) > MaxAttachmentSize {
			skipped = append(skipped, fmt.Sprintf("%s (%s)", a.Filename, humanize.Bytes(uint64(len(a.Data)))))
			continue
		}
		d.Attachments = append(d.Attachments, model.Attachment{
			ID:       newID(),
			Kind:     model.KindForMIME(a.MIMEType),
			MimeType: a.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(a.Data),
			FileName: a.Filename,
		})
	}

	var sb strings.Builder
	if len(header) > 0 {
		sb.WriteString("> " + strings.Join(header, "  \n> ") + "\n\n")
	}
	sb.WriteString(body)
	if len(skipped) > 0 {
		sb.WriteString("\n\nSkipped attachments: " + strings.Join(skipped, ", "))
	}
	d.Content = sb.String()
	return d
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
