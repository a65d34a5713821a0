// Package mailin turns messages from an IMAP mailbox into notes. Each
// unseen message becomes one note and is then flagged as seen.
package mailin

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
}

// Message holds the full parsed content of a message.
type Message struct {
	Envelope    Envelope
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Attachment is a message part carried over to the note.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}
