package model

import "time"

// TocItem groups notes under a topic in the smart table of contents.
type TocItem struct {
	Topic       string   `json:"topic"`
	Description string   `json:"description"`
	NoteIDs     []string `json:"noteIds"`
}

// QuizQuestion is a single multiple choice question.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// Flashcard is a front/back study card.
type Flashcard struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	Mastered bool   `json:"mastered"`
}

// MindMapNode is a node in a generated concept tree.
type MindMapNode struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Children []MindMapNode `json:"children,omitempty"`
}

// Count returns the number of nodes in the tree rooted at n.
func (n MindMapNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

// ChatMessage is one turn of a note-grounded conversation.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Content   string
	Timestamp time.Time
}

// SummaryType selects the length and shape of a summary.
type SummaryType string

const (
	SummaryOneSentence  SummaryType = "1-Sentence"
	SummaryShort        SummaryType = "Short Paragraph"
	SummaryDetailed     SummaryType = "Detailed"
	SummaryActionPoints SummaryType = "Action Points"
)

// SummaryTypes lists the summary variants in menu order.
var SummaryTypes = []SummaryType{SummaryOneSentence, SummaryShort, SummaryDetailed, SummaryActionPoints}

// RewriteMode selects the tone of a rewrite.
type RewriteMode string

const (
	RewriteFormal       RewriteMode = "Formal"
	RewriteFriendly     RewriteMode = "Friendly"
	RewriteAcademic     RewriteMode = "Academic"
	RewriteProfessional RewriteMode = "Professional"
	RewriteSEO          RewriteMode = "SEO Optimized"
	RewriteConcise      RewriteMode = "Concise"
	RewriteExpanded     RewriteMode = "Expanded"
)

// RewriteModes lists the rewrite tones in menu order.
var RewriteModes = []RewriteMode{
	RewriteFormal, RewriteFriendly, RewriteAcademic, RewriteProfessional,
	RewriteSEO, RewriteConcise, RewriteExpanded,
}

// TranslateLanguages lists the translation targets offered in the editor.
var TranslateLanguages = []string{"Spanish", "French", "German", "Chinese", "Japanese", "Arabic"}

// MediaKind identifies what an uploaded media payload is.
type MediaKind string

const (
	MediaAudio   MediaKind = "audio"
	MediaImage   MediaKind = "image"
	MediaPDF     MediaKind = "pdf"
	MediaDrawing MediaKind = "drawing"
)

// MediaKindForMIME maps a MIME type onto the media kind sent for analysis.
// Unsupported types map to the empty kind.
func MediaKindForMIME(mimeType string) MediaKind {
	switch KindForMIME(mimeType) {
	case AttachmentImage:
		return MediaImage
	case AttachmentAudio:
		return MediaAudio
	}
	if mimeType == "application/pdf" {
		return MediaPDF
	}
	return ""
}
