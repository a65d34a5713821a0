package ai

import (
	"fmt"
	"strings"

	"github.com/nhle/smartnote/internal/model"
)

// Context budgets, in characters (runes).
const (
	tocNoteBudget      = 500
	studyBudget        = 5000
	quizContextBudget  = 20000
	titleBudget        = 1000
	tagBudget          = 500
	insightNoteBudget  = 200
	insightNoteCount   = 5
	chatContextBudget  = 20000
	chatHistoryEntries = 6
)

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	tocSchema = Array(Object(map[string]*Schema{
		"topic":       String(""),
		"description": String(""),
		"noteIds":     Array(String("")),
	}, "topic", "description", "noteIds"))

	quizSchema = Array(Object(map[string]*Schema{
		"question":           String(""),
		"options":            Array(String("")),
		"correctAnswerIndex": {Type: TypeInteger},
		"explanation":        String(""),
	}, "question", "options", "correctAnswerIndex", "explanation"))

	flashcardSchema = Array(Object(map[string]*Schema{
		"front": String("The concept or question"),
		"back":  String("The definition or answer"),
	}, "front", "back"))

	mindMapSchema = Object(map[string]*Schema{
		"id":    String(""),
		"label": String(""),
		"children": Array(Object(map[string]*Schema{
			"id":    String(""),
			"label": String(""),
			"children": Array(Object(map[string]*Schema{
				"id":    String(""),
				"label": String(""),
			}, "id", "label")),
		}, "id", "label")),
	}, "id", "label", "children")

	taskSchema = Array(Object(map[string]*Schema{
		"content":  String("The task description"),
		"dueDate":  {Type: TypeNumber, Description: "Timestamp in ms, or null if not found", Nullable: true},
		"priority": {Type: TypeString, Enum: []string{"high", "medium", "low"}},
	}, "content"))

	tagSchema = Array(String(""))
)

func tocRequest(notes []model.Note) Request {
	blocks := make([]string, len(notes))
	for i, n := range notes {
		blocks[i] = fmt.Sprintf("ID: %s\nTitle: %s\nContent: %s...", n.ID, n.Title, truncate(n.Content, tocNoteBudget))
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following notes and organize them into a logical Table of Contents (ToC).\n")
	sb.WriteString("Group related notes into Topics.\n")
	sb.WriteString("Return the result as a JSON array where each item represents a Topic.\n\n")
	sb.WriteString("Notes Data:\n")
	sb.WriteString(strings.Join(blocks, "\n\n---\n\n"))

	return Request{Prompt: sb.String(), Schema: tocSchema, SchemaName: "table_of_contents"}
}

func quizRequest(notes []model.Note) Request {
	blocks := make([]string, len(notes))
	for i, n := range notes {
		blocks[i] = n.Title + ": " + n.Content
	}

	var sb strings.Builder
	sb.WriteString("Create a challenging multiple-choice quiz based on the content of these notes.\n")
	sb.WriteString("Generate 5 questions.\n\n")
	sb.WriteString("Content:\n")
	sb.WriteString(truncate(strings.Join(blocks, "\n\n"), quizContextBudget))

	return Request{Prompt: sb.String(), Schema: quizSchema, SchemaName: "quiz"}
}

func flashcardRequest(content string) Request {
	return Request{
		Prompt: "Create 5 study flashcards from this content. Front is the concept/question, " +
			"Back is the definition/answer. Return JSON. Content: " + truncate(content, studyBudget),
		Schema:     flashcardSchema,
		SchemaName: "flashcards",
	}
}

func mindMapRequest(content string) Request {
	return Request{
		Prompt: "Create a hierarchical mind map structure from this text. The root node should be " +
			"the main topic. Return JSON. Content: " + truncate(content, studyBudget),
		Schema:     mindMapSchema,
		SchemaName: "mind_map",
	}
}

func translateRequest(content, language string) Request {
	return Request{Prompt: fmt.Sprintf(
		"Translate the following text into %s. Maintain formatting and tone. Text: %s", language, content)}
}

func titleRequest(content string) Request {
	return Request{Prompt: "Generate a short, concise, and descriptive title (max 6 words) for this note " +
		"content. Do not use quotes. Content: " + truncate(content, titleBudget)}
}

func insightRequest(notes []model.Note) Request {
	if len(notes) > insightNoteCount {
		notes = notes[:insightNoteCount]
	}
	fragments := make([]string, len(notes))
	for i, n := range notes {
		fragments[i] = truncate(n.Content, insightNoteBudget)
	}
	return Request{Prompt: "Based on these user notes fragments, generate a single, short, motivating " +
		"insight or a connection between ideas. Max 1 sentence. Notes: " + strings.Join(fragments, "\n")}
}

func formatRequest(content string) Request {
	return Request{Prompt: "Format the following text using clean Markdown. Use headers, bullets, and " +
		"bold text. Fix grammar. Content: " + content}
}

var mediaPrompts = map[model.MediaKind]string{
	model.MediaAudio:   "Transcribe this audio. Identify speakers. Provide a summary and action items. Markdown format.",
	model.MediaImage:   "Extract text (OCR) and summarize the image content. Markdown format.",
	model.MediaDrawing: "Analyze this handwriting/diagram. Convert text to digital text and describe diagrams. Markdown format.",
	model.MediaPDF:     "Analyze document. 1. Summary 2. Key Points 3. Study Guide. Markdown format.",
}

func mediaRequest(kind model.MediaKind, data []byte, mimeType string) Request {
	return Request{
		Prompt: mediaPrompts[kind],
		Parts:  []InlinePart{{MimeType: mimeType, Data: data}},
	}
}

func chatRequest(query string, notes []model.Note, history []model.ChatMessage) Request {
	blocks := make([]string, len(notes))
	for i, n := range notes {
		blocks[i] = fmt.Sprintf("[%s]: %s", n.Title, n.Content)
	}

	var sb strings.Builder
	sb.WriteString("You are an intelligent assistant for the user's personal notes.\n")
	sb.WriteString("Answer the user's question based ONLY on the provided note context.\n")
	sb.WriteString("If the answer is not in the notes, use your general knowledge but mention that it's not in the notes.\n\n")
	sb.WriteString("User Notes Context:\n")
	sb.WriteString(truncate(strings.Join(blocks, "\n\n"), chatContextBudget))
	sb.WriteString("\n\n")

	if len(history) > chatHistoryEntries {
		history = history[len(history)-chatHistoryEntries:]
	}
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, m := range history {
			role := "User"
			if m.Role == model.ChatRoleAI {
				role = "Assistant"
			}
			sb.WriteString(role + ": " + m.Content + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("User Question: " + query)
	return Request{Prompt: sb.String()}
}

var summaryPrompts = map[model.SummaryType]string{
	model.SummaryOneSentence:  "Summarize this text in exactly one compelling sentence.",
	model.SummaryShort:        "Provide a short, concise summary of this text.",
	model.SummaryDetailed:     "Provide a detailed summary of this text, capturing all nuances.",
	model.SummaryActionPoints: "Extract a bulleted list of actionable points, tasks, and key takeaways.",
}

func summaryRequest(content string, kind model.SummaryType) Request {
	instruction, ok := summaryPrompts[kind]
	if !ok {
		instruction = summaryPrompts[model.SummaryShort]
	}
	return Request{Prompt: instruction + "\n\nText:\n" + content}
}

func rewriteRequest(content string, mode model.RewriteMode) Request {
	return Request{Prompt: fmt.Sprintf(
		"Rewrite the following text to be %s. Keep the original meaning but change the tone and style.\n\nText:\n%s",
		mode, content)}
}

func taskRequest(content string) Request {
	var sb strings.Builder
	sb.WriteString("Extract all tasks, to-dos, and action items from this text.\n")
	sb.WriteString("If a deadline or date is mentioned, try to convert it to a timestamp (milliseconds).\n")
	sb.WriteString("Assign priority (high, medium, low) based on urgency.\n")
	sb.WriteString("Return a JSON array.\n\n")
	sb.WriteString("Text: " + content)
	return Request{Prompt: sb.String(), Schema: taskSchema, SchemaName: "tasks"}
}

func tagRequest(content string) Request {
	return Request{
		Prompt:     "Generate 3-5 relevant, single-word tags for this content. Return JSON string array. Content: " + truncate(content, tagBudget),
		Schema:     tagSchema,
		SchemaName: "tags",
	}
}
