package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/figmachat/figmachat-backend/internal/chats/domain"
)

// MaxContextChars caps the serialized Figma context embedded in a prompt.
const MaxContextChars = 150000

const noContextNotice = "No Figma context available. Answer generally from experience with Figma."

// RenderTranscript flattens history into one "ROLE: content" line per message.
func RenderTranscript(history []domain.Message) string {
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := "USER"
		if m.Role == domain.RoleAssistant {
			label = "ASSISTANT"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// ContextBlock serializes the project context for prompting, truncated to
// MaxContextChars characters. A missing context yields the notice instead.
func ContextBlock(projectContext json.RawMessage) string {
	trimmed := bytes.TrimSpace(projectContext)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return noContextNotice
	}

	var compact bytes.Buffer
	text := string(trimmed)
	if err := json.Compact(&compact, trimmed); err == nil {
		text = compact.String()
	}
	return "FIGMA CONTEXT (JSON):\n" + truncateChars(text, MaxContextChars)
}

// BuildPrompt assembles the system, context, history and query sections.
// history is the transcript as it was before the current message was stored.
func BuildPrompt(projectName string, projectContext json.RawMessage, history []domain.Message, content string) string {
	if projectName == "" {
		projectName = "Unknown"
	}
	return fmt.Sprintf(`You are an AI assistant specialised in Figma for the project %q.
%s

GUIDELINES:
- Ground answers in the context when it is available and cite the relevant details.
- Be concise and clear; give step-by-step instructions when useful.

PREVIOUS CONVERSATION:
%s

USER: %s
ASSISTANT:`, projectName, ContextBlock(projectContext), RenderTranscript(history), content)
}

func truncateChars(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
