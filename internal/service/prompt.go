package service

import (
	"fmt"
	"strings"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"
)

// systemInstruction frames every generation request. The closing rules keep
// the model from inventing answers and from echoing retrieval metadata.
const systemInstruction = `You are an AI admissions officer at Nile University. Your role is to provide accurate, friendly, and helpful guidance to prospective students.
Answer questions about programs, courses, application deadlines, admission requirements, scholarships, and campus life.
Guide students step-by-step through the application process when needed.
Clarify university policies politely and professionally.
Adapt your tone to be friendly, encouraging, and approachable while maintaining professionalism.
Answer only from the provided context; if the context is not sufficient, say so and direct the student to official resources instead of inventing an answer.
Use the conversation history to provide contextual and coherent responses that reference previous interactions when relevant.
Do not include any internal metadata (IDs, file names, or bracketed tags) in your final answer.`

const noContextPlaceholder = "no relevant entries"

// PromptBuilder renders the single text block sent to the generation model:
// system instruction, retrieved context best match first, prior turns oldest
// first, and the new question last.
type PromptBuilder struct {
	instruction string
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{instruction: systemInstruction}
}

// Build assembles the prompt. Matches must already be ordered by descending
// similarity and turns oldest to newest; the builder preserves both orders.
func (b *PromptBuilder) Build(question string, matches []models.RetrievedMatch, turns []models.ConversationTurn) string {
	var sb strings.Builder

	sb.WriteString(b.instruction)
	sb.WriteString("\n\nUse the following context to answer the question.\n\nCONTEXT:\n")
	sb.WriteString(formatContext(matches))

	if history := formatHistory(turns); history != "" {
		sb.WriteString("\n\n")
		sb.WriteString(history)
	}

	sb.WriteString("\n\nQUESTION:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer concisely.")

	return sb.String()
}

// formatContext renders matches as Category/Question/Answer fragments split
// by --- rules. IDs and source names stay out so the model cannot echo them.
func formatContext(matches []models.RetrievedMatch) string {
	if len(matches) == 0 {
		return noContextPlaceholder
	}

	fragments := make([]string, 0, len(matches))
	for _, match := range matches {
		fragments = append(fragments, fmt.Sprintf(
			"Category: %s\nQuestion: %s\nAnswer: %s\n---",
			match.Entry.Category, match.Entry.Question, match.Entry.Answer,
		))
	}
	return strings.Join(fragments, "\n")
}

// formatHistory renders prior turns oldest first, or "" when memory is empty.
func formatHistory(turns []models.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}

	lines := []string{"Previous conversation:"}
	for i, turn := range turns {
		lines = append(lines, fmt.Sprintf("\nTurn %d:", i+1))
		lines = append(lines, "Student: "+turn.Question)
		lines = append(lines, "Assistant: "+turn.Answer)
	}
	return strings.Join(lines, "\n")
}
