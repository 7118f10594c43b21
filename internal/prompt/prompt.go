// Package prompt assembles the chat messages sent to the inference backend.
package prompt

import (
	"strings"

	"pagebrief/internal/domain"
)

const (
	// SystemPrompt defines the assistant's behavior for every request.
	SystemPrompt = `You are a snarky assistant that analyzes the contents of a website,
and provides a short, snarky, humorous summary, ignoring text that might be navigation related.
Respond in markdown. Do not wrap the markdown in a code block - respond just with the markdown.`

	userPromptPrefix = `Here are the contents of a website.
Provide a short summary of this website.
If it includes news or announcements, then summarize these too.

`
)

// Build produces the two-message request for a single page: the fixed system
// instruction first, then the user instruction carrying the scraped content.
func Build(content string) []domain.Message {
	userPromptBuilder := strings.Builder{}
	userPromptBuilder.WriteString(userPromptPrefix)
	userPromptBuilder.WriteString(content)

	return []domain.Message{
		{Role: domain.RoleSystem, Content: SystemPrompt},
		{Role: domain.RoleUser, Content: userPromptBuilder.String()},
	}
}
