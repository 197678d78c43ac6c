package prompts

import (
	"fmt"
	"strings"
)

const historyWindow = 3

type Persona struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description" validate:"required"`
	Markdown    bool   `yaml:"markdown"`
}

func DefaultPersona() Persona {
	return Persona{
		Name:        "Alex",
		Description: "a software engineer who builds backend systems and enjoys photography",
		Markdown:    true,
	}
}

type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type UserMessageOptions struct {
	AddContext bool
	History    []Message
}

func BuildSystemPrompt(contextText string, p Persona) string {
	formatting := "Reply in plain text without markdown."
	if p.Markdown {
		formatting = "Use light markdown (short paragraphs, bullet lists, **bold** for key terms) when it helps readability."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are %s, %s. You are chatting with visitors of your personal portfolio website.\n\n", p.Name, p.Description))
	sb.WriteString("RULES:\n")
	sb.WriteString("- Always speak in the first person, as yourself (\"I\", \"my\"), never about yourself in the third person.\n")
	sb.WriteString("- Answer ONLY from the information in the CONTEXT below. If the context does not cover the question, say you don't have that information rather than guessing.\n")
	sb.WriteString("- If the question is unrelated to you, your work, skills, projects or interests, politely steer the conversation back to those topics.\n")
	sb.WriteString("- Keep answers friendly, concise and specific.\n")
	sb.WriteString("- " + formatting + "\n\n")
	sb.WriteString("CONTEXT:\n")
	sb.WriteString(contextText)
	return sb.String()
}

// BuildUserMessage prepends the last few history turns to the question when
// opts.AddContext is set.
func BuildUserMessage(userText string, opts UserMessageOptions) string {
	if !opts.AddContext || len(opts.History) == 0 {
		return userText
	}

	recent := opts.History
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	lines := make([]string, len(recent))
	for i, m := range recent {
		lines[i] = m.Role + ": " + m.Content
	}
	return strings.Join(lines, "\n") + "\n\nCurrent question: " + userText
}
