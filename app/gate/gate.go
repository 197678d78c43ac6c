// Package gate decides whether a chat message is worth sending down the
// retrieval pipeline at all.
package gate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMinLength = 1
	DefaultMaxLength = 500

	RedirectMessage = "I'm here to chat about my work, projects, skills and interests. " +
		"Try asking me about my experience, the tech I use, or what I've been building lately!"
)

type Reason string

const (
	TooShort Reason = "too_short"
	TooLong  Reason = "too_long"
)

type Limits struct {
	MinLength int `yaml:"min_length" validate:"gte=0"`
	MaxLength int `yaml:"max_length" validate:"gtefield=MinLength"`
}

func DefaultLimits() Limits {
	return Limits{MinLength: DefaultMinLength, MaxLength: DefaultMaxLength}
}

type Validation struct {
	Valid      bool
	Reason     Reason
	Error      string
	Suggestion string
}

// Validate checks the message length in characters against the inclusive
// [MinLength, MaxLength] range.
func Validate(message string, limits Limits) Validation {
	n := utf8.RuneCountInString(message)
	switch {
	case n < limits.MinLength:
		return Validation{
			Reason:     TooShort,
			Error:      "Message is too short",
			Suggestion: fmt.Sprintf("Please enter at least %d character(s).", limits.MinLength),
		}
	case n > limits.MaxLength:
		return Validation{
			Reason:     TooLong,
			Error:      fmt.Sprintf("Message is too long (%d characters, max %d)", n, limits.MaxLength),
			Suggestion: fmt.Sprintf("Try shortening your question to under %d characters.", limits.MaxLength),
		}
	}
	return Validation{Valid: true}
}

// IsPortfolioRelated reports whether any topical keyword appears anywhere in
// the lower-cased message. Matching is plain substring search on purpose: it
// lets through anything that is plausibly about the portfolio owner.
func IsPortfolioRelated(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range portfolioKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
