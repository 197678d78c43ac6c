package chat

import (
	"regexp"
	"strings"
)

const DefaultMaxResponseLength = 1000

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	// "-item", "*item" and "1.item" at line start; "**bold**", "---" and
	// "-5" are left alone.
	tightListMarker = regexp.MustCompile(`(?m)^([ \t]*)([-*]|\d+\.)([^\s\d*.\-])`)
)

// PostProcess tidies model output and caps it at maxLength characters,
// ellipsis included.
func PostProcess(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxResponseLength
	}

	out := strings.ReplaceAll(text, "\r\n", "\n")
	out = strings.TrimSpace(out)
	out = excessNewlines.ReplaceAllString(out, "\n\n")
	out = tightListMarker.ReplaceAllString(out, "$1$2 $3")
	return truncate(out, maxLength)
}

func truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}
