package rag

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "a": {}, "an": {}, "and": {},
	"or": {}, "but": {}, "in": {}, "with": {}, "to": {}, "for": {}, "of": {}, "as": {},
	"by": {}, "from": {}, "what": {}, "how": {}, "why": {}, "when": {}, "where": {},
	"who": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "have": {},
	"has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "can": {}, "could": {},
	"would": {}, "should": {}, "will": {}, "about": {}, "tell": {}, "me": {}, "you": {},
	"your": {}, "my": {}, "i": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "any": {}, "some": {}, "there": {}, "their": {}, "them": {},
	"they": {}, "than": {}, "then": {}, "into": {}, "also": {}, "just": {}, "more": {},
}

// ExtractKeywords lower-cases text, strips punctuation, and keeps the
// whitespace-separated tokens that are not stop words and are longer than two
// characters.
func ExtractKeywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	var keywords []string
	for _, tok := range strings.Fields(cleaned) {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

// KeywordScore is the fraction of keywords found as substrings of text.
func KeywordScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

func CombinedScore(embeddingScore, keywordScore, boost float64) float64 {
	return embeddingScore*(1-boost) + keywordScore*boost
}
