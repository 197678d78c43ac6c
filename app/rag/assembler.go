package rag

import "strings"

type EnrichOptions struct {
	IncludeSource   bool
	IncludeCategory bool
}

// Enrich prefixes each chunk's text with [Source: ...] and [Category: ...]
// tags, in that order, for whichever of them the metadata carries.
func Enrich(chunks []RankedChunk, opts EnrichOptions) []EnrichedChunk {
	out := make([]EnrichedChunk, len(chunks))
	for i, c := range chunks {
		var sb strings.Builder
		if src := c.Source(); opts.IncludeSource && src != "" {
			sb.WriteString("[Source: " + src + "]\n")
		}
		if cat := c.Category(); opts.IncludeCategory && cat != "" {
			sb.WriteString("[Category: " + cat + "]\n")
		}
		sb.WriteString(c.Text)
		out[i] = EnrichedChunk{RankedChunk: c, EnhancedText: sb.String()}
	}
	return out
}

// Deduplicate drops every chunk whose word-set Jaccard similarity with an
// already kept chunk exceeds threshold. Input must be rank ordered so the
// better chunk of a near-duplicate pair is the one kept.
func Deduplicate(chunks []RankedChunk, threshold float64) []RankedChunk {
	kept := make([]RankedChunk, 0, len(chunks))
	keptSets := make([]map[string]struct{}, 0, len(chunks))

	for _, c := range chunks {
		words := wordSet(c.Text)
		duplicate := false
		for _, seen := range keptSets {
			if Jaccard(words, seen) > threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, c)
		keptSets = append(keptSets, words)
	}
	return kept
}

func BuildContext(chunks []EnrichedChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.EnhancedText
	}
	return strings.Join(parts, ContextSeparator)
}

func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}
