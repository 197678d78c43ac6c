package chat

import (
	"math/rand/v2"
	"strings"
)

const fallbackSuggestions = 3

var FallbackTopics = []string{
	"the projects I've built",
	"my technical skills and favourite tools",
	"my work experience",
	"my education and background",
	"my photography and the gallery",
	"the tech stack behind this site",
	"my hobbies and interests",
	"how to get in touch with me",
}

// Shuffler is satisfied by *rand.Rand. Implementations shared by an
// Orchestrator must be safe for concurrent use.
type Shuffler interface {
	Perm(n int) []int
}

// globalShuffler draws from the package-level source, which is goroutine safe.
type globalShuffler struct{}

func (globalShuffler) Perm(n int) []int {
	return rand.Perm(n)
}

// PickTopics draws k distinct topics uniformly at random.
func PickTopics(r Shuffler, k int) []string {
	if k > len(FallbackTopics) {
		k = len(FallbackTopics)
	}
	perm := r.Perm(len(FallbackTopics))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = FallbackTopics[perm[i]]
	}
	return out
}

func FallbackAnswer(r Shuffler) string {
	var sb strings.Builder
	sb.WriteString("I don't have any details about that yet, but I'd be happy to tell you about:\n\n")
	for _, topic := range PickTopics(r, fallbackSuggestions) {
		sb.WriteString("- " + topic + "\n")
	}
	sb.WriteString("\nWhat would you like to know?")
	return sb.String()
}
