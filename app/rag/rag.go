package rag

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultTopK            = 5
	DefaultKeywordBoost    = 0.3
	DefaultOverfetchFactor = 2
	DefaultDedupThreshold  = 0.85
	DefaultDimension       = 768

	ContextSeparator = "\n\n---\n\n"

	// textKey is the payload field holding a chunk's raw text.
	textKey = "text"
)

var (
	ErrEmbedding = errors.New("embedding failed")
	ErrRetrieval = errors.New("retrieval failed")
)

// EmbeddingModel is the external embedding capability.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is the external nearest-neighbour search capability.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
}

type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type VectorDoc struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32
}

type RetrievedChunk struct {
	ID             string
	EmbeddingScore float64
	Text           string
	Metadata       map[string]any
}

func (c RetrievedChunk) Source() string   { return metadataString(c.Metadata, "source") }
func (c RetrievedChunk) Category() string { return metadataString(c.Metadata, "category") }

type RankedChunk struct {
	RetrievedChunk
	KeywordScore  float64
	CombinedScore float64
}

type EnrichedChunk struct {
	RankedChunk
	EnhancedText string
}

func chunkFromMatch(m Match) RetrievedChunk {
	return RetrievedChunk{
		ID:             m.ID,
		EmbeddingScore: m.Score,
		Text:           metadataString(m.Metadata, textKey),
		Metadata:       m.Metadata,
	}
}

func metadataString(md map[string]any, key string) string {
	v, ok := md[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
