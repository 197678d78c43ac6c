package rag

import (
	"context"
	"fmt"
	"log"
	"sort"
)

type RetrieverConfig struct {
	TopK            int     `yaml:"top_k" validate:"gt=0,lte=50"`
	KeywordBoost    float64 `yaml:"keyword_boost" validate:"gte=0,lte=1"`
	OverfetchFactor int     `yaml:"overfetch_factor" validate:"gte=1"`
	DedupThreshold  float64 `yaml:"dedup_threshold" validate:"gt=0,lte=1"`
	IncludeSource   bool    `yaml:"include_source"`
	IncludeCategory bool    `yaml:"include_category"`
}

func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		TopK:            DefaultTopK,
		KeywordBoost:    DefaultKeywordBoost,
		OverfetchFactor: DefaultOverfetchFactor,
		DedupThreshold:  DefaultDedupThreshold,
		IncludeSource:   true,
		IncludeCategory: true,
	}
}

// RetrieveOptions tunes one hybrid query. TopK <= 0 means DefaultTopK. A zero
// KeywordBoost disables keyword reranking; start from DefaultRetrieveOptions
// to get the standard 0.3 blend.
type RetrieveOptions struct {
	TopK         int
	KeywordBoost float64
}

func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{TopK: DefaultTopK, KeywordBoost: DefaultKeywordBoost}
}

type Retriever struct {
	index           VectorIndex
	overfetchFactor int
}

func NewRetriever(index VectorIndex, overfetchFactor int) *Retriever {
	if overfetchFactor < 1 {
		overfetchFactor = DefaultOverfetchFactor
	}
	return &Retriever{index: index, overfetchFactor: overfetchFactor}
}

// HybridRetrieve over-fetches neighbours from the index and reranks them by a
// blend of embedding similarity and keyword overlap with queryText.
func (r *Retriever) HybridRetrieve(ctx context.Context, vector []float32, queryText string, opts RetrieveOptions) ([]RankedChunk, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches, err := r.search(ctx, vector, topK*r.overfetchFactor)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []RankedChunk{}, nil
	}

	keywords := ExtractKeywords(queryText)
	candidates := make([]RetrievedChunk, len(matches))
	for i, m := range matches {
		candidates[i] = chunkFromMatch(m)
	}

	ranked := Rerank(ScoreChunks(candidates, keywords, opts.KeywordBoost))
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	log.Printf("🔎 Hybrid retrieval: %d candidates, %d keywords, kept %d", len(matches), len(keywords), len(ranked))
	return ranked, nil
}

// SemanticRetrieve returns the index's own top-K ordering untouched.
func (r *Retriever) SemanticRetrieve(ctx context.Context, vector []float32, topK int) ([]RankedChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	matches, err := r.search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}
	out := make([]RankedChunk, 0, len(matches))
	for _, m := range matches {
		c := chunkFromMatch(m)
		out = append(out, RankedChunk{RetrievedChunk: c, CombinedScore: c.EmbeddingScore})
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (r *Retriever) search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	matches, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	return matches, nil
}

func ScoreChunks(chunks []RetrievedChunk, keywords []string, boost float64) []RankedChunk {
	out := make([]RankedChunk, len(chunks))
	for i, c := range chunks {
		ks := KeywordScore(c.Text, keywords)
		out[i] = RankedChunk{
			RetrievedChunk: c,
			KeywordScore:   ks,
			CombinedScore:  CombinedScore(c.EmbeddingScore, ks, boost),
		}
	}
	return out
}

// Rerank orders chunks by CombinedScore descending. Equal scores keep their
// incoming order.
func Rerank(chunks []RankedChunk) []RankedChunk {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].CombinedScore > chunks[j].CombinedScore
	})
	return chunks
}
