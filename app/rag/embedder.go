package rag

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultBatchSize  = 10
	defaultBatchDelay = 100 * time.Millisecond
)

type EmbedderConfig struct {
	Dimension  int           `yaml:"dimension" validate:"gt=0"`
	BatchSize  int           `yaml:"batch_size" validate:"gt=0"`
	BatchDelay time.Duration `yaml:"batch_delay" validate:"gte=0"`
}

func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Dimension:  DefaultDimension,
		BatchSize:  defaultBatchSize,
		BatchDelay: defaultBatchDelay,
	}
}

// Embedder validates the shape of every vector the embedding model returns.
// Failures are never retried here.
type Embedder struct {
	model EmbeddingModel
	cfg   EmbedderConfig
}

func NewEmbedder(model EmbeddingModel, cfg EmbedderConfig) *Embedder {
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Embedder{model: model, cfg: cfg}
}

func (e *Embedder) Dimension() int {
	return e.cfg.Dimension
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedOnce(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in sub-batches of BatchSize, sleeping BatchDelay
// between sub-calls.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.cfg.BatchSize {
		if start > 0 && e.cfg.BatchDelay > 0 {
			if err := sleep(ctx, e.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}
		end := min(start+e.cfg.BatchSize, len(texts))
		vectors, err := e.embedOnce(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *Embedder) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.model.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrEmbedding)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbedding, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != e.cfg.Dimension {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrEmbedding, i, len(v), e.cfg.Dimension)
		}
	}
	return vectors, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
