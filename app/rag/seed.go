package rag

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"PortfolioAI/app/utils"
)

const (
	defaultChunkSize = 500
	defaultOverlap   = 100
)

type SeedConfig struct {
	Folder    string `yaml:"folder" validate:"required"`
	ChunkSize int    `yaml:"chunk_size" validate:"gt=0"`
	Overlap   int    `yaml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
}

func DefaultSeedConfig() SeedConfig {
	return SeedConfig{Folder: "./content", ChunkSize: defaultChunkSize, Overlap: defaultOverlap}
}

type DocumentStore interface {
	EnsureCollection(ctx context.Context, vectorSize int) (bool, error)
	UpsertBatch(ctx context.Context, docs []VectorDoc) error
}

type Seeder struct {
	store    DocumentStore
	embedder *Embedder
	cfg      SeedConfig
}

func NewSeeder(store DocumentStore, embedder *Embedder, cfg SeedConfig) *Seeder {
	return &Seeder{store: store, embedder: embedder, cfg: cfg}
}

// Seed chunks every file under the content folder and upserts the chunks. The
// first directory below the folder becomes the chunk category. When the
// collection already exists nothing is written unless force is set.
func (s *Seeder) Seed(ctx context.Context, force bool) (int, error) {
	exists, err := s.store.EnsureCollection(ctx, s.embedder.Dimension())
	if err != nil {
		return 0, err
	}
	if exists && !force {
		log.Printf("ℹ️ Collection already seeded, skipping")
		return 0, nil
	}

	paths, err := utils.LoadFilesFromDir(s.cfg.Folder)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, p := range paths {
		text, err := utils.ReadFile(p)
		if err != nil {
			return total, err
		}
		if ext := strings.ToLower(filepath.Ext(p)); ext == ".html" || ext == ".htm" {
			if text, err = utils.HTMLToText(text); err != nil {
				return total, fmt.Errorf("parse %s: %w", p, err)
			}
		}

		chunks := ChunkText(text, s.cfg.ChunkSize, s.cfg.Overlap)
		if len(chunks) == 0 {
			continue
		}
		vectors, err := s.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			return total, fmt.Errorf("embed %s: %w", p, err)
		}

		metadata := map[string]any{"source": filepath.Base(p)}
		if category := categoryOf(s.cfg.Folder, p); category != "" {
			metadata["category"] = category
		}

		batch := make([]VectorDoc, len(chunks))
		for i, ch := range chunks {
			md := map[string]any{"chunk": i}
			for k, v := range metadata {
				md[k] = v
			}
			batch[i] = VectorDoc{ID: uuid.New().String(), Content: ch, Metadata: md, Vector: vectors[i]}
		}
		if err = s.store.UpsertBatch(ctx, batch); err != nil {
			return total, fmt.Errorf("upsert %s: %w", p, err)
		}
		total += len(batch)
		log.Printf("✅ Seeded %d chunks from %s", len(batch), p)
	}
	return total, nil
}

func categoryOf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(strings.TrimSpace(text))
	var chunks []string

	for start := 0; start < len(runes); start += size - overlap {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
