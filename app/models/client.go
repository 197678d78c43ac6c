package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"PortfolioAI/app/rag"
	"PortfolioAI/app/utils/restclient"
)

const (
	completionEndpoint = "/v1/completions"
	embeddingEndpoint  = "/v1/embeddings"
)

type LLMConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model" validate:"required"`
	EmbeddingModel string        `yaml:"embedding_model" validate:"required"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
}

func DefaultLLMConfig() LLMConfig {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}
	return LLMConfig{
		BaseURL:        baseURL,
		APIKey:         os.Getenv("LLM_API_KEY"),
		Model:          "llama-3.1-8b-instruct",
		EmbeddingModel: "text-embedding-nomic-embed-text-v1.5",
		Timeout:        60 * time.Second,
	}
}

var (
	_ Completer          = &LLMClient{}
	_ rag.EmbeddingModel = &LLMClient{}
)

// LLMClient talks to an OpenAI compatible server. It makes exactly one HTTP
// call per method invocation; retrying is the Generator's job.
type LLMClient struct {
	restClient     restclient.Interface
	model          string
	embeddingModel string
}

func NewLLMClient(cfg LLMConfig) *LLMClient {
	var headers map[string]string
	if cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	}
	return &LLMClient{
		restClient:     restclient.NewRestClient(cfg.BaseURL, headers, cfg.Timeout),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}
}

func (mc *LLMClient) Complete(ctx context.Context, prompt string, params Params) (*Completion, error) {
	payload := completionRequest{
		Model:       mc.model,
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	}

	var out Completion
	if err := mc.post(ctx, completionEndpoint, payload, &out); err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	return &out, nil
}

func (mc *LLMClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	payload := embeddingRequest{Model: mc.embeddingModel, Input: texts}

	var out embeddingResponse
	if err := mc.post(ctx, embeddingEndpoint, payload, &out); err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}

	vectors := make([][]float32, len(out.Data))
	for i, item := range out.Data {
		idx := item.Index
		if idx < 0 || idx >= len(vectors) || vectors[idx] != nil {
			idx = i
		}
		vectors[idx] = item.Embedding
	}
	return vectors, nil
}

func (mc *LLMClient) post(ctx context.Context, endpoint string, payload, out any) error {
	body, status, err := mc.restClient.Post(ctx, endpoint, payload, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
	}
	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Ping checks that the model server answers its model listing endpoint.
func (mc *LLMClient) Ping(ctx context.Context) error {
	_, status, err := mc.restClient.Get(ctx, "/v1/models", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	return nil
}
