package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"PortfolioAI/app/gate"
	"PortfolioAI/app/models"
	"PortfolioAI/app/prompts"
	"PortfolioAI/app/rag"
	"PortfolioAI/app/storage"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type stubModel struct {
	vector []float32
	err    error
}

func (s stubModel) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Search(ctx context.Context, vector []float32, topK int) ([]rag.Match, error) {
	args := m.Called(ctx, vector, topK)
	v, _ := args.Get(0).([]rag.Match)
	return v, args.Error(1)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, params models.Params) (*models.Completion, error) {
	args := m.Called(ctx, prompt, params)
	c, _ := args.Get(0).(*models.Completion)
	return c, args.Error(1)
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []storage.QueryRecord
}

func (r *memoryRecorder) SaveQuery(_ context.Context, rec storage.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

type harness struct {
	index     *mockIndex
	completer *mockCompleter
	recorder  *memoryRecorder
	orch      *Orchestrator
}

func newHarness(t *testing.T, model rag.EmbeddingModel, mutate func(*Settings)) *harness {
	t.Helper()
	settings := DefaultSettings()
	settings.Retry = models.RetryConfig{MaxRetries: 2, RetryDelay: time.Millisecond}
	if mutate != nil {
		mutate(&settings)
	}

	h := &harness{
		index:     &mockIndex{},
		completer: &mockCompleter{},
		recorder:  &memoryRecorder{},
	}
	h.orch = NewOrchestrator(Deps{
		Embedder:  rag.NewEmbedder(model, rag.DefaultEmbedderConfig()),
		Retriever: rag.NewRetriever(h.index, settings.Retrieval.OverfetchFactor),
		Generator: models.NewGenerator(h.completer),
		Recorder:  h.recorder,
		Shuffler:  fixedShuffler{perm: []int{0, 1, 2, 3, 4, 5, 6, 7}},
	}, settings)
	h.orch.now = func() time.Time { return fixedNow }
	return h
}

func okModel() stubModel {
	return stubModel{vector: make([]float32, rag.DefaultDimension)}
}

func skillMatches() []rag.Match {
	return []rag.Match{
		{ID: "a", Score: 0.70, Metadata: map[string]any{"text": "I enjoy landscape photography on weekends.", "source": "hobbies.md", "category": "personal"}},
		{ID: "b", Score: 0.80, Metadata: map[string]any{"text": "My core skills are Go, Kubernetes and PostgreSQL.", "source": "skills.md", "category": "work"}},
	}
}

func TestHandleQueryAnswers(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)

	var prompt string
	h.completer.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool { prompt = p; return true }),
		models.Params{Temperature: 0.3, TopP: 0.90, MaxTokens: 512}).
		Return(&models.Completion{Response: "  I mostly write Go.\n\n\n\n-Go\n-Kubernetes  "}, nil).Once()

	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{})

	require.True(t, result.Success, result.Details)
	assert.Equal(t, "I mostly write Go.\n\n- Go\n- Kubernetes", result.Answer)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, 2, result.Metadata.MatchCount)
	assert.Equal(t, MethodHybrid, result.Metadata.RetrievalMethod)
	assert.InDelta(t, 0.86, result.Metadata.TopScore, 1e-9)
	assert.Equal(t, models.PresetBalanced, result.Metadata.ModelConfig)
	assert.Equal(t, fixedNow, result.Metadata.Timestamp)

	assert.True(t, strings.HasSuffix(prompt, "\n\nUser: Tell me about your skills\n\nAssistant:"))
	assert.Contains(t, prompt, "[Source: skills.md]\n[Category: work]\nMy core skills")
	assert.Less(t, strings.Index(prompt, "skills.md"), strings.Index(prompt, "hobbies.md"))
	assert.Contains(t, prompt, rag.ContextSeparator)

	require.Len(t, h.recorder.records, 1)
	rec := h.recorder.records[0]
	assert.True(t, rec.Success)
	assert.Equal(t, 2, rec.MatchCount)
	assert.Empty(t, rec.Stage)
	h.index.AssertExpectations(t)
	h.completer.AssertExpectations(t)
}

func TestHandleQueryValidation(t *testing.T) {
	cases := []struct {
		name    string
		message string
	}{
		{"empty", ""},
		{"too_long", strings.Repeat("x", 501)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, okModel(), nil)
			result := h.orch.HandleQuery(context.Background(), tc.message, Options{})

			assert.False(t, result.Success)
			assert.False(t, result.IsFiltered)
			assert.NotEmpty(t, result.Error)
			assert.NotEmpty(t, result.Suggestion)
			assert.Nil(t, result.Metadata)
			h.index.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
			require.Len(t, h.recorder.records, 1)
			assert.Equal(t, "validation", h.recorder.records[0].Stage)
		})
	}
}

func TestHandleQueryFiltered(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	result := h.orch.HandleQuery(context.Background(), "What's the weather today?", Options{})

	assert.False(t, result.Success)
	assert.True(t, result.IsFiltered)
	assert.Equal(t, gate.RedirectMessage, result.Error)
	h.index.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	h.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, h.recorder.records, 1)
	assert.True(t, h.recorder.records[0].Filtered)
}

func TestHandleQueryNoMatches(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return([]rag.Match{}, nil)

	result := h.orch.HandleQuery(context.Background(), "What is your favorite database?", Options{})

	require.True(t, result.Success)
	for _, topic := range FallbackTopics[:3] {
		assert.Contains(t, result.Answer, topic)
	}
	require.NotNil(t, result.Metadata)
	assert.Equal(t, 0, result.Metadata.MatchCount)
	assert.Zero(t, result.Metadata.TopScore)
	h.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleQueryEmbeddingFailure(t *testing.T) {
	h := newHarness(t, stubModel{err: errors.New("connection refused")}, nil)

	result := h.orch.HandleQuery(context.Background(), "Tell me about your projects", Options{})

	assert.False(t, result.Success)
	assert.Equal(t, GenericErrorMessage, result.Error)
	assert.Contains(t, result.Details, "connection refused")
	h.index.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, h.recorder.records, 1)
	assert.Equal(t, "embedding", h.recorder.records[0].Stage)
}

func TestHandleQueryWrongDimension(t *testing.T) {
	h := newHarness(t, stubModel{vector: make([]float32, 384)}, nil)

	result := h.orch.HandleQuery(context.Background(), "Tell me about your projects", Options{})

	assert.False(t, result.Success)
	assert.Equal(t, GenericErrorMessage, result.Error)
	h.index.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleQueryRetrievalFailure(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(nil, errors.New("qdrant unavailable")).Once()

	result := h.orch.HandleQuery(context.Background(), "Tell me about your projects", Options{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Details, "qdrant unavailable")
	h.index.AssertNumberOfCalls(t, "Search", 1)
}

func TestHandleQueryGenerationFailure(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)
	h.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("model overloaded"))

	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{})

	assert.False(t, result.Success)
	assert.Equal(t, GenericErrorMessage, result.Error)
	assert.Contains(t, result.Details, "model overloaded")
	h.completer.AssertNumberOfCalls(t, "Complete", 3)
	assert.Equal(t, "generation", h.recorder.records[0].Stage)
}

func TestHandleQueryHidesDetails(t *testing.T) {
	h := newHarness(t, stubModel{err: errors.New("secret upstream address")}, func(s *Settings) {
		s.Chat.ExposeErrorDetails = false
	})

	result := h.orch.HandleQuery(context.Background(), "Tell me about your projects", Options{})

	assert.False(t, result.Success)
	assert.Empty(t, result.Details)
}

func TestHandleQueryTruncatesAnswer(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)
	h.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Completion{Choices: nil, Text: strings.Repeat("a", 1500)}, nil)

	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{})

	require.True(t, result.Success)
	assert.Len(t, result.Answer, 1000)
	assert.True(t, strings.HasSuffix(result.Answer, "..."))
}

func TestHandleQuerySemanticWithOptions(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 3).Return(skillMatches(), nil)

	var prompt string
	h.completer.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool { prompt = p; return true }),
		models.Params{Temperature: 0.2, TopP: 0.85, MaxTokens: 256}).
		Return(&models.Completion{Response: "Short answer."}, nil)

	hybrid := false
	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{
		TopK:            3,
		UseHybridSearch: &hybrid,
		ModelConfig:     models.PresetConcise,
		ConversationHistory: []prompts.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	})

	require.True(t, result.Success, result.Details)
	assert.Equal(t, MethodSemantic, result.Metadata.RetrievalMethod)
	assert.Equal(t, models.PresetConcise, result.Metadata.ModelConfig)
	assert.InDelta(t, 0.70, result.Metadata.TopScore, 1e-9)
	assert.Contains(t, prompt, "user: hi\nassistant: hello\n\nCurrent question: Tell me about your skills")
}

func TestHandleQueryHistoryDisabled(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)

	var prompt string
	h.completer.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool { prompt = p; return true }), mock.Anything).
		Return(&models.Completion{Response: "ok"}, nil)

	include := false
	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{
		IncludeContext:      &include,
		ConversationHistory: []prompts.Message{{Role: "user", Content: "earlier"}},
	})

	require.True(t, result.Success)
	assert.NotContains(t, prompt, "Current question:")
	assert.NotContains(t, prompt, "earlier")
}

func TestHandleQueryUnknownPreset(t *testing.T) {
	h := newHarness(t, okModel(), nil)
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)
	h.completer.On("Complete", mock.Anything, mock.Anything, models.Params{Temperature: 0.3, TopP: 0.90, MaxTokens: 512}).
		Return(&models.Completion{Response: "ok"}, nil)

	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{ModelConfig: "WILD"})

	require.True(t, result.Success)
	assert.Equal(t, models.PresetBalanced, result.Metadata.ModelConfig)
}

func TestHandleQueryTimeout(t *testing.T) {
	h := newHarness(t, okModel(), func(s *Settings) {
		s.Chat.RequestTimeout = 20 * time.Millisecond
		s.Retry = models.RetryConfig{MaxRetries: 0}
	})
	h.index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)
	h.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	result := h.orch.HandleQuery(context.Background(), "Tell me about your skills", Options{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Details, "deadline exceeded")
}

type panicGenerator struct{}

func (panicGenerator) GenerateWithRetry(context.Context, string, string, models.GenerateOptions) (string, error) {
	panic("boom")
}

func TestHandleQueryRecoversPanic(t *testing.T) {
	index := &mockIndex{}
	index.On("Search", mock.Anything, mock.Anything, 10).Return(skillMatches(), nil)
	recorder := &memoryRecorder{}
	orch := NewOrchestrator(Deps{
		Embedder:  rag.NewEmbedder(okModel(), rag.DefaultEmbedderConfig()),
		Retriever: rag.NewRetriever(index, 2),
		Generator: panicGenerator{},
		Recorder:  recorder,
	}, DefaultSettings())

	result := orch.HandleQuery(context.Background(), "Tell me about your skills", Options{})

	assert.False(t, result.Success)
	assert.Equal(t, GenericErrorMessage, result.Error)
	assert.Contains(t, result.Details, "boom")
	require.Len(t, recorder.records, 1)
	assert.Equal(t, "panic", recorder.records[0].Stage)
}

func TestHandleQueryConcurrentFallbacks(t *testing.T) {
	index := &mockIndex{}
	index.On("Search", mock.Anything, mock.Anything, 10).Return([]rag.Match{}, nil)
	orch := NewOrchestrator(Deps{
		Embedder:  rag.NewEmbedder(okModel(), rag.DefaultEmbedderConfig()),
		Retriever: rag.NewRetriever(index, 2),
		Generator: models.NewGenerator(&mockCompleter{}),
	}, DefaultSettings())

	const callers = 16
	results := make([]QueryResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = orch.HandleQuery(context.Background(), "What is your favorite database?", Options{})
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		require.True(t, result.Success)
		assert.Equal(t, 0, result.Metadata.MatchCount)
		assert.Equal(t, 3, strings.Count(result.Answer, "\n- "))
	}
}

func TestNewOrchestratorFillsUnsetSettings(t *testing.T) {
	orch := NewOrchestrator(Deps{}, Settings{})

	assert.Equal(t, DefaultRequestTimeout, orch.settings.Chat.RequestTimeout)
	assert.Equal(t, DefaultMaxResponseLength, orch.settings.Chat.MaxResponseLength)
	assert.Equal(t, models.PresetBalanced, orch.settings.Chat.DefaultPreset)
	assert.Equal(t, gate.DefaultLimits(), orch.settings.Limits)
	assert.Equal(t, rag.DefaultTopK, orch.settings.Retrieval.TopK)
	assert.Equal(t, rag.DefaultOverfetchFactor, orch.settings.Retrieval.OverfetchFactor)
	assert.InDelta(t, rag.DefaultDedupThreshold, orch.settings.Retrieval.DedupThreshold, 1e-12)
	assert.Zero(t, orch.settings.Retrieval.KeywordBoost)
	assert.Zero(t, orch.settings.Retry.MaxRetries)
	assert.NotEmpty(t, orch.settings.Persona.Name)
}

func TestHandleQueryPartialSettingsKeepsDistinctChunks(t *testing.T) {
	index := &mockIndex{}
	index.On("Search", mock.Anything, mock.Anything, 10).Return([]rag.Match{
		{ID: "a", Score: 0.8, Metadata: map[string]any{"text": "Go and Kubernetes skills", "source": "skills.md"}},
		{ID: "b", Score: 0.7, Metadata: map[string]any{"text": "Photography and hiking", "source": "hobbies.md"}},
	}, nil)
	completer := &mockCompleter{}
	var prompt string
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool { prompt = p; return true }), mock.Anything).
		Return(&models.Completion{Response: "ok"}, nil)

	orch := NewOrchestrator(Deps{
		Embedder:  rag.NewEmbedder(okModel(), rag.DefaultEmbedderConfig()),
		Retriever: rag.NewRetriever(index, 2),
		Generator: models.NewGenerator(completer),
	}, Settings{Retrieval: rag.RetrieverConfig{IncludeSource: true}})

	result := orch.HandleQuery(context.Background(), "Tell me about your skills", Options{})

	require.True(t, result.Success, result.Details)
	assert.Contains(t, prompt, "[Source: skills.md]")
	assert.Contains(t, prompt, "[Source: hobbies.md]")
}
