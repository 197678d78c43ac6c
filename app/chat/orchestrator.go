package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"PortfolioAI/app/gate"
	"PortfolioAI/app/models"
	"PortfolioAI/app/prompts"
	"PortfolioAI/app/rag"
	"PortfolioAI/app/storage"
)

const DefaultRequestTimeout = 30 * time.Second

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	HybridRetrieve(ctx context.Context, vector []float32, queryText string, opts rag.RetrieveOptions) ([]rag.RankedChunk, error)
	SemanticRetrieve(ctx context.Context, vector []float32, topK int) ([]rag.RankedChunk, error)
}

type Generator interface {
	GenerateWithRetry(ctx context.Context, system, user string, opts models.GenerateOptions) (string, error)
}

type Recorder interface {
	SaveQuery(ctx context.Context, record storage.QueryRecord) error
}

type Config struct {
	DefaultPreset      string        `yaml:"default_preset" validate:"omitempty,oneof=FACTUAL BALANCED CREATIVE CONCISE"`
	MaxResponseLength  int           `yaml:"max_response_length" validate:"gt=3"`
	RequestTimeout     time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ExposeErrorDetails bool          `yaml:"expose_error_details"`
}

func DefaultConfig() Config {
	return Config{
		DefaultPreset:      models.PresetBalanced,
		MaxResponseLength:  DefaultMaxResponseLength,
		RequestTimeout:     DefaultRequestTimeout,
		ExposeErrorDetails: true,
	}
}

// Settings bundles the per-stage tuning the orchestrator applies to every
// request.
type Settings struct {
	Chat      Config
	Limits    gate.Limits
	Retrieval rag.RetrieverConfig
	Retry     models.RetryConfig
	Persona   prompts.Persona
}

func DefaultSettings() Settings {
	return Settings{
		Chat:      DefaultConfig(),
		Limits:    gate.DefaultLimits(),
		Retrieval: rag.DefaultRetrieverConfig(),
		Retry:     models.DefaultRetryConfig(),
		Persona:   prompts.DefaultPersona(),
	}
}

type Deps struct {
	Embedder  Embedder
	Retriever Retriever
	Generator Generator
	// Recorder is optional.
	Recorder Recorder
	// Shuffler is optional; the goroutine-safe package-level source is used
	// when nil.
	Shuffler Shuffler
}

type Orchestrator struct {
	embedder  Embedder
	retriever Retriever
	generator Generator
	recorder  Recorder
	shuffler  Shuffler
	settings  Settings
	now       func() time.Time
}

func NewOrchestrator(deps Deps, settings Settings) *Orchestrator {
	if deps.Shuffler == nil {
		deps.Shuffler = globalShuffler{}
	}
	return &Orchestrator{
		embedder:  deps.Embedder,
		retriever: deps.Retriever,
		generator: deps.Generator,
		recorder:  deps.Recorder,
		shuffler:  deps.Shuffler,
		settings:  settings.withDefaults(),
		now:       time.Now,
	}
}

// withDefaults fills unset fields of a partially built Settings. Zero keyword
// boost and zero retries are meaningful and left alone.
func (s Settings) withDefaults() Settings {
	if s.Chat.RequestTimeout <= 0 {
		s.Chat.RequestTimeout = DefaultRequestTimeout
	}
	if s.Chat.MaxResponseLength <= 0 {
		s.Chat.MaxResponseLength = DefaultMaxResponseLength
	}
	if s.Chat.DefaultPreset == "" {
		s.Chat.DefaultPreset = models.DefaultPreset
	}
	if s.Limits.MaxLength <= 0 {
		s.Limits = gate.DefaultLimits()
	}
	if s.Retrieval.TopK <= 0 {
		s.Retrieval.TopK = rag.DefaultTopK
	}
	if s.Retrieval.OverfetchFactor <= 0 {
		s.Retrieval.OverfetchFactor = rag.DefaultOverfetchFactor
	}
	if s.Retrieval.DedupThreshold <= 0 {
		s.Retrieval.DedupThreshold = rag.DefaultDedupThreshold
	}
	if s.Persona.Name == "" {
		s.Persona = prompts.DefaultPersona()
	}
	return s
}

// request is the resolved form of Options for a single call.
type request struct {
	id             string
	message        string
	topK           int
	hybrid         bool
	includeContext bool
	preset         string
	params         models.Params
	history        []prompts.Message
}

func (o *Orchestrator) resolve(message string, opts Options) request {
	presetName := opts.ModelConfig
	if presetName == "" {
		presetName = o.settings.Chat.DefaultPreset
	}
	preset, params := models.ResolvePreset(presetName)

	topK := opts.TopK
	if topK <= 0 {
		topK = o.settings.Retrieval.TopK
	}
	return request{
		id:             uuid.NewString(),
		message:        message,
		topK:           topK,
		hybrid:         boolOr(opts.UseHybridSearch, true),
		includeContext: boolOr(opts.IncludeContext, true),
		preset:         preset,
		params:         params,
		history:        opts.ConversationHistory,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// HandleQuery runs one question through validation, filtering, retrieval and
// generation. It never returns an error; every outcome is a QueryResult.
func (o *Orchestrator) HandleQuery(ctx context.Context, message string, opts Options) (result QueryResult) {
	req := o.resolve(message, opts)
	start := o.now()
	stage := ""

	defer func() {
		if r := recover(); r != nil {
			log.Printf("🚨 [%s] panic while answering: %v", req.id, r)
			stage = "panic"
			result = o.failure(fmt.Errorf("unexpected failure: %v", r))
		}
		o.record(ctx, req, result, stage, start)
	}()

	ctx, cancel := context.WithTimeout(ctx, o.settings.Chat.RequestTimeout)
	defer cancel()

	result, stage = o.answer(ctx, req)
	return result
}

func (o *Orchestrator) answer(ctx context.Context, req request) (QueryResult, string) {
	validation := gate.Validate(req.message, o.settings.Limits)
	if !validation.Valid {
		return QueryResult{
			Success:    false,
			Error:      validation.Error,
			Suggestion: validation.Suggestion,
		}, "validation"
	}

	if !gate.IsPortfolioRelated(req.message) {
		return QueryResult{
			Success:    false,
			IsFiltered: true,
			Error:      gate.RedirectMessage,
		}, "filter"
	}

	vector, err := o.embedder.Embed(ctx, req.message)
	if err != nil {
		log.Printf("❌ [%s] embedding failed: %v", req.id, err)
		return o.failure(err), "embedding"
	}

	method := MethodHybrid
	var chunks []rag.RankedChunk
	if req.hybrid {
		chunks, err = o.retriever.HybridRetrieve(ctx, vector, req.message, rag.RetrieveOptions{
			TopK:         req.topK,
			KeywordBoost: o.settings.Retrieval.KeywordBoost,
		})
	} else {
		method = MethodSemantic
		chunks, err = o.retriever.SemanticRetrieve(ctx, vector, req.topK)
	}
	if err != nil {
		log.Printf("❌ [%s] retrieval failed: %v", req.id, err)
		return o.failure(err), "retrieval"
	}

	if len(chunks) == 0 {
		log.Printf("ℹ️ [%s] no matching content, answering with suggestions", req.id)
		return QueryResult{
			Success:  true,
			Answer:   FallbackAnswer(o.shuffler),
			Metadata: o.metadata(req, method, chunks),
		}, ""
	}

	unique := rag.Deduplicate(chunks, o.settings.Retrieval.DedupThreshold)
	contextText := rag.BuildContext(rag.Enrich(unique, rag.EnrichOptions{
		IncludeSource:   o.settings.Retrieval.IncludeSource,
		IncludeCategory: o.settings.Retrieval.IncludeCategory,
	}))

	system := prompts.BuildSystemPrompt(contextText, o.settings.Persona)
	user := prompts.BuildUserMessage(req.message, prompts.UserMessageOptions{
		AddContext: req.includeContext,
		History:    req.history,
	})

	raw, err := o.generator.GenerateWithRetry(ctx, system, user, models.GenerateOptions{
		Retry:  o.settings.Retry,
		Params: req.params,
	})
	if err != nil {
		var genErr *models.GenerationError
		if errors.As(err, &genErr) {
			log.Printf("❌ [%s] generation failed after %d attempt(s): %v", req.id, genErr.Attempts, genErr.Err)
		} else {
			log.Printf("❌ [%s] generation failed: %v", req.id, err)
		}
		return o.failure(err), "generation"
	}

	log.Printf("✅ [%s] answered with %d chunk(s) via %s search", req.id, len(unique), method)
	return QueryResult{
		Success:  true,
		Answer:   PostProcess(raw, o.settings.Chat.MaxResponseLength),
		Metadata: o.metadata(req, method, chunks),
	}, ""
}

func (o *Orchestrator) metadata(req request, method string, chunks []rag.RankedChunk) *Metadata {
	var top float64
	if len(chunks) > 0 {
		top = chunks[0].CombinedScore
	}
	return &Metadata{
		MatchCount:      len(chunks),
		RetrievalMethod: method,
		TopScore:        top,
		ModelConfig:     req.preset,
		Params:          req.params,
		Timestamp:       o.now().UTC(),
	}
}

func (o *Orchestrator) failure(err error) QueryResult {
	result := QueryResult{Success: false, Error: GenericErrorMessage}
	if o.settings.Chat.ExposeErrorDetails {
		result.Details = err.Error()
	}
	return result
}

func (o *Orchestrator) record(ctx context.Context, req request, result QueryResult, stage string, start time.Time) {
	if o.recorder == nil {
		return
	}
	rec := storage.QueryRecord{
		ID:        req.id,
		Question:  req.message,
		Success:   result.Success,
		Filtered:  result.IsFiltered,
		Preset:    req.preset,
		LatencyMs: o.now().Sub(start).Milliseconds(),
		CreatedAt: start.UTC(),
	}
	if !result.Success {
		rec.Stage = stage
	}
	if result.Metadata != nil {
		rec.MatchCount = result.Metadata.MatchCount
		rec.TopScore = result.Metadata.TopScore
	}
	if err := o.recorder.SaveQuery(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("⚠️ [%s] could not record query: %v", req.id, err)
	}
}
