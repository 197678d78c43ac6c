package chat

import (
	"time"

	"PortfolioAI/app/models"
	"PortfolioAI/app/prompts"
)

const (
	GenericErrorMessage = "Sorry, something went wrong on my side. Please try again later."

	MethodHybrid   = "hybrid"
	MethodSemantic = "semantic"
)

type Options struct {
	TopK                int               `json:"topK,omitempty" validate:"omitempty,min=1,max=20"`
	UseHybridSearch     *bool             `json:"useHybridSearch,omitempty"`
	IncludeContext      *bool             `json:"includeContext,omitempty"`
	ModelConfig         string            `json:"modelConfig,omitempty" validate:"omitempty,max=32"`
	ConversationHistory []prompts.Message `json:"conversationHistory,omitempty" validate:"omitempty,max=50,dive"`
}

type QueryResult struct {
	Success    bool      `json:"success"`
	Answer     string    `json:"answer,omitempty"`
	Error      string    `json:"error,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	IsFiltered bool      `json:"isFiltered,omitempty"`
	Details    string    `json:"details,omitempty"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

type Metadata struct {
	MatchCount      int           `json:"matchCount"`
	RetrievalMethod string        `json:"retrievalMethod"`
	TopScore        float64       `json:"topScore"`
	ModelConfig     string        `json:"modelConfig"`
	Params          models.Params `json:"params"`
	Timestamp       time.Time     `json:"timestamp"`
}
