package models

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionChoice struct {
	Index        int          `json:"index"`
	Text         string       `json:"text,omitempty"`
	Message      *chatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason"`
}

// Completion covers the response shapes the hosted text models are known to
// return: OpenAI completions/chat, Ollama and Workers AI style bodies.
type Completion struct {
	Response string             `json:"response,omitempty"`
	Result   *completionResult  `json:"result,omitempty"`
	Choices  []completionChoice `json:"choices,omitempty"`
	Text     string             `json:"text,omitempty"`
}

type completionResult struct {
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingItem struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data  []embeddingItem `json:"data"`
	Model string          `json:"model"`
}
