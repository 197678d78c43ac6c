package models

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = time.Second
)

var ErrEmptyResponse = errors.New("model returned no text")

// GenerationError is returned once every attempt has failed.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `yaml:"retry_delay" validate:"gte=0"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: DefaultMaxRetries, RetryDelay: DefaultRetryDelay}
}

type GenerateOptions struct {
	Retry  RetryConfig
	Params Params
}

type extractor func(*Completion) string

var extractors = []extractor{
	func(c *Completion) string { return c.Response },
	func(c *Completion) string {
		if c.Result == nil {
			return ""
		}
		return c.Result.Response
	},
	func(c *Completion) string {
		if len(c.Choices) == 0 {
			return ""
		}
		return c.Choices[0].Text
	},
	func(c *Completion) string {
		if len(c.Choices) == 0 || c.Choices[0].Message == nil {
			return ""
		}
		return c.Choices[0].Message.Content
	},
	func(c *Completion) string { return c.Text },
}

// ExtractText returns the first non-blank text found in the completion.
func ExtractText(c *Completion) (string, error) {
	if c == nil {
		return "", ErrEmptyResponse
	}
	for _, extract := range extractors {
		if text := extract(c); strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", ErrEmptyResponse
}

func BuildPrompt(system, user string) string {
	return system + "\n\nUser: " + user + "\n\nAssistant:"
}

type Generator struct {
	completer Completer
}

func NewGenerator(completer Completer) *Generator {
	return &Generator{completer: completer}
}

// GenerateWithRetry makes 1 + MaxRetries attempts at most, waiting a fixed
// RetryDelay between them.
func (g *Generator) GenerateWithRetry(ctx context.Context, system, user string, opts GenerateOptions) (string, error) {
	prompt := BuildPrompt(system, user)
	attempts := opts.Retry.MaxRetries + 1

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := wait(ctx, opts.Retry.RetryDelay); err != nil {
				return "", &GenerationError{Attempts: i, Err: err}
			}
		}

		text, err := g.generateOnce(ctx, prompt, opts.Params)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Printf("⚠️ Generation attempt %d/%d failed: %v", i+1, attempts, err)
	}

	return "", &GenerationError{Attempts: attempts, Err: lastErr}
}

func (g *Generator) generateOnce(ctx context.Context, prompt string, params Params) (string, error) {
	completion, err := g.completer.Complete(ctx, prompt, params)
	if err != nil {
		return "", err
	}
	return ExtractText(completion)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
