package models

import "context"

// Completer is the external text generation capability.
type Completer interface {
	Complete(ctx context.Context, prompt string, params Params) (*Completion, error)
}
