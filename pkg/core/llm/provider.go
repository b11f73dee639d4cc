// Package llm wraps the model providers used to draft DCF scenario
// assumptions. Providers return raw text; structure is enforced downstream
// by the payload parser, never trusted from the model.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// StaticProvider returns a canned response. Used in tests and as a dry-run
// provider when no API key is configured.
type StaticProvider struct {
	Response string
	Err      error
}

func (p *StaticProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	return p.Response, nil
}
