// Package rewrite turns a raw research report into a customer-ready answer
// with a single generative model call.
package rewrite

import (
	"context"
	"fmt"

	"enquirysync/config"
	"enquirysync/llm"
)

// Transformer rewrites researched answers with one model.
type Transformer struct {
	provider     llm.Provider
	ownsProvider bool

	model        string
	instructions string
	maxTokens    int
	temperature  float64
}

// Result is the rewritten answer and what it cost.
type Result struct {
	Text  string
	Model string
	Usage llm.Usage
	Cost  float64
}

// NewTransformer wraps an existing provider. model is the provider's model
// name (e.g. "gemini-2.0-flash").
func NewTransformer(provider llm.Provider, model string, cfg *config.RewriterConfig) *Transformer {
	t := &Transformer{provider: provider, model: model}
	if cfg != nil {
		t.instructions = cfg.Instructions
		t.maxTokens = cfg.MaxTokens
		t.temperature = cfg.Temperature
	}
	return t
}

// Open resolves the rewriter's model block and connects to its provider.
func Open(ctx context.Context, cfg *config.Config) (*Transformer, error) {
	if cfg.Rewriter == nil {
		return nil, fmt.Errorf("no rewriter configured")
	}
	modelCfg, modelName, err := cfg.ResolveModel(cfg.Rewriter.Model)
	if err != nil {
		return nil, err
	}

	provider, owns, err := createProvider(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	t := NewTransformer(provider, modelName, cfg.Rewriter)
	t.ownsProvider = owns
	return t, nil
}

// Model returns the provider model name used for rewrites.
func (t *Transformer) Model() string {
	return t.model
}

// Transform rewrites answer for query. prompt is the optional per-row
// instruction. The model output is returned as is.
func (t *Transformer) Transform(ctx context.Context, query, answer, prompt string) (*Result, error) {
	req := &llm.ChatRequest{
		Model: t.model,
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, BuildPrompt(query, answer, t.instructions, prompt)),
		},
		MaxTokens:   t.maxTokens,
		Temperature: t.temperature,
	}

	resp, err := t.provider.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rewrite with %s: %w", t.model, err)
	}

	return &Result{
		Text:  resp.Content,
		Model: t.model,
		Usage: resp.Usage,
		Cost:  config.CalculateCost(t.model, resp.Usage.InputTokens, resp.Usage.OutputTokens),
	}, nil
}

// Close releases the provider if this transformer created it.
func (t *Transformer) Close() error {
	if !t.ownsProvider {
		return nil
	}
	if c, ok := t.provider.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// createProvider creates the appropriate LLM provider based on config
func createProvider(ctx context.Context, modelConfig *config.Model) (llm.Provider, bool, error) {
	switch modelConfig.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIProvider(modelConfig.APIKey), false, nil
	case config.ProviderAnthropic:
		return llm.NewAnthropicProvider(modelConfig.APIKey), false, nil
	case config.ProviderGemini:
		provider, err := llm.NewGeminiProvider(ctx, modelConfig.APIKey)
		if err != nil {
			return nil, false, err
		}
		return provider, true, nil // Gemini provider needs to be closed
	default:
		return nil, false, fmt.Errorf("unknown provider: %s", modelConfig.Provider)
	}
}
