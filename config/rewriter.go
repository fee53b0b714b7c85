package config

import "fmt"

// RewriterConfig selects the generative model that polishes researched answers
type RewriterConfig struct {
	Model        string  `hcl:"model"`
	Instructions string  `hcl:"instructions,optional"`
	MaxTokens    int     `hcl:"max_tokens,optional"`
	Temperature  float64 `hcl:"temperature,optional"`
}

func (r *RewriterConfig) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}
