package config

import (
	"fmt"
	"sort"
)

type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// SupportedModels maps provider to their supported model names.
// The keys are the names used in HCL references (e.g., models.gemini.gemini_2_0_flash).
var SupportedModels = map[Provider]map[string]string{
	ProviderGemini: {
		"gemini_2_0_flash":      "gemini-2.0-flash",
		"gemini_2_0_flash_lite": "gemini-2.0-flash-lite",
		"gemini_2_5_flash":      "gemini-2.5-flash",
		"gemini_2_5_pro":        "gemini-2.5-pro",
		"gemini_1_5_pro":        "gemini-1.5-pro",
	},
	ProviderOpenAI: {
		"gpt_4o":      "gpt-4o",
		"gpt_4o_mini": "gpt-4o-mini",
		"gpt_4_1":     "gpt-4.1",
	},
	ProviderAnthropic: {
		"claude_sonnet_4":  "claude-sonnet-4-20250514",
		"claude_3_5_haiku": "claude-3-5-haiku-20241022",
	},
}

// Model represents a model provider configuration
type Model struct {
	Name          string   `hcl:"name,label"`
	Provider      Provider `hcl:"provider"`
	AllowedModels []string `hcl:"allowed_models"`
	APIKey        string   `hcl:"api_key"`
}

func (m *Model) Validate() error {
	supportedForProvider, ok := SupportedModels[m.Provider]
	if !ok {
		return fmt.Errorf("Unsupported provider; Provider '%s' is not supported", m.Provider)
	}

	for _, modelName := range m.AllowedModels {
		if _, found := supportedForProvider[modelName]; !found {
			return fmt.Errorf("Unsupported model; Model '%s' is not supported for provider '%s'. Supported models: %v", modelName, m.Provider, getKeys(supportedForProvider))
		}
	}
	return nil
}

func getKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
