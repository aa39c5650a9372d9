package gateway

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/topicscout/topicscout/app/database"
)

// CostTable maps (provider, model) to an estimated cost per 1,000 tokens in
// USD. The table is hand-maintained; unknown pairs estimate zero so usage
// statistics undercount rather than fail for unmapped models.
type CostTable struct {
	rates map[string]map[string]float64
}

func DefaultCostTable() *CostTable {
	return &CostTable{
		rates: map[string]map[string]float64{
			database.ProviderOpenAI: {
				"gpt-4o":        0.0075,
				"gpt-4o-mini":   0.000375,
				"gpt-4-turbo":   0.02,
				"gpt-3.5-turbo": 0.0015,
			},
			database.ProviderAzureOpenAI: {
				"gpt-4o":        0.0075,
				"gpt-4o-mini":   0.000375,
				"gpt-4-turbo":   0.02,
				"gpt-3.5-turbo": 0.0015,
			},
			database.ProviderAnthropic: {
				"claude-3-5-sonnet-latest": 0.009,
				"claude-3-5-haiku-latest":  0.0024,
				"claude-3-opus-latest":     0.045,
				"claude-3-haiku-20240307":  0.00075,
			},
			database.ProviderGemini: {
				"gemini-1.5-pro":   0.00625,
				"gemini-1.5-flash": 0.0005,
				"gemini-2.0-flash": 0.0005,
			},
			database.ProviderVertexAI: {
				"gemini-1.5-pro":   0.00625,
				"gemini-1.5-flash": 0.0005,
				"gemini-2.0-flash": 0.0005,
			},
		},
	}
}

// MergeOverrides merges per-model rates from a YAML file of the shape
// provider -> model -> cost per 1k tokens. Missing file is not an error when
// path is empty.
func (t *CostTable) MergeOverrides(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read cost table: %w", err)
	}

	var overrides map[string]map[string]float64
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse cost table: %w", err)
	}

	for provider, models := range overrides {
		if t.rates[provider] == nil {
			t.rates[provider] = make(map[string]float64)
		}
		for model, rate := range models {
			t.rates[provider][model] = rate
		}
	}
	return nil
}

// Estimate returns tokens/1000 x the table rate, or 0 for unknown pairs.
func (t *CostTable) Estimate(provider, model string, tokens int) float64 {
	models, ok := t.rates[provider]
	if !ok {
		return 0
	}
	rate, ok := models[model]
	if !ok {
		return 0
	}
	return float64(tokens) / 1000.0 * rate
}
