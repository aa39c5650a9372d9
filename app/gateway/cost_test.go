package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/topicscout/topicscout/app/database"
)

func TestEstimateDeterministic(t *testing.T) {
	table := DefaultCostTable()

	first := table.Estimate(database.ProviderOpenAI, "gpt-4o-mini", 1500)
	second := table.Estimate(database.ProviderOpenAI, "gpt-4o-mini", 1500)
	if first != second {
		t.Errorf("Estimate not deterministic: %f vs %f", first, second)
	}
	if first <= 0 {
		t.Errorf("Expected positive cost for known model, got %f", first)
	}
}

func TestEstimateScalesWithTokens(t *testing.T) {
	table := DefaultCostTable()

	small := table.Estimate(database.ProviderAnthropic, "claude-3-5-haiku-latest", 1000)
	large := table.Estimate(database.ProviderAnthropic, "claude-3-5-haiku-latest", 2000)
	if large != small*2 {
		t.Errorf("Expected linear scaling, got %f and %f", small, large)
	}
}

func TestEstimateUnknownModel(t *testing.T) {
	table := DefaultCostTable()

	if got := table.Estimate(database.ProviderOpenAI, "nonexistent-model", 1000); got != 0 {
		t.Errorf("Expected 0 for unknown model, got %f", got)
	}
	if got := table.Estimate("nonexistent-provider", "gpt-4o", 1000); got != 0 {
		t.Errorf("Expected 0 for unknown provider, got %f", got)
	}
}

func TestMergeOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.yml")
	data := "openai:\n  custom-model: 0.5\n  gpt-4o-mini: 0.001\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write cost file: %v", err)
	}

	table := DefaultCostTable()
	if err := table.MergeOverrides(path); err != nil {
		t.Fatalf("MergeOverrides failed: %v", err)
	}

	if got := table.Estimate(database.ProviderOpenAI, "custom-model", 1000); got != 0.5 {
		t.Errorf("Expected override rate 0.5 per 1k, got %f", got)
	}
	if got := table.Estimate(database.ProviderOpenAI, "gpt-4o-mini", 1000); got != 0.001 {
		t.Errorf("Expected overridden rate 0.001 per 1k, got %f", got)
	}
	// Untouched entries survive the merge.
	if got := table.Estimate(database.ProviderAnthropic, "claude-3-5-haiku-latest", 1000); got <= 0 {
		t.Errorf("Expected default anthropic rate preserved, got %f", got)
	}
}

func TestMergeOverridesEmptyPath(t *testing.T) {
	table := DefaultCostTable()
	if err := table.MergeOverrides(""); err != nil {
		t.Errorf("Empty path must be a no-op, got %v", err)
	}
}
