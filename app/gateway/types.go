package gateway

import (
	"context"
)

// Request is a generic text-generation request routed through a user's
// resolved AI configuration.
type Request struct {
	Prompt       string
	SystemPrompt string
	UserID       string
	Operation    string
	// ConfigID selects a specific configuration. Empty uses the user's default.
	ConfigID string
}

// Result is the normalized outcome of one provider call.
type Result struct {
	Content        string
	TokensUsed     *int // nil when the vendor does not report usage
	EstimatedCost  float64
	ResponseTimeMs int
}

// StructuredExtract is the JSON-shaped analysis produced by ExtractStructured.
type StructuredExtract struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// completion is a raw vendor response before cost estimation and logging.
type completion struct {
	content    string
	tokensUsed *int
}

// provider is one vendor binding built from a resolved configuration.
// Implementations form a closed set; adding a vendor means adding a type and
// extending buildProvider's switch.
type provider interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (*completion, error)
}
