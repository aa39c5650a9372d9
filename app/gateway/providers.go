package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"

	"github.com/topicscout/topicscout/app/database"
)

// buildProvider maps a resolved configuration onto one vendor binding.
// The switch is exhaustive over the supported provider identifiers.
func buildProvider(cfg *database.AIModelConfig, maxTokens int) (provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("configuration %s has an empty API key", cfg.ID)
	}

	switch cfg.Provider {
	case database.ProviderOpenAI:
		return newOpenAIProvider(cfg, maxTokens, ""), nil
	case database.ProviderAzureOpenAI:
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, fmt.Errorf("azure_openai configuration %s requires a base URL", cfg.ID)
		}
		return newOpenAIProvider(cfg, maxTokens, cfg.BaseURL), nil
	case database.ProviderAnthropic:
		return newAnthropicProvider(cfg, maxTokens), nil
	case database.ProviderGemini:
		return newGeminiProvider(cfg, maxTokens), nil
	case database.ProviderVertexAI:
		return newVertexProvider(cfg, maxTokens)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// openaiProvider serves both OpenAI and Azure OpenAI; the latter shares the
// chat-completions wire shape and differs only in endpoint.
type openaiProvider struct {
	client    openaiclient.Client
	model     string
	maxTokens int
}

func newOpenAIProvider(cfg *database.AIModelConfig, maxTokens int, baseURL string) *openaiProvider {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(cfg.APIKey),
		openaioption.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	if cfg.OrganizationID != "" {
		opts = append(opts, openaioption.WithOrganization(cfg.OrganizationID))
	}

	return &openaiProvider{
		client:    openaiclient.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (p *openaiProvider) Complete(ctx context.Context, systemPrompt, prompt string) (*completion, error) {
	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openaiclient.SystemMessage(systemPrompt))
	}
	messages = append(messages, openaiclient.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model:     openaiclient.ChatModel(p.model),
		Messages:  messages,
		MaxTokens: openaiclient.Int(int64(p.maxTokens)),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	result := &completion{content: resp.Choices[0].Message.Content}
	if resp.Usage.TotalTokens > 0 {
		tokens := int(resp.Usage.TotalTokens)
		result.tokensUsed = &tokens
	}
	return result, nil
}

type anthropicProvider struct {
	client    anthropicclient.Client
	model     string
	maxTokens int
}

func newAnthropicProvider(cfg *database.AIModelConfig, maxTokens int) *anthropicProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	return &anthropicProvider{
		client:    anthropicclient.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (p *anthropicProvider) Complete(ctx context.Context, systemPrompt, prompt string) (*completion, error) {
	params := anthropicclient.MessageNewParams{
		Model:     anthropicclient.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(anthropicclient.NewTextBlock(prompt)),
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		params.System = []anthropicclient.TextBlockParam{{Text: systemPrompt}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty response from model")
	}

	result := &completion{content: text.String()}
	if total := msg.Usage.InputTokens + msg.Usage.OutputTokens; total > 0 {
		tokens := int(total)
		result.tokensUsed = &tokens
	}
	return result, nil
}
