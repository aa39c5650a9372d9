package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/topicscout/topicscout/app/database"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// geminiProvider speaks the Gemini generateContent wire format over plain
// HTTP. Vertex AI uses the same request and response shape, so both vendor
// variants share this implementation and differ only in endpoint and auth.
type geminiProvider struct {
	endpoint  string
	headers   map[string]string
	maxTokens int
	client    *http.Client
}

func newGeminiProvider(cfg *database.AIModelConfig, maxTokens int) *geminiProvider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultGeminiBaseURL
	}
	return &geminiProvider{
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, cfg.Model),
		headers: map[string]string{
			"x-goog-api-key": cfg.APIKey,
		},
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func newVertexProvider(cfg *database.AIModelConfig, maxTokens int) (*geminiProvider, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("vertexai configuration %s requires project ID and region", cfg.ID)
	}
	endpoint := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		cfg.Region, cfg.ProjectID, cfg.Region, cfg.Model)

	return &geminiProvider{
		endpoint: endpoint,
		headers: map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		},
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  geminiGenConfig  `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *geminiProvider) Complete(ctx context.Context, systemPrompt, prompt string) (*completion, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{MaxOutputTokens: p.maxTokens},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("API error %d (%s): %s", apiResp.Error.Code, apiResp.Error.Status, apiResp.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}

	var text strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, errors.New("empty response from model")
	}

	result := &completion{content: text.String()}
	if apiResp.UsageMetadata != nil && apiResp.UsageMetadata.TotalTokenCount > 0 {
		tokens := apiResp.UsageMetadata.TotalTokenCount
		result.tokensUsed = &tokens
	}
	return result, nil
}
