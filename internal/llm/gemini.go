package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// GeminiProvider implements the Provider interface for Google Gemini models
// via the generativelanguage REST API
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
	limiter    *Limiter
}

// Gemini API structures
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config, limiter *Limiter) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	if limiter == nil {
		limiter = NewLimiter(config.RequestsPerSecond, config.Burst)
	}

	return &GeminiProvider{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config:  config,
		limiter: limiter,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is properly configured
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1beta/models?key=%s", p.baseURL, p.apiKey), nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// AssessRisk analyzes a claim for fraud indicators
func (p *GeminiProvider) AssessRisk(ctx context.Context, claim model.Claim) (*model.RiskAssessment, error) {
	content, err := p.generate(ctx, opAssessRisk, BuildRiskPrompt(claim))
	if err != nil {
		return nil, err
	}
	return parseRiskAssessment(opAssessRisk, content)
}

// DecideRouting picks a processing path for an already-assessed claim
func (p *GeminiProvider) DecideRouting(ctx context.Context, claim model.Claim, risk model.RiskAssessment) (*model.RoutingDecision, error) {
	content, err := p.generate(ctx, opDecideRouting, BuildRoutingPrompt(claim, risk))
	if err != nil {
		return nil, err
	}
	return parseRoutingDecision(opDecideRouting, content)
}

// generate runs one generateContent call constrained to JSON output
func (p *GeminiProvider) generate(ctx context.Context, op, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx, op); err != nil {
		return "", upstreamErr(op, fmt.Errorf("rate limit wait: %w", err))
	}

	modelName := p.config.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	apiReq := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			MaxOutputTokens:  maxTokens,
			Temperature:      0.2,
		},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", upstreamErr(op, fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, modelName, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", upstreamErr(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", upstreamErr(op, fmt.Errorf("Gemini API error: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstreamErr(op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", upstreamErr(op, fmt.Errorf("Gemini API %d: %s", resp.StatusCode, apiErr.Error.Message))
		}
		return "", upstreamErr(op, fmt.Errorf("Gemini API status %d", resp.StatusCode))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", schemaErr(op, fmt.Errorf("decode response envelope: %w", err))
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", schemaErr(op, fmt.Errorf("empty response from Gemini"))
	}

	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}
