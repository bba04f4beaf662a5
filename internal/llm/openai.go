package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

const (
	opAssessRisk    = "assess_risk"
	opDecideRouting = "decide_routing"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client  *openai.Client
	config  Config
	limiter *Limiter
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config, limiter *Limiter) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if limiter == nil {
		limiter = NewLimiter(config.RequestsPerSecond, config.Burst)
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		limiter: limiter,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// AssessRisk analyzes a claim for fraud indicators
func (p *OpenAIProvider) AssessRisk(ctx context.Context, claim model.Claim) (*model.RiskAssessment, error) {
	content, err := p.complete(ctx, opAssessRisk, BuildRiskPrompt(claim))
	if err != nil {
		return nil, err
	}
	return parseRiskAssessment(opAssessRisk, content)
}

// DecideRouting picks a processing path for an already-assessed claim
func (p *OpenAIProvider) DecideRouting(ctx context.Context, claim model.Claim, risk model.RiskAssessment) (*model.RoutingDecision, error) {
	content, err := p.complete(ctx, opDecideRouting, BuildRoutingPrompt(claim, risk))
	if err != nil {
		return nil, err
	}
	return parseRoutingDecision(opDecideRouting, content)
}

// complete runs one chat completion constrained to JSON output
func (p *OpenAIProvider) complete(ctx context.Context, op, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx, op); err != nil {
		return "", upstreamErr(op, fmt.Errorf("rate limit wait: %w", err))
	}

	modelName := p.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a decision engine for insurance claim processing. Respond with a single JSON object matching the requested schema, nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", upstreamErr(op, fmt.Errorf("OpenAI API error: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", upstreamErr(op, fmt.Errorf("no response from OpenAI"))
	}

	return resp.Choices[0].Message.Content, nil
}
