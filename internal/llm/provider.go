package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// Provider defines the interface for external decision services.
// Both calls serialize structured claim data into an instruction payload,
// request a response constrained to a fixed JSON schema, and validate the
// decoded result before returning it. Neither call retries internally.
type Provider interface {
	// Name returns the provider name
	Name() string

	// AssessRisk analyzes a validated claim for fraud indicators
	AssessRisk(ctx context.Context, claim model.Claim) (*model.RiskAssessment, error)

	// DecideRouting picks a processing path given the claim and its risk assessment
	DecideRouting(ctx context.Context, claim model.Claim, risk model.RiskAssessment) (*model.RoutingDecision, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds decision-service provider configuration
type Config struct {
	// Provider name: "openai", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints (tests, proxies)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerSecond caps the upstream call rate (0 disables limiting)
	RequestsPerSecond float64

	// Burst for the rate limiter
	Burst int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ErrorKind classifies decision-service failures
type ErrorKind string

const (
	// KindUpstreamUnavailable covers network failures, timeouts, and
	// non-success responses from the decision service. Transient: the
	// caller may retry the whole pipeline.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"

	// KindSchemaViolation covers responses that are unparseable or
	// incomplete against the required schema. Not transient.
	KindSchemaViolation ErrorKind = "schema_violation"
)

// DecisionError reports a failed decision-service call
type DecisionError struct {
	Kind ErrorKind
	Op   string // "assess_risk" or "decide_routing"
	Err  error
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *DecisionError) Unwrap() error {
	return e.Err
}

func upstreamErr(op string, err error) *DecisionError {
	return &DecisionError{Kind: KindUpstreamUnavailable, Op: op, Err: err}
}

func schemaErr(op string, err error) *DecisionError {
	return &DecisionError{Kind: KindSchemaViolation, Op: op, Err: err}
}

// BuildRiskPrompt constructs the risk assessment instruction payload
func BuildRiskPrompt(claim model.Claim) string {
	claimJSON, _ := json.Marshal(claim)

	return fmt.Sprintf(`You are a fraud detection assistant for insurance claims.

Analyze the following claim data and determine:
1. Fraud indicators present (list 3-5 simple rules you see triggered)
2. Risk score on a scale from 0 (lowest) to 10 (highest)
3. Risk category: low, medium, or high
4. Processing readiness score: on a scale from 1 (not ready) to 10 (fully ready), based on whether the claim description and details are sufficient to process.

Return ONLY a JSON object with this structure:
{"fraud_indicators": ["..."], "risk_score": 0, "risk_category": "low|medium|high", "processing_score": 1}

Claim Data:
%s`, claimJSON)
}

// BuildRoutingPrompt constructs the routing instruction payload.
// Routing always consumes a prior risk assessment as context.
func BuildRoutingPrompt(claim model.Claim, risk model.RiskAssessment) string {
	claimJSON, _ := json.Marshal(claim)
	riskJSON, _ := json.Marshal(risk)

	return fmt.Sprintf(`You are an experienced operations manager at an insurance company.

Your task is to determine the optimal processing path for a claim based on:
1. Structured Claim Data
2. Risk Assessment Report

Instructions:
- Decide a priority level: "urgent", "normal", or "low".
- Select an adjuster tier: "standard", "junior", "senior", or "fraud_specialist".
- If data is incomplete, include validation_errors.

Return ONLY a JSON object with this structure:
{"priority": "low|normal|urgent", "adjuster_tier": "standard|junior|senior|fraud_specialist", "validation_errors": ["..."]}

Structured Claim Data:
%s

Risk Assessment Report:
%s`, claimJSON, riskJSON)
}

// riskPayload mirrors the risk response schema with presence tracking
type riskPayload struct {
	FraudIndicators []string `json:"fraud_indicators"`
	RiskScore       *int     `json:"risk_score"`
	RiskCategory    *string  `json:"risk_category"`
	ProcessingScore *int     `json:"processing_score"`
}

// parseRiskAssessment decodes and validates a risk response body
func parseRiskAssessment(op string, raw string) (*model.RiskAssessment, error) {
	var payload riskPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, schemaErr(op, fmt.Errorf("decode response: %w", err))
	}

	var missing []string
	if payload.FraudIndicators == nil {
		missing = append(missing, "fraud_indicators")
	}
	if payload.RiskScore == nil {
		missing = append(missing, "risk_score")
	}
	if payload.RiskCategory == nil {
		missing = append(missing, "risk_category")
	}
	if payload.ProcessingScore == nil {
		missing = append(missing, "processing_score")
	}
	if len(missing) > 0 {
		return nil, schemaErr(op, fmt.Errorf("response missing required fields: %s", strings.Join(missing, ", ")))
	}

	if *payload.RiskScore < 0 || *payload.RiskScore > 10 {
		return nil, schemaErr(op, fmt.Errorf("risk_score %d out of range [0,10]", *payload.RiskScore))
	}
	if *payload.ProcessingScore < 1 || *payload.ProcessingScore > 10 {
		return nil, schemaErr(op, fmt.Errorf("processing_score %d out of range [1,10]", *payload.ProcessingScore))
	}

	category := model.RiskCategory(strings.ToLower(*payload.RiskCategory))
	if !model.ValidRiskCategory(category) {
		return nil, schemaErr(op, fmt.Errorf("unknown risk_category %q", *payload.RiskCategory))
	}

	return &model.RiskAssessment{
		FraudIndicators: payload.FraudIndicators,
		RiskScore:       *payload.RiskScore,
		RiskCategory:    category,
		ProcessingScore: *payload.ProcessingScore,
	}, nil
}

// routingPayload mirrors the routing response schema with presence tracking
type routingPayload struct {
	Priority         *string  `json:"priority"`
	AdjusterTier     *string  `json:"adjuster_tier"`
	ValidationErrors []string `json:"validation_errors"`
}

// parseRoutingDecision decodes and validates a routing response body
func parseRoutingDecision(op string, raw string) (*model.RoutingDecision, error) {
	var payload routingPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, schemaErr(op, fmt.Errorf("decode response: %w", err))
	}

	var missing []string
	if payload.Priority == nil {
		missing = append(missing, "priority")
	}
	if payload.AdjusterTier == nil {
		missing = append(missing, "adjuster_tier")
	}
	if len(missing) > 0 {
		return nil, schemaErr(op, fmt.Errorf("response missing required fields: %s", strings.Join(missing, ", ")))
	}

	priority := model.Priority(strings.ToLower(*payload.Priority))
	if !model.ValidPriority(priority) {
		return nil, schemaErr(op, fmt.Errorf("unknown priority %q", *payload.Priority))
	}

	tier := model.AdjusterTier(strings.ToLower(*payload.AdjusterTier))
	if !model.ValidAdjusterTier(tier) {
		return nil, schemaErr(op, fmt.Errorf("unknown adjuster_tier %q", *payload.AdjusterTier))
	}

	return &model.RoutingDecision{
		Priority:         priority,
		AdjusterTier:     tier,
		ValidationErrors: payload.ValidationErrors,
	}, nil
}

// stripFences removes a markdown code fence wrapper, which some models
// emit around JSON despite instructions
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
