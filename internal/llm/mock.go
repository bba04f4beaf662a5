package llm

import (
	"context"
	"sync"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// MockProvider is a scriptable Provider for tests and local development.
// It records the order of calls it receives.
type MockProvider struct {
	RiskResult  *model.RiskAssessment
	RiskErr     error
	RouteResult *model.RoutingDecision
	RouteErr    error

	mu    sync.Mutex
	calls []string
}

// NewMockProvider returns a mock preloaded with a plausible low-risk verdict
func NewMockProvider() *MockProvider {
	return &MockProvider{
		RiskResult: &model.RiskAssessment{
			FraudIndicators: []string{"none observed"},
			RiskScore:       2,
			RiskCategory:    model.RiskLow,
			ProcessingScore: 8,
		},
		RouteResult: &model.RoutingDecision{
			Priority:     model.PriorityNormal,
			AdjusterTier: model.TierStandard,
		},
	}
}

// Name returns the provider name
func (m *MockProvider) Name() string { return "mock" }

// IsAvailable always reports true
func (m *MockProvider) IsAvailable(ctx context.Context) bool { return true }

// AssessRisk returns the scripted risk result or error
func (m *MockProvider) AssessRisk(ctx context.Context, claim model.Claim) (*model.RiskAssessment, error) {
	m.record(opAssessRisk)
	if m.RiskErr != nil {
		return nil, m.RiskErr
	}
	result := *m.RiskResult
	return &result, nil
}

// DecideRouting returns the scripted routing result or error
func (m *MockProvider) DecideRouting(ctx context.Context, claim model.Claim, risk model.RiskAssessment) (*model.RoutingDecision, error) {
	m.record(opDecideRouting)
	if m.RouteErr != nil {
		return nil, m.RouteErr
	}
	result := *m.RouteResult
	return &result, nil
}

// Calls returns the operations invoked so far, in order
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockProvider) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}
