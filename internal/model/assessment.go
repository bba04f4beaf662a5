package model

// RiskCategory classifies the overall fraud risk of a claim
type RiskCategory string

const (
	RiskLow    RiskCategory = "low"
	RiskMedium RiskCategory = "medium"
	RiskHigh   RiskCategory = "high"
)

// ValidRiskCategory reports whether the decision service returned a known category
func ValidRiskCategory(c RiskCategory) bool {
	switch c {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// RiskAssessment is the structured verdict of the risk decision call
type RiskAssessment struct {
	FraudIndicators []string     `json:"fraud_indicators"` // Triggered fraud indicator labels
	RiskScore       int          `json:"risk_score"`       // 0-10, higher is riskier
	RiskCategory    RiskCategory `json:"risk_category"`    // low, medium, high
	ProcessingScore int          `json:"processing_score"` // 1-10 processing readiness
}

// Priority is the processing priority assigned by routing.
// Unified three-way set; earlier schema revisions dropped "low".
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether the decision service returned a known priority
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityUrgent:
		return true
	}
	return false
}

// AdjusterTier identifies which adjuster pool handles the claim
type AdjusterTier string

const (
	TierStandard        AdjusterTier = "standard"
	TierJunior          AdjusterTier = "junior"
	TierSenior          AdjusterTier = "senior"
	TierFraudSpecialist AdjusterTier = "fraud_specialist"
)

// ValidAdjusterTier reports whether the decision service returned a known tier
func ValidAdjusterTier(t AdjusterTier) bool {
	switch t {
	case TierStandard, TierJunior, TierSenior, TierFraudSpecialist:
		return true
	}
	return false
}

// RoutingDecision is the structured verdict of the routing decision call
type RoutingDecision struct {
	Priority         Priority     `json:"priority"`
	AdjusterTier     AdjusterTier `json:"adjuster_tier"`
	ValidationErrors []string     `json:"validation_errors,omitempty"` // Gaps the decision service flagged in the claim data
}

// ClaimAssessment is the combined pipeline result returned to the caller
// after a successful run
type ClaimAssessment struct {
	Claim   Claim           `json:"claim"`
	Risk    RiskAssessment  `json:"risk_assessment"`
	Routing RoutingDecision `json:"routing_decision"`
}

// AssessmentSummary is the compact list form of a persisted assessment
type AssessmentSummary struct {
	ClaimID          string   `json:"claim_id"`
	RiskLevel        string   `json:"risk_level"`
	Priority         string   `json:"priority"`
	AdjusterTier     string   `json:"adjuster_tier"`
	FraudIndicators  []string `json:"fraud_indicators,omitempty"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
}

// AssessmentPage is one page of persisted assessments
type AssessmentPage struct {
	PageNo   int                 `json:"page_no"`
	PageSize int                 `json:"page_size"`
	Data     []AssessmentSummary `json:"data"`
}
