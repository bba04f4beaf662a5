package model

import "time"

// Dashboard is the aggregate reporting payload
type Dashboard struct {
	TotalClaims     int             `json:"total_claims"`
	ProcessingStats ProcessingStats `json:"processing_stats"`

	RiskDistribution      map[string]int `json:"risk_distribution"`       // counts by risk category
	PriorityDistribution  map[string]int `json:"priority_distribution"`   // counts by priority
	AdjusterDistribution  map[string]int `json:"adjuster_distribution"`   // counts by adjuster tier
	ClaimTypeDistribution map[string]int `json:"claim_type_distribution"` // counts by claim type

	RecentClaims  RecentClaimsMetrics `json:"recent_claims"`
	AmountMetrics AmountMetrics       `json:"amount_metrics"`

	RecentActivity    []RecentActivity `json:"recent_activity"`     // most recent 10 claims
	HighRiskLocations []string         `json:"high_risk_locations"` // up to 5, ranked by high-risk claim count
}

// ProcessingStats summarizes processing outcomes across all assessments
type ProcessingStats struct {
	TotalProcessed int     `json:"total_processed"`
	FraudDetected  int     `json:"fraud_detected"` // high-risk assessment count
	FraudRate      float64 `json:"fraud_rate"`     // high-risk / total * 100, 0 when empty
	AvgRiskScore   float64 `json:"avg_risk_score"`
}

// RecentClaimsMetrics buckets claim counts by submission time.
// Weeks start Monday, months on the 1st.
type RecentClaimsMetrics struct {
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// AmountMetrics summarizes claim amounts
type AmountMetrics struct {
	TotalAmount   float64 `json:"total_amount"`
	AverageAmount float64 `json:"average_amount"`
	HighestAmount float64 `json:"highest_amount"`
	LowestAmount  float64 `json:"lowest_amount"`
}

// RecentActivity is one row of the recent-claims feed
type RecentActivity struct {
	ClaimID   string    `json:"claim_id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	RiskLevel string    `json:"risk_level"`
	Priority  string    `json:"priority"`
	Submitted time.Time `json:"submitted_date"`
}
