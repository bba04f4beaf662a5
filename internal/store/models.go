package store

import (
	"strings"
	"time"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// fraudIndicatorSeparator joins indicator labels into one column
const fraudIndicatorSeparator = ", "

// ClaimRecord is the persisted form of a claim
type ClaimRecord struct {
	ID uint `gorm:"primaryKey"`

	ClaimID          string    `gorm:"column:claim_id;uniqueIndex;not null"`
	Type             string    `gorm:"column:type;not null"`
	IncidentDate     time.Time `gorm:"column:date;not null"`
	Amount           float64   `gorm:"column:amount;not null"`
	Description      string    `gorm:"column:description;not null"`
	CustomerID       string    `gorm:"column:customer_id;not null"`
	PolicyNumber     string    `gorm:"column:policy_number;not null"`
	IncidentLocation string    `gorm:"column:incident_location;not null"`
	Submitted        time.Time `gorm:"column:timestamp_submitted;index;not null"`

	PoliceReport       string `gorm:"column:police_report"`
	InjuriesReported   *bool  `gorm:"column:injuries_reported"`
	OtherPartyInvolved *bool  `gorm:"column:other_party_involved"`
	CustomerTenureDays *int   `gorm:"column:customer_tenure_days"`
	PreviousClaims     *int   `gorm:"column:previous_claims_count"`

	CreatedAt time.Time
}

// TableName sets the claims table name
func (ClaimRecord) TableName() string { return "claims" }

// AssessmentRecord is the persisted combined risk + routing result.
// Exactly one row per claim, written as the final step of a pipeline run.
type AssessmentRecord struct {
	ID uint `gorm:"primaryKey"`

	ClaimKey uint        `gorm:"column:claim_key;uniqueIndex;not null"`
	Claim    ClaimRecord `gorm:"foreignKey:ClaimKey"`

	RiskScore       int    `gorm:"column:risk_score;not null"`
	RiskCategory    string `gorm:"column:risk_category;index;not null"`
	FraudIndicators string `gorm:"column:fraud_indicators"` // comma-joined labels
	ProcessingScore int    `gorm:"column:processing_score;not null"`

	Priority     string `gorm:"column:priority;not null"`
	AdjusterTier string `gorm:"column:adjuster_tier;not null"`

	CreatedAt time.Time
}

// TableName sets the assessments table name
func (AssessmentRecord) TableName() string { return "claim_assessments" }

func toClaimRecord(claim model.Claim) *ClaimRecord {
	return &ClaimRecord{
		ClaimID:            claim.ClaimID,
		Type:               claim.Type,
		IncidentDate:       claim.IncidentDate,
		Amount:             claim.Amount,
		Description:        claim.Description,
		CustomerID:         claim.CustomerID,
		PolicyNumber:       claim.PolicyNumber,
		IncidentLocation:   claim.IncidentLocation,
		Submitted:          claim.Submitted.Time,
		PoliceReport:       claim.PoliceReport,
		InjuriesReported:   claim.InjuriesReported,
		OtherPartyInvolved: claim.OtherPartyInvolved,
		CustomerTenureDays: claim.CustomerTenureDays,
		PreviousClaims:     claim.PreviousClaims,
	}
}

func toClaim(record *ClaimRecord) model.Claim {
	return model.Claim{
		ClaimID:            record.ClaimID,
		Type:               record.Type,
		Date:               record.IncidentDate.Format(model.DateLayout),
		IncidentDate:       record.IncidentDate,
		Amount:             record.Amount,
		Description:        record.Description,
		CustomerID:         record.CustomerID,
		PolicyNumber:       record.PolicyNumber,
		IncidentLocation:   record.IncidentLocation,
		Submitted:          model.Timestamp{Time: record.Submitted},
		PoliceReport:       record.PoliceReport,
		InjuriesReported:   record.InjuriesReported,
		OtherPartyInvolved: record.OtherPartyInvolved,
		CustomerTenureDays: record.CustomerTenureDays,
		PreviousClaims:     record.PreviousClaims,
	}
}

func toRiskAssessment(record *AssessmentRecord) model.RiskAssessment {
	return model.RiskAssessment{
		FraudIndicators: splitIndicators(record.FraudIndicators),
		RiskScore:       record.RiskScore,
		RiskCategory:    model.RiskCategory(record.RiskCategory),
		ProcessingScore: record.ProcessingScore,
	}
}

func toRoutingDecision(record *AssessmentRecord) model.RoutingDecision {
	return model.RoutingDecision{
		Priority:     model.Priority(record.Priority),
		AdjusterTier: model.AdjusterTier(record.AdjusterTier),
	}
}

func joinIndicators(indicators []string) string {
	return strings.Join(indicators, fraudIndicatorSeparator)
}

func splitIndicators(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, fraudIndicatorSeparator)
}
