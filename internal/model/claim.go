package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for the incident date
const DateLayout = "2006-01-02"

// Claim represents a first-notice-of-loss submission as received from the caller
type Claim struct {
	// --- Required fields ---
	ClaimID          string    `json:"claim_id"`           // Public claim identifier, unique across submissions
	Type             string    `json:"type"`               // Claim type (e.g., "auto_collision", "property")
	Date             string    `json:"date"`               // Incident date as YYYY-MM-DD
	Amount           float64   `json:"amount"`             // Claimed monetary amount
	Description      string    `json:"description"`        // Free-text incident description
	CustomerID       string    `json:"customer_id"`        // Customer identifier
	PolicyNumber     string    `json:"policy_number"`      // Policy the claim is filed against
	IncidentLocation string    `json:"incident_location"`  // Where the incident occurred
	Submitted        Timestamp `json:"timestamp_submitted"` // When the claim was submitted

	// --- Optional fields ---
	PoliceReport       string `json:"police_report,omitempty"`        // Police report reference if available
	InjuriesReported   *bool  `json:"injuries_reported,omitempty"`    // Whether injuries were reported
	OtherPartyInvolved *bool  `json:"other_party_involved,omitempty"` // Whether another party was involved
	CustomerTenureDays *int   `json:"customer_tenure_days,omitempty"` // Customer tenure in days
	PreviousClaims     *int   `json:"previous_claims_count,omitempty"` // Number of prior claims

	// IncidentDate is the parsed form of Date, populated by validation.
	// Not part of the wire representation.
	IncidentDate time.Time `json:"-"`
}

// Timestamp wraps time.Time to accept submission timestamps both with and
// without a zone offset ("2024-01-15T10:45:00" and RFC 3339)
type Timestamp struct {
	time.Time
}

// timestampLayouts lists accepted wire formats, tried in order
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// UnmarshalJSON parses a timestamp from its JSON string form
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON renders the timestamp in RFC 3339 form
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
