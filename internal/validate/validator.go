package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// MinDescriptionLength is the minimum trimmed description length
const MinDescriptionLength = 30

// Failure causes. Exactly one applies per validation error.
const (
	CauseMissingFields    = "missing_fields"
	CauseInvalidDate      = "invalid_date"
	CauseShortDescription = "short_description"
)

// Error reports a claim that failed intake validation
type Error struct {
	Cause   string   // one of the Cause* constants
	Fields  []string // populated for CauseMissingFields
	Message string   // user-facing detail
}

func (e *Error) Error() string {
	return e.Message
}

// mandatoryFields lists required claim attributes in reporting order
var mandatoryFields = []string{
	"claim_id",
	"type",
	"date",
	"amount",
	"description",
	"customer_id",
	"policy_number",
	"incident_location",
	"timestamp_submitted",
}

// Validate checks a submitted claim for completeness and minimal quality.
// Checks run in order: mandatory fields, date format, description length;
// the first failing check wins. On success the returned claim carries the
// parsed incident date; the input is otherwise unchanged. Pure function,
// no side effects.
func Validate(claim model.Claim) (model.Claim, error) {
	if missing := missingFields(claim); len(missing) > 0 {
		return claim, &Error{
			Cause:   CauseMissingFields,
			Fields:  missing,
			Message: "Missing mandatory fields: " + strings.Join(missing, ", "),
		}
	}

	parsed, err := time.Parse(model.DateLayout, claim.Date)
	if err != nil {
		return claim, &Error{
			Cause:   CauseInvalidDate,
			Message: fmt.Sprintf("Invalid date format for field 'date': %v", err),
		}
	}
	claim.IncidentDate = parsed

	if len(strings.TrimSpace(claim.Description)) < MinDescriptionLength {
		return claim, &Error{
			Cause:   CauseShortDescription,
			Message: fmt.Sprintf("Description must be at least %d characters long", MinDescriptionLength),
		}
	}

	return claim, nil
}

// missingFields returns the names of mandatory fields that are absent or
// empty, in reporting order. A zero amount or zero timestamp counts as
// absent since neither is a meaningful submission value.
func missingFields(claim model.Claim) []string {
	var missing []string
	for _, field := range mandatoryFields {
		if fieldEmpty(claim, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func fieldEmpty(claim model.Claim, field string) bool {
	switch field {
	case "claim_id":
		return claim.ClaimID == ""
	case "type":
		return claim.Type == ""
	case "date":
		return claim.Date == ""
	case "amount":
		return claim.Amount <= 0
	case "description":
		return claim.Description == ""
	case "customer_id":
		return claim.CustomerID == ""
	case "policy_number":
		return claim.PolicyNumber == ""
	case "incident_location":
		return claim.IncidentLocation == ""
	case "timestamp_submitted":
		return claim.Submitted.IsZero()
	}
	return false
}
