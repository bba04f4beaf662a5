package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func storedClaim(id string, submitted time.Time) model.Claim {
	return model.Claim{
		ClaimID:          id,
		Type:             "auto_collision",
		Date:             "2024-01-15",
		IncidentDate:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:           2500,
		Description:      "Minor fender bender in parking lot at low speed.",
		CustomerID:       "CUST-123",
		PolicyNumber:     "POL-789-ACTIVE",
		IncidentLocation: "123 Main St, Springfield",
		Submitted:        model.Timestamp{Time: submitted},
	}
}

func highRisk() model.RiskAssessment {
	return model.RiskAssessment{
		FraudIndicators: []string{"late policy activation", "suspicious location"},
		RiskScore:       8,
		RiskCategory:    model.RiskHigh,
		ProcessingScore: 6,
	}
}

func urgentRouting() model.RoutingDecision {
	return model.RoutingDecision{
		Priority:     model.PriorityUrgent,
		AdjusterTier: model.TierFraudSpecialist,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	claim, err := s.SaveClaim(ctx, storedClaim("CLM-1", time.Now()))
	if err != nil {
		t.Fatalf("SaveClaim failed: %v", err)
	}
	if claim.ID == 0 {
		t.Error("Expected surrogate key to be assigned")
	}

	if _, err := s.SaveAssessment(ctx, claim.ID, highRisk(), urgentRouting()); err != nil {
		t.Fatalf("SaveAssessment failed: %v", err)
	}

	got, err := s.GetAssessmentByClaimID(ctx, "CLM-1")
	if err != nil {
		t.Fatalf("GetAssessmentByClaimID failed: %v", err)
	}

	if got.Claim.ClaimID != "CLM-1" {
		t.Errorf("Expected claim id CLM-1, got %s", got.Claim.ClaimID)
	}
	if got.Claim.Date != "2024-01-15" {
		t.Errorf("Expected date round-trip, got %s", got.Claim.Date)
	}
	if got.Risk.RiskCategory != model.RiskHigh {
		t.Errorf("Expected high risk, got %s", got.Risk.RiskCategory)
	}
	if len(got.Risk.FraudIndicators) != 2 {
		t.Errorf("Expected 2 fraud indicators after round-trip, got %v", got.Risk.FraudIndicators)
	}
	if got.Routing.AdjusterTier != model.TierFraudSpecialist {
		t.Errorf("Expected fraud_specialist tier, got %s", got.Routing.AdjusterTier)
	}
}

func TestStore_DuplicateClaimID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveClaim(ctx, storedClaim("CLM-DUP", time.Now()))
	if err != nil {
		t.Fatalf("First SaveClaim failed: %v", err)
	}
	if _, err := s.SaveAssessment(ctx, first.ID, highRisk(), urgentRouting()); err != nil {
		t.Fatalf("SaveAssessment failed: %v", err)
	}

	_, err = s.SaveClaim(ctx, storedClaim("CLM-DUP", time.Now()))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *PersistenceError, got %v", err)
	}
	if !perr.Duplicate {
		t.Error("Expected duplicate flag set")
	}

	// The first submission's data is unaffected
	got, err := s.GetAssessmentByClaimID(ctx, "CLM-DUP")
	if err != nil {
		t.Fatalf("Lookup after duplicate failed: %v", err)
	}
	if got.Risk.RiskScore != 8 {
		t.Errorf("First submission mutated: risk score %d", got.Risk.RiskScore)
	}
}

func TestStore_GetAssessment_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetAssessmentByClaimID(context.Background(), "CLM-NOPE")
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("Expected *NotFoundError, got %v", err)
	}
	if nferr.ClaimID != "CLM-NOPE" {
		t.Errorf("Expected claim id in error, got %s", nferr.ClaimID)
	}
}

func TestStore_GetAssessment_ClaimWithoutAssessment(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveClaim(ctx, storedClaim("CLM-ORPHAN", time.Now())); err != nil {
		t.Fatalf("SaveClaim failed: %v", err)
	}

	_, err := s.GetAssessmentByClaimID(ctx, "CLM-ORPHAN")
	var nferr *NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("Expected *NotFoundError for claim without assessment, got %v", err)
	}
}

func TestStore_WithTx_RollsBackBothWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		claim, err := tx.SaveClaim(ctx, storedClaim("CLM-TX", time.Now()))
		if err != nil {
			return err
		}
		if _, err := tx.SaveAssessment(ctx, claim.ID, highRisk(), urgentRouting()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected transaction error to propagate, got %v", err)
	}

	// Neither row is visible after rollback
	var nferr *NotFoundError
	if _, err := s.GetAssessmentByClaimID(ctx, "CLM-TX"); !errors.As(err, &nferr) {
		t.Errorf("Expected no assessment after rollback, got %v", err)
	}
	var count int64
	s.db.Model(&ClaimRecord{}).Where("claim_id = ?", "CLM-TX").Count(&count)
	if count != 0 {
		t.Errorf("Expected claim row rolled back, found %d", count)
	}
}

func TestStore_WithTx_ReferencesUncommittedClaim(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Store) error {
		claim, err := tx.SaveClaim(ctx, storedClaim("CLM-FLUSH", time.Now()))
		if err != nil {
			return err
		}
		// Assessment references the claim key before the transaction commits
		_, err = tx.SaveAssessment(ctx, claim.ID, highRisk(), urgentRouting())
		return err
	})
	if err != nil {
		t.Fatalf("Transactional save failed: %v", err)
	}

	if _, err := s.GetAssessmentByClaimID(ctx, "CLM-FLUSH"); err != nil {
		t.Fatalf("Expected both rows visible after commit: %v", err)
	}
}

func TestStore_ListAssessments_Pagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		claim, err := s.SaveClaim(ctx, storedClaim(fmt.Sprintf("CLM-%03d", i), time.Now()))
		if err != nil {
			t.Fatalf("SaveClaim %d failed: %v", i, err)
		}
		if _, err := s.SaveAssessment(ctx, claim.ID, highRisk(), urgentRouting()); err != nil {
			t.Fatalf("SaveAssessment %d failed: %v", i, err)
		}
	}

	page, err := s.ListAssessments(ctx, 2, 10)
	if err != nil {
		t.Fatalf("ListAssessments failed: %v", err)
	}
	if len(page.Data) != 10 {
		t.Fatalf("Expected 10 items on page 2, got %d", len(page.Data))
	}
	if page.Data[0].ClaimID != "CLM-011" || page.Data[9].ClaimID != "CLM-020" {
		t.Errorf("Expected items 11-20 in stable order, got %s..%s", page.Data[0].ClaimID, page.Data[9].ClaimID)
	}

	// Past the end: empty page, not an error
	empty, err := s.ListAssessments(ctx, 4, 10)
	if err != nil {
		t.Fatalf("ListAssessments past end failed: %v", err)
	}
	if len(empty.Data) != 0 {
		t.Errorf("Expected empty page, got %d items", len(empty.Data))
	}
}
