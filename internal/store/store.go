package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// PersistenceError reports a storage-layer failure. Duplicate marks a
// unique-constraint violation on the public claim identifier, which is
// client-attributable; everything else is infrastructure.
type PersistenceError struct {
	Duplicate bool
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("duplicate claim identifier: %v", e.Err)
	}
	return fmt.Sprintf("persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotFoundError reports a lookup for a claim with no persisted assessment
type NotFoundError struct {
	ClaimID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no assessment found for claim %q", e.ClaimID)
}

// Store is the persistence gateway over a sqlite database
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the schema
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&ClaimRecord{}, &AssessmentRecord{})
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn against a transactional view of the store. All writes
// made through the passed store commit together or roll back together.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// SaveClaim inserts a validated claim and returns the stored record with
// its assigned surrogate key. A reused public claim identifier fails with
// a duplicate PersistenceError; it never overwrites.
func (s *Store) SaveClaim(ctx context.Context, claim model.Claim) (*ClaimRecord, error) {
	record := toClaimRecord(claim)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isDuplicate(err) {
			return nil, &PersistenceError{Duplicate: true, Err: err}
		}
		return nil, &PersistenceError{Err: err}
	}
	return record, nil
}

// SaveAssessment inserts the combined assessment referencing a stored
// claim's surrogate key. Inside WithTx the key may belong to a not yet
// committed claim row.
func (s *Store) SaveAssessment(ctx context.Context, claimKey uint, risk model.RiskAssessment, routing model.RoutingDecision) (*AssessmentRecord, error) {
	record := &AssessmentRecord{
		ClaimKey:        claimKey,
		RiskScore:       risk.RiskScore,
		RiskCategory:    string(risk.RiskCategory),
		FraudIndicators: joinIndicators(risk.FraudIndicators),
		ProcessingScore: risk.ProcessingScore,
		Priority:        string(routing.Priority),
		AdjusterTier:    string(routing.AdjusterTier),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isDuplicate(err) {
			return nil, &PersistenceError{Duplicate: true, Err: err}
		}
		return nil, &PersistenceError{Err: err}
	}
	return record, nil
}

// GetAssessmentByClaimID joins from the public claim identifier to the
// combined assessment. Absence is a NotFoundError, not a nil result.
func (s *Store) GetAssessmentByClaimID(ctx context.Context, claimID string) (*model.ClaimAssessment, error) {
	var claim ClaimRecord
	err := s.db.WithContext(ctx).Where("claim_id = ?", claimID).First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ClaimID: claimID}
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	var assessment AssessmentRecord
	err = s.db.WithContext(ctx).Where("claim_key = ?", claim.ID).First(&assessment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ClaimID: claimID}
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return &model.ClaimAssessment{
		Claim:   toClaim(&claim),
		Risk:    toRiskAssessment(&assessment),
		Routing: toRoutingDecision(&assessment),
	}, nil
}

// ListAssessments returns one page of assessments in insertion order.
// Pages past the end are empty, not an error.
func (s *Store) ListAssessments(ctx context.Context, pageNo, pageSize int) (*model.AssessmentPage, error) {
	var records []AssessmentRecord
	err := s.db.WithContext(ctx).
		Preload("Claim").
		Order("id").
		Offset((pageNo - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	page := &model.AssessmentPage{
		PageNo:   pageNo,
		PageSize: pageSize,
		Data:     make([]model.AssessmentSummary, 0, len(records)),
	}
	for i := range records {
		r := &records[i]
		page.Data = append(page.Data, model.AssessmentSummary{
			ClaimID:         r.Claim.ClaimID,
			RiskLevel:       r.RiskCategory,
			Priority:        r.Priority,
			AdjusterTier:    r.AdjusterTier,
			FraudIndicators: splitIndicators(r.FraudIndicators),
		})
	}
	return page, nil
}

// isDuplicate detects unique-constraint violations across gorm's error
// translation and sqlite's raw message
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
