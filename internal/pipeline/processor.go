package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/llm"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/store"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/validate"
)

// Processor orchestrates the claim pipeline: validation, risk assessment,
// routing decision, then one transactional persistence step. Collaborators
// are injected; the processor holds no per-claim state, so independent
// claims can be processed concurrently.
type Processor struct {
	provider llm.Provider
	store    *store.Store
	logger   *slog.Logger
}

// NewProcessor creates a processor with the given collaborators
func NewProcessor(provider llm.Provider, st *store.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		provider: provider,
		store:    st,
		logger:   logger,
	}
}

// Process runs the full pipeline for one claim. Any stage failure aborts
// the run with the stage's typed error; the two persistence writes commit
// together or not at all, so readers never observe a claim without its
// assessment. Nothing is persisted before validation and both decision
// calls have succeeded.
func (p *Processor) Process(ctx context.Context, claim model.Claim) (*model.ClaimAssessment, error) {
	validated, err := validate.Validate(claim)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("claim validated", "claim_id", validated.ClaimID)

	risk, err := p.provider.AssessRisk(ctx, validated)
	if err != nil {
		return nil, fmt.Errorf("assess risk: %w", err)
	}
	p.logger.Debug("risk assessed",
		"claim_id", validated.ClaimID,
		"risk_score", risk.RiskScore,
		"risk_category", risk.RiskCategory)

	// Routing consumes the risk verdict; it is never requested before
	// risk assessment has completed.
	routing, err := p.provider.DecideRouting(ctx, validated, *risk)
	if err != nil {
		return nil, fmt.Errorf("decide routing: %w", err)
	}
	p.logger.Debug("routing decided",
		"claim_id", validated.ClaimID,
		"priority", routing.Priority,
		"adjuster_tier", routing.AdjusterTier)

	if err := p.persist(ctx, validated, *risk, *routing); err != nil {
		return nil, err
	}
	p.logger.Info("claim processed",
		"claim_id", validated.ClaimID,
		"risk_category", risk.RiskCategory,
		"priority", routing.Priority)

	return &model.ClaimAssessment{
		Claim:   validated,
		Risk:    *risk,
		Routing: *routing,
	}, nil
}

// persist writes the claim and its combined assessment in one transaction.
// The assessment row references the claim's surrogate key before the claim
// row has committed.
func (p *Processor) persist(ctx context.Context, claim model.Claim, risk model.RiskAssessment, routing model.RoutingDecision) error {
	return p.store.WithTx(ctx, func(tx *store.Store) error {
		stored, err := tx.SaveClaim(ctx, claim)
		if err != nil {
			return err
		}
		_, err = tx.SaveAssessment(ctx, stored.ID, risk, routing)
		return err
	})
}
