package pipeline

import (
	"context"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/validate"
)

// ProcessStream runs the same pipeline stages as Process but reports
// progress per stage over the returned channel. The sequence is finite and
// non-restartable: it ends with a completed event, or with a single error
// event on the first failure. Failures never escape the producer; every
// error is converted into the terminal event. Unlike Process, the stream
// makes no end-to-end transaction claim to its consumer: progress already
// reported is not retracted if a later stage fails.
func (p *Processor) ProcessStream(ctx context.Context, claim model.Claim) <-chan model.ProgressEvent {
	events := make(chan model.ProgressEvent)

	go func() {
		defer close(events)

		// emit delivers one event, giving up if the consumer is gone
		emit := func(ev model.ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		fail := func(err error) {
			emit(model.ProgressEvent{
				Stage:   model.StageError,
				Status:  model.StatusError,
				Detail:  err.Error(),
				ClaimID: claim.ClaimID,
			})
		}

		if !emit(model.ProgressEvent{Stage: model.StageValidation, Status: model.StatusInProgress, ClaimID: claim.ClaimID}) {
			return
		}
		validated, err := validate.Validate(claim)
		if err != nil {
			fail(err)
			return
		}
		if !emit(model.ProgressEvent{Stage: model.StageValidation, Status: model.StatusDone, ClaimID: claim.ClaimID}) {
			return
		}

		if !emit(model.ProgressEvent{Stage: model.StageRisk, Status: model.StatusInProgress, ClaimID: claim.ClaimID}) {
			return
		}
		risk, err := p.provider.AssessRisk(ctx, validated)
		if err != nil {
			fail(err)
			return
		}
		if !emit(model.ProgressEvent{Stage: model.StageRisk, Status: model.StatusDone, ClaimID: claim.ClaimID}) {
			return
		}

		if !emit(model.ProgressEvent{Stage: model.StageRouting, Status: model.StatusInProgress, ClaimID: claim.ClaimID}) {
			return
		}
		routing, err := p.provider.DecideRouting(ctx, validated, *risk)
		if err != nil {
			fail(err)
			return
		}
		if !emit(model.ProgressEvent{Stage: model.StageRouting, Status: model.StatusDone, ClaimID: claim.ClaimID}) {
			return
		}

		if !emit(model.ProgressEvent{Stage: model.StagePersistence, Status: model.StatusInProgress, ClaimID: claim.ClaimID}) {
			return
		}
		if err := p.persist(ctx, validated, *risk, *routing); err != nil {
			fail(err)
			return
		}
		if !emit(model.ProgressEvent{Stage: model.StagePersistence, Status: model.StatusDone, ClaimID: claim.ClaimID}) {
			return
		}

		emit(model.ProgressEvent{
			Stage:   model.StageCompleted,
			Status:  model.StatusCompleted,
			ClaimID: claim.ClaimID,
		})
	}()

	return events
}
