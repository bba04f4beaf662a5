package model

// Pipeline stage names reported over the streaming surface
const (
	StageValidation  = "validation"
	StageRisk        = "risk_assessment"
	StageRouting     = "routing"
	StagePersistence = "persistence"
	StageError       = "error"
	StageCompleted   = "completed"
)

// Progress statuses
const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusError      = "error"
	StatusCompleted  = "completed"
)

// ProgressEvent is one step notification emitted by the streaming pipeline.
// A sequence ends with either a completed event or a single error event.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
	ClaimID string `json:"claim_id,omitempty"`
}
