package candidate

import "time"

// Action is the terminal outcome for one candidate.
type Action string

const (
	ActionGreet Action = "greet"
	ActionSkip  Action = "skip"
)

// EvaluationResult is produced by the deep evaluator. Immutable once returned.
type EvaluationResult struct {
	// Score is within [0,100].
	Score      int
	Passed     bool
	Reason     string
	Highlights []string
	Concerns   []string
	// FailOpen marks results synthesized from a scoring-service failure.
	FailOpen bool
}

// Decision is the terminal pipeline outcome for one candidate, handed to
// external collaborators (persistence, logging).
type Decision struct {
	CandidateID   string
	CandidateName string
	Action        Action
	Reason        string
	Evaluation    *EvaluationResult
	Timestamp     time.Time
}

// NewDecision stamps a terminal decision with the current time.
func NewDecision(rec *Record, action Action, reason string, eval *EvaluationResult) Decision {
	d := Decision{
		Action:     action,
		Reason:     reason,
		Evaluation: eval,
		Timestamp:  time.Now().UTC(),
	}
	if rec != nil {
		d.CandidateID = rec.ID
		d.CandidateName = rec.Name
	}
	return d
}
