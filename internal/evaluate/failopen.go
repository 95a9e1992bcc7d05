package evaluate

import (
	"errors"
	"fmt"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
)

// failOpenScore is the synthetic score attached to fail-open results.
const failOpenScore = 68

var errNoScorer = errors.New("scoring service is not configured")

// ToFailOpenDefault converts a scoring failure into a passing result. The
// system prefers a false positive (an unnecessary greeting) over a false
// negative caused by transient scoring-service unavailability. This policy
// is deliberate and asserted by tests; see DESIGN.md before changing it.
func ToFailOpenDefault(cause error) *candidate.EvaluationResult {
	reason := "scoring unavailable"
	if cause != nil {
		reason = cause.Error()
	}

	return &candidate.EvaluationResult{
		Score:    failOpenScore,
		Passed:   true,
		Reason:   fmt.Sprintf("%s, auto-passed", reason),
		FailOpen: true,
	}
}
