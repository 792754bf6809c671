// Package visibility gates when tally data may be disclosed. It only guards
// the read path; tallying always proceeds internally so results are correct
// the moment visibility opens.
package visibility

import (
	"time"

	"daotools/contexts/governance/vote-engine/domain/entities"
)

const (
	ReasonBeforeDeadline = "before-deadline"
	ReasonNotYetRevealed = "not-yet-revealed"
)

type Decision struct {
	Visible bool
	Reason  string
}

// CanSeeResults applies the vote's results-visibility policy as of the given
// time. Authorized callers (the vote owner) may inspect manual-reveal tallies
// before the reveal, since they hold the reveal action anyway.
func CanSeeResults(vote entities.Vote, asOf time.Time, callerAuthorized bool) Decision {
	switch vote.ResultsVisibility {
	case entities.VisibilityAfterDeadline:
		if asOf.Before(vote.Deadline) {
			return Decision{Reason: ReasonBeforeDeadline}
		}
		return Decision{Visible: true}
	case entities.VisibilityManualReveal:
		if vote.State == entities.StateFinalized || callerAuthorized {
			return Decision{Visible: true}
		}
		return Decision{Reason: ReasonNotYetRevealed}
	default:
		// live
		return Decision{Visible: true}
	}
}
