package visibility

import (
	"testing"
	"time"

	"daotools/contexts/governance/vote-engine/domain/entities"
)

var deadline = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func TestLiveIsAlwaysVisible(t *testing.T) {
	vote := entities.Vote{ResultsVisibility: entities.VisibilityLive, Deadline: deadline}
	decision := CanSeeResults(vote, deadline.Add(-time.Hour), false)
	if !decision.Visible {
		t.Fatalf("expected live vote visible before deadline")
	}
}

func TestAfterDeadlineBoundary(t *testing.T) {
	vote := entities.Vote{ResultsVisibility: entities.VisibilityAfterDeadline, Deadline: deadline}

	before := CanSeeResults(vote, deadline.Add(-time.Second), false)
	if before.Visible {
		t.Fatalf("expected hidden before deadline")
	}
	if before.Reason != ReasonBeforeDeadline {
		t.Fatalf("unexpected hidden reason %q", before.Reason)
	}

	// Visibility flips exactly at the deadline instant.
	atDeadline := CanSeeResults(vote, deadline, false)
	if !atDeadline.Visible {
		t.Fatalf("expected visible at the deadline instant")
	}
}

func TestManualRevealWaitsForFinalize(t *testing.T) {
	vote := entities.Vote{
		ResultsVisibility: entities.VisibilityManualReveal,
		Deadline:          deadline,
		State:             entities.StateClosed,
	}

	hidden := CanSeeResults(vote, deadline.Add(time.Hour), false)
	if hidden.Visible {
		t.Fatalf("expected manual-reveal hidden after deadline, before reveal")
	}
	if hidden.Reason != ReasonNotYetRevealed {
		t.Fatalf("unexpected hidden reason %q", hidden.Reason)
	}

	vote.State = entities.StateFinalized
	revealed := CanSeeResults(vote, deadline.Add(time.Hour), false)
	if !revealed.Visible {
		t.Fatalf("expected visible after reveal")
	}
}

func TestManualRevealAdmitsOwnerEarly(t *testing.T) {
	vote := entities.Vote{
		ResultsVisibility: entities.VisibilityManualReveal,
		Deadline:          deadline,
		State:             entities.StateClosed,
	}
	decision := CanSeeResults(vote, deadline.Add(time.Hour), true)
	if !decision.Visible {
		t.Fatalf("expected the vote owner to see pre-reveal results")
	}
}
