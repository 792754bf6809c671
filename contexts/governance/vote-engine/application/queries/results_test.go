package queries_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"daotools/contexts/governance/vote-engine/adapters/memory"
	"daotools/contexts/governance/vote-engine/application/commands"
	"daotools/contexts/governance/vote-engine/application/queries"
	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newEngine(clk *fixedClock) (commands.VoteUseCase, queries.ResultsUseCase, *memory.Store) {
	store := memory.NewStore(nil)
	votes := commands.VoteUseCase{
		Votes:      store,
		Ballots:    store,
		Membership: store,
		Locks:      store,
		Outbox:     store,
		Clock:      clk,
		IDGen:      store,
	}
	results := queries.ResultsUseCase{
		Votes:   store,
		Ballots: store,
		Locks:   store,
		Outbox:  store,
		Clock:   clk,
		IDGen:   store,
	}
	return votes, results, store
}

func startVote(
	t *testing.T,
	votes commands.VoteUseCase,
	visibility entities.ResultsVisibility,
	deadline time.Time,
) entities.Vote {
	t.Helper()
	created, err := votes.CreateVote(context.Background(), commands.CreateVoteCommand{
		CommunityID: "community-1",
		Title:       "Protocol upgrade",
		Method:      entities.MethodSingleChoice,
		Options: []commands.OptionInput{
			{OptionID: "opt-a", Label: "Upgrade now"},
			{OptionID: "opt-b", Label: "Wait a cycle"},
		},
		Deadline:          deadline,
		ResultsVisibility: visibility,
		CreatedBy:         "owner-1",
	})
	if err != nil {
		t.Fatalf("create vote failed: %v", err)
	}
	vote, err := votes.ActivateVote(context.Background(), created.Vote.VoteID)
	if err != nil {
		t.Fatalf("activate vote failed: %v", err)
	}
	return vote
}

func submit(t *testing.T, votes commands.VoteUseCase, voteID string, voterID string, choice string) {
	t.Helper()
	if _, err := votes.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
		VoteID:  voteID,
		VoterID: voterID,
		Choice:  choice,
	}); err != nil {
		t.Fatalf("submit ballot failed: %v", err)
	}
}

func TestGetTallyLiveVisibility(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	votes, results, _ := newEngine(clk)
	vote := startVote(t, votes, entities.VisibilityLive, clk.Now().Add(time.Hour))
	submit(t, votes, vote.VoteID, "voter-1", "opt-a")
	submit(t, votes, vote.VoteID, "voter-2", "opt-b")
	submit(t, votes, vote.VoteID, "voter-3", "opt-a")

	tallyResult, err := results.GetTally(context.Background(), vote.VoteID, "")
	if err != nil {
		t.Fatalf("live tally failed: %v", err)
	}
	if tallyResult.TotalBallots != 3 {
		t.Fatalf("expected 3 ballots, got %d", tallyResult.TotalBallots)
	}
	if tallyResult.Leader != "opt-a" {
		t.Fatalf("expected opt-a leading, got %q", tallyResult.Leader)
	}
}

func TestGetTallyHiddenBeforeDeadline(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	votes, results, _ := newEngine(clk)
	vote := startVote(t, votes, entities.VisibilityAfterDeadline, clk.Now().Add(time.Hour))
	submit(t, votes, vote.VoteID, "voter-1", "opt-a")

	if _, err := results.GetTally(context.Background(), vote.VoteID, "voter-1"); !errors.Is(err, domainerrors.ErrBeforeDeadline) {
		t.Fatalf("expected hidden before deadline, got %v", err)
	}

	clk.Advance(2 * time.Hour)
	tallyResult, err := results.GetTally(context.Background(), vote.VoteID, "voter-1")
	if err != nil {
		t.Fatalf("post-deadline tally failed: %v", err)
	}
	if tallyResult.TotalBallots != 1 {
		t.Fatalf("expected the pre-deadline ballot counted, got %d", tallyResult.TotalBallots)
	}
}

func TestGetTallyManualRevealGate(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	votes, results, _ := newEngine(clk)
	vote := startVote(t, votes, entities.VisibilityManualReveal, clk.Now().Add(time.Hour))
	submit(t, votes, vote.VoteID, "voter-1", "opt-a")

	clk.Advance(2 * time.Hour)
	if _, err := results.GetTally(context.Background(), vote.VoteID, "voter-1"); !errors.Is(err, domainerrors.ErrNotYetRevealed) {
		t.Fatalf("expected hidden before reveal, got %v", err)
	}

	// The owner holds the reveal action, so the gate does not apply to them.
	if _, err := results.GetTally(context.Background(), vote.VoteID, "owner-1"); err != nil {
		t.Fatalf("owner pre-reveal tally failed: %v", err)
	}

	if _, err := votes.RevealResults(context.Background(), vote.VoteID, "owner-1"); err != nil {
		t.Fatalf("reveal failed: %v", err)
	}
	tallyResult, err := results.GetTally(context.Background(), vote.VoteID, "voter-1")
	if err != nil {
		t.Fatalf("post-reveal tally failed: %v", err)
	}
	if tallyResult.TotalBallots != 1 {
		t.Fatalf("expected 1 ballot post-reveal, got %d", tallyResult.TotalBallots)
	}
}

func TestGetVoteReturnsCallerBallot(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	votes, results, _ := newEngine(clk)
	vote := startVote(t, votes, entities.VisibilityLive, clk.Now().Add(time.Hour))
	submit(t, votes, vote.VoteID, "voter-1", "opt-b")

	detail, err := results.GetVote(context.Background(), vote.VoteID, "voter-1")
	if err != nil {
		t.Fatalf("get vote failed: %v", err)
	}
	if detail.CallerBallot == nil || detail.CallerBallot.Choice != "opt-b" {
		t.Fatalf("expected caller ballot opt-b, got %+v", detail.CallerBallot)
	}

	anonymous, err := results.GetVote(context.Background(), vote.VoteID, "")
	if err != nil {
		t.Fatalf("anonymous get vote failed: %v", err)
	}
	if anonymous.CallerBallot != nil {
		t.Fatalf("expected no caller ballot for anonymous reads")
	}
}

func TestGetLifecycleStateReconcilesDeadline(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	votes, results, _ := newEngine(clk)
	vote := startVote(t, votes, entities.VisibilityManualReveal, clk.Now().Add(time.Hour))

	state, err := results.GetLifecycleState(context.Background(), vote.VoteID)
	if err != nil {
		t.Fatalf("lifecycle state failed: %v", err)
	}
	if state != entities.StateActive {
		t.Fatalf("expected active before deadline, got %s", state)
	}

	clk.Advance(2 * time.Hour)
	state, err = results.GetLifecycleState(context.Background(), vote.VoteID)
	if err != nil {
		t.Fatalf("lifecycle state failed: %v", err)
	}
	// Manual-reveal votes stop at closed until the owner reveals.
	if state != entities.StateClosed {
		t.Fatalf("expected closed after deadline, got %s", state)
	}
}

func TestListVotesDisclosesTurnoutButGatesTallies(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	votes, results, _ := newEngine(clk)

	open := startVote(t, votes, entities.VisibilityLive, clk.Now().Add(time.Hour))
	sealed := startVote(t, votes, entities.VisibilityAfterDeadline, clk.Now().Add(time.Hour))
	submit(t, votes, open.VoteID, "voter-1", "opt-a")
	submit(t, votes, sealed.VoteID, "voter-1", "opt-b")
	submit(t, votes, sealed.VoteID, "voter-2", "opt-b")

	items, err := results.ListVotes(context.Background(), "community-1", "")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 votes listed, got %d", len(items))
	}
	for _, item := range items {
		switch item.Vote.VoteID {
		case open.VoteID:
			if !item.ResultsVisible || item.Tally == nil {
				t.Fatalf("expected live vote tally disclosed")
			}
		case sealed.VoteID:
			if item.ResultsVisible || item.Tally != nil {
				t.Fatalf("expected sealed vote tally hidden")
			}
			if item.TotalBallots != 2 {
				t.Fatalf("expected turnout disclosed even when hidden, got %d", item.TotalBallots)
			}
		default:
			t.Fatalf("unexpected vote in listing: %s", item.Vote.VoteID)
		}
	}
}
