package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"daotools/contexts/governance/vote-engine/adapters/memory"
	"daotools/contexts/governance/vote-engine/application/commands"
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

func newUseCase(clk *fixedClock) (commands.VoteUseCase, *memory.Store) {
	store := memory.NewStore(nil)
	return commands.VoteUseCase{
		Votes:      store,
		Ballots:    store,
		Membership: store,
		Locks:      store,
		Outbox:     store,
		Clock:      clk,
		IDGen:      store,
	}, store
}

func createCommand(deadline time.Time) commands.CreateVoteCommand {
	return commands.CreateVoteCommand{
		CommunityID: "community-1",
		Title:       "Treasury allocation",
		Method:      entities.MethodSingleChoice,
		Options: []commands.OptionInput{
			{OptionID: "opt-a", Label: "Fund grants"},
			{OptionID: "opt-b", Label: "Hold reserves"},
		},
		Deadline:  deadline,
		CreatedBy: "owner-1",
	}
}

func activeVote(t *testing.T, uc commands.VoteUseCase, cmd commands.CreateVoteCommand) entities.Vote {
	t.Helper()
	created, err := uc.CreateVote(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create vote failed: %v", err)
	}
	vote, err := uc.ActivateVote(context.Background(), created.Vote.VoteID)
	if err != nil {
		t.Fatalf("activate vote failed: %v", err)
	}
	return vote
}

func TestCreateVoteValidationAndDefaults(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, _ := newUseCase(clk)
	deadline := clk.Now().Add(48 * time.Hour)

	missingTitle := createCommand(deadline)
	missingTitle.Title = "  "
	if _, err := uc.CreateVote(context.Background(), missingTitle); !errors.Is(err, domainerrors.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for blank title, got %v", err)
	}

	badMethod := createCommand(deadline)
	badMethod.Method = "approval"
	if _, err := uc.CreateVote(context.Background(), badMethod); !errors.Is(err, domainerrors.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for unknown method, got %v", err)
	}

	abstainOption := createCommand(deadline)
	abstainOption.Options = append(abstainOption.Options, commands.OptionInput{OptionID: "abstain", Label: "Abstain"})
	if _, err := uc.CreateVote(context.Background(), abstainOption); !errors.Is(err, domainerrors.ErrInvalidConfiguration) {
		t.Fatalf("expected abstain option id rejected, got %v", err)
	}

	created, err := uc.CreateVote(context.Background(), createCommand(deadline))
	if err != nil {
		t.Fatalf("create vote failed: %v", err)
	}
	if created.Vote.State != entities.StateDraft {
		t.Fatalf("expected draft state, got %s", created.Vote.State)
	}
	if created.Vote.ResultsVisibility != entities.VisibilityLive {
		t.Fatalf("expected live visibility default, got %s", created.Vote.ResultsVisibility)
	}
	if !created.Vote.Restrictions.OneBallotPerVoter {
		t.Fatalf("expected one-ballot-per-voter to be forced on")
	}
}

func TestActivateVoteChecksConfiguration(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, _ := newUseCase(clk)

	yesNo := createCommand(clk.Now().Add(time.Hour))
	yesNo.Method = entities.MethodYesNo
	yesNo.Options = yesNo.Options[:1]
	created, err := uc.CreateVote(context.Background(), yesNo)
	if err != nil {
		t.Fatalf("create vote failed: %v", err)
	}
	if _, err := uc.ActivateVote(context.Background(), created.Vote.VoteID); !errors.Is(err, domainerrors.ErrInvalidConfiguration) {
		t.Fatalf("expected yes-no with one option to fail activation, got %v", err)
	}

	stale, err := uc.CreateVote(context.Background(), createCommand(clk.Now().Add(time.Minute)))
	if err != nil {
		t.Fatalf("create vote failed: %v", err)
	}
	clk.Advance(2 * time.Minute)
	if _, err := uc.ActivateVote(context.Background(), stale.Vote.VoteID); !errors.Is(err, domainerrors.ErrInvalidConfiguration) {
		t.Fatalf("expected past-deadline activation rejected, got %v", err)
	}

	vote := activeVote(t, uc, createCommand(clk.Now().Add(time.Hour)))
	if _, err := uc.ActivateVote(context.Background(), vote.VoteID); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected second activation to conflict, got %v", err)
	}
}

func TestSubmitBallotReplacesPrior(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, store := newUseCase(clk)
	vote := activeVote(t, uc, createCommand(clk.Now().Add(time.Hour)))

	first, err := uc.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
		VoteID:  vote.VoteID,
		VoterID: "voter-1",
		Choice:  "opt-a",
	})
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if first.Replaced {
		t.Fatalf("expected first submission to be a fresh record")
	}

	second, err := uc.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
		VoteID:  vote.VoteID,
		VoterID: "voter-1",
		Choice:  "opt-b",
	})
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if !second.Replaced {
		t.Fatalf("expected resubmission to replace the prior ballot")
	}
	if second.Ballot.BallotID != first.Ballot.BallotID {
		t.Fatalf("expected stable ballot identity, got %s and %s", first.Ballot.BallotID, second.Ballot.BallotID)
	}

	recorded, err := store.ListBallotsByVote(context.Background(), vote.VoteID)
	if err != nil {
		t.Fatalf("list ballots failed: %v", err)
	}
	if len(recorded) != 1 {
		t.Fatalf("expected a single recorded ballot, got %d", len(recorded))
	}
	if recorded[0].Choice != "opt-b" {
		t.Fatalf("expected the replacement choice, got %s", recorded[0].Choice)
	}
}

func TestSubmitBallotEligibilityGate(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, store := newUseCase(clk)

	cmd := createCommand(clk.Now().Add(time.Hour))
	cmd.Restrictions.MembersOnly = true
	vote := activeVote(t, uc, cmd)

	_, err := uc.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
		VoteID:  vote.VoteID,
		VoterID: "outsider",
		Choice:  "opt-a",
	})
	if !errors.Is(err, domainerrors.ErrNotAMember) {
		t.Fatalf("expected membership denial, got %v", err)
	}

	store.SetMembership("community-1", "insider", true)
	if _, err := uc.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
		VoteID:  vote.VoteID,
		VoterID: "insider",
		Choice:  "opt-a",
	}); err != nil {
		t.Fatalf("expected member admitted, got %v", err)
	}
}

func TestSubmitBallotAfterDeadlineClosesVote(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, store := newUseCase(clk)
	vote := activeVote(t, uc, createCommand(clk.Now().Add(time.Hour)))

	clk.Advance(2 * time.Hour)
	_, err := uc.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
		VoteID:  vote.VoteID,
		VoterID: "voter-1",
		Choice:  "opt-a",
	})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected voting closed after deadline, got %v", err)
	}

	reloaded, err := store.GetVote(context.Background(), vote.VoteID)
	if err != nil {
		t.Fatalf("load vote failed: %v", err)
	}
	// Live visibility auto-finalizes immediately after the lazy close.
	if reloaded.State != entities.StateFinalized {
		t.Fatalf("expected finalized state after lazy close, got %s", reloaded.State)
	}
}

func TestLazyCloseEmitsEventsExactlyOnce(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, store := newUseCase(clk)
	vote := activeVote(t, uc, createCommand(clk.Now().Add(time.Hour)))

	clk.Advance(2 * time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.SubmitBallot(context.Background(), commands.SubmitBallotCommand{
				VoteID:  vote.VoteID,
				VoterID: "late-voter",
				Choice:  "opt-a",
			})
		}()
	}
	wg.Wait()

	pending, err := store.ListPendingOutbox(context.Background(), 100)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	closedEvents := 0
	finalizedEvents := 0
	for _, message := range pending {
		var envelope struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			t.Fatalf("decode outbox payload failed: %v", err)
		}
		switch envelope.EventType {
		case "governance.vote.closed":
			closedEvents++
		case "governance.vote.finalized":
			finalizedEvents++
		}
	}
	if closedEvents != 1 {
		t.Fatalf("expected exactly one close event, got %d", closedEvents)
	}
	if finalizedEvents != 1 {
		t.Fatalf("expected exactly one finalize event, got %d", finalizedEvents)
	}
}

func TestCloseVoteRequiresOwner(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, _ := newUseCase(clk)
	vote := activeVote(t, uc, createCommand(clk.Now().Add(time.Hour)))

	if _, err := uc.CloseVote(context.Background(), vote.VoteID, "somebody-else"); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized close rejected, got %v", err)
	}

	closed, err := uc.CloseVote(context.Background(), vote.VoteID, "owner-1")
	if err != nil {
		t.Fatalf("owner close failed: %v", err)
	}
	// Live visibility finalizes right after closing.
	if closed.State != entities.StateFinalized {
		t.Fatalf("expected finalized after explicit close, got %s", closed.State)
	}
}

func TestRevealResultsLifecycle(t *testing.T) {
	clk := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	uc, _ := newUseCase(clk)

	cmd := createCommand(clk.Now().Add(time.Hour))
	cmd.ResultsVisibility = entities.VisibilityManualReveal
	vote := activeVote(t, uc, cmd)

	if _, err := uc.RevealResults(context.Background(), vote.VoteID, "owner-1"); !errors.Is(err, domainerrors.ErrVoteNotClosed) {
		t.Fatalf("expected reveal on active vote rejected, got %v", err)
	}

	clk.Advance(2 * time.Hour)
	if _, err := uc.RevealResults(context.Background(), vote.VoteID, "somebody-else"); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected non-owner reveal rejected, got %v", err)
	}

	revealed, err := uc.RevealResults(context.Background(), vote.VoteID, "owner-1")
	if err != nil {
		t.Fatalf("owner reveal failed: %v", err)
	}
	if revealed.State != entities.StateFinalized {
		t.Fatalf("expected finalized state after reveal, got %s", revealed.State)
	}
	if revealed.RevealedAt == nil {
		t.Fatalf("expected reveal timestamp recorded")
	}

	if _, err := uc.RevealResults(context.Background(), vote.VoteID, "owner-1"); !errors.Is(err, domainerrors.ErrAlreadyRevealed) {
		t.Fatalf("expected second reveal rejected, got %v", err)
	}
}
