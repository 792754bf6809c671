package queries

import (
	"context"
	"log/slog"
	"strings"

	application "daotools/contexts/governance/vote-engine/application"
	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
	"daotools/contexts/governance/vote-engine/domain/tally"
	"daotools/contexts/governance/vote-engine/domain/visibility"
	"daotools/contexts/governance/vote-engine/ports"
)

// VoteDetail is the vote page read model: configuration plus the caller's
// currently-recorded ballot, if any.
type VoteDetail struct {
	Vote         entities.Vote
	CallerBallot *entities.Ballot
}

// VoteSummary is one governance-explorer row. The ballot count (turnout) is
// always disclosed; the per-option breakdown honors the visibility policy.
type VoteSummary struct {
	Vote           entities.Vote
	TotalBallots   int
	ResultsVisible bool
	HiddenReason   string
	Tally          *entities.TallyResult
}

// ResultsUseCase serves the read side: tallies, vote detail, lifecycle state
// and the explorer listing. Every read reconciles the lazy deadline
// transition first so callers observe a consistent state.
type ResultsUseCase struct {
	Votes   ports.VoteRepository
	Ballots ports.BallotRepository
	Locks   ports.VoteLocker
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc ResultsUseCase) reconciler() application.Reconciler {
	return application.Reconciler{
		Votes:  uc.Votes,
		Locks:  uc.Locks,
		Outbox: uc.Outbox,
		Clock:  uc.Clock,
		IDGen:  uc.IDGen,
		Logger: uc.Logger,
	}
}

// GetTally recomputes the result from the current ballot set, gated by the
// results-visibility policy. Tallying itself always proceeds, so the moment
// visibility opens the numbers are already correct.
func (uc ResultsUseCase) GetTally(ctx context.Context, voteID string, callerID string) (entities.TallyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
	if err != nil {
		return entities.TallyResult{}, err
	}
	vote, err = uc.reconciler().Reconcile(ctx, vote)
	if err != nil {
		return entities.TallyResult{}, err
	}

	decision := visibility.CanSeeResults(vote, uc.reconciler().Now(), uc.callerAuthorized(vote, callerID))
	if !decision.Visible {
		logger.Info("tally hidden by visibility policy",
			"event", "governance_tally_hidden",
			"module", "governance/vote-engine",
			"layer", "application",
			"vote_id", vote.VoteID,
			"reason", decision.Reason,
		)
		return entities.TallyResult{}, hiddenError(decision.Reason)
	}

	ballotSet, err := uc.Ballots.ListBallotsByVote(ctx, vote.VoteID)
	if err != nil {
		return entities.TallyResult{}, err
	}
	return tally.Compute(vote, ballotSet).Result(vote), nil
}

// GetVote returns the reconciled vote plus the caller's recorded ballot.
func (uc ResultsUseCase) GetVote(ctx context.Context, voteID string, callerID string) (VoteDetail, error) {
	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
	if err != nil {
		return VoteDetail{}, err
	}
	vote, err = uc.reconciler().Reconcile(ctx, vote)
	if err != nil {
		return VoteDetail{}, err
	}
	detail := VoteDetail{Vote: vote}
	if voter := strings.TrimSpace(callerID); voter != "" {
		ballot, found, err := uc.Ballots.GetBallotByVoter(ctx, vote.VoteID, voter)
		if err != nil {
			return VoteDetail{}, err
		}
		if found {
			detail.CallerBallot = &ballot
		}
	}
	return detail, nil
}

func (uc ResultsUseCase) GetLifecycleState(ctx context.Context, voteID string) (entities.LifecycleState, error) {
	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
	if err != nil {
		return "", err
	}
	vote, err = uc.reconciler().Reconcile(ctx, vote)
	if err != nil {
		return "", err
	}
	return vote.State, nil
}

// ListVotes backs the governance explorer. Pass an empty community id for the
// cross-community view.
func (uc ResultsUseCase) ListVotes(ctx context.Context, communityID string, callerID string) ([]VoteSummary, error) {
	votes, err := uc.Votes.ListVotes(ctx, strings.TrimSpace(communityID))
	if err != nil {
		return nil, err
	}
	now := uc.reconciler().Now()
	items := make([]VoteSummary, 0, len(votes))
	for _, vote := range votes {
		vote, err = uc.reconciler().Reconcile(ctx, vote)
		if err != nil {
			return nil, err
		}
		ballotSet, err := uc.Ballots.ListBallotsByVote(ctx, vote.VoteID)
		if err != nil {
			return nil, err
		}
		summary := VoteSummary{
			Vote:         vote,
			TotalBallots: len(ballotSet),
		}
		decision := visibility.CanSeeResults(vote, now, uc.callerAuthorized(vote, callerID))
		summary.ResultsVisible = decision.Visible
		summary.HiddenReason = decision.Reason
		if decision.Visible {
			result := tally.Compute(vote, ballotSet).Result(vote)
			summary.Tally = &result
		}
		items = append(items, summary)
	}
	return items, nil
}

func (uc ResultsUseCase) callerAuthorized(vote entities.Vote, callerID string) bool {
	caller := strings.TrimSpace(callerID)
	return caller != "" && strings.EqualFold(caller, vote.CreatedBy)
}

func hiddenError(reason string) error {
	if reason == visibility.ReasonBeforeDeadline {
		return domainerrors.ErrBeforeDeadline
	}
	return domainerrors.ErrNotYetRevealed
}
