package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "daotools/contexts/governance/vote-engine/application"
	"daotools/contexts/governance/vote-engine/domain/ballots"
	"daotools/contexts/governance/vote-engine/domain/eligibility"
	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
	"daotools/contexts/governance/vote-engine/ports"
)

const defaultConflictRetries = 3

// OptionInput is the write-model shape for one option/candidate.
type OptionInput struct {
	OptionID    string
	Label       string
	Description string
	Pitch       string
}

// CreateVoteCommand defines a new vote. Configuration problems surface here
// or at activation, never at ballot submission time.
type CreateVoteCommand struct {
	CommunityID       string
	Title             string
	Description       string
	Method            entities.VoteMethod
	Options           []OptionInput
	Restrictions      entities.Restrictions
	Deadline          time.Time
	ResultsVisibility entities.ResultsVisibility
	AllowAbstain      bool
	QuorumRequired    int
	CreatedBy         string
}

type CreateVoteResult struct {
	Vote entities.Vote
}

// SubmitBallotCommand carries the voter's choice payload plus the wallet
// facts the identity collaborator resolved synchronously for this request.
// Community membership is read from the engine's own projection.
type SubmitBallotCommand struct {
	VoteID       string
	VoterID      string
	Choice       string
	Ranking      []string
	TokenBalance float64
	NFTCount     int
}

type SubmitBallotResult struct {
	Ballot   entities.Ballot
	Replaced bool
}

// VoteUseCase is the vote lifecycle controller: it owns state transitions,
// enforces one-ballot-per-voter, and serializes tally-affecting writes
// through the per-vote lock.
type VoteUseCase struct {
	Votes           ports.VoteRepository
	Ballots         ports.BallotRepository
	Membership      ports.MembershipRepository
	Locks           ports.VoteLocker
	Outbox          ports.OutboxWriter
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	ConflictRetries int
	Logger          *slog.Logger
}

func (uc VoteUseCase) reconciler() application.Reconciler {
	return application.Reconciler{
		Votes:  uc.Votes,
		Locks:  uc.Locks,
		Outbox: uc.Outbox,
		Clock:  uc.Clock,
		IDGen:  uc.IDGen,
		Logger: uc.Logger,
	}
}

// CreateVote registers a vote in draft state. Options and restrictions become
// immutable once the vote is activated.
func (uc VoteUseCase) CreateVote(ctx context.Context, cmd CreateVoteCommand) (CreateVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.CommunityID) == "" ||
		strings.TrimSpace(cmd.Title) == "" ||
		strings.TrimSpace(cmd.CreatedBy) == "" ||
		!cmd.Method.Known() ||
		cmd.Deadline.IsZero() ||
		cmd.QuorumRequired < 0 {
		logger.Warn("vote create validation failed",
			"event", "governance_vote_create_validation_failed",
			"module", "governance/vote-engine",
			"layer", "application",
			"community_id", strings.TrimSpace(cmd.CommunityID),
			"method", string(cmd.Method),
		)
		return CreateVoteResult{}, domainerrors.ErrInvalidConfiguration
	}
	visibilityPolicy := cmd.ResultsVisibility
	if visibilityPolicy == "" {
		visibilityPolicy = entities.VisibilityLive
	}
	if !visibilityPolicy.Known() {
		return CreateVoteResult{}, domainerrors.ErrInvalidConfiguration
	}

	options, err := uc.buildOptions(ctx, cmd.Options)
	if err != nil {
		return CreateVoteResult{}, err
	}

	now := uc.reconciler().Now()
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateVoteResult{}, err
	}

	restrictions := cmd.Restrictions
	// One ballot per voter is an engine invariant, not a configuration knob.
	restrictions.OneBallotPerVoter = true
	restrictions.NFTContract = strings.TrimSpace(restrictions.NFTContract)

	vote := entities.Vote{
		VoteID:            voteID,
		CommunityID:       strings.TrimSpace(cmd.CommunityID),
		Title:             strings.TrimSpace(cmd.Title),
		Description:       strings.TrimSpace(cmd.Description),
		Method:            cmd.Method,
		Options:           options,
		Restrictions:      restrictions,
		Deadline:          cmd.Deadline.UTC(),
		ResultsVisibility: visibilityPolicy,
		AllowAbstain:      cmd.AllowAbstain,
		QuorumRequired:    cmd.QuorumRequired,
		CreatedBy:         strings.TrimSpace(cmd.CreatedBy),
		State:             entities.StateDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.Votes.SaveVote(ctx, vote); err != nil {
		return CreateVoteResult{}, err
	}
	if err := uc.reconciler().AppendEvent(ctx, "governance.vote.created", vote.VoteID, now, map[string]any{
		"vote_id":      vote.VoteID,
		"community_id": vote.CommunityID,
		"method":       string(vote.Method),
	}); err != nil {
		return CreateVoteResult{}, err
	}
	logger.Info("vote created",
		"event", "governance_vote_created",
		"module", "governance/vote-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"community_id", vote.CommunityID,
		"method", string(vote.Method),
	)
	return CreateVoteResult{Vote: vote}, nil
}

// ActivateVote opens a draft vote for ballots. The method's minimum option
// count and a future deadline are checked here, so submission-time callers
// never see configuration errors.
func (uc VoteUseCase) ActivateVote(ctx context.Context, voteID string) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
	if err != nil {
		return entities.Vote{}, err
	}
	if vote.State != entities.StateDraft {
		return entities.Vote{}, domainerrors.ErrConflict
	}
	now := uc.reconciler().Now()
	if len(vote.Options) < vote.MinOptionCount() || !vote.Deadline.After(now) {
		logger.Warn("vote activation rejected",
			"event", "governance_vote_activate_invalid",
			"module", "governance/vote-engine",
			"layer", "application",
			"vote_id", vote.VoteID,
			"option_count", len(vote.Options),
		)
		return entities.Vote{}, domainerrors.ErrInvalidConfiguration
	}
	moved, err := uc.Votes.TransitionState(ctx, vote.VoteID, entities.StateDraft, entities.StateActive, now)
	if err != nil {
		return entities.Vote{}, err
	}
	if !moved {
		return entities.Vote{}, domainerrors.ErrConflict
	}
	vote.State = entities.StateActive
	vote.UpdatedAt = now
	if err := uc.reconciler().AppendEvent(ctx, "governance.vote.activated", vote.VoteID, now, map[string]any{
		"vote_id":      vote.VoteID,
		"community_id": vote.CommunityID,
		"deadline":     vote.Deadline.Format(time.RFC3339),
	}); err != nil {
		return entities.Vote{}, err
	}
	logger.Info("vote activated",
		"event", "governance_vote_activated",
		"module", "governance/vote-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"community_id", vote.CommunityID,
	)
	return vote, nil
}

// SubmitBallot runs the full acceptance pipeline: lifecycle gate, eligibility,
// shape validation, then the serialized replace-or-record write. A
// resubmission before the deadline supersedes the voter's prior ballot; the
// tally never counts both.
func (uc VoteUseCase) SubmitBallot(ctx context.Context, cmd SubmitBallotCommand) (SubmitBallotResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	if voterID == "" {
		return SubmitBallotResult{}, domainerrors.ErrUnauthorized
	}

	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(cmd.VoteID))
	if err != nil {
		return SubmitBallotResult{}, err
	}
	vote, err = uc.reconciler().Reconcile(ctx, vote)
	if err != nil {
		return SubmitBallotResult{}, err
	}
	now := uc.reconciler().Now()
	if vote.State != entities.StateActive || !now.Before(vote.Deadline) {
		logger.Info("ballot rejected after close",
			"event", "governance_ballot_rejected_closed",
			"module", "governance/vote-engine",
			"layer", "application",
			"vote_id", vote.VoteID,
			"voter_id", voterID,
			"state", string(vote.State),
		)
		return SubmitBallotResult{}, domainerrors.ErrVotingClosed
	}

	facts, err := uc.resolveFacts(ctx, vote, voterID, cmd)
	if err != nil {
		return SubmitBallotResult{}, err
	}
	if err := eligibility.Evaluate(vote, facts); err != nil {
		// Expected, user-facing outcome; not a failure.
		logger.Info("ballot denied by eligibility",
			"event", "governance_ballot_denied",
			"module", "governance/vote-engine",
			"layer", "application",
			"vote_id", vote.VoteID,
			"voter_id", voterID,
			"reason", err.Error(),
		)
		return SubmitBallotResult{}, err
	}

	ballot := entities.Ballot{
		VoteID:      vote.VoteID,
		VoterID:     voterID,
		Choice:      strings.TrimSpace(cmd.Choice),
		Ranking:     trimRanking(cmd.Ranking),
		SubmittedAt: now,
	}
	if err := ballots.Validate(vote, ballot); err != nil {
		logger.Info("ballot rejected by validator",
			"event", "governance_ballot_rejected",
			"module", "governance/vote-engine",
			"layer", "application",
			"vote_id", vote.VoteID,
			"voter_id", voterID,
			"reason", err.Error(),
		)
		return SubmitBallotResult{}, err
	}

	result, err := uc.recordBallot(ctx, vote, ballot, now)
	if err != nil {
		return SubmitBallotResult{}, err
	}
	logger.Info("ballot recorded",
		"event", "governance_ballot_recorded",
		"module", "governance/vote-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"voter_id", voterID,
		"replaced", result.Replaced,
	)
	return result, nil
}

// recordBallot performs the serialized read-modify-write. The lookup, upsert
// and outbox append all happen inside the per-vote lock so concurrent
// resubmissions by the same voter cannot interleave. Internal write conflicts
// retry a bounded number of times and never surface to the caller unless the
// budget is exhausted.
func (uc VoteUseCase) recordBallot(
	ctx context.Context,
	vote entities.Vote,
	ballot entities.Ballot,
	now time.Time,
) (SubmitBallotResult, error) {
	retries := uc.ConflictRetries
	if retries <= 0 {
		retries = defaultConflictRetries
	}

	var result SubmitBallotResult
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = uc.Locks.WithVoteLock(ctx, vote.VoteID, func(ctx context.Context) error {
			existing, found, lookupErr := uc.Ballots.GetBallotByVoter(ctx, vote.VoteID, ballot.VoterID)
			if lookupErr != nil {
				return lookupErr
			}
			if found {
				ballot.BallotID = existing.BallotID
			} else {
				ballotID, idErr := uc.IDGen.NewID(ctx)
				if idErr != nil {
					return idErr
				}
				ballot.BallotID = ballotID
			}
			if saveErr := uc.Ballots.SaveBallot(ctx, ballot); saveErr != nil {
				return saveErr
			}

			eventType := "governance.ballot.recorded"
			if found {
				eventType = "governance.ballot.replaced"
			}
			if eventErr := uc.reconciler().AppendEvent(ctx, eventType, vote.VoteID, now, map[string]any{
				"vote_id":      vote.VoteID,
				"community_id": vote.CommunityID,
				"voter_id":     ballot.VoterID,
				"ballot_id":    ballot.BallotID,
			}); eventErr != nil {
				return eventErr
			}
			result = SubmitBallotResult{Ballot: ballot, Replaced: found}
			return nil
		})
		if !errors.Is(err, domainerrors.ErrConflict) {
			break
		}
	}
	return result, err
}

// CloseVote is the explicit-close transition, available to the vote owner
// ahead of the deadline (admin panel flow).
func (uc VoteUseCase) CloseVote(ctx context.Context, voteID string, actorID string) (entities.Vote, error) {
	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
	if err != nil {
		return entities.Vote{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(actorID), vote.CreatedBy) {
		return entities.Vote{}, domainerrors.ErrUnauthorized
	}
	if vote.State != entities.StateActive {
		return entities.Vote{}, domainerrors.ErrConflict
	}
	return uc.reconciler().Close(ctx, vote)
}

// RevealResults finalizes a manual-reveal vote. Auto-finalized policies land
// here only to report already-revealed, deterministically.
func (uc VoteUseCase) RevealResults(ctx context.Context, voteID string, actorID string) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	vote, err := uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
	if err != nil {
		return entities.Vote{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(actorID), vote.CreatedBy) {
		return entities.Vote{}, domainerrors.ErrUnauthorized
	}
	vote, err = uc.reconciler().Reconcile(ctx, vote)
	if err != nil {
		return entities.Vote{}, err
	}
	switch vote.State {
	case entities.StateDraft, entities.StateActive:
		return entities.Vote{}, domainerrors.ErrVoteNotClosed
	case entities.StateFinalized:
		return entities.Vote{}, domainerrors.ErrAlreadyRevealed
	}

	now := uc.reconciler().Now()
	err = uc.Locks.WithVoteLock(ctx, vote.VoteID, func(ctx context.Context) error {
		moved, casErr := uc.Votes.TransitionState(ctx, vote.VoteID, entities.StateClosed, entities.StateFinalized, now)
		if casErr != nil {
			return casErr
		}
		if !moved {
			return domainerrors.ErrAlreadyRevealed
		}
		if markErr := uc.Votes.MarkRevealed(ctx, vote.VoteID, now); markErr != nil {
			return markErr
		}
		return uc.reconciler().AppendEvent(ctx, "governance.vote.revealed", vote.VoteID, now, map[string]any{
			"vote_id":      vote.VoteID,
			"community_id": vote.CommunityID,
			"revealed_by":  strings.TrimSpace(actorID),
		})
	})
	if err != nil {
		return entities.Vote{}, err
	}
	vote, err = uc.Votes.GetVote(ctx, vote.VoteID)
	if err != nil {
		return entities.Vote{}, err
	}
	logger.Info("vote results revealed",
		"event", "governance_vote_revealed",
		"module", "governance/vote-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"revealed_by", strings.TrimSpace(actorID),
	)
	return vote, nil
}

// resolveFacts assembles the eligibility inputs: wallet facts arrive with the
// request, the membership flag comes from the projection this engine
// maintains from membership events. The evaluator itself performs no I/O.
func (uc VoteUseCase) resolveFacts(
	ctx context.Context,
	vote entities.Vote,
	voterID string,
	cmd SubmitBallotCommand,
) (entities.VoterFacts, error) {
	facts := entities.VoterFacts{
		TokenBalance: cmd.TokenBalance,
		NFTCount:     cmd.NFTCount,
	}
	if vote.Restrictions.MembersOnly && uc.Membership != nil {
		isMember, err := uc.Membership.IsMember(ctx, vote.CommunityID, voterID)
		if err != nil {
			return entities.VoterFacts{}, err
		}
		facts.IsMember = isMember
	}
	return facts, nil
}

func (uc VoteUseCase) buildOptions(ctx context.Context, inputs []OptionInput) ([]entities.Option, error) {
	options := make([]entities.Option, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, input := range inputs {
		optionID := strings.TrimSpace(input.OptionID)
		if optionID == "" {
			minted, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return nil, err
			}
			optionID = minted
		}
		if optionID == entities.AbstainChoice {
			return nil, domainerrors.ErrInvalidConfiguration
		}
		if _, duplicate := seen[optionID]; duplicate {
			return nil, domainerrors.ErrInvalidConfiguration
		}
		seen[optionID] = struct{}{}
		if strings.TrimSpace(input.Label) == "" {
			return nil, domainerrors.ErrInvalidConfiguration
		}
		options = append(options, entities.Option{
			OptionID:    optionID,
			Label:       strings.TrimSpace(input.Label),
			Description: strings.TrimSpace(input.Description),
			Pitch:       strings.TrimSpace(input.Pitch),
		})
	}
	return options, nil
}

func trimRanking(ranking []string) []string {
	if len(ranking) == 0 {
		return nil
	}
	trimmed := make([]string, 0, len(ranking))
	for _, optionID := range ranking {
		trimmed = append(trimmed, strings.TrimSpace(optionID))
	}
	return trimmed
}
