package application

import (
	"context"
	"log/slog"
	"time"

	"daotools/contexts/governance/vote-engine/domain/entities"
	"daotools/contexts/governance/vote-engine/ports"
)

// Reconciler owns the lazy deadline transition. There is no background timer:
// every access path runs Reconcile, and the compare-and-set in the repository
// guarantees the one-time effects (close, auto-finalize) fire exactly once no
// matter how many callers race past the deadline.
type Reconciler struct {
	Votes  ports.VoteRepository
	Locks  ports.VoteLocker
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Reconcile closes the vote when its deadline has elapsed and returns the
// current view. Votes that are not past-deadline active pass through
// untouched.
func (r Reconciler) Reconcile(ctx context.Context, vote entities.Vote) (entities.Vote, error) {
	if vote.State != entities.StateActive || r.Now().Before(vote.Deadline) {
		return vote, nil
	}
	return r.Close(ctx, vote)
}

// Close transitions an active vote to closed and auto-finalizes it unless the
// vote requires a manual reveal. Events are appended only by the caller that
// wins the compare-and-set.
func (r Reconciler) Close(ctx context.Context, vote entities.Vote) (entities.Vote, error) {
	logger := ResolveLogger(r.Logger)
	now := r.Now()
	err := r.Locks.WithVoteLock(ctx, vote.VoteID, func(ctx context.Context) error {
		closed, err := r.Votes.TransitionState(ctx, vote.VoteID, entities.StateActive, entities.StateClosed, now)
		if err != nil {
			return err
		}
		if closed {
			logger.Info("vote closed",
				"event", "governance_vote_closed",
				"module", "governance/vote-engine",
				"layer", "application",
				"vote_id", vote.VoteID,
			)
			if err := r.AppendEvent(ctx, "governance.vote.closed", vote.VoteID, now, map[string]any{
				"vote_id":      vote.VoteID,
				"community_id": vote.CommunityID,
			}); err != nil {
				return err
			}
		}
		if vote.ResultsVisibility != entities.VisibilityManualReveal {
			finalized, err := r.Votes.TransitionState(ctx, vote.VoteID, entities.StateClosed, entities.StateFinalized, now)
			if err != nil {
				return err
			}
			if finalized {
				logger.Info("vote auto-finalized",
					"event", "governance_vote_finalized",
					"module", "governance/vote-engine",
					"layer", "application",
					"vote_id", vote.VoteID,
					"results_visibility", string(vote.ResultsVisibility),
				)
				if err := r.AppendEvent(ctx, "governance.vote.finalized", vote.VoteID, now, map[string]any{
					"vote_id":      vote.VoteID,
					"community_id": vote.CommunityID,
				}); err != nil {
					return err
				}
			}
		}
		fresh, err := r.Votes.GetVote(ctx, vote.VoteID)
		if err != nil {
			return err
		}
		vote = fresh
		return nil
	})
	return vote, err
}

func (r Reconciler) Now() time.Time {
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}
	return now
}

// AppendEvent is nil-outbox tolerant so pure read/test wiring stays light.
func (r Reconciler) AppendEvent(
	ctx context.Context,
	eventType string,
	voteID string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if r.Outbox == nil {
		return nil
	}
	eventID, err := r.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := NewEnvelope(eventID, eventType, voteID, occurredAt, data)
	if err != nil {
		return err
	}
	return r.Outbox.AppendOutbox(ctx, envelope)
}
