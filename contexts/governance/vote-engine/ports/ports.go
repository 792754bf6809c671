package ports

import (
	"context"
	"encoding/json"
	"time"

	"daotools/contexts/governance/vote-engine/domain/entities"
)

type VoteRepository interface {
	SaveVote(ctx context.Context, vote entities.Vote) error
	GetVote(ctx context.Context, voteID string) (entities.Vote, error)
	ListVotes(ctx context.Context, communityID string) ([]entities.Vote, error)
	// TransitionState is a compare-and-set on the lifecycle state; it reports
	// whether this caller performed the transition.
	TransitionState(ctx context.Context, voteID string, from entities.LifecycleState, to entities.LifecycleState, at time.Time) (bool, error)
	MarkRevealed(ctx context.Context, voteID string, at time.Time) error
}

type BallotRepository interface {
	// SaveBallot upserts with last-write-wins semantics on (vote id, voter id).
	SaveBallot(ctx context.Context, ballot entities.Ballot) error
	GetBallotByVoter(ctx context.Context, voteID string, voterID string) (entities.Ballot, bool, error)
	ListBallotsByVote(ctx context.Context, voteID string) ([]entities.Ballot, error)
}

// MembershipRecord is the engine's projection of the community directory,
// maintained from membership events. The engine never writes it from the
// ballot path.
type MembershipRecord struct {
	CommunityID string
	VoterID     string
	Active      bool
	UpdatedAt   time.Time
}

type MembershipRepository interface {
	UpsertMembership(ctx context.Context, record MembershipRecord) error
	IsMember(ctx context.Context, communityID string, voterID string) (bool, error)
}

// VoteLocker serializes mutations per vote identifier. Locks for different
// votes are independent so cross-vote submissions stay parallel.
type VoteLocker interface {
	WithVoteLock(ctx context.Context, voteID string, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope is the canonical event shape crossing this context's
// boundary, on both the outbox and the bus.
type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type EventDedupStore interface {
	// ReserveEvent reports true when the event was already processed with the
	// same payload hash; a differing hash is a conflict.
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}
