package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
	"daotools/contexts/governance/vote-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store is the in-memory adapter used by tests and local wiring. It
// implements every port of the vote engine, including the per-vote lock.
type Store struct {
	mu sync.RWMutex

	votes      map[string]entities.Vote
	ballots    map[string]map[string]entities.Ballot
	membership map[string]map[string]bool
	outbox     map[string]outboxRecord
	eventDedup map[string]dedupRecord

	lockMu    sync.Mutex
	voteLocks map[string]*sync.Mutex
}

func NewStore(seed []entities.Vote) *Store {
	votes := make(map[string]entities.Vote, len(seed))
	for _, vote := range seed {
		votes[vote.VoteID] = vote
	}
	return &Store{
		votes:      votes,
		ballots:    make(map[string]map[string]entities.Ballot),
		membership: make(map[string]map[string]bool),
		outbox:     make(map[string]outboxRecord),
		eventDedup: make(map[string]dedupRecord),
		voteLocks:  make(map[string]*sync.Mutex),
	}
}

// SetMembership seeds the membership projection directly, bypassing the
// event consumer. Test wiring only.
func (s *Store) SetMembership(communityID string, voterID string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	communityID = strings.TrimSpace(communityID)
	if s.membership[communityID] == nil {
		s.membership[communityID] = make(map[string]bool)
	}
	s.membership[communityID][strings.TrimSpace(voterID)] = active
}

// WithVoteLock serializes fn against other holders of the same vote's lock.
// Locks are per vote id, so submissions to different votes stay parallel.
func (s *Store) WithVoteLock(ctx context.Context, voteID string, fn func(ctx context.Context) error) error {
	s.lockMu.Lock()
	lock, ok := s.voteLocks[strings.TrimSpace(voteID)]
	if !ok {
		lock = &sync.Mutex{}
		s.voteLocks[strings.TrimSpace(voteID)] = lock
	}
	s.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	return nil
}

func (s *Store) GetVote(_ context.Context, voteID string) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

func (s *Store) ListVotes(_ context.Context, communityID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	communityID = strings.TrimSpace(communityID)
	items := make([]entities.Vote, 0, len(s.votes))
	for _, vote := range s.votes {
		if communityID == "" || vote.CommunityID == communityID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) TransitionState(
	_ context.Context,
	voteID string,
	from entities.LifecycleState,
	to entities.LifecycleState,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return false, domainerrors.ErrVoteNotFound
	}
	if vote.State != from {
		return false, nil
	}
	vote.State = to
	vote.UpdatedAt = at.UTC()
	s.votes[strings.TrimSpace(voteID)] = vote
	return true, nil
}

func (s *Store) MarkRevealed(_ context.Context, voteID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return domainerrors.ErrVoteNotFound
	}
	revealedAt := at.UTC()
	vote.RevealedAt = &revealedAt
	vote.UpdatedAt = revealedAt
	s.votes[strings.TrimSpace(voteID)] = vote
	return nil
}

func (s *Store) SaveBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	voteID := strings.TrimSpace(ballot.VoteID)
	if s.ballots[voteID] == nil {
		s.ballots[voteID] = make(map[string]entities.Ballot)
	}
	s.ballots[voteID][strings.TrimSpace(ballot.VoterID)] = ballot
	return nil
}

func (s *Store) GetBallotByVoter(_ context.Context, voteID string, voterID string) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[strings.TrimSpace(voteID)][strings.TrimSpace(voterID)]
	return ballot, ok, nil
}

func (s *Store) ListBallotsByVote(_ context.Context, voteID string) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byVoter := s.ballots[strings.TrimSpace(voteID)]
	items := make([]entities.Ballot, 0, len(byVoter))
	for _, ballot := range byVoter {
		items = append(items, ballot)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].VoterID < items[j].VoterID
		}
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}

func (s *Store) UpsertMembership(_ context.Context, record ports.MembershipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	communityID := strings.TrimSpace(record.CommunityID)
	if s.membership[communityID] == nil {
		s.membership[communityID] = make(map[string]bool)
	}
	s.membership[communityID][strings.TrimSpace(record.VoterID)] = record.Active
	return nil
}

func (s *Store) IsMember(_ context.Context, communityID string, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.membership[strings.TrimSpace(communityID)][strings.TrimSpace(voterID)], nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoteRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.MembershipRepository = (*Store)(nil)
var _ ports.VoteLocker = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
