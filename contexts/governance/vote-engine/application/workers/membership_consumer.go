package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "daotools/contexts/governance/vote-engine/application"
	"daotools/contexts/governance/vote-engine/ports"
)

const (
	membershipChangedTopic = "community.membership.changed"
	defaultMembershipCG    = "vote-engine-membership-cg"
)

// MembershipConsumer keeps the engine's membership projection in sync with
// the community directory. The projection is the members-only eligibility
// input; the ballot path never mutates it.
type MembershipConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Membership    ports.MembershipRepository
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c MembershipConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("membership consumer disabled by feature flag",
			"event", "governance_membership_consumer_disabled",
			"module", "governance/vote-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultMembershipCG
	}
	if err := c.Subscriber.Subscribe(ctx, membershipChangedTopic, group, c.handleMembershipChanged); err != nil {
		logger.Error("membership consumer subscribe failed",
			"event", "governance_membership_consumer_subscribe_failed",
			"module", "governance/vote-engine",
			"layer", "worker",
			"topic", membershipChangedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("membership consumer subscription active",
		"event", "governance_membership_consumer_started",
		"module", "governance/vote-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c MembershipConsumer) handleMembershipChanged(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	if alreadyProcessed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if alreadyProcessed {
		logger.Debug("membership event replay skipped",
			"event", "governance_membership_event_replayed",
			"module", "governance/vote-engine",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		CommunityID string `json:"community_id"`
		VoterID     string `json:"voter_id"`
		Active      bool   `json:"active"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("membership event decode failed",
			"event", "governance_membership_event_decode_failed",
			"module", "governance/vote-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if strings.TrimSpace(payload.CommunityID) == "" || strings.TrimSpace(payload.VoterID) == "" {
		logger.Warn("membership event missing identifiers",
			"event", "governance_membership_event_invalid",
			"module", "governance/vote-engine",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	record := ports.MembershipRecord{
		CommunityID: strings.TrimSpace(payload.CommunityID),
		VoterID:     strings.TrimSpace(payload.VoterID),
		Active:      payload.Active,
		UpdatedAt:   c.now(),
	}
	if err := c.Membership.UpsertMembership(ctx, record); err != nil {
		return err
	}
	logger.Info("membership projection updated",
		"event", "governance_membership_projection_updated",
		"module", "governance/vote-engine",
		"layer", "worker",
		"community_id", record.CommunityID,
		"voter_id", record.VoterID,
		"active", record.Active,
	)
	return nil
}

func (c MembershipConsumer) reserveEvent(ctx context.Context, event ports.EventEnvelope) (bool, error) {
	if c.Dedup == nil {
		return false, nil
	}
	sum := sha256.Sum256(event.Data)
	ttl := c.DedupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return c.Dedup.ReserveEvent(ctx, event.EventID, hex.EncodeToString(sum[:]), c.now().Add(ttl))
}

func (c MembershipConsumer) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
