package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
	"daotools/contexts/governance/vote-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// WithVoteLock takes a per-vote advisory lock inside a transaction and holds
// it until fn returns. hashtextextended folds the vote id to the bigint key
// space pg_advisory_xact_lock expects.
func (r *Repository) WithVoteLock(ctx context.Context, voteID string, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", strings.TrimSpace(voteID)).Error; err != nil {
			return r.logError("governance_repo_vote_lock_failed", err, "vote_id", strings.TrimSpace(voteID))
		}
		return fn(ctx)
	})
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		create := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"community_id":          row.CommunityID,
				"title":                 row.Title,
				"description":           row.Description,
				"method":                row.Method,
				"deadline":              row.Deadline,
				"results_visibility":    row.ResultsVisibility,
				"allow_abstain":         row.AllowAbstain,
				"quorum_required":       row.QuorumRequired,
				"members_only":          row.MembersOnly,
				"one_ballot_per_voter":  row.OneBallotPerVoter,
				"minimum_token_balance": row.MinimumTokenBalance,
				"nft_contract":          row.NFTContract,
				"nft_min_count":         row.NFTMinCount,
				"created_by":            row.CreatedBy,
				"state":                 row.State,
				"revealed_at":           row.RevealedAt,
				"updated_at":            row.UpdatedAt,
			}),
		}).Create(&row)
		if create.Error != nil {
			return create.Error
		}
		if err := tx.Where("vote_id = ?", row.ID).Delete(&voteOptionModel{}).Error; err != nil {
			return err
		}
		for position, option := range vote.Options {
			optionRow := voteOptionModel{
				VoteID:      row.ID,
				OptionID:    strings.TrimSpace(option.OptionID),
				Label:       strings.TrimSpace(option.Label),
				Description: strings.TrimSpace(option.Description),
				Pitch:       strings.TrimSpace(option.Pitch),
				Position:    position,
			}
			if err := tx.Create(&optionRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("governance_repo_save_vote_failed", err,
			"vote_id", strings.TrimSpace(vote.VoteID),
			"community_id", strings.TrimSpace(vote.CommunityID),
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, voteID string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrVoteNotFound
		}
		return entities.Vote{}, r.logError("governance_repo_get_vote_failed", err, "vote_id", strings.TrimSpace(voteID))
	}
	options, err := r.listOptions(ctx, row.ID)
	if err != nil {
		return entities.Vote{}, err
	}
	return row.toEntity(options), nil
}

func (r *Repository) ListVotes(ctx context.Context, communityID string) ([]entities.Vote, error) {
	tx := r.db.WithContext(ctx).Model(&voteModel{})
	if strings.TrimSpace(communityID) != "" {
		tx = tx.Where("community_id = ?", strings.TrimSpace(communityID))
	}
	var rows []voteModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_votes_failed", err,
			"community_id", strings.TrimSpace(communityID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		options, err := r.listOptions(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, row.toEntity(options))
	}
	return items, nil
}

func (r *Repository) TransitionState(
	ctx context.Context,
	voteID string,
	from entities.LifecycleState,
	to entities.LifecycleState,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("id = ?", strings.TrimSpace(voteID)).
		Where("state = ?", string(from)).
		Updates(map[string]any{
			"state":      string(to),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("governance_repo_transition_state_failed", result.Error,
			"vote_id", strings.TrimSpace(voteID),
			"from_state", string(from),
			"to_state", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) MarkRevealed(ctx context.Context, voteID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("id = ?", strings.TrimSpace(voteID)).
		Updates(map[string]any{
			"revealed_at": at.UTC(),
			"updated_at":  at.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_revealed_failed", result.Error,
			"vote_id", strings.TrimSpace(voteID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVoteNotFound
	}
	return nil
}

func (r *Repository) SaveBallot(ctx context.Context, ballot entities.Ballot) error {
	row, err := ballotModelFromEntity(ballot)
	if err != nil {
		return r.logError("governance_repo_ballot_encode_failed", err,
			"ballot_id", strings.TrimSpace(ballot.BallotID),
		)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vote_id"}, {Name: "voter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"choice":       row.Choice,
			"ranking":      row.Ranking,
			"submitted_at": row.SubmittedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("governance_repo_save_ballot_failed", create.Error,
			"ballot_id", strings.TrimSpace(ballot.BallotID),
			"vote_id", strings.TrimSpace(ballot.VoteID),
			"voter_id", strings.TrimSpace(ballot.VoterID),
		)
	}
	return nil
}

func (r *Repository) GetBallotByVoter(ctx context.Context, voteID string, voterID string) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("vote_id = ?", strings.TrimSpace(voteID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("governance_repo_get_ballot_by_voter_failed", err,
			"vote_id", strings.TrimSpace(voteID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	ballot, err := row.toEntity()
	if err != nil {
		return entities.Ballot{}, false, r.logError("governance_repo_ballot_decode_failed", err,
			"ballot_id", row.ID,
		)
	}
	return ballot, true, nil
}

func (r *Repository) ListBallotsByVote(ctx context.Context, voteID string) ([]entities.Ballot, error) {
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("vote_id = ?", strings.TrimSpace(voteID)).
		Order("submitted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_ballots_failed", err,
			"vote_id", strings.TrimSpace(voteID),
		)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		ballot, err := row.toEntity()
		if err != nil {
			return nil, r.logError("governance_repo_ballot_decode_failed", err, "ballot_id", row.ID)
		}
		items = append(items, ballot)
	}
	return items, nil
}

func (r *Repository) UpsertMembership(ctx context.Context, record ports.MembershipRecord) error {
	row := membershipModel{
		CommunityID: strings.TrimSpace(record.CommunityID),
		VoterID:     strings.TrimSpace(record.VoterID),
		Active:      record.Active,
		UpdatedAt:   record.UpdatedAt.UTC(),
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "community_id"}, {Name: "voter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"active":     row.Active,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_upsert_membership_failed", create.Error,
			"community_id", row.CommunityID,
			"voter_id", row.VoterID,
		)
	}
	return nil
}

func (r *Repository) IsMember(ctx context.Context, communityID string, voterID string) (bool, error) {
	var row membershipModel
	err := r.db.WithContext(ctx).
		Where("community_id = ?", strings.TrimSpace(communityID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if isUndefinedTable(err) {
			// Projection schema is optional in local development; members-only
			// votes then deny until the consumer has materialized it.
			return false, nil
		}
		return false, r.logError("governance_repo_is_member_failed", err,
			"community_id", strings.TrimSpace(communityID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.Active, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("governance_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("governance_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("governance_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("governance_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) listOptions(ctx context.Context, voteID string) ([]entities.Option, error) {
	var rows []voteOptionModel
	if err := r.db.WithContext(ctx).
		Where("vote_id = ?", voteID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_options_failed", err, "vote_id", voteID)
	}
	options := make([]entities.Option, 0, len(rows))
	for _, row := range rows {
		options = append(options, entities.Option{
			OptionID:    row.OptionID,
			Label:       row.Label,
			Description: row.Description,
			Pitch:       row.Pitch,
		})
	}
	return options, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "governance/vote-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

type voteModel struct {
	ID                  string     `gorm:"column:id;primaryKey"`
	CommunityID         string     `gorm:"column:community_id"`
	Title               string     `gorm:"column:title"`
	Description         string     `gorm:"column:description"`
	Method              string     `gorm:"column:method"`
	Deadline            time.Time  `gorm:"column:deadline"`
	ResultsVisibility   string     `gorm:"column:results_visibility"`
	AllowAbstain        bool       `gorm:"column:allow_abstain"`
	QuorumRequired      int        `gorm:"column:quorum_required"`
	MembersOnly         bool       `gorm:"column:members_only"`
	OneBallotPerVoter   bool       `gorm:"column:one_ballot_per_voter"`
	MinimumTokenBalance *float64   `gorm:"column:minimum_token_balance"`
	NFTContract         string     `gorm:"column:nft_contract"`
	NFTMinCount         int        `gorm:"column:nft_min_count"`
	CreatedBy           string     `gorm:"column:created_by"`
	State               string     `gorm:"column:state"`
	RevealedAt          *time.Time `gorm:"column:revealed_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "governance_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:                strings.TrimSpace(vote.VoteID),
		CommunityID:       strings.TrimSpace(vote.CommunityID),
		Title:             strings.TrimSpace(vote.Title),
		Description:       strings.TrimSpace(vote.Description),
		Method:            string(vote.Method),
		Deadline:          vote.Deadline.UTC(),
		ResultsVisibility: string(vote.ResultsVisibility),
		AllowAbstain:      vote.AllowAbstain,
		QuorumRequired:    vote.QuorumRequired,
		MembersOnly:       vote.Restrictions.MembersOnly,
		OneBallotPerVoter: vote.Restrictions.OneBallotPerVoter,
		NFTContract:       strings.TrimSpace(vote.Restrictions.NFTContract),
		NFTMinCount:       vote.Restrictions.NFTMinCount,
		CreatedBy:         strings.TrimSpace(vote.CreatedBy),
		State:             string(vote.State),
		RevealedAt:        normalizeOptionalTime(vote.RevealedAt),
		CreatedAt:         vote.CreatedAt.UTC(),
		UpdatedAt:         vote.UpdatedAt.UTC(),
	}
	if vote.Restrictions.MinimumTokenBalance != nil {
		minimum := *vote.Restrictions.MinimumTokenBalance
		row.MinimumTokenBalance = &minimum
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m voteModel) toEntity(options []entities.Option) entities.Vote {
	vote := entities.Vote{
		VoteID:      m.ID,
		CommunityID: m.CommunityID,
		Title:       m.Title,
		Description: m.Description,
		Method:      entities.VoteMethod(m.Method),
		Options:     options,
		Restrictions: entities.Restrictions{
			MembersOnly:       m.MembersOnly,
			OneBallotPerVoter: m.OneBallotPerVoter,
			NFTContract:       m.NFTContract,
			NFTMinCount:       m.NFTMinCount,
		},
		Deadline:          m.Deadline.UTC(),
		ResultsVisibility: entities.ResultsVisibility(m.ResultsVisibility),
		AllowAbstain:      m.AllowAbstain,
		QuorumRequired:    m.QuorumRequired,
		CreatedBy:         m.CreatedBy,
		State:             entities.LifecycleState(m.State),
		RevealedAt:        normalizeOptionalTime(m.RevealedAt),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
	if m.MinimumTokenBalance != nil {
		minimum := *m.MinimumTokenBalance
		vote.Restrictions.MinimumTokenBalance = &minimum
	}
	return vote
}

type voteOptionModel struct {
	VoteID      string `gorm:"column:vote_id;primaryKey"`
	OptionID    string `gorm:"column:option_id;primaryKey"`
	Label       string `gorm:"column:label"`
	Description string `gorm:"column:description"`
	Pitch       string `gorm:"column:pitch"`
	Position    int    `gorm:"column:position"`
}

func (voteOptionModel) TableName() string {
	return "governance_vote_options"
}

type ballotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	VoteID      string    `gorm:"column:vote_id"`
	VoterID     string    `gorm:"column:voter_id"`
	Choice      string    `gorm:"column:choice"`
	Ranking     string    `gorm:"column:ranking"`
	SubmittedAt time.Time `gorm:"column:submitted_at"`
}

func (ballotModel) TableName() string {
	return "governance_ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) (ballotModel, error) {
	row := ballotModel{
		ID:          strings.TrimSpace(ballot.BallotID),
		VoteID:      strings.TrimSpace(ballot.VoteID),
		VoterID:     strings.TrimSpace(ballot.VoterID),
		Choice:      strings.TrimSpace(ballot.Choice),
		SubmittedAt: ballot.SubmittedAt.UTC(),
	}
	if len(ballot.Ranking) > 0 {
		encoded, err := json.Marshal(ballot.Ranking)
		if err != nil {
			return ballotModel{}, err
		}
		row.Ranking = string(encoded)
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = time.Now().UTC()
	}
	return row, nil
}

func (m ballotModel) toEntity() (entities.Ballot, error) {
	ballot := entities.Ballot{
		BallotID:    m.ID,
		VoteID:      m.VoteID,
		VoterID:     m.VoterID,
		Choice:      m.Choice,
		SubmittedAt: m.SubmittedAt.UTC(),
	}
	if strings.TrimSpace(m.Ranking) != "" {
		if err := json.Unmarshal([]byte(m.Ranking), &ballot.Ranking); err != nil {
			return entities.Ballot{}, err
		}
	}
	return ballot, nil
}

type membershipModel struct {
	CommunityID string    `gorm:"column:community_id;primaryKey"`
	VoterID     string    `gorm:"column:voter_id;primaryKey"`
	Active      bool      `gorm:"column:active"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (membershipModel) TableName() string {
	return "governance_membership"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "governance_event_dedup"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.MembershipRepository = (*Repository)(nil)
var _ ports.VoteLocker = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
