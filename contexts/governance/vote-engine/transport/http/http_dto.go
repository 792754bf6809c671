package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OptionPayload struct {
	OptionID    string `json:"option_id,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Pitch       string `json:"pitch,omitempty"`
}

type RestrictionsPayload struct {
	MembersOnly         bool     `json:"members_only"`
	MinimumTokenBalance *float64 `json:"minimum_token_balance,omitempty"`
	NFTContract         string   `json:"nft_contract,omitempty"`
	NFTMinCount         int      `json:"nft_min_count,omitempty"`
}

type CreateVoteRequest struct {
	CommunityID       string              `json:"community_id"`
	Title             string              `json:"title"`
	Description       string              `json:"description,omitempty"`
	Method            string              `json:"method"`
	Options           []OptionPayload     `json:"options"`
	Restrictions      RestrictionsPayload `json:"restrictions"`
	Deadline          time.Time           `json:"deadline"`
	ResultsVisibility string              `json:"results_visibility,omitempty"`
	AllowAbstain      bool                `json:"allow_abstain"`
	QuorumRequired    int                 `json:"quorum_required,omitempty"`
}

type VoteResponse struct {
	VoteID            string              `json:"vote_id"`
	CommunityID       string              `json:"community_id"`
	Title             string              `json:"title"`
	Description       string              `json:"description,omitempty"`
	Method            string              `json:"method"`
	Options           []OptionPayload     `json:"options"`
	Restrictions      RestrictionsPayload `json:"restrictions"`
	Deadline          time.Time           `json:"deadline"`
	ResultsVisibility string              `json:"results_visibility"`
	AllowAbstain      bool                `json:"allow_abstain"`
	QuorumRequired    int                 `json:"quorum_required"`
	CreatedBy         string              `json:"created_by"`
	State             string              `json:"state"`
	RevealedAt        *time.Time          `json:"revealed_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type SubmitBallotRequest struct {
	Choice       string   `json:"choice,omitempty"`
	Ranking      []string `json:"ranking,omitempty"`
	TokenBalance float64  `json:"token_balance,omitempty"`
	NFTCount     int      `json:"nft_count,omitempty"`
}

type BallotResponse struct {
	BallotID    string    `json:"ballot_id"`
	VoteID      string    `json:"vote_id"`
	VoterID     string    `json:"voter_id"`
	Choice      string    `json:"choice,omitempty"`
	Ranking     []string  `json:"ranking,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Replaced    bool      `json:"replaced"`
}

type OptionCountItem struct {
	OptionID string  `json:"option_id"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

type RunoffRoundItem struct {
	Round      int            `json:"round"`
	Counts     map[string]int `json:"counts"`
	Exhausted  int            `json:"exhausted"`
	Eliminated string         `json:"eliminated,omitempty"`
	Winner     string         `json:"winner,omitempty"`
}

type TallyResponse struct {
	VoteID         string            `json:"vote_id"`
	Method         string            `json:"method"`
	TotalBallots   int               `json:"total_ballots"`
	AbstainCount   int               `json:"abstain_count"`
	Options        []OptionCountItem `json:"options"`
	Leader         string            `json:"leader,omitempty"`
	Winner         string            `json:"winner,omitempty"`
	Rounds         []RunoffRoundItem `json:"rounds,omitempty"`
	QuorumRequired int               `json:"quorum_required"`
	QuorumReached  bool              `json:"quorum_reached"`
}

type LifecycleStateResponse struct {
	VoteID string `json:"vote_id"`
	State  string `json:"state"`
}

type VoteDetailResponse struct {
	Vote         VoteResponse    `json:"vote"`
	CallerBallot *BallotResponse `json:"caller_ballot,omitempty"`
}

type VoteSummaryItem struct {
	Vote           VoteResponse   `json:"vote"`
	TotalBallots   int            `json:"total_ballots"`
	ResultsVisible bool           `json:"results_visible"`
	HiddenReason   string         `json:"hidden_reason,omitempty"`
	Tally          *TallyResponse `json:"tally,omitempty"`
}

type VoteListResponse struct {
	Items []VoteSummaryItem `json:"items"`
}
