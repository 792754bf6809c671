package entities

import (
	"strings"
	"time"
)

type VoteMethod string

const (
	MethodSingleChoice   VoteMethod = "single-choice"
	MethodRankedChoice   VoteMethod = "ranked-choice"
	MethodYesNo          VoteMethod = "yes-no"
	MethodMultipleChoice VoteMethod = "multiple-choice"
)

func (m VoteMethod) Known() bool {
	switch m {
	case MethodSingleChoice, MethodRankedChoice, MethodYesNo, MethodMultipleChoice:
		return true
	default:
		return false
	}
}

// Ranked reports whether ballots for this method carry an ordered ranking
// instead of a single choice.
func (m VoteMethod) Ranked() bool {
	return m == MethodRankedChoice
}

type LifecycleState string

const (
	StateDraft     LifecycleState = "draft"
	StateActive    LifecycleState = "active"
	StateClosed    LifecycleState = "closed"
	StateFinalized LifecycleState = "finalized"
)

type ResultsVisibility string

const (
	VisibilityLive          ResultsVisibility = "live"
	VisibilityAfterDeadline ResultsVisibility = "after-deadline"
	VisibilityManualReveal  ResultsVisibility = "manual-reveal"
)

func (v ResultsVisibility) Known() bool {
	switch v {
	case VisibilityLive, VisibilityAfterDeadline, VisibilityManualReveal:
		return true
	default:
		return false
	}
}

// AbstainChoice is the sentinel ballot choice for abstentions. It is never an
// option row; abstain counts live next to option counts in the tally.
const AbstainChoice = "abstain"

// Option is one selectable entry of a vote. Candidates are options with extra
// display metadata that the engine stores but does not interpret.
type Option struct {
	OptionID    string
	Label       string
	Description string
	Pitch       string
}

type Restrictions struct {
	MembersOnly         bool
	OneBallotPerVoter   bool
	MinimumTokenBalance *float64
	NFTContract         string
	NFTMinCount         int
}

func (r Restrictions) NFTGated() bool {
	return strings.TrimSpace(r.NFTContract) != ""
}

// Vote is a single governance decision point. Options and restrictions are
// immutable once the vote leaves draft; only lifecycle fields move after that.
type Vote struct {
	VoteID            string
	CommunityID       string
	Title             string
	Description       string
	Method            VoteMethod
	Options           []Option
	Restrictions      Restrictions
	Deadline          time.Time
	ResultsVisibility ResultsVisibility
	AllowAbstain      bool
	QuorumRequired    int
	CreatedBy         string
	State             LifecycleState
	RevealedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (v Vote) HasOption(optionID string) bool {
	for _, option := range v.Options {
		if option.OptionID == optionID {
			return true
		}
	}
	return false
}

// MinOptionCount is the smallest option set a method can be activated with.
func (v Vote) MinOptionCount() int {
	if v.Method == MethodYesNo {
		return 2
	}
	return 1
}

// Ballot is one voter's recorded submission. At most one ballot per
// (vote, voter) is ever recorded; a resubmission supersedes the prior one.
type Ballot struct {
	BallotID    string
	VoteID      string
	VoterID     string
	Choice      string
	Ranking     []string
	SubmittedAt time.Time
}

func (b Ballot) Abstained() bool {
	return b.Choice == AbstainChoice
}

// VoterFacts are the collaborator-supplied inputs to eligibility. The engine
// never derives these itself.
type VoterFacts struct {
	IsMember     bool
	TokenBalance float64
	NFTCount     int
}

type OptionCount struct {
	OptionID string
	Label    string
	Count    int
	Percent  float64
}

// RunoffRound captures one instant-runoff elimination step.
type RunoffRound struct {
	Round      int
	Counts     map[string]int
	Exhausted  int
	Eliminated string
	Winner     string
}

// TallyResult is derived from the current ballot set, never stored.
type TallyResult struct {
	VoteID         string
	Method         VoteMethod
	TotalBallots   int
	AbstainCount   int
	Options        []OptionCount
	Leader         string
	Winner         string
	Rounds         []RunoffRound
	QuorumRequired int
	QuorumReached  bool
}
