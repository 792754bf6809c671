package ballots

import (
	"errors"
	"testing"

	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
)

func choiceVote(allowAbstain bool) entities.Vote {
	return entities.Vote{
		VoteID:       "vote-1",
		Method:       entities.MethodSingleChoice,
		AllowAbstain: allowAbstain,
		Options: []entities.Option{
			{OptionID: "opt-a", Label: "Option A"},
			{OptionID: "opt-b", Label: "Option B"},
		},
	}
}

func rankedChoiceVote() entities.Vote {
	vote := choiceVote(false)
	vote.Method = entities.MethodRankedChoice
	return vote
}

func TestValidateAcceptsKnownOption(t *testing.T) {
	if err := Validate(choiceVote(false), entities.Ballot{Choice: "opt-a"}); err != nil {
		t.Fatalf("expected valid ballot, got %v", err)
	}
}

func TestValidateRejectsUnknownOption(t *testing.T) {
	err := Validate(choiceVote(false), entities.Ballot{Choice: "opt-x"})
	if !errors.Is(err, domainerrors.ErrUnknownOption) {
		t.Fatalf("expected unknown option error, got %v", err)
	}
}

func TestValidateRejectsEmptyChoice(t *testing.T) {
	err := Validate(choiceVote(false), entities.Ballot{Choice: "   "})
	if !errors.Is(err, domainerrors.ErrEmptyBallot) {
		t.Fatalf("expected empty ballot error, got %v", err)
	}
}

func TestValidateAbstainRequiresConfiguration(t *testing.T) {
	err := Validate(choiceVote(false), entities.Ballot{Choice: entities.AbstainChoice})
	if !errors.Is(err, domainerrors.ErrAbstainNotAllowed) {
		t.Fatalf("expected abstain rejection, got %v", err)
	}
	if err := Validate(choiceVote(true), entities.Ballot{Choice: entities.AbstainChoice}); err != nil {
		t.Fatalf("expected abstain accepted when configured, got %v", err)
	}
}

func TestValidateRankingAcceptsPartialOrder(t *testing.T) {
	err := Validate(rankedChoiceVote(), entities.Ballot{Ranking: []string{"opt-b"}})
	if err != nil {
		t.Fatalf("expected partial ranking accepted, got %v", err)
	}
}

func TestValidateRankingRejectsDuplicates(t *testing.T) {
	err := Validate(rankedChoiceVote(), entities.Ballot{Ranking: []string{"opt-a", "opt-a"}})
	if !errors.Is(err, domainerrors.ErrDuplicateRank) {
		t.Fatalf("expected duplicate rank error, got %v", err)
	}
}

func TestValidateRankingRejectsUnknownAndEmpty(t *testing.T) {
	if err := Validate(rankedChoiceVote(), entities.Ballot{Ranking: []string{"opt-z"}}); !errors.Is(err, domainerrors.ErrUnknownOption) {
		t.Fatalf("expected unknown option error, got %v", err)
	}
	if err := Validate(rankedChoiceVote(), entities.Ballot{}); !errors.Is(err, domainerrors.ErrEmptyBallot) {
		t.Fatalf("expected empty ballot error, got %v", err)
	}
}
