// Package ballots validates a proposed ballot's shape against the vote's
// method before acceptance. Stateless, no side effects.
package ballots

import (
	"strings"

	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
)

// Validate rejects malformed choice payloads with a machine-checkable reason.
// Eligibility and lifecycle are out of scope here; only shape is checked.
func Validate(vote entities.Vote, ballot entities.Ballot) error {
	if vote.Method.Ranked() {
		return validateRanking(vote, ballot.Ranking)
	}
	return validateChoice(vote, ballot.Choice)
}

// validateChoice covers single-choice, yes-no and multiple-choice ballots.
// "Multiple choice" in this platform means choose one of N options, so all
// three methods share the exactly-one-option shape.
func validateChoice(vote entities.Vote, choice string) error {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return domainerrors.ErrEmptyBallot
	}
	if choice == entities.AbstainChoice {
		if !vote.AllowAbstain {
			return domainerrors.ErrAbstainNotAllowed
		}
		return nil
	}
	if !vote.HasOption(choice) {
		return domainerrors.ErrUnknownOption
	}
	return nil
}

// validateRanking accepts partial rankings: unranked options are implicitly
// least-preferred. Duplicates would express a tie, which the method forbids.
func validateRanking(vote entities.Vote, ranking []string) error {
	if len(ranking) == 0 {
		return domainerrors.ErrEmptyBallot
	}
	seen := make(map[string]struct{}, len(ranking))
	for _, optionID := range ranking {
		if !vote.HasOption(optionID) {
			return domainerrors.ErrUnknownOption
		}
		if _, duplicate := seen[optionID]; duplicate {
			return domainerrors.ErrDuplicateRank
		}
		seen[optionID] = struct{}{}
	}
	return nil
}
