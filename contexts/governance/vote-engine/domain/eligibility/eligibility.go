// Package eligibility decides whether a voter may cast a ballot on a vote.
// It is a pure predicate over collaborator-supplied facts; a denial is a
// normal result, not a failure.
package eligibility

import (
	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
)

// Evaluate checks every configured restriction and returns nil when all hold.
// Rules are evaluated in a fixed order so the surfaced denial reason is
// deterministic when several restrictions fail at once.
func Evaluate(vote entities.Vote, facts entities.VoterFacts) error {
	if vote.Restrictions.MembersOnly && !facts.IsMember {
		return domainerrors.ErrNotAMember
	}
	if minimum := vote.Restrictions.MinimumTokenBalance; minimum != nil && facts.TokenBalance < *minimum {
		return domainerrors.ErrInsufficientTokens
	}
	if vote.Restrictions.NFTGated() {
		required := vote.Restrictions.NFTMinCount
		if required < 1 {
			required = 1
		}
		if facts.NFTCount < required {
			return domainerrors.ErrNFTRequired
		}
	}
	return nil
}
