package eligibility

import (
	"errors"
	"testing"

	"daotools/contexts/governance/vote-engine/domain/entities"
	domainerrors "daotools/contexts/governance/vote-engine/domain/errors"
)

func TestUnrestrictedVoteAdmitsAnyone(t *testing.T) {
	if err := Evaluate(entities.Vote{}, entities.VoterFacts{}); err != nil {
		t.Fatalf("expected open vote to admit voter, got %v", err)
	}
}

func TestMembersOnlyDeniesNonMembers(t *testing.T) {
	vote := entities.Vote{Restrictions: entities.Restrictions{MembersOnly: true}}
	if err := Evaluate(vote, entities.VoterFacts{IsMember: false}); !errors.Is(err, domainerrors.ErrNotAMember) {
		t.Fatalf("expected membership denial, got %v", err)
	}
	if err := Evaluate(vote, entities.VoterFacts{IsMember: true}); err != nil {
		t.Fatalf("expected member admitted, got %v", err)
	}
}

func TestTokenThresholdIsInclusive(t *testing.T) {
	minimum := 100.0
	vote := entities.Vote{Restrictions: entities.Restrictions{MinimumTokenBalance: &minimum}}

	if err := Evaluate(vote, entities.VoterFacts{TokenBalance: 99.999}); !errors.Is(err, domainerrors.ErrInsufficientTokens) {
		t.Fatalf("expected token denial below threshold, got %v", err)
	}
	if err := Evaluate(vote, entities.VoterFacts{TokenBalance: 100}); err != nil {
		t.Fatalf("expected exact balance admitted, got %v", err)
	}
}

func TestNFTGateDefaultsToOne(t *testing.T) {
	vote := entities.Vote{Restrictions: entities.Restrictions{NFTContract: "0xabc"}}

	if err := Evaluate(vote, entities.VoterFacts{NFTCount: 0}); !errors.Is(err, domainerrors.ErrNFTRequired) {
		t.Fatalf("expected NFT denial, got %v", err)
	}
	if err := Evaluate(vote, entities.VoterFacts{NFTCount: 1}); err != nil {
		t.Fatalf("expected single NFT to satisfy default gate, got %v", err)
	}
}

func TestNFTMinCountHonored(t *testing.T) {
	vote := entities.Vote{Restrictions: entities.Restrictions{NFTContract: "0xabc", NFTMinCount: 3}}
	if err := Evaluate(vote, entities.VoterFacts{NFTCount: 2}); !errors.Is(err, domainerrors.ErrNFTRequired) {
		t.Fatalf("expected denial below configured count, got %v", err)
	}
	if err := Evaluate(vote, entities.VoterFacts{NFTCount: 3}); err != nil {
		t.Fatalf("expected configured count admitted, got %v", err)
	}
}

func TestDenialOrderIsDeterministic(t *testing.T) {
	minimum := 50.0
	vote := entities.Vote{Restrictions: entities.Restrictions{
		MembersOnly:         true,
		MinimumTokenBalance: &minimum,
		NFTContract:         "0xabc",
	}}
	// Everything fails; membership is always reported first.
	if err := Evaluate(vote, entities.VoterFacts{}); !errors.Is(err, domainerrors.ErrNotAMember) {
		t.Fatalf("expected membership denial first, got %v", err)
	}
}
