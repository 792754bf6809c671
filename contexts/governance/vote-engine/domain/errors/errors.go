package errors

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid vote configuration")
	ErrVoteNotFound         = errors.New("vote not found")

	ErrNotAMember         = errors.New("voter is not a community member")
	ErrInsufficientTokens = errors.New("voter token balance below minimum")
	ErrNFTRequired        = errors.New("voter does not hold the required nft")

	ErrUnknownOption     = errors.New("ballot references an unknown option")
	ErrDuplicateRank     = errors.New("ballot ranks the same option twice")
	ErrEmptyBallot       = errors.New("ballot carries no choice")
	ErrAbstainNotAllowed = errors.New("abstain is not allowed on this vote")

	ErrVotingClosed    = errors.New("voting is closed")
	ErrVoteNotClosed   = errors.New("vote is not closed yet")
	ErrBeforeDeadline  = errors.New("results are hidden until the deadline")
	ErrNotYetRevealed  = errors.New("results are not yet revealed")
	ErrAlreadyRevealed = errors.New("results are already revealed")
	ErrUnauthorized    = errors.New("caller is not authorized")

	ErrConflict = errors.New("vote state conflict")
)
