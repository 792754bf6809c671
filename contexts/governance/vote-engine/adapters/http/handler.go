package httpadapter

import (
	"context"
	"log/slog"

	"daotools/contexts/governance/vote-engine/application/commands"
	"daotools/contexts/governance/vote-engine/application/queries"
	"daotools/contexts/governance/vote-engine/domain/entities"
	httptransport "daotools/contexts/governance/vote-engine/transport/http"
)

type Handler struct {
	Votes   commands.VoteUseCase
	Results queries.ResultsUseCase
	Logger  *slog.Logger
}

func (h Handler) CreateVoteHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateVoteRequest,
) (httptransport.VoteResponse, error) {
	options := make([]commands.OptionInput, 0, len(req.Options))
	for _, option := range req.Options {
		options = append(options, commands.OptionInput{
			OptionID:    option.OptionID,
			Label:       option.Label,
			Description: option.Description,
			Pitch:       option.Pitch,
		})
	}
	result, err := h.Votes.CreateVote(ctx, commands.CreateVoteCommand{
		CommunityID: req.CommunityID,
		Title:       req.Title,
		Description: req.Description,
		Method:      entities.VoteMethod(req.Method),
		Options:     options,
		Restrictions: entities.Restrictions{
			MembersOnly:         req.Restrictions.MembersOnly,
			MinimumTokenBalance: req.Restrictions.MinimumTokenBalance,
			NFTContract:         req.Restrictions.NFTContract,
			NFTMinCount:         req.Restrictions.NFTMinCount,
		},
		Deadline:          req.Deadline,
		ResultsVisibility: entities.ResultsVisibility(req.ResultsVisibility),
		AllowAbstain:      req.AllowAbstain,
		QuorumRequired:    req.QuorumRequired,
		CreatedBy:         userID,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(result.Vote), nil
}

func (h Handler) ActivateVoteHandler(ctx context.Context, voteID string) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.ActivateVote(ctx, voteID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(vote), nil
}

func (h Handler) SubmitBallotHandler(
	ctx context.Context,
	voteID string,
	userID string,
	req httptransport.SubmitBallotRequest,
) (httptransport.BallotResponse, error) {
	result, err := h.Votes.SubmitBallot(ctx, commands.SubmitBallotCommand{
		VoteID:       voteID,
		VoterID:      userID,
		Choice:       req.Choice,
		Ranking:      req.Ranking,
		TokenBalance: req.TokenBalance,
		NFTCount:     req.NFTCount,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	response := mapBallot(result.Ballot)
	response.Replaced = result.Replaced
	return response, nil
}

func (h Handler) CloseVoteHandler(ctx context.Context, voteID string, userID string) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.CloseVote(ctx, voteID, userID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(vote), nil
}

func (h Handler) RevealResultsHandler(ctx context.Context, voteID string, userID string) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.RevealResults(ctx, voteID, userID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(vote), nil
}

func (h Handler) GetVoteHandler(ctx context.Context, voteID string, userID string) (httptransport.VoteDetailResponse, error) {
	detail, err := h.Results.GetVote(ctx, voteID, userID)
	if err != nil {
		return httptransport.VoteDetailResponse{}, err
	}
	response := httptransport.VoteDetailResponse{Vote: mapVote(detail.Vote)}
	if detail.CallerBallot != nil {
		ballot := mapBallot(*detail.CallerBallot)
		response.CallerBallot = &ballot
	}
	return response, nil
}

func (h Handler) GetTallyHandler(ctx context.Context, voteID string, userID string) (httptransport.TallyResponse, error) {
	result, err := h.Results.GetTally(ctx, voteID, userID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return mapTally(result), nil
}

func (h Handler) GetLifecycleStateHandler(ctx context.Context, voteID string) (httptransport.LifecycleStateResponse, error) {
	state, err := h.Results.GetLifecycleState(ctx, voteID)
	if err != nil {
		return httptransport.LifecycleStateResponse{}, err
	}
	return httptransport.LifecycleStateResponse{
		VoteID: voteID,
		State:  string(state),
	}, nil
}

func (h Handler) ListVotesHandler(ctx context.Context, communityID string, userID string) (httptransport.VoteListResponse, error) {
	summaries, err := h.Results.ListVotes(ctx, communityID, userID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteSummaryItem, 0, len(summaries))
	for _, summary := range summaries {
		item := httptransport.VoteSummaryItem{
			Vote:           mapVote(summary.Vote),
			TotalBallots:   summary.TotalBallots,
			ResultsVisible: summary.ResultsVisible,
			HiddenReason:   summary.HiddenReason,
		}
		if summary.Tally != nil {
			tally := mapTally(*summary.Tally)
			item.Tally = &tally
		}
		items = append(items, item)
	}
	return httptransport.VoteListResponse{Items: items}, nil
}

func mapVote(vote entities.Vote) httptransport.VoteResponse {
	options := make([]httptransport.OptionPayload, 0, len(vote.Options))
	for _, option := range vote.Options {
		options = append(options, httptransport.OptionPayload{
			OptionID:    option.OptionID,
			Label:       option.Label,
			Description: option.Description,
			Pitch:       option.Pitch,
		})
	}
	return httptransport.VoteResponse{
		VoteID:      vote.VoteID,
		CommunityID: vote.CommunityID,
		Title:       vote.Title,
		Description: vote.Description,
		Method:      string(vote.Method),
		Options:     options,
		Restrictions: httptransport.RestrictionsPayload{
			MembersOnly:         vote.Restrictions.MembersOnly,
			MinimumTokenBalance: vote.Restrictions.MinimumTokenBalance,
			NFTContract:         vote.Restrictions.NFTContract,
			NFTMinCount:         vote.Restrictions.NFTMinCount,
		},
		Deadline:          vote.Deadline,
		ResultsVisibility: string(vote.ResultsVisibility),
		AllowAbstain:      vote.AllowAbstain,
		QuorumRequired:    vote.QuorumRequired,
		CreatedBy:         vote.CreatedBy,
		State:             string(vote.State),
		RevealedAt:        vote.RevealedAt,
		CreatedAt:         vote.CreatedAt,
		UpdatedAt:         vote.UpdatedAt,
	}
}

func mapBallot(ballot entities.Ballot) httptransport.BallotResponse {
	return httptransport.BallotResponse{
		BallotID:    ballot.BallotID,
		VoteID:      ballot.VoteID,
		VoterID:     ballot.VoterID,
		Choice:      ballot.Choice,
		Ranking:     ballot.Ranking,
		SubmittedAt: ballot.SubmittedAt,
	}
}

func mapTally(result entities.TallyResult) httptransport.TallyResponse {
	options := make([]httptransport.OptionCountItem, 0, len(result.Options))
	for _, option := range result.Options {
		options = append(options, httptransport.OptionCountItem{
			OptionID: option.OptionID,
			Label:    option.Label,
			Count:    option.Count,
			Percent:  option.Percent,
		})
	}
	rounds := make([]httptransport.RunoffRoundItem, 0, len(result.Rounds))
	for _, round := range result.Rounds {
		rounds = append(rounds, httptransport.RunoffRoundItem{
			Round:      round.Round,
			Counts:     round.Counts,
			Exhausted:  round.Exhausted,
			Eliminated: round.Eliminated,
			Winner:     round.Winner,
		})
	}
	return httptransport.TallyResponse{
		VoteID:         result.VoteID,
		Method:         string(result.Method),
		TotalBallots:   result.TotalBallots,
		AbstainCount:   result.AbstainCount,
		Options:        options,
		Leader:         result.Leader,
		Winner:         result.Winner,
		Rounds:         rounds,
		QuorumRequired: result.QuorumRequired,
		QuorumReached:  result.QuorumReached,
	}
}
