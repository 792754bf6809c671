package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	governanceerrors "daotools/contexts/governance/vote-engine/domain/errors"
	governancehttp "daotools/contexts/governance/vote-engine/transport/http"
)

func (s *Server) handleCreateVote(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req governancehttp.CreateVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.CreateVoteHandler(r.Context(), userID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	communityID := r.URL.Query().Get("community_id")
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))

	resp, err := s.governance.Handler.ListVotesHandler(r.Context(), communityID, userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVote(w http.ResponseWriter, r *http.Request) {
	voteID := r.PathValue("vote_id")
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))

	resp, err := s.governance.Handler.GetVoteHandler(r.Context(), voteID, userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivateVote(w http.ResponseWriter, r *http.Request) {
	voteID := r.PathValue("vote_id")

	resp, err := s.governance.Handler.ActivateVoteHandler(r.Context(), voteID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseVote(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	voteID := r.PathValue("vote_id")
	resp, err := s.governance.Handler.CloseVoteHandler(r.Context(), voteID, userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitBallot(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req governancehttp.SubmitBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	voteID := r.PathValue("vote_id")
	resp, err := s.governance.Handler.SubmitBallotHandler(r.Context(), voteID, userID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevealResults(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	voteID := r.PathValue("vote_id")
	resp, err := s.governance.Handler.RevealResultsHandler(r.Context(), voteID, userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	voteID := r.PathValue("vote_id")
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))

	resp, err := s.governance.Handler.GetTallyHandler(r.Context(), voteID, userID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLifecycleState(w http.ResponseWriter, r *http.Request) {
	voteID := r.PathValue("vote_id")

	resp, err := s.governance.Handler.GetLifecycleStateHandler(r.Context(), voteID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrVoteNotFound):
		writeGovernanceError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidConfiguration):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_configuration", err.Error())
	case errors.Is(err, governanceerrors.ErrNotAMember),
		errors.Is(err, governanceerrors.ErrInsufficientTokens),
		errors.Is(err, governanceerrors.ErrNFTRequired):
		writeGovernanceError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, governanceerrors.ErrUnknownOption),
		errors.Is(err, governanceerrors.ErrDuplicateRank),
		errors.Is(err, governanceerrors.ErrEmptyBallot),
		errors.Is(err, governanceerrors.ErrAbstainNotAllowed):
		writeGovernanceError(w, http.StatusUnprocessableEntity, "invalid_ballot", err.Error())
	case errors.Is(err, governanceerrors.ErrVotingClosed):
		writeGovernanceError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, governanceerrors.ErrVoteNotClosed):
		writeGovernanceError(w, http.StatusConflict, "vote_not_closed", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyRevealed):
		writeGovernanceError(w, http.StatusConflict, "already_revealed", err.Error())
	case errors.Is(err, governanceerrors.ErrBeforeDeadline),
		errors.Is(err, governanceerrors.ErrNotYetRevealed):
		writeGovernanceError(w, http.StatusForbidden, "results_hidden", err.Error())
	case errors.Is(err, governanceerrors.ErrUnauthorized):
		writeGovernanceError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, governanceerrors.ErrConflict):
		writeGovernanceError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
