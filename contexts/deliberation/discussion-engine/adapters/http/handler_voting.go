package httpadapter

import (
	"context"

	"agora/contexts/deliberation/discussion-engine/application/commands"
	"agora/contexts/deliberation/discussion-engine/application/queries"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	httptransport "agora/contexts/deliberation/discussion-engine/transport/http"
)

// OpenProposalHandler godoc
// @Summary Open a consensus proposal
// @Description Opens the session's single active proposal and snapshots the voter roster.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param session_id path string true "Session id"
// @Param request body httptransport.OpenProposalRequest true "Proposal payload"
// @Success 200 {object} httptransport.OpenProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/proposals [post]
func (h Handler) OpenProposalHandler(ctx context.Context, sessionID string, req httptransport.OpenProposalRequest) (httptransport.OpenProposalResponse, error) {
	proposal, err := h.OpenProposal.Execute(ctx, commands.OpenProposalCommand{
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		return httptransport.OpenProposalResponse{}, err
	}
	return httptransport.OpenProposalResponse{Item: mapProposal(proposal)}, nil
}

// CastVoteHandler godoc
// @Summary Cast or revise a vote
// @Description Records agree, disagree, or abstain for one roster member. Later casts overwrite earlier ones.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Param request body httptransport.CastVoteRequest true "Vote payload"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /proposals/{proposal_id}/votes [post]
func (h Handler) CastVoteHandler(ctx context.Context, proposalID string, req httptransport.CastVoteRequest) (httptransport.CastVoteResponse, error) {
	vote, err := h.CastVote.Execute(ctx, commands.CastVoteCommand{
		ProposalID:    proposalID,
		ParticipantID: req.ParticipantID,
		Choice:        req.Choice,
		Confidence:    req.Confidence,
		Reasoning:     req.Reasoning,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		ProposalID:    vote.ProposalID,
		ParticipantID: vote.ParticipantID,
		Choice:        string(vote.Choice),
		Confidence:    vote.Confidence,
		CastAt:        formatTimestamp(vote.CastAt),
		UpdatedAt:     formatTimestamp(vote.UpdatedAt),
	}, nil
}

// GetTallyHandler godoc
// @Summary Get the proposal tally
// @Description Recomputes agreement score, majority, and dissenters from the recorded votes.
// @Tags discussion-engine
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Success 200 {object} httptransport.GetTallyResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /proposals/{proposal_id}/tally [get]
func (h Handler) GetTallyHandler(ctx context.Context, proposalID string) (httptransport.GetTallyResponse, error) {
	result, err := h.GetTally.Execute(ctx, queries.GetTallyQuery{ProposalID: proposalID})
	if err != nil {
		return httptransport.GetTallyResponse{}, err
	}
	votes := make([]httptransport.VoteDTO, 0, len(result.Votes))
	for _, vote := range result.Votes {
		votes = append(votes, httptransport.VoteDTO{
			ParticipantID: vote.ParticipantID,
			Choice:        string(vote.Choice),
			Confidence:    vote.Confidence,
			Reasoning:     vote.Reasoning,
			CastAt:        formatTimestamp(vote.CastAt),
		})
	}
	return httptransport.GetTallyResponse{
		Item:  mapProposal(result.Proposal),
		Tally: mapTally(result.Tally),
		Votes: votes,
	}, nil
}

// ResolveProposalHandler godoc
// @Summary Resolve a proposal
// @Description Freezes the proposal with its final tally. Resolution is caller-driven.
// @Tags discussion-engine
// @Produce json
// @Param proposal_id path string true "Proposal id"
// @Success 200 {object} httptransport.ResolveProposalResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /proposals/{proposal_id}/resolve [post]
func (h Handler) ResolveProposalHandler(ctx context.Context, proposalID string) (httptransport.ResolveProposalResponse, error) {
	result, err := h.ResolveProposal.Execute(ctx, commands.ResolveProposalCommand{ProposalID: proposalID})
	if err != nil {
		return httptransport.ResolveProposalResponse{}, err
	}
	return httptransport.ResolveProposalResponse{
		Item:  mapProposal(result.Proposal),
		Tally: mapTally(result.Tally),
	}, nil
}

// StartPollHandler godoc
// @Summary Start a ranked poll
// @Description Opens a poll in the synthesis phase with the current active roster.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param session_id path string true "Session id"
// @Param request body httptransport.StartPollRequest true "Poll payload"
// @Success 200 {object} httptransport.StartPollResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/polls [post]
func (h Handler) StartPollHandler(ctx context.Context, sessionID string, req httptransport.StartPollRequest) (httptransport.StartPollResponse, error) {
	poll, err := h.StartPoll.Execute(ctx, commands.StartPollCommand{
		SessionID: sessionID,
		Question:  req.Question,
	})
	if err != nil {
		return httptransport.StartPollResponse{}, err
	}
	return httptransport.StartPollResponse{Item: mapPoll(poll)}, nil
}

// GetPollHandler godoc
// @Summary Get poll status
// @Description Returns the poll, its materialized options, and per-phase progress counters.
// @Tags discussion-engine
// @Produce json
// @Param poll_id path string true "Poll id"
// @Success 200 {object} httptransport.GetPollResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /polls/{poll_id} [get]
func (h Handler) GetPollHandler(ctx context.Context, pollID string) (httptransport.GetPollResponse, error) {
	result, err := h.GetPoll.Execute(ctx, queries.GetPollQuery{PollID: pollID})
	if err != nil {
		return httptransport.GetPollResponse{}, err
	}
	return httptransport.GetPollResponse{
		Item:               mapPoll(result.Poll),
		Options:            mapOptions(result.Options),
		SynthesisSubmitted: result.SynthesisSubmitted,
		Round1Ballots:      result.Round1Ballots,
		Round2Ballots:      result.Round2Ballots,
	}, nil
}

// SubmitSynthesisHandler godoc
// @Summary Submit a synthesis entry
// @Description Records one participant's framing and candidate options. The final submission materializes the option set and opens vote round one.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param poll_id path string true "Poll id"
// @Param request body httptransport.SubmitSynthesisRequest true "Synthesis payload"
// @Success 200 {object} httptransport.SubmitSynthesisResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /polls/{poll_id}/synthesis [post]
func (h Handler) SubmitSynthesisHandler(ctx context.Context, pollID string, req httptransport.SubmitSynthesisRequest) (httptransport.SubmitSynthesisResponse, error) {
	result, err := h.SubmitSynthesis.Execute(ctx, commands.SubmitSynthesisCommand{
		PollID:        pollID,
		ParticipantID: req.ParticipantID,
		Framing:       req.Framing,
		Options:       req.Options,
	})
	if err != nil {
		return httptransport.SubmitSynthesisResponse{}, err
	}
	return httptransport.SubmitSynthesisResponse{
		PollID:        result.Entry.PollID,
		ParticipantID: result.Entry.ParticipantID,
		Framing:       result.Entry.Framing,
		Options:       result.Entry.Options,
		Phase:         string(result.Poll.Phase),
		Advanced:      result.Advanced,
	}, nil
}

// CastBallotHandler godoc
// @Summary Cast a ranked ballot
// @Description Records a complete ranking for the poll's current voting round. The final ballot closes the round.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param poll_id path string true "Poll id"
// @Param request body httptransport.CastBallotRequest true "Ballot payload"
// @Success 200 {object} httptransport.CastBallotResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /polls/{poll_id}/ballots [post]
func (h Handler) CastBallotHandler(ctx context.Context, pollID string, req httptransport.CastBallotRequest) (httptransport.CastBallotResponse, error) {
	ranking := make([]entities.RankedOption, 0, len(req.Ranking))
	for _, entry := range req.Ranking {
		ranking = append(ranking, entities.RankedOption{
			OptionID: entry.OptionID,
			Rank:     entry.Rank,
		})
	}
	result, err := h.CastBallot.Execute(ctx, commands.CastBallotCommand{
		PollID:        pollID,
		ParticipantID: req.ParticipantID,
		Round:         req.Round,
		Ranking:       ranking,
	})
	if err != nil {
		return httptransport.CastBallotResponse{}, err
	}
	return httptransport.CastBallotResponse{
		PollID:        result.Ballot.PollID,
		ParticipantID: result.Ballot.ParticipantID,
		Round:         result.Ballot.Round,
		Phase:         string(result.Poll.Phase),
		Advanced:      result.Advanced,
	}, nil
}

// ForceAdvancePollHandler godoc
// @Summary Force-advance a poll phase
// @Description Closes the current phase with whatever submissions exist. Refuses to advance an empty phase.
// @Tags discussion-engine
// @Produce json
// @Param poll_id path string true "Poll id"
// @Success 200 {object} httptransport.ForceAdvancePollResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /polls/{poll_id}/advance [post]
func (h Handler) ForceAdvancePollHandler(ctx context.Context, pollID string) (httptransport.ForceAdvancePollResponse, error) {
	result, err := h.ForceAdvancePoll.Execute(ctx, commands.ForceAdvancePollCommand{PollID: pollID})
	if err != nil {
		return httptransport.ForceAdvancePollResponse{}, err
	}
	return httptransport.ForceAdvancePollResponse{
		Item:        mapPoll(result.Poll),
		PhaseBefore: string(result.PhaseBefore),
		PhaseAfter:  string(result.PhaseAfter),
	}, nil
}

// GetPollResultsHandler godoc
// @Summary Get poll results
// @Description Returns the three frozen result lenses of a completed poll.
// @Tags discussion-engine
// @Produce json
// @Param poll_id path string true "Poll id"
// @Success 200 {object} httptransport.GetPollResultsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /polls/{poll_id}/results [get]
func (h Handler) GetPollResultsHandler(ctx context.Context, pollID string) (httptransport.GetPollResultsResponse, error) {
	result, err := h.GetPollResults.Execute(ctx, queries.GetPollResultsQuery{PollID: pollID})
	if err != nil {
		return httptransport.GetPollResultsResponse{}, err
	}
	return httptransport.GetPollResultsResponse{
		Item:    mapPoll(result.Poll),
		Options: mapOptions(result.Options),
		Results: mapPollResults(result.Results),
	}, nil
}

func mapProposal(proposal entities.Proposal) httptransport.ProposalDTO {
	return httptransport.ProposalDTO{
		ProposalID: proposal.ProposalID,
		SessionID:  proposal.SessionID,
		Text:       proposal.Text,
		Status:     string(proposal.Status),
		Roster:     proposal.Roster,
		OpenedAt:   formatTimestamp(proposal.OpenedAt),
		ResolvedAt: formatTimestamp(proposal.ResolvedAt),
	}
}

func mapTally(tally entities.ConsensusTally) httptransport.TallyDTO {
	return httptransport.TallyDTO{
		Agree:          tally.Agree,
		Disagree:       tally.Disagree,
		Abstain:        tally.Abstain,
		TotalVotes:     tally.TotalVotes,
		AgreementScore: tally.AgreementScore,
		Majority:       string(tally.Majority),
		Dissenters:     tally.Dissenters,
	}
}

func mapPoll(poll entities.Poll) httptransport.PollDTO {
	return httptransport.PollDTO{
		PollID:       poll.PollID,
		SessionID:    poll.SessionID,
		Question:     poll.Question,
		Phase:        string(poll.Phase),
		Roster:       poll.Roster,
		TopOptionIDs: poll.TopOptionIDs,
		CreatedAt:    formatTimestamp(poll.CreatedAt),
		CompletedAt:  formatTimestamp(poll.CompletedAt),
	}
}

func mapOptions(options []entities.PollOption) []httptransport.PollOptionDTO {
	items := make([]httptransport.PollOptionDTO, 0, len(options))
	for _, option := range options {
		items = append(items, httptransport.PollOptionDTO{
			OptionID:   option.OptionID,
			Text:       option.Text,
			ProposerID: option.ProposerID,
			BordaScore: option.BordaScore,
		})
	}
	return items
}

func mapFirstPlace(counts []entities.FirstPlaceCount) []httptransport.FirstPlaceCountDTO {
	items := make([]httptransport.FirstPlaceCountDTO, 0, len(counts))
	for _, count := range counts {
		items = append(items, httptransport.FirstPlaceCountDTO{
			OptionID: count.OptionID,
			Count:    count.Count,
		})
	}
	return items
}

func mapPollResults(results entities.PollResults) httptransport.PollResultsDTO {
	caucuses := make([]httptransport.CaucusDTO, 0, len(results.Caucuses))
	for _, caucus := range results.Caucuses {
		caucuses = append(caucuses, httptransport.CaucusDTO{
			Label:   caucus.Label,
			Basis:   caucus.Basis,
			Members: caucus.Members,
			Size:    caucus.Size,
		})
	}
	rounds := make([]httptransport.RunoffRoundDTO, 0, len(results.Runoff.Rounds))
	for _, round := range results.Runoff.Rounds {
		rounds = append(rounds, httptransport.RunoffRoundDTO{
			Number:             round.Number,
			Counts:             mapFirstPlace(round.Counts),
			EliminatedOptionID: round.EliminatedOptionID,
		})
	}
	return httptransport.PollResultsDTO{
		Majority: httptransport.MajorityResultDTO{
			WinnerOptionID: results.Majority.WinnerOptionID,
			FirstPlace:     mapFirstPlace(results.Majority.FirstPlace),
			WinningShare:   results.Majority.WinningShare,
			TotalBallots:   results.Majority.TotalBallots,
		},
		Caucuses: caucuses,
		Runoff: httptransport.RunoffResultDTO{
			Rounds:         rounds,
			WinnerOptionID: results.Runoff.WinnerOptionID,
		},
	}
}
