package queries

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type GetTallyQuery struct {
	ProposalID string
}

type GetTallyResult struct {
	Proposal entities.Proposal
	Tally    entities.ConsensusTally
	Votes    []entities.Vote
}

type GetTallyUseCase struct {
	Proposals ports.ProposalRepository
	Logger    *slog.Logger
}

// Execute recomputes the tally from the recorded votes. It works on open
// and resolved proposals alike; the same votes always produce the same
// tally.
func (u GetTallyUseCase) Execute(ctx context.Context, query GetTallyQuery) (GetTallyResult, error) {
	logger := application.ResolveLogger(u.Logger)

	proposal, err := u.Proposals.GetProposal(ctx, query.ProposalID)
	if err != nil {
		logger.Error("get tally failed",
			"event", "get_tally_failed",
			"module", moduleName,
			"layer", "application",
			"proposal_id", query.ProposalID,
			"error", err.Error(),
		)
		return GetTallyResult{}, err
	}
	votes, err := u.Proposals.ListVotesByProposal(ctx, proposal.ProposalID)
	if err != nil {
		return GetTallyResult{}, err
	}

	return GetTallyResult{
		Proposal: proposal,
		Tally:    entities.TallyVotes(votes),
		Votes:    votes,
	}, nil
}
