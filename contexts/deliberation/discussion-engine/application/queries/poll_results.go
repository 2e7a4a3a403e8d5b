package queries

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type GetPollResultsQuery struct {
	PollID string
}

type GetPollResultsResult struct {
	Poll    entities.Poll
	Options []entities.PollOption
	Results entities.PollResults
}

type GetPollResultsUseCase struct {
	Polls  ports.PollRepository
	Logger *slog.Logger
}

// Execute returns the three frozen result lenses of a completed poll.
func (u GetPollResultsUseCase) Execute(ctx context.Context, query GetPollResultsQuery) (GetPollResultsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	poll, err := u.Polls.GetPoll(ctx, query.PollID)
	if err != nil {
		return GetPollResultsResult{}, err
	}
	if poll.Phase != entities.PollPhaseCompleted {
		return GetPollResultsResult{}, domainerrors.ErrPollNotCompleted
	}
	results, found, err := u.Polls.GetPollResults(ctx, poll.PollID)
	if err != nil {
		return GetPollResultsResult{}, err
	}
	if !found {
		logger.Error("completed poll has no stored results",
			"event", "poll_results_missing",
			"module", moduleName,
			"layer", "application",
			"poll_id", poll.PollID,
		)
		return GetPollResultsResult{}, domainerrors.ErrRepositoryInvariantBroke
	}
	options, err := u.Polls.ListOptions(ctx, poll.PollID)
	if err != nil {
		return GetPollResultsResult{}, err
	}

	return GetPollResultsResult{Poll: poll, Options: options, Results: results}, nil
}
