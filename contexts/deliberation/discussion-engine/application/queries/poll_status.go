package queries

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type GetPollQuery struct {
	PollID string
}

type GetPollResult struct {
	Poll               entities.Poll
	Options            []entities.PollOption
	SynthesisSubmitted int
	Round1Ballots      int
	Round2Ballots      int
}

type GetPollUseCase struct {
	Polls  ports.PollRepository
	Logger *slog.Logger
}

// Execute returns the poll with its options and per-phase progress
// counters.
func (u GetPollUseCase) Execute(ctx context.Context, query GetPollQuery) (GetPollResult, error) {
	logger := application.ResolveLogger(u.Logger)

	poll, err := u.Polls.GetPoll(ctx, query.PollID)
	if err != nil {
		logger.Error("get poll failed",
			"event", "get_poll_failed",
			"module", moduleName,
			"layer", "application",
			"poll_id", query.PollID,
			"error", err.Error(),
		)
		return GetPollResult{}, err
	}
	options, err := u.Polls.ListOptions(ctx, poll.PollID)
	if err != nil {
		return GetPollResult{}, err
	}
	entries, err := u.Polls.ListSynthesisEntries(ctx, poll.PollID)
	if err != nil {
		return GetPollResult{}, err
	}
	round1, err := u.Polls.ListBallots(ctx, poll.PollID, 1)
	if err != nil {
		return GetPollResult{}, err
	}
	round2, err := u.Polls.ListBallots(ctx, poll.PollID, 2)
	if err != nil {
		return GetPollResult{}, err
	}

	return GetPollResult{
		Poll:               poll,
		Options:            options,
		SynthesisSubmitted: len(entries),
		Round1Ballots:      len(round1),
		Round2Ballots:      len(round2),
	}, nil
}
