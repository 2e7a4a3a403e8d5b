package queries

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type GetSpeakerStatsQuery struct {
	SessionID string
}

type GetSpeakerStatsResult struct {
	Stats []ports.SpeakerStat
}

type GetSpeakerStatsUseCase struct {
	Sessions ports.SessionRepository
	Stats    ports.SpeakerStatsStore
	Logger   *slog.Logger
}

// Execute returns the activity read model the event consumer maintains.
// The counters lag the ledger by however far the outbox relay is behind.
func (u GetSpeakerStatsUseCase) Execute(ctx context.Context, query GetSpeakerStatsQuery) (GetSpeakerStatsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	if _, err := u.Sessions.GetSession(ctx, query.SessionID); err != nil {
		logger.Error("get speaker stats failed",
			"event", "get_speaker_stats_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", query.SessionID,
			"error", err.Error(),
		)
		return GetSpeakerStatsResult{}, err
	}
	stats, err := u.Stats.ListSpeakerStats(ctx, query.SessionID)
	if err != nil {
		return GetSpeakerStatsResult{}, err
	}
	return GetSpeakerStatsResult{Stats: stats}, nil
}
