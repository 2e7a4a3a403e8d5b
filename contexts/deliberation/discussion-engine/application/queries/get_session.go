package queries

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
)

const moduleName = "deliberation/discussion-engine"

type GetSessionQuery struct {
	SessionID string
}

type GetSessionResult struct {
	Session     entities.Session
	OpenTurn    entities.Turn
	HasOpenTurn bool
}

type GetSessionUseCase struct {
	Sessions ports.SessionRepository
	Logger   *slog.Logger
}

func (u GetSessionUseCase) Execute(ctx context.Context, query GetSessionQuery) (GetSessionResult, error) {
	logger := application.ResolveLogger(u.Logger)

	session, err := u.Sessions.GetSession(ctx, query.SessionID)
	if err != nil {
		logger.Error("get session failed",
			"event", "get_session_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", query.SessionID,
			"error", err.Error(),
		)
		return GetSessionResult{}, err
	}
	turn, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return GetSessionResult{}, err
	}

	return GetSessionResult{Session: session, OpenTurn: turn, HasOpenTurn: open}, nil
}
