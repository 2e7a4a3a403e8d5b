package queries

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type ListSessionsResult struct {
	Sessions []entities.Session
}

type ListSessionsUseCase struct {
	Sessions ports.SessionRepository
	Logger   *slog.Logger
}

func (u ListSessionsUseCase) Execute(ctx context.Context) (ListSessionsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	sessions, err := u.Sessions.ListSessions(ctx)
	if err != nil {
		logger.Error("list sessions failed",
			"event", "list_sessions_failed",
			"module", moduleName,
			"layer", "application",
			"error", err.Error(),
		)
		return ListSessionsResult{}, err
	}
	return ListSessionsResult{Sessions: sessions}, nil
}
