package commands

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type PauseSessionCommand struct {
	SessionID string
}

type PauseSessionUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute freezes new-round opening. In-flight submissions for the current
// round keep landing; when that round completes the next one is parked
// until resume.
func (u PauseSessionUseCase) Execute(ctx context.Context, cmd PauseSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if session.Status != entities.SessionStatusActive {
		return entities.Session{}, domainerrors.ErrInvalidStatusTransition
	}

	now := clockNow(u.Clock)
	session.Status = entities.SessionStatusPaused
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventSessionStatusChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"status":     string(session.Status),
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("session paused",
		"event", "session_paused",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
	)
	return session, nil
}

type ResumeSessionCommand struct {
	SessionID string
}

type ResumeSessionUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute reactivates a paused session and opens any round that completed
// during the pause.
func (u ResumeSessionUseCase) Execute(ctx context.Context, cmd ResumeSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if session.Status != entities.SessionStatusPaused {
		return entities.Session{}, domainerrors.ErrInvalidStatusTransition
	}

	now := clockNow(u.Clock)
	session.Status = entities.SessionStatusActive
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventSessionStatusChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"status":     string(session.Status),
	}); err != nil {
		return entities.Session{}, err
	}

	turn, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if open && turn.PendingRound > 0 {
		policy := entities.PolicyFor(session.TurnMode)
		turn.CurrentRound = turn.PendingRound
		turn.PendingRound = 0
		turn.Expected = policy.ExpectedSet(session, turn.CurrentRound)
		if err := u.Sessions.UpdateTurn(ctx, turn); err != nil {
			return entities.Session{}, err
		}
		if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRoundStarted, session.SessionID, now, map[string]any{
			"session_id":     session.SessionID,
			"turn_number":    turn.TurnNumber,
			"round_number":   turn.CurrentRound,
			"expected_count": len(turn.Expected),
		}); err != nil {
			return entities.Session{}, err
		}
	}

	logger.Info("session resumed",
		"event", "session_resumed",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
	)
	return session, nil
}

type StopSessionCommand struct {
	SessionID string
}

type StopSessionUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute terminates the session immediately regardless of completeness.
// Recorded utterances are retained; the open turn's remaining expected set
// is discarded.
func (u StopSessionUseCase) Execute(ctx context.Context, cmd StopSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if session.Status != entities.SessionStatusActive && session.Status != entities.SessionStatusPaused {
		return entities.Session{}, domainerrors.ErrInvalidStatusTransition
	}

	now := clockNow(u.Clock)
	turn, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if open {
		turn.Status = entities.TurnStatusCompleted
		turn.CompletedAt = now
		turn.Expected = nil
		turn.PendingRound = 0
		if err := u.Sessions.UpdateTurn(ctx, turn); err != nil {
			return entities.Session{}, err
		}
		if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventTurnCompleted, session.SessionID, now, map[string]any{
			"session_id":       session.SessionID,
			"turn_number":      turn.TurnNumber,
			"rounds_completed": turn.CurrentRound,
		}); err != nil {
			return entities.Session{}, err
		}
	}

	session.Status = entities.SessionStatusCompleted
	session.Phase = entities.PhaseCompleted
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventSessionStatusChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"status":     string(session.Status),
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("session stopped",
		"event", "session_stopped",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"had_open_turn", open,
	)
	return session, nil
}

type ArchiveSessionCommand struct {
	SessionID string
}

type ArchiveSessionUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute moves a completed session to the archive. Archived sessions are
// retained, picked up by the archive exporter, and never deleted.
func (u ArchiveSessionUseCase) Execute(ctx context.Context, cmd ArchiveSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if session.Status != entities.SessionStatusCompleted {
		return entities.Session{}, domainerrors.ErrInvalidStatusTransition
	}

	now := clockNow(u.Clock)
	session.Status = entities.SessionStatusArchived
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventSessionStatusChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"status":     string(session.Status),
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("session archived",
		"event", "session_archived",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
	)
	return session, nil
}
