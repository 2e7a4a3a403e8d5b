package commands

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type StartTurnCommand struct {
	SessionID string
	Prompt    string
}

type StartTurnUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute opens a new turn on the prompt and starts round one with the
// expected set the session's scheduling policy computes.
func (u StartTurnUseCase) Execute(ctx context.Context, cmd StartTurnCommand) (entities.Turn, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.Prompt) == "" {
		return entities.Turn{}, domainerrors.ErrInvalidTurnInput
	}

	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Turn{}, err
	}
	switch session.Status {
	case entities.SessionStatusActive:
	case entities.SessionStatusPaused:
		return entities.Turn{}, domainerrors.ErrSessionPaused
	default:
		return entities.Turn{}, domainerrors.ErrSessionNotActive
	}
	if session.Phase != entities.PhaseIdle {
		return entities.Turn{}, domainerrors.ErrPhaseConflict
	}
	if _, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID); err != nil {
		return entities.Turn{}, err
	} else if open {
		return entities.Turn{}, domainerrors.ErrTurnAlreadyOpen
	}

	policy := entities.PolicyFor(session.TurnMode)
	expected := policy.ExpectedSet(session, 1)
	if len(expected) == 0 {
		return entities.Turn{}, domainerrors.ErrRosterEmpty
	}

	now := clockNow(u.Clock)
	turnID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Turn{}, err
	}
	turn := entities.Turn{
		TurnID:       turnID,
		SessionID:    session.SessionID,
		TurnNumber:   session.TurnCount + 1,
		Prompt:       strings.TrimSpace(cmd.Prompt),
		Status:       entities.TurnStatusOpen,
		CurrentRound: 1,
		Expected:     expected,
		StartedAt:    now,
	}
	if err := u.Sessions.CreateTurn(ctx, turn); err != nil {
		logger.Error("turn create failed",
			"event", "turn_create_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", session.SessionID,
			"error", err.Error(),
		)
		return entities.Turn{}, err
	}

	session.TurnCount = turn.TurnNumber
	session.Phase = entities.PhaseAwaitingResponses
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Turn{}, err
	}

	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRoundStarted, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"turn_number":    turn.TurnNumber,
		"round_number":   turn.CurrentRound,
		"expected_count": len(turn.Expected),
	}); err != nil {
		return entities.Turn{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return entities.Turn{}, err
	}

	logger.Info("turn started",
		"event", "turn_started",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"turn_number", turn.TurnNumber,
		"expected_count", len(turn.Expected),
	)
	return turn, nil
}

type CompleteTurnCommand struct {
	SessionID string
}

type CompleteTurnUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute is the graceful stop signal: it closes the open turn once the
// minimum round count has been met, discarding the in-flight round's
// remaining expected set and resetting the session phase for the next
// turn.
func (u CompleteTurnUseCase) Execute(ctx context.Context, cmd CompleteTurnCommand) (entities.Turn, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Turn{}, err
	}
	if !session.Accepting() {
		return entities.Turn{}, domainerrors.ErrSessionNotActive
	}
	turn, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return entities.Turn{}, err
	}
	if !open {
		return entities.Turn{}, domainerrors.ErrNoOpenTurn
	}
	if turn.CurrentRound < session.Policy.MinRounds {
		return entities.Turn{}, domainerrors.ErrMinRoundsNotReached
	}

	now := clockNow(u.Clock)
	turn.Status = entities.TurnStatusCompleted
	turn.CompletedAt = now
	turn.Expected = nil
	turn.PendingRound = 0
	if err := u.Sessions.UpdateTurn(ctx, turn); err != nil {
		return entities.Turn{}, err
	}

	session.Phase = entities.PhaseIdle
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Turn{}, err
	}

	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventTurnCompleted, session.SessionID, now, map[string]any{
		"session_id":       session.SessionID,
		"turn_number":      turn.TurnNumber,
		"rounds_completed": turn.CurrentRound,
	}); err != nil {
		return entities.Turn{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return entities.Turn{}, err
	}

	logger.Info("turn completed",
		"event", "turn_completed",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"turn_number", turn.TurnNumber,
		"rounds_completed", turn.CurrentRound,
	)
	return turn, nil
}
