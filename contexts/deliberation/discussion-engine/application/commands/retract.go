package commands

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type RetractUtteranceCommand struct {
	SessionID   string
	UtteranceID string
}

type RetractUtteranceUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute withdraws an utterance while its round is still open, freeing the
// participant's slot for a replacement. The entry stays in the ledger
// flagged as retracted. Retracting twice is a no-op.
func (u RetractUtteranceUseCase) Execute(ctx context.Context, cmd RetractUtteranceCommand) (entities.Utterance, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Utterance{}, err
	}
	if !session.Accepting() {
		return entities.Utterance{}, domainerrors.ErrSessionNotActive
	}

	utterance, err := u.Sessions.GetUtterance(ctx, cmd.UtteranceID)
	if err != nil {
		return entities.Utterance{}, err
	}
	if utterance.SessionID != session.SessionID {
		return entities.Utterance{}, domainerrors.ErrUtteranceNotFound
	}
	if utterance.Retracted {
		return utterance, nil
	}

	turn, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return entities.Utterance{}, err
	}
	// Completed rounds already fired their completion exactly once;
	// retracting out of them would rewrite history.
	if !open || utterance.TurnNumber != turn.TurnNumber || utterance.RoundNumber != turn.CurrentRound {
		return entities.Utterance{}, domainerrors.ErrUtteranceRoundClosed
	}

	now := clockNow(u.Clock)
	if err := u.Sessions.MarkUtteranceRetracted(ctx, utterance.UtteranceID, now); err != nil {
		return entities.Utterance{}, err
	}
	utterance.Retracted = true
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventUtteranceRetracted, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"utterance_id":   utterance.UtteranceID,
		"participant_id": utterance.ParticipantID,
		"turn_number":    utterance.TurnNumber,
		"round_number":   utterance.RoundNumber,
	}); err != nil {
		return entities.Utterance{}, err
	}

	logger.Info("utterance retracted",
		"event", "utterance_retracted",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"utterance_id", utterance.UtteranceID,
		"participant_id", utterance.ParticipantID,
	)
	return utterance, nil
}
