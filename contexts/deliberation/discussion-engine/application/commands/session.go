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

const moduleName = "deliberation/discussion-engine"

// ParticipantInput is one roster entry supplied at session creation or
// when joining later.
type ParticipantInput struct {
	ParticipantID string
	Name          string
	Archetype     string
	Moderator     bool
}

type CreateSessionCommand struct {
	Title        string
	TurnMode     string
	MinRounds    int
	MaxRounds    int
	PollMode     bool
	Participants []ParticipantInput
}

type CreateSessionUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute registers a new session with its initial roster. The session
// starts active in the idle phase; the first turn opens separately.
func (u CreateSessionUseCase) Execute(ctx context.Context, cmd CreateSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)

	mode := entities.TurnMode(strings.ToLower(strings.TrimSpace(cmd.TurnMode)))
	if !mode.Valid() {
		return entities.Session{}, domainerrors.ErrInvalidTurnMode
	}
	now := clockNow(u.Clock)

	participants := make([]entities.Participant, 0, len(cmd.Participants))
	moderators := 0
	for i, input := range cmd.Participants {
		participant, err := entities.NewParticipant(input.ParticipantID, input.Name, input.Archetype, i, now)
		if err != nil {
			return entities.Session{}, err
		}
		if input.Moderator {
			participant.Moderator = true
			moderators++
		}
		participants = append(participants, participant)
	}
	if moderators > 1 {
		return entities.Session{}, domainerrors.ErrInvalidParticipantInput
	}

	sessionID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Session{}, err
	}
	session, err := entities.NewSession(sessionID, cmd.Title, mode, entities.RoundPolicy{
		MinRounds: cmd.MinRounds,
		MaxRounds: cmd.MaxRounds,
	}, cmd.PollMode, participants, now)
	if err != nil {
		return entities.Session{}, err
	}

	if err := u.Sessions.CreateSession(ctx, session); err != nil {
		logger.Error("session create failed",
			"event", "session_create_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", session.SessionID,
			"error", err.Error(),
		)
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventSessionCreated, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"turn_mode":  string(session.TurnMode),
		"min_rounds": session.Policy.MinRounds,
		"max_rounds": session.Policy.MaxRounds,
		"poll_mode":  session.PollMode,
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("session created",
		"event", "session_created",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"turn_mode", string(session.TurnMode),
		"participants", len(session.Participants),
	)
	return session, nil
}

type AddParticipantCommand struct {
	SessionID   string
	Participant ParticipantInput
}

type AddParticipantUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute grows the roster between turns. Joining mid-turn would mutate an
// open round's expected set, so it is rejected.
func (u AddParticipantUseCase) Execute(ctx context.Context, cmd AddParticipantCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if !session.Accepting() {
		return entities.Session{}, domainerrors.ErrSessionNotActive
	}
	if _, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID); err != nil {
		return entities.Session{}, err
	} else if open {
		return entities.Session{}, domainerrors.ErrParticipantChangesLocked
	}
	if len(session.Participants) >= session.ParticipantCap() {
		return entities.Session{}, domainerrors.ErrParticipantCapExceeded
	}

	now := clockNow(u.Clock)
	participant, err := entities.NewParticipant(cmd.Participant.ParticipantID, cmd.Participant.Name, cmd.Participant.Archetype, len(session.Participants), now)
	if err != nil {
		return entities.Session{}, err
	}
	if _, exists := session.ParticipantByID(participant.ParticipantID); exists {
		return entities.Session{}, domainerrors.ErrDuplicateParticipant
	}
	if cmd.Participant.Moderator {
		if _, has := session.ModeratorID(); has {
			return entities.Session{}, domainerrors.ErrInvalidParticipantInput
		}
		participant.Moderator = true
	}

	if err := u.Sessions.AddParticipant(ctx, session.SessionID, participant); err != nil {
		return entities.Session{}, err
	}
	session.Participants = append(session.Participants, participant)
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRosterChanged, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"participant_id": participant.ParticipantID,
		"change":         "added",
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("participant added",
		"event", "participant_added",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"participant_id", participant.ParticipantID,
	)
	return session, nil
}

type DeactivateParticipantCommand struct {
	SessionID     string
	ParticipantID string
}

type DeactivateParticipantUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute retires a participant from future expected sets. The identity and
// recorded utterances remain; deactivating twice is a no-op.
func (u DeactivateParticipantUseCase) Execute(ctx context.Context, cmd DeactivateParticipantCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if !session.Accepting() {
		return entities.Session{}, domainerrors.ErrSessionNotActive
	}
	if _, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID); err != nil {
		return entities.Session{}, err
	} else if open {
		return entities.Session{}, domainerrors.ErrParticipantChangesLocked
	}

	participant, found := session.ParticipantByID(strings.TrimSpace(cmd.ParticipantID))
	if !found {
		return entities.Session{}, domainerrors.ErrParticipantNotFound
	}
	if !participant.Active {
		return session, nil
	}

	now := clockNow(u.Clock)
	participant.Active = false
	if err := u.Sessions.UpdateParticipant(ctx, session.SessionID, participant); err != nil {
		return entities.Session{}, err
	}
	for i := range session.Participants {
		if session.Participants[i].ParticipantID == participant.ParticipantID {
			session.Participants[i] = participant
		}
	}
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRosterChanged, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"participant_id": participant.ParticipantID,
		"change":         "deactivated",
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("participant deactivated",
		"event", "participant_deactivated",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"participant_id", participant.ParticipantID,
	)
	return session, nil
}

type DesignateModeratorCommand struct {
	SessionID     string
	ParticipantID string
}

type DesignateModeratorUseCase struct {
	Sessions    ports.SessionRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute moves the moderator flag to the named participant. Moderator mode
// reads the flag when each round opens, so changes land between turns.
func (u DesignateModeratorUseCase) Execute(ctx context.Context, cmd DesignateModeratorCommand) (entities.Session, error) {
	logger := application.ResolveLogger(u.Logger)
	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if !session.Accepting() {
		return entities.Session{}, domainerrors.ErrSessionNotActive
	}
	if _, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID); err != nil {
		return entities.Session{}, err
	} else if open {
		return entities.Session{}, domainerrors.ErrParticipantChangesLocked
	}

	target, found := session.ParticipantByID(strings.TrimSpace(cmd.ParticipantID))
	if !found || !target.Active {
		return entities.Session{}, domainerrors.ErrParticipantNotFound
	}

	now := clockNow(u.Clock)
	for i := range session.Participants {
		participant := session.Participants[i]
		wantFlag := participant.ParticipantID == target.ParticipantID
		if participant.Moderator == wantFlag {
			continue
		}
		participant.Moderator = wantFlag
		if err := u.Sessions.UpdateParticipant(ctx, session.SessionID, participant); err != nil {
			return entities.Session{}, err
		}
		session.Participants[i] = participant
	}
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRosterChanged, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"participant_id": target.ParticipantID,
		"change":         "moderator",
	}); err != nil {
		return entities.Session{}, err
	}

	logger.Info("moderator designated",
		"event", "moderator_designated",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"participant_id", target.ParticipantID,
	)
	return session, nil
}
