package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type SubmitUtteranceCommand struct {
	SessionID      string
	ParticipantID  string
	Content        string
	RoundNumber    int
	IdempotencyKey string
}

type SubmitUtteranceResult struct {
	Utterance      entities.Utterance
	RoundCompleted bool
	TurnCompleted  bool
	// NextRound is the round opened by this submission's completion, zero
	// when none opened.
	NextRound int
	Replayed  bool
}

type SubmitUtteranceUseCase struct {
	Sessions       ports.SessionRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Locker         ports.SessionLocker
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// Execute records one participant's contribution for the targeted round and
// detects round completion. The whole flow runs inside the session's
// critical section, so two concurrent submissions can never both observe an
// incomplete round: completion fires exactly once.
//
// Resubmitting an identical (session, participant, round, content) request
// replays the original acceptance instead of failing as a duplicate.
func (u SubmitUtteranceUseCase) Execute(ctx context.Context, cmd SubmitUtteranceCommand) (SubmitUtteranceResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if strings.TrimSpace(cmd.SessionID) == "" ||
		strings.TrimSpace(cmd.ParticipantID) == "" ||
		strings.TrimSpace(cmd.Content) == "" ||
		cmd.RoundNumber < 1 {
		return SubmitUtteranceResult{}, domainerrors.ErrInvalidSubmission
	}

	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return SubmitUtteranceResult{}, err
	}
	if !session.Accepting() {
		return SubmitUtteranceResult{}, domainerrors.ErrSessionNotActive
	}

	turn, turnOpen, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return SubmitUtteranceResult{}, err
	}
	turnNumber := session.TurnCount
	if turnOpen {
		turnNumber = turn.TurnNumber
	}

	now := u.now()
	requestHash := hashSubmission(cmd)
	idempotencyKey := resolveSubmissionKey(cmd, turnNumber, requestHash)

	record, found, err := u.Idempotency.Get(ctx, idempotencyKey, now)
	if err != nil {
		logger.Error("submission idempotency get failed",
			"event", "submission_idempotency_get_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", cmd.SessionID,
			"participant_id", cmd.ParticipantID,
			"error", err.Error(),
		)
		return SubmitUtteranceResult{}, err
	}
	if found {
		// A reused idempotency key must map to an identical request payload.
		if record.RequestHash != requestHash {
			return SubmitUtteranceResult{}, domainerrors.ErrIdempotencyKeyConflict
		}
		utterance, err := u.Sessions.GetUtterance(ctx, record.UtteranceID)
		if err != nil {
			return SubmitUtteranceResult{}, err
		}
		logger.Info("submission replayed from idempotency",
			"event", "submission_replayed",
			"module", moduleName,
			"layer", "application",
			"session_id", cmd.SessionID,
			"participant_id", cmd.ParticipantID,
			"utterance_id", utterance.UtteranceID,
		)
		return SubmitUtteranceResult{Utterance: utterance, Replayed: true}, nil
	}

	if !turnOpen {
		// The turn may have completed after the original acceptance; an
		// identical resubmission is still a no-op success.
		if replay, ok, err := u.replayFromLedger(ctx, cmd, session.TurnCount, idempotencyKey, requestHash, now); err != nil {
			return SubmitUtteranceResult{}, err
		} else if ok {
			return replay, nil
		}
		return SubmitUtteranceResult{}, domainerrors.ErrNoOpenTurn
	}

	switch {
	case cmd.RoundNumber < turn.CurrentRound:
		if replay, ok, err := u.replayFromLedger(ctx, cmd, turn.TurnNumber, idempotencyKey, requestHash, now); err != nil {
			return SubmitUtteranceResult{}, err
		} else if ok {
			return replay, nil
		}
		return SubmitUtteranceResult{}, domainerrors.ErrStaleRound
	case cmd.RoundNumber > turn.CurrentRound:
		return SubmitUtteranceResult{}, domainerrors.ErrRoundNotOpen
	}

	if !turn.ExpectedContains(cmd.ParticipantID) {
		return SubmitUtteranceResult{}, domainerrors.ErrUnknownParticipant
	}

	policy := entities.PolicyFor(session.TurnMode)
	interrupt := false
	existing, hasSlot, err := u.Sessions.GetUtteranceByIdentity(ctx, session.SessionID, turn.TurnNumber, cmd.RoundNumber, cmd.ParticipantID)
	if err != nil {
		return SubmitUtteranceResult{}, err
	}
	if hasSlot {
		if existing.Content == cmd.Content {
			if err := u.putIdempotency(ctx, idempotencyKey, requestHash, existing.UtteranceID, now); err != nil {
				return SubmitUtteranceResult{}, err
			}
			logger.Info("submission replayed from ledger",
				"event", "submission_replayed",
				"module", moduleName,
				"layer", "application",
				"session_id", cmd.SessionID,
				"participant_id", cmd.ParticipantID,
				"utterance_id", existing.UtteranceID,
			)
			return SubmitUtteranceResult{Utterance: existing, Replayed: true}, nil
		}
		if !policy.AllowsInterrupts() {
			logger.Warn("submission rejected as duplicate",
				"event", "submission_duplicate",
				"module", moduleName,
				"layer", "application",
				"session_id", cmd.SessionID,
				"participant_id", cmd.ParticipantID,
				"round_number", cmd.RoundNumber,
			)
			return SubmitUtteranceResult{}, domainerrors.ErrDuplicateSubmission
		}
		// Interrupt mode: the slot is consumed, so this lands as a
		// supplementary interruption tagged to the current round.
		interrupt = true
	}

	utteranceID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return SubmitUtteranceResult{}, err
	}
	utterance := entities.Utterance{
		UtteranceID:   utteranceID,
		SessionID:     session.SessionID,
		TurnNumber:    turn.TurnNumber,
		RoundNumber:   cmd.RoundNumber,
		ParticipantID: cmd.ParticipantID,
		Content:       cmd.Content,
		Interrupt:     interrupt,
		CreatedAt:     now,
	}
	if err := u.Sessions.AppendUtterance(ctx, utterance); err != nil {
		logger.Error("utterance append failed",
			"event", "utterance_append_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", session.SessionID,
			"participant_id", cmd.ParticipantID,
			"error", err.Error(),
		)
		return SubmitUtteranceResult{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventUtteranceRecorded, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"turn_number":    turn.TurnNumber,
		"round_number":   cmd.RoundNumber,
		"participant_id": cmd.ParticipantID,
		"utterance_id":   utterance.UtteranceID,
		"interrupt":      interrupt,
	}); err != nil {
		return SubmitUtteranceResult{}, err
	}

	result := SubmitUtteranceResult{Utterance: utterance}
	if !interrupt {
		completed, err := u.roundComplete(ctx, session, turn)
		if err != nil {
			return SubmitUtteranceResult{}, err
		}
		if completed {
			advanced, err := u.advanceRound(ctx, &session, &turn, policy, now)
			if err != nil {
				return SubmitUtteranceResult{}, err
			}
			result.RoundCompleted = true
			result.TurnCompleted = advanced.turnCompleted
			result.NextRound = advanced.nextRound
		}
	}

	if err := u.putIdempotency(ctx, idempotencyKey, requestHash, utterance.UtteranceID, now); err != nil {
		return SubmitUtteranceResult{}, err
	}

	logger.Info("submission accepted",
		"event", "submission_accepted",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"participant_id", cmd.ParticipantID,
		"turn_number", turn.TurnNumber,
		"round_number", cmd.RoundNumber,
		"interrupt", interrupt,
		"round_completed", result.RoundCompleted,
		"turn_completed", result.TurnCompleted,
	)
	return result, nil
}

// replayFromLedger answers identical resubmissions that arrive after the
// targeted round or turn already closed and the idempotency record expired.
func (u SubmitUtteranceUseCase) replayFromLedger(ctx context.Context, cmd SubmitUtteranceCommand, turnNumber int, key, requestHash string, now time.Time) (SubmitUtteranceResult, bool, error) {
	if turnNumber < 1 {
		return SubmitUtteranceResult{}, false, nil
	}
	existing, found, err := u.Sessions.GetUtteranceByIdentity(ctx, cmd.SessionID, turnNumber, cmd.RoundNumber, cmd.ParticipantID)
	if err != nil {
		return SubmitUtteranceResult{}, false, err
	}
	if !found || existing.Content != cmd.Content {
		return SubmitUtteranceResult{}, false, nil
	}
	if err := u.putIdempotency(ctx, key, requestHash, existing.UtteranceID, now); err != nil {
		return SubmitUtteranceResult{}, false, err
	}
	return SubmitUtteranceResult{Utterance: existing, Replayed: true}, true, nil
}

// roundComplete reports whether every expected participant now holds a
// non-retracted slot utterance for the turn's current round.
func (u SubmitUtteranceUseCase) roundComplete(ctx context.Context, session entities.Session, turn entities.Turn) (bool, error) {
	utterances, err := u.Sessions.ListUtterancesByTurn(ctx, session.SessionID, turn.TurnNumber)
	if err != nil {
		return false, err
	}
	submitted := make(map[string]bool, len(turn.Expected))
	for _, utterance := range utterances {
		if utterance.RoundNumber != turn.CurrentRound || utterance.Retracted || utterance.Interrupt {
			continue
		}
		submitted[utterance.ParticipantID] = true
	}
	for _, id := range turn.Expected {
		if !submitted[id] {
			return false, nil
		}
	}
	return true, nil
}

type advanceOutcome struct {
	nextRound     int
	turnCompleted bool
}

// advanceRound fires the completion event and either opens the next round,
// parks it when the session is paused, or completes the turn at the round
// cap. An empty next expected set also completes the turn since no one
// could ever close it.
func (u SubmitUtteranceUseCase) advanceRound(ctx context.Context, session *entities.Session, turn *entities.Turn, policy entities.SchedulingPolicy, now time.Time) (advanceOutcome, error) {
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRoundCompleted, session.SessionID, now, map[string]any{
		"session_id":   session.SessionID,
		"turn_number":  turn.TurnNumber,
		"round_number": turn.CurrentRound,
	}); err != nil {
		return advanceOutcome{}, err
	}

	nextExpected := []string(nil)
	if turn.CurrentRound < session.Policy.MaxRounds {
		nextExpected = policy.ExpectedSet(*session, turn.CurrentRound+1)
	}

	if len(nextExpected) == 0 {
		turn.Status = entities.TurnStatusCompleted
		turn.CompletedAt = now
		turn.Expected = nil
		turn.PendingRound = 0
		if err := u.Sessions.UpdateTurn(ctx, *turn); err != nil {
			return advanceOutcome{}, err
		}
		session.Phase = entities.PhaseIdle
		session.UpdatedAt = now
		if err := u.Sessions.UpdateSession(ctx, *session); err != nil {
			return advanceOutcome{}, err
		}
		if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventTurnCompleted, session.SessionID, now, map[string]any{
			"session_id":       session.SessionID,
			"turn_number":      turn.TurnNumber,
			"rounds_completed": turn.CurrentRound,
		}); err != nil {
			return advanceOutcome{}, err
		}
		if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
			"session_id": session.SessionID,
			"phase":      string(session.Phase),
		}); err != nil {
			return advanceOutcome{}, err
		}
		return advanceOutcome{turnCompleted: true}, nil
	}

	if session.Status == entities.SessionStatusPaused {
		turn.PendingRound = turn.CurrentRound + 1
		if err := u.Sessions.UpdateTurn(ctx, *turn); err != nil {
			return advanceOutcome{}, err
		}
		return advanceOutcome{}, nil
	}

	turn.CurrentRound++
	turn.Expected = nextExpected
	if err := u.Sessions.UpdateTurn(ctx, *turn); err != nil {
		return advanceOutcome{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventRoundStarted, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"turn_number":    turn.TurnNumber,
		"round_number":   turn.CurrentRound,
		"expected_count": len(turn.Expected),
	}); err != nil {
		return advanceOutcome{}, err
	}
	return advanceOutcome{nextRound: turn.CurrentRound}, nil
}

func (u SubmitUtteranceUseCase) putIdempotency(ctx context.Context, key, requestHash, utteranceID string, now time.Time) error {
	return u.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		UtteranceID: utteranceID,
		ExpiresAt:   now.Add(u.idempotencyTTL()),
	})
}

func (u SubmitUtteranceUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return u.IdempotencyTTL
}

func (u SubmitUtteranceUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

func resolveSubmissionKey(cmd SubmitUtteranceCommand, turnNumber int, requestHash string) string {
	if strings.TrimSpace(cmd.IdempotencyKey) != "" {
		return cmd.IdempotencyKey
	}
	// Canonical fallback: identical resubmissions of the same content map to
	// the same key, different content records fresh and falls through to the
	// duplicate-slot check.
	return fmt.Sprintf("submission:%s:%s:%d:%d:%s", cmd.SessionID, cmd.ParticipantID, turnNumber, cmd.RoundNumber, requestHash)
}

func hashSubmission(cmd SubmitUtteranceCommand) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s", cmd.SessionID, cmd.ParticipantID, cmd.RoundNumber, cmd.Content)))
	return hex.EncodeToString(sum[:])
}
