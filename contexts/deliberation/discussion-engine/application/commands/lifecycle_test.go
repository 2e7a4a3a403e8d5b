package commands

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

func TestPauseParksRoundCompletionUntilResume(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")

	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("pause: %v", err)
	}

	// In-flight responses for the open round keep landing while paused.
	e.mustSubmit(t, SubmitUtteranceCommand{SessionID: session.SessionID, ParticipantID: "p1", Content: "r1 p1", RoundNumber: 1})
	result := e.mustSubmit(t, SubmitUtteranceCommand{SessionID: session.SessionID, ParticipantID: "p2", Content: "r1 p2", RoundNumber: 1})
	if !result.RoundCompleted || result.NextRound != 0 || result.TurnCompleted {
		t.Fatalf("round completes but the next round stays parked, got %+v", result)
	}

	turn, open := e.openTurn(t, session.SessionID)
	if !open || turn.CurrentRound != 1 || turn.PendingRound != 2 {
		t.Fatalf("expected parked round 2, got open=%v current=%d pending=%d", open, turn.CurrentRound, turn.PendingRound)
	}
	if count := e.eventCount("round.started"); count != 1 {
		t.Fatalf("round 2 must not start while paused, got %d round.started events", count)
	}

	if _, err := e.resume.Execute(context.Background(), ResumeSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	turn, open = e.openTurn(t, session.SessionID)
	if !open || turn.CurrentRound != 2 || turn.PendingRound != 0 {
		t.Fatalf("resume should open the parked round, got open=%v current=%d pending=%d", open, turn.CurrentRound, turn.PendingRound)
	}
	if len(turn.Expected) != 2 {
		t.Fatalf("resumed round should expect the active roster, got %v", turn.Expected)
	}
	if count := e.eventCount("round.started"); count != 2 {
		t.Fatalf("resume should emit the deferred round.started, got %d", count)
	}
}

func TestResumeWithoutParkedRoundLeavesTurnAlone(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")

	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := e.resume.Execute(context.Background(), ResumeSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("resume: %v", err)
	}

	turn, open := e.openTurn(t, session.SessionID)
	if !open || turn.CurrentRound != 1 {
		t.Fatalf("nothing was parked, round 1 should still be open, got open=%v round=%d", open, turn.CurrentRound)
	}
}

func TestPauseAndResumeTransitionGuards(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1")

	if _, err := e.resume.Execute(context.Background(), ResumeSessionCommand{SessionID: session.SessionID}); !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("resume while active: got %v", err)
	}
	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: session.SessionID}); !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("pause while paused: got %v", err)
	}
}

func TestStopClosesOpenTurnAndCompletesSession(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")
	e.mustSubmit(t, SubmitUtteranceCommand{SessionID: session.SessionID, ParticipantID: "p1", Content: "kept", RoundNumber: 1})

	stopped, err := e.stop.Execute(context.Background(), StopSessionCommand{SessionID: session.SessionID})
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.Status != entities.SessionStatusCompleted || stopped.Phase != entities.PhaseCompleted {
		t.Fatalf("stop should complete the session, got %s/%s", stopped.Status, stopped.Phase)
	}
	if _, open := e.openTurn(t, session.SessionID); open {
		t.Fatal("stop must close the open turn")
	}

	// Recorded history is retained.
	ledger, err := e.store.ListUtterancesBySession(context.Background(), session.SessionID)
	if err != nil || len(ledger) != 1 {
		t.Fatalf("utterances should survive a stop, got %d (%v)", len(ledger), err)
	}
	if count := e.eventCount("turn.completed"); count != 1 {
		t.Fatalf("stop should emit turn.completed for the open turn, got %d", count)
	}
}

func TestStopFromPaused(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1")
	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	stopped, err := e.stop.Execute(context.Background(), StopSessionCommand{SessionID: session.SessionID})
	if err != nil || stopped.Status != entities.SessionStatusCompleted {
		t.Fatalf("stop from paused: %v (status %s)", err, stopped.Status)
	}
}

func TestArchiveRequiresCompletedSession(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1")

	if _, err := e.archive.Execute(context.Background(), ArchiveSessionCommand{SessionID: session.SessionID}); !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("archive while active: got %v", err)
	}

	if _, err := e.stop.Execute(context.Background(), StopSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	archived, err := e.archive.Execute(context.Background(), ArchiveSessionCommand{SessionID: session.SessionID})
	if err != nil || archived.Status != entities.SessionStatusArchived {
		t.Fatalf("archive after stop: %v (status %s)", err, archived.Status)
	}

	if _, err := e.archive.Execute(context.Background(), ArchiveSessionCommand{SessionID: session.SessionID}); !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("double archive: got %v", err)
	}
}

func TestStopTwiceRejected(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1")
	if _, err := e.stop.Execute(context.Background(), StopSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := e.stop.Execute(context.Background(), StopSessionCommand{SessionID: session.SessionID}); !errors.Is(err, domainerrors.ErrInvalidStatusTransition) {
		t.Fatalf("second stop: got %v", err)
	}
}

func TestLifecycleCommandsOnMissingSession(t *testing.T) {
	e := newEngine()
	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: "ghost"}); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("pause missing session: got %v", err)
	}
	if _, err := e.stop.Execute(context.Background(), StopSessionCommand{SessionID: "ghost"}); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("stop missing session: got %v", err)
	}
}
