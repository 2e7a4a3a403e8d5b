package commands

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

func TestStartTurnOpensRoundOne(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")

	turn := e.mustStartTurn(t, session.SessionID, "  What should we ship first?  ")
	if turn.TurnNumber != 1 || turn.CurrentRound != 1 {
		t.Fatalf("first turn should open on round 1, got turn=%d round=%d", turn.TurnNumber, turn.CurrentRound)
	}
	if turn.Prompt != "What should we ship first?" {
		t.Fatalf("prompt should be trimmed, got %q", turn.Prompt)
	}
	if len(turn.Expected) != 2 {
		t.Fatalf("round-robin expects the full roster, got %v", turn.Expected)
	}

	got := e.session(t, session.SessionID)
	if got.TurnCount != 1 || got.Phase != entities.PhaseAwaitingResponses {
		t.Fatalf("session should track the open turn, got count=%d phase=%s", got.TurnCount, got.Phase)
	}
}

func TestStartTurnRejectsSecondOpenTurn(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "First")

	_, err := e.startTurn.Execute(context.Background(), StartTurnCommand{SessionID: session.SessionID, Prompt: "Second"})
	if !errors.Is(err, domainerrors.ErrPhaseConflict) {
		t.Fatalf("second open turn: got %v", err)
	}
}

func TestStartTurnValidation(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1")

	if _, err := e.startTurn.Execute(context.Background(), StartTurnCommand{SessionID: session.SessionID, Prompt: "   "}); !errors.Is(err, domainerrors.ErrInvalidTurnInput) {
		t.Fatalf("blank prompt: got %v", err)
	}

	empty := e.mustCreate(t, CreateSessionCommand{Title: "Empty", TurnMode: "round_robin", MinRounds: 1, MaxRounds: 1})
	if _, err := e.startTurn.Execute(context.Background(), StartTurnCommand{SessionID: empty.SessionID, Prompt: "Anyone?"}); !errors.Is(err, domainerrors.ErrRosterEmpty) {
		t.Fatalf("empty roster: got %v", err)
	}
}

func TestStartTurnWhilePaused(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")
	if _, err := e.pause.Execute(context.Background(), PauseSessionCommand{SessionID: session.SessionID}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	_, err := e.startTurn.Execute(context.Background(), StartTurnCommand{SessionID: session.SessionID, Prompt: "Prompt"})
	if !errors.Is(err, domainerrors.ErrSessionPaused) {
		t.Fatalf("paused session: got %v", err)
	}
}

func TestTurnNumbersIncrementAcrossTurns(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 1, "p1")

	first := e.mustStartTurn(t, session.SessionID, "One")
	e.mustSubmit(t, SubmitUtteranceCommand{SessionID: session.SessionID, ParticipantID: "p1", Content: "a", RoundNumber: 1})

	second := e.mustStartTurn(t, session.SessionID, "Two")
	if first.TurnNumber != 1 || second.TurnNumber != 2 {
		t.Fatalf("turn numbers should increment, got %d then %d", first.TurnNumber, second.TurnNumber)
	}
}

func TestCompleteTurnRequiresMinRounds(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 2, 3, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")

	_, err := e.completeTurn.Execute(context.Background(), CompleteTurnCommand{SessionID: session.SessionID})
	if !errors.Is(err, domainerrors.ErrMinRoundsNotReached) {
		t.Fatalf("completing before min rounds: got %v", err)
	}
}

func TestCompleteTurnDiscardsInFlightRound(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")
	e.mustSubmit(t, SubmitUtteranceCommand{SessionID: session.SessionID, ParticipantID: "p1", Content: "only one voice", RoundNumber: 1})

	turn, err := e.completeTurn.Execute(context.Background(), CompleteTurnCommand{SessionID: session.SessionID})
	if err != nil {
		t.Fatalf("complete turn: %v", err)
	}
	if turn.Status != entities.TurnStatusCompleted || turn.Expected != nil {
		t.Fatalf("turn should close and discard the pending expected set, got %+v", turn)
	}
	if got := e.session(t, session.SessionID); got.Phase != entities.PhaseIdle {
		t.Fatalf("session should idle after completion, got %s", got.Phase)
	}

	// The next turn opens cleanly.
	next := e.mustStartTurn(t, session.SessionID, "Next")
	if next.TurnNumber != 2 {
		t.Fatalf("expected turn 2, got %d", next.TurnNumber)
	}
}

func TestCompleteTurnWithoutOpenTurn(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 3, "p1")
	_, err := e.completeTurn.Execute(context.Background(), CompleteTurnCommand{SessionID: session.SessionID})
	if !errors.Is(err, domainerrors.ErrNoOpenTurn) {
		t.Fatalf("no open turn: got %v", err)
	}
}

func TestModeratorModeRoundProgression(t *testing.T) {
	e := newEngine()
	session := e.mustCreate(t, CreateSessionCommand{
		Title: "Panel", TurnMode: "moderator", MinRounds: 1, MaxRounds: 2,
		Participants: []ParticipantInput{
			{ParticipantID: "mod", Name: "Moderator", Moderator: true},
			{ParticipantID: "p1", Name: "A"},
			{ParticipantID: "p2", Name: "B"},
		},
	})

	turn := e.mustStartTurn(t, session.SessionID, "Opening statement")
	if len(turn.Expected) != 1 || turn.Expected[0] != "mod" {
		t.Fatalf("round one waits on the moderator, got %v", turn.Expected)
	}

	result := e.mustSubmit(t, SubmitUtteranceCommand{
		SessionID: session.SessionID, ParticipantID: "mod", Content: "welcome", RoundNumber: 1,
	})
	if !result.RoundCompleted || result.NextRound != 2 {
		t.Fatalf("moderator's submission alone closes round one, got %+v", result)
	}

	next, open := e.openTurn(t, session.SessionID)
	if !open || len(next.Expected) != 2 || next.Expected[0] != "p1" || next.Expected[1] != "p2" {
		t.Fatalf("round two invites the rest of the roster, got %v", next.Expected)
	}
}
