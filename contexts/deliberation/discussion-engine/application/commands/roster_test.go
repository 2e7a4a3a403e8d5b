package commands

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

func TestCreateSessionNormalizesTurnMode(t *testing.T) {
	e := newEngine()
	session := e.mustCreate(t, CreateSessionCommand{
		Title: "Kickoff", TurnMode: "  Round_Robin ", MinRounds: 1, MaxRounds: 2,
		Participants: participantInputs("p1", "p2"),
	})
	if session.TurnMode != entities.TurnModeRoundRobin {
		t.Fatalf("mode should normalize to round_robin, got %s", session.TurnMode)
	}
	if count := e.eventCount("session.created"); count != 1 {
		t.Fatalf("expected session.created event, got %d", count)
	}
}

func TestCreateSessionRejectsSecondModerator(t *testing.T) {
	e := newEngine()
	_, err := e.createSession.Execute(context.Background(), CreateSessionCommand{
		Title: "Panel", TurnMode: "moderator", MinRounds: 1, MaxRounds: 2,
		Participants: []ParticipantInput{
			{ParticipantID: "p1", Name: "A", Moderator: true},
			{ParticipantID: "p2", Name: "B", Moderator: true},
		},
	})
	if !errors.Is(err, domainerrors.ErrInvalidParticipantInput) {
		t.Fatalf("two moderators: got %v", err)
	}
}

func TestCreateSessionRejectsUnknownMode(t *testing.T) {
	e := newEngine()
	_, err := e.createSession.Execute(context.Background(), CreateSessionCommand{
		Title: "Kickoff", TurnMode: "debate", MinRounds: 1, MaxRounds: 2,
	})
	if !errors.Is(err, domainerrors.ErrInvalidTurnMode) {
		t.Fatalf("unknown mode: got %v", err)
	}
}

func TestAddParticipantBetweenTurns(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")

	updated, err := e.addParticipant.Execute(context.Background(), AddParticipantCommand{
		SessionID:   session.SessionID,
		Participant: ParticipantInput{ParticipantID: "p3", Name: "Agent p3"},
	})
	if err != nil {
		t.Fatalf("add participant: %v", err)
	}
	if len(updated.Participants) != 3 {
		t.Fatalf("expected roster of 3, got %d", len(updated.Participants))
	}
	joined, ok := updated.ParticipantByID("p3")
	if !ok || joined.Position != 2 || !joined.Active {
		t.Fatalf("new participant should take the next position active, got %+v", joined)
	}
	if count := e.eventCount("session.roster_changed"); count != 1 {
		t.Fatalf("expected roster_changed event, got %d", count)
	}
}

func TestAddParticipantLockedWhileTurnOpen(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")

	_, err := e.addParticipant.Execute(context.Background(), AddParticipantCommand{
		SessionID:   session.SessionID,
		Participant: ParticipantInput{ParticipantID: "p3", Name: "Agent p3"},
	})
	if !errors.Is(err, domainerrors.ErrParticipantChangesLocked) {
		t.Fatalf("roster change mid-turn: got %v", err)
	}
}

func TestAddParticipantDuplicateAndCap(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2", "p3", "p4", "p5")

	_, err := e.addParticipant.Execute(context.Background(), AddParticipantCommand{
		SessionID:   session.SessionID,
		Participant: ParticipantInput{ParticipantID: "p6", Name: "Agent p6"},
	})
	if !errors.Is(err, domainerrors.ErrParticipantCapExceeded) {
		t.Fatalf("sixth member without poll mode: got %v", err)
	}

	small := e.mustRoundRobin(t, 1, 2, "q1", "q2")
	_, err = e.addParticipant.Execute(context.Background(), AddParticipantCommand{
		SessionID:   small.SessionID,
		Participant: ParticipantInput{ParticipantID: "q1", Name: "Again"},
	})
	if !errors.Is(err, domainerrors.ErrDuplicateParticipant) {
		t.Fatalf("rejoining identity: got %v", err)
	}
}

func TestAddParticipantRejectsSecondModerator(t *testing.T) {
	e := newEngine()
	session := e.mustCreate(t, CreateSessionCommand{
		Title: "Panel", TurnMode: "moderator", MinRounds: 1, MaxRounds: 2,
		Participants: []ParticipantInput{
			{ParticipantID: "p1", Name: "A", Moderator: true},
			{ParticipantID: "p2", Name: "B"},
		},
	})
	_, err := e.addParticipant.Execute(context.Background(), AddParticipantCommand{
		SessionID:   session.SessionID,
		Participant: ParticipantInput{ParticipantID: "p3", Name: "C", Moderator: true},
	})
	if !errors.Is(err, domainerrors.ErrInvalidParticipantInput) {
		t.Fatalf("second moderator: got %v", err)
	}
}

func TestDeactivateParticipantShrinksNextExpectedSet(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2", "p3")

	if _, err := e.deactivate.Execute(context.Background(), DeactivateParticipantCommand{
		SessionID: session.SessionID, ParticipantID: "p2",
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	turn := e.mustStartTurn(t, session.SessionID, "Prompt")
	if len(turn.Expected) != 2 || turn.Expected[0] != "p1" || turn.Expected[1] != "p3" {
		t.Fatalf("deactivated member must leave the expected set, got %v", turn.Expected)
	}
}

func TestDeactivateParticipantTwiceIsNoOp(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")

	cmd := DeactivateParticipantCommand{SessionID: session.SessionID, ParticipantID: "p2"}
	if _, err := e.deactivate.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("first deactivate: %v", err)
	}
	if _, err := e.deactivate.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("second deactivate should be a no-op, got %v", err)
	}
	if count := e.eventCount("session.roster_changed"); count != 1 {
		t.Fatalf("no-op deactivate must not re-emit events, got %d", count)
	}
}

func TestDeactivateUnknownParticipant(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1")
	_, err := e.deactivate.Execute(context.Background(), DeactivateParticipantCommand{
		SessionID: session.SessionID, ParticipantID: "ghost",
	})
	if !errors.Is(err, domainerrors.ErrParticipantNotFound) {
		t.Fatalf("unknown participant: got %v", err)
	}
}

func TestDesignateModeratorMovesFlag(t *testing.T) {
	e := newEngine()
	session := e.mustCreate(t, CreateSessionCommand{
		Title: "Panel", TurnMode: "moderator", MinRounds: 1, MaxRounds: 3,
		Participants: []ParticipantInput{
			{ParticipantID: "p1", Name: "A", Moderator: true},
			{ParticipantID: "p2", Name: "B"},
			{ParticipantID: "p3", Name: "C"},
		},
	})

	updated, err := e.moderator.Execute(context.Background(), DesignateModeratorCommand{
		SessionID: session.SessionID, ParticipantID: "p3",
	})
	if err != nil {
		t.Fatalf("designate: %v", err)
	}
	if id, ok := updated.ModeratorID(); !ok || id != "p3" {
		t.Fatalf("moderator flag should move to p3, got %q/%v", id, ok)
	}
	old, _ := updated.ParticipantByID("p1")
	if old.Moderator {
		t.Fatal("previous moderator must lose the flag")
	}

	turn := e.mustStartTurn(t, session.SessionID, "Prompt")
	if len(turn.Expected) != 1 || turn.Expected[0] != "p3" {
		t.Fatalf("round one should wait on the new moderator, got %v", turn.Expected)
	}
}

func TestDesignateModeratorRequiresActiveMember(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	if _, err := e.deactivate.Execute(context.Background(), DeactivateParticipantCommand{
		SessionID: session.SessionID, ParticipantID: "p2",
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := e.moderator.Execute(context.Background(), DesignateModeratorCommand{
		SessionID: session.SessionID, ParticipantID: "p2",
	})
	if !errors.Is(err, domainerrors.ErrParticipantNotFound) {
		t.Fatalf("deactivated moderator candidate: got %v", err)
	}
}
