package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

func testParticipants(ids ...string) []Participant {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	participants := make([]Participant, 0, len(ids))
	for _, id := range ids {
		participant, err := NewParticipant(id, "Agent "+id, "analyst", 0, now)
		if err != nil {
			panic(err)
		}
		participants = append(participants, participant)
	}
	return participants
}

func TestNewSessionAssignsPositionsAndStartsIdle(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	session, err := NewSession("sess-1", "Budget review", TurnModeRoundRobin, RoundPolicy{MinRounds: 1, MaxRounds: 3}, false, testParticipants("p1", "p2", "p3"), now)
	if err != nil {
		t.Fatalf("expected session to build, got %v", err)
	}
	if session.Status != SessionStatusActive || session.Phase != PhaseIdle {
		t.Fatalf("expected active idle session, got %s/%s", session.Status, session.Phase)
	}
	if session.NextOptionID != 1 {
		t.Fatalf("expected option id allocator to start at 1, got %d", session.NextOptionID)
	}
	for i, participant := range session.Participants {
		if participant.Position != i {
			t.Fatalf("participant %s has position %d, want %d", participant.ParticipantID, participant.Position, i)
		}
	}
}

func TestNewSessionRejectsBlankTitleAndUnknownMode(t *testing.T) {
	now := time.Now()
	if _, err := NewSession("sess-1", "  ", TurnModeRoundRobin, RoundPolicy{MinRounds: 1, MaxRounds: 1}, false, nil, now); !errors.Is(err, domainerrors.ErrInvalidSessionInput) {
		t.Fatalf("blank title: got %v", err)
	}
	if _, err := NewSession("sess-1", "Budget", TurnMode("debate"), RoundPolicy{MinRounds: 1, MaxRounds: 1}, false, nil, now); !errors.Is(err, domainerrors.ErrInvalidTurnMode) {
		t.Fatalf("unknown mode: got %v", err)
	}
}

func TestRoundPolicyValidation(t *testing.T) {
	if err := (RoundPolicy{MinRounds: 2, MaxRounds: 1}).Validate(); !errors.Is(err, domainerrors.ErrInvalidRoundPolicy) {
		t.Fatalf("inverted bounds: got %v", err)
	}
	if err := (RoundPolicy{MinRounds: 0, MaxRounds: 3}).Validate(); !errors.Is(err, domainerrors.ErrInvalidRoundPolicy) {
		t.Fatalf("zero min: got %v", err)
	}
	if err := (RoundPolicy{MinRounds: 1, MaxRounds: 1}).Validate(); err != nil {
		t.Fatalf("single round policy should validate, got %v", err)
	}
}

func TestNewSessionEnforcesParticipantCap(t *testing.T) {
	now := time.Now()
	six := testParticipants("p1", "p2", "p3", "p4", "p5", "p6")
	if _, err := NewSession("sess-1", "Budget", TurnModeRoundRobin, RoundPolicy{MinRounds: 1, MaxRounds: 1}, false, six, now); !errors.Is(err, domainerrors.ErrParticipantCapExceeded) {
		t.Fatalf("six participants without poll mode: got %v", err)
	}
	if _, err := NewSession("sess-1", "Budget", TurnModeRoundRobin, RoundPolicy{MinRounds: 1, MaxRounds: 1}, true, six, now); err != nil {
		t.Fatalf("poll mode admits up to %d participants, got %v", PollModeParticipantCap, err)
	}
}

func TestNewSessionRejectsDuplicateParticipants(t *testing.T) {
	now := time.Now()
	dup := testParticipants("p1", "p1")
	if _, err := NewSession("sess-1", "Budget", TurnModeRoundRobin, RoundPolicy{MinRounds: 1, MaxRounds: 1}, false, dup, now); !errors.Is(err, domainerrors.ErrDuplicateParticipant) {
		t.Fatalf("duplicate roster entry: got %v", err)
	}
}

func TestNewParticipantNormalizes(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	participant, err := NewParticipant("  p1  ", "  Ada  ", "  skeptic  ", 2, now)
	if err != nil {
		t.Fatalf("expected participant to build, got %v", err)
	}
	if participant.ParticipantID != "p1" || participant.Name != "Ada" || participant.Archetype != "skeptic" {
		t.Fatalf("expected trimmed fields, got %+v", participant)
	}
	if !participant.Active {
		t.Fatal("new participants start active")
	}
	if _, err := NewParticipant("p1", "   ", "", 0, now); !errors.Is(err, domainerrors.ErrInvalidParticipantInput) {
		t.Fatalf("blank name: got %v", err)
	}
}

func TestModeratorIDIgnoresDeactivatedModerator(t *testing.T) {
	session := rosterSession(TurnModeModerator, "p2", "p1", "p2")
	if id, ok := session.ModeratorID(); !ok || id != "p2" {
		t.Fatalf("expected active moderator p2, got %q/%v", id, ok)
	}
	session.Participants[1].Active = false
	if _, ok := session.ModeratorID(); ok {
		t.Fatal("deactivated moderator should not be reported")
	}
}

func TestAcceptingCoversActiveAndPaused(t *testing.T) {
	session := rosterSession(TurnModeRoundRobin, "", "p1")
	if !session.Accepting() {
		t.Fatal("active session should accept submissions")
	}
	session.Status = SessionStatusPaused
	if !session.Accepting() {
		t.Fatal("paused session still accepts in-flight responses")
	}
	session.Status = SessionStatusCompleted
	if session.Accepting() {
		t.Fatal("completed session should not accept submissions")
	}
}

func TestTurnExpectedContains(t *testing.T) {
	turn := Turn{Expected: []string{"p1", "p3"}}
	if !turn.ExpectedContains("p3") {
		t.Fatal("p3 is expected")
	}
	if turn.ExpectedContains("p2") {
		t.Fatal("p2 is not expected")
	}
}
