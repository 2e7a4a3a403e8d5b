package commands

import (
	"context"
	"testing"
	"time"

	"agora/contexts/deliberation/discussion-engine/adapters/memory"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/internal/shared/locking"
)

// testClock is advanced by hand so every test controls its timestamps.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// engine bundles every use case over a single in-memory store, the same
// composition the module wires for DSN-less runs.
type engine struct {
	store *memory.Store
	clock *testClock

	createSession  CreateSessionUseCase
	addParticipant AddParticipantUseCase
	deactivate     DeactivateParticipantUseCase
	moderator      DesignateModeratorUseCase
	pause          PauseSessionUseCase
	resume         ResumeSessionUseCase
	stop           StopSessionUseCase
	archive        ArchiveSessionUseCase
	startTurn      StartTurnUseCase
	completeTurn   CompleteTurnUseCase
	submit         SubmitUtteranceUseCase
	retract        RetractUtteranceUseCase
	openProposal   OpenProposalUseCase
	castVote       CastVoteUseCase
	resolve        ResolveProposalUseCase
	startPoll      StartPollUseCase
	synthesis      SubmitSynthesisUseCase
	castBallot     CastBallotUseCase
	forceAdvance   ForceAdvancePollUseCase
}

func newEngine() *engine {
	store := memory.NewStore(nil)
	clock := &testClock{now: time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)}
	locker := locking.NewKeyedMutex()

	return &engine{
		store:          store,
		clock:          clock,
		createSession:  CreateSessionUseCase{Sessions: store, Outbox: store, Clock: clock, IDGenerator: store},
		addParticipant: AddParticipantUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		deactivate:     DeactivateParticipantUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		moderator:      DesignateModeratorUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		pause:          PauseSessionUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		resume:         ResumeSessionUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		stop:           StopSessionUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		archive:        ArchiveSessionUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		startTurn:      StartTurnUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		completeTurn:   CompleteTurnUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		submit:         SubmitUtteranceUseCase{Sessions: store, Idempotency: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		retract:        RetractUtteranceUseCase{Sessions: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		openProposal:   OpenProposalUseCase{Sessions: store, Proposals: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		castVote:       CastVoteUseCase{Sessions: store, Proposals: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		resolve:        ResolveProposalUseCase{Sessions: store, Proposals: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		startPoll:      StartPollUseCase{Sessions: store, Polls: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		synthesis:      SubmitSynthesisUseCase{Sessions: store, Polls: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		castBallot:     CastBallotUseCase{Sessions: store, Polls: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
		forceAdvance:   ForceAdvancePollUseCase{Sessions: store, Polls: store, Outbox: store, Locker: locker, Clock: clock, IDGenerator: store},
	}
}

func participantInputs(ids ...string) []ParticipantInput {
	inputs := make([]ParticipantInput, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, ParticipantInput{ParticipantID: id, Name: "Agent " + id})
	}
	return inputs
}

func (e *engine) mustCreate(t *testing.T, cmd CreateSessionCommand) entities.Session {
	t.Helper()
	session, err := e.createSession.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

// mustRoundRobin spins up the most common fixture: an active round-robin
// session over the given roster.
func (e *engine) mustRoundRobin(t *testing.T, minRounds, maxRounds int, ids ...string) entities.Session {
	t.Helper()
	return e.mustCreate(t, CreateSessionCommand{
		Title:        "Weekly review",
		TurnMode:     "round_robin",
		MinRounds:    minRounds,
		MaxRounds:    maxRounds,
		Participants: participantInputs(ids...),
	})
}

func (e *engine) mustStartTurn(t *testing.T, sessionID, prompt string) entities.Turn {
	t.Helper()
	turn, err := e.startTurn.Execute(context.Background(), StartTurnCommand{SessionID: sessionID, Prompt: prompt})
	if err != nil {
		t.Fatalf("start turn: %v", err)
	}
	return turn
}

func (e *engine) mustSubmit(t *testing.T, cmd SubmitUtteranceCommand) SubmitUtteranceResult {
	t.Helper()
	result, err := e.submit.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("submit utterance for %s round %d: %v", cmd.ParticipantID, cmd.RoundNumber, err)
	}
	return result
}

func (e *engine) session(t *testing.T, sessionID string) entities.Session {
	t.Helper()
	session, err := e.store.GetSession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	return session
}

func (e *engine) openTurn(t *testing.T, sessionID string) (entities.Turn, bool) {
	t.Helper()
	turn, open, err := e.store.GetOpenTurn(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("get open turn: %v", err)
	}
	return turn, open
}

// eventCount tallies outbox envelopes by event type.
func (e *engine) eventCount(eventType string) int {
	count := 0
	for _, msg := range e.store.OutboxEvents() {
		if msg.EventType == eventType {
			count++
		}
	}
	return count
}
