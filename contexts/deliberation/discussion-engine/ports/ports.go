// Package ports declares the interfaces the discussion engine's
// application layer depends on. Adapters implement them; the application
// code never names a concrete store, broker, or clock.
package ports

import (
	"context"
	"time"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	contractsv1 "agora/contracts/gen/events/v1"
)

// SessionRepository persists sessions, rosters, turns, and utterances.
// UpdateSession writes the session's scalar state only; roster entries are
// managed through the participant methods.
type SessionRepository interface {
	CreateSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, sessionID string) (entities.Session, error)
	UpdateSession(ctx context.Context, session entities.Session) error
	ListSessions(ctx context.Context) ([]entities.Session, error)

	AddParticipant(ctx context.Context, sessionID string, participant entities.Participant) error
	UpdateParticipant(ctx context.Context, sessionID string, participant entities.Participant) error

	CreateTurn(ctx context.Context, turn entities.Turn) error
	UpdateTurn(ctx context.Context, turn entities.Turn) error
	// GetOpenTurn returns the session's open turn, when one exists.
	GetOpenTurn(ctx context.Context, sessionID string) (entities.Turn, bool, error)
	ListTurns(ctx context.Context, sessionID string) ([]entities.Turn, error)

	AppendUtterance(ctx context.Context, utterance entities.Utterance) error
	GetUtterance(ctx context.Context, utteranceID string) (entities.Utterance, error)
	// GetUtteranceByIdentity returns the non-retracted slot utterance for
	// one (session, turn, round, participant) coordinate, when present.
	GetUtteranceByIdentity(ctx context.Context, sessionID string, turnNumber, roundNumber int, participantID string) (entities.Utterance, bool, error)
	MarkUtteranceRetracted(ctx context.Context, utteranceID string, retractedAt time.Time) error
	ListUtterancesByTurn(ctx context.Context, sessionID string, turnNumber int) ([]entities.Utterance, error)
	ListUtterancesBySession(ctx context.Context, sessionID string) ([]entities.Utterance, error)
}

// ProposalRepository persists consensus proposals and their votes.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error)
	UpdateProposal(ctx context.Context, proposal entities.Proposal) error
	UpsertVote(ctx context.Context, vote entities.Vote) error
	ListVotesByProposal(ctx context.Context, proposalID string) ([]entities.Vote, error)
}

// PollRepository persists polls, synthesized options, synthesis entries,
// ballots, and the frozen results.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	UpdatePoll(ctx context.Context, poll entities.Poll) error

	UpsertSynthesisEntry(ctx context.Context, entry entities.SynthesisEntry) error
	ListSynthesisEntries(ctx context.Context, pollID string) ([]entities.SynthesisEntry, error)

	CreateOptions(ctx context.Context, options []entities.PollOption) error
	// SetOptionScores writes the Borda scores computed when round 1 closes.
	SetOptionScores(ctx context.Context, pollID string, scores map[int64]int) error
	// ListOptions returns the poll's options ordered by option id.
	ListOptions(ctx context.Context, pollID string) ([]entities.PollOption, error)

	UpsertBallot(ctx context.Context, ballot entities.PollBallot) error
	ListBallots(ctx context.Context, pollID string, round int) ([]entities.PollBallot, error)

	SavePollResults(ctx context.Context, pollID string, results entities.PollResults) error
	GetPollResults(ctx context.Context, pollID string) (entities.PollResults, bool, error)
}

// SpeakerStat is the per-participant activity read model maintained by the
// activity consumer.
type SpeakerStat struct {
	SessionID     string
	ParticipantID string
	Utterances    int
	Interrupts    int
	LastTurn      int
	LastRound     int
	LastActiveAt  time.Time
}

// UtteranceActivity is one recorded contribution as seen on the event bus.
type UtteranceActivity struct {
	SessionID     string
	ParticipantID string
	TurnNumber    int
	RoundNumber   int
	Interrupt     bool
	OccurredAt    time.Time
}

// SpeakerStatsStore accumulates speaker activity per session.
type SpeakerStatsStore interface {
	RecordUtteranceActivity(ctx context.Context, activity UtteranceActivity) error
	ListSpeakerStats(ctx context.Context, sessionID string) ([]SpeakerStat, error)
}

// ArchiveEntry is one transcript line written to cold storage.
type ArchiveEntry struct {
	TurnNumber      int
	RoundNumber     int
	ParticipantID   string
	ParticipantName string
	Content         string
	Interrupt       bool
	CreatedAt       time.Time
}

// ArchiveRecord is a finished session's transcript plus headline metadata.
type ArchiveRecord struct {
	SessionID  string
	Title      string
	TurnMode   string
	ArchivedAt time.Time
	Entries    []ArchiveEntry
}

// ArchiveStore is the cold-storage sink the archive exporter writes to.
type ArchiveStore interface {
	SaveArchivedTranscript(ctx context.Context, record ArchiveRecord) error
	HasArchivedTranscript(ctx context.Context, sessionID string) (bool, error)
}

// HistoryEntry is one line of ordered turn history handed to generators.
// Role is "user" for the turn prompt and "participant" for utterances.
type HistoryEntry struct {
	Role            string
	ParticipantID   string
	ParticipantName string
	Content         string
	TurnNumber      int
	RoundNumber     int
	Interrupt       bool
}

// GenerationRequest asks an external generator for one participant's
// contribution to the current round.
type GenerationRequest struct {
	SessionID       string
	ParticipantID   string
	ParticipantName string
	Archetype       string
	Instructions    string
	TurnNumber      int
	RoundNumber     int
	MaxRounds       int
	History         []HistoryEntry
}

// ResponseGenerator produces participant content. The engine itself never
// generates text; this port exists for the in-process responder worker.
type ResponseGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// SessionLocker serializes all mutating work for one session. Acquire
// blocks until the session's critical section is held and returns the
// release function.
type SessionLocker interface {
	Acquire(sessionID string) func()
}

// IdempotencyRecord ties an idempotency key to the request hash and the
// utterance the original request produced.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	UtteranceID string
	ExpiresAt   time.Time
}

// IdempotencyStore replays prior submissions by key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// EventDedupStore reserves event ids so consumers process each event once.
// ReserveEvent reports true when the event was already processed.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// EventEnvelope is the canonical cross-runtime envelope from contracts.
type EventEnvelope = contractsv1.Envelope

// EventPublisher delivers envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a handler for a topic within a consumer group.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic, group string, handler func(ctx context.Context, event EventEnvelope) error) error
}

// OutboxMessage is a pending event row awaiting relay to the broker.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxWriter appends envelopes to the outbox alongside state writes.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

// OutboxRepository drains pending outbox rows.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for entities and events.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
