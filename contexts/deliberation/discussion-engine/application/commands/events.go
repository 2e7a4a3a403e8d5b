package commands

import (
	"context"
	"encoding/json"
	"time"

	"agora/contexts/deliberation/discussion-engine/ports"
)

// Source service stamped on every envelope this engine emits.
const sourceService = "discussion-engine"

// Event types published by the discussion engine. Payloads carry
// identifiers and counters only; no human-readable text is ever emitted.
const (
	eventSessionCreated       = "session.created"
	eventSessionStatusChanged = "session.status_changed"
	eventRosterChanged        = "session.roster_changed"
	eventRoundStarted         = "round.started"
	eventUtteranceRecorded    = "utterance.recorded"
	eventUtteranceRetracted   = "utterance.retracted"
	eventRoundCompleted       = "round.completed"
	eventTurnCompleted        = "turn.completed"
	eventPhaseChanged         = "phase.changed"
	eventVoteOpened           = "vote.opened"
	eventVoteCast             = "vote.cast"
	eventVoteResolved         = "vote.resolved"
	eventPollStarted          = "poll.started"
	eventPollSynthesis        = "poll.synthesis_received"
	eventPollPhaseChanged     = "poll.phase_changed"
	eventPollVoteReceived     = "poll.vote_received"
	eventPollCompleted        = "poll.completed"
)

// clockNow prefers the injected clock and falls back to wall time.
func clockNow(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}

// newDiscussionEnvelope builds the canonical envelope partitioned by
// session so all events of one session stay ordered on the bus.
func newDiscussionEnvelope(eventID, eventType, sessionID string, occurredAt time.Time, data map[string]any) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "session_id",
		PartitionKey:     sessionID,
		Data:             payload,
	}, nil
}

// appendEvent mints an event id and appends the envelope to the outbox.
// Callers invoke it inside the session's critical section, after the state
// write the event describes.
func appendEvent(ctx context.Context, outbox ports.OutboxWriter, idGen ports.IDGenerator, eventType, sessionID string, occurredAt time.Time, data map[string]any) error {
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newDiscussionEnvelope(eventID, eventType, sessionID, occurredAt, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}
