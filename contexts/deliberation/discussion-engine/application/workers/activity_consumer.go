package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/ports"
)

const (
	utteranceRecordedTopic = "utterance.recorded"
	defaultConsumerGroup   = "discussion-engine-activity-cg"
)

// ActivityConsumer folds utterance.recorded events into the per-speaker
// activity read model. Payloads carry identifiers and counters only; the
// utterance text never crosses the bus.
type ActivityConsumer struct {
	Subscriber    ports.EventSubscriber
	Stats         ports.SpeakerStatsStore
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

type utteranceRecordedPayload struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	TurnNumber    int    `json:"turn_number"`
	RoundNumber   int    `json:"round_number"`
	Interrupt     bool   `json:"interrupt"`
}

func (c ActivityConsumer) Start(ctx context.Context) error {
	if c.Disabled {
		return nil
	}
	group := c.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, utteranceRecordedTopic, group, c.handleRecorded)
}

func (c ActivityConsumer) handleRecorded(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}

	payloadHash := hashPayload(event.Data)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, payloadHash, now.Add(c.dedupTTL()))
	if err != nil {
		logger.Error("utterance event dedupe failed",
			"event", "discussion_engine_activity_dedupe_failed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("utterance event already processed",
			"event", "discussion_engine_activity_event_replayed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}

	var payload utteranceRecordedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode utterance event payload: %w", err)
	}
	if payload.SessionID == "" || payload.ParticipantID == "" {
		return fmt.Errorf("utterance event missing session_id or participant_id")
	}

	activity := ports.UtteranceActivity{
		SessionID:     payload.SessionID,
		ParticipantID: payload.ParticipantID,
		TurnNumber:    payload.TurnNumber,
		RoundNumber:   payload.RoundNumber,
		Interrupt:     payload.Interrupt,
		OccurredAt:    event.OccurredAt,
	}
	if err := c.Stats.RecordUtteranceActivity(ctx, activity); err != nil {
		logger.Error("speaker activity update failed",
			"event", "discussion_engine_activity_update_failed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"session_id", payload.SessionID,
			"participant_id", payload.ParticipantID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("utterance event processed",
		"event", "discussion_engine_activity_event_processed",
		"module", "deliberation/discussion-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"session_id", payload.SessionID,
		"participant_id", payload.ParticipantID,
		"turn_number", payload.TurnNumber,
		"round_number", payload.RoundNumber,
	)
	return nil
}

func (c ActivityConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
