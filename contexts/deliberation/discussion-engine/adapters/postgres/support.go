package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// RecordUtteranceActivity folds one recorded utterance into the speaker
// stats row. A single consumer group writes this table, so a plain
// read-modify-write inside a transaction is enough.
func (r *Repository) RecordUtteranceActivity(ctx context.Context, activity ports.UtteranceActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row speakerStatModel
		err := tx.
			Where("session_id = ? AND participant_id = ?", activity.SessionID, activity.ParticipantID).
			First(&row).
			Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			row = speakerStatModel{
				SessionID:     activity.SessionID,
				ParticipantID: activity.ParticipantID,
			}
		}

		row.Utterances++
		if activity.Interrupt {
			row.Interrupts++
		}
		if activity.TurnNumber > row.LastTurn ||
			(activity.TurnNumber == row.LastTurn && activity.RoundNumber > row.LastRound) {
			row.LastTurn = activity.TurnNumber
			row.LastRound = activity.RoundNumber
		}
		if activity.OccurredAt.UTC().After(row.LastActiveAt) {
			row.LastActiveAt = activity.OccurredAt.UTC()
		}

		return tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "session_id"}, {Name: "participant_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"utterances", "interrupts", "last_turn", "last_round", "last_active_at",
				}),
			}).
			Create(&row).
			Error
	})
}

func (r *Repository) ListSpeakerStats(ctx context.Context, sessionID string) ([]ports.SpeakerStat, error) {
	var rows []speakerStatModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("participant_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	stats := make([]ports.SpeakerStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, row.toPort())
	}
	return stats, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", key).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return row.toPort(), true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModelFromPort(record)
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", record.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     eventID,
		PayloadHash: payloadHash,
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}

	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return false, createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", eventID).
		First(&existing).
		Error; err != nil {
		return false, err
	}
	if existing.PayloadHash != payloadHash {
		return false, domainerrors.ErrIdempotencyKeyConflict
	}
	return true, nil
}

type speakerStatModel struct {
	SessionID     string    `gorm:"column:session_id;primaryKey"`
	ParticipantID string    `gorm:"column:participant_id;primaryKey"`
	Utterances    int       `gorm:"column:utterances"`
	Interrupts    int       `gorm:"column:interrupts"`
	LastTurn      int       `gorm:"column:last_turn"`
	LastRound     int       `gorm:"column:last_round"`
	LastActiveAt  time.Time `gorm:"column:last_active_at"`
}

func (speakerStatModel) TableName() string {
	return "discussion_speaker_stats"
}

func (m speakerStatModel) toPort() ports.SpeakerStat {
	return ports.SpeakerStat{
		SessionID:     m.SessionID,
		ParticipantID: m.ParticipantID,
		Utterances:    m.Utterances,
		Interrupts:    m.Interrupts,
		LastTurn:      m.LastTurn,
		LastRound:     m.LastRound,
		LastActiveAt:  m.LastActiveAt.UTC(),
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	UtteranceID string    `gorm:"column:utterance_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "discussion_idempotency"
}

func idempotencyModelFromPort(record ports.IdempotencyRecord) idempotencyModel {
	return idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		UtteranceID: record.UtteranceID,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
}

func (m idempotencyModel) toPort() ports.IdempotencyRecord {
	return ports.IdempotencyRecord{
		Key:         m.Key,
		RequestHash: m.RequestHash,
		UtteranceID: m.UtteranceID,
		ExpiresAt:   m.ExpiresAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "discussion_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "discussion_event_dedup"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
