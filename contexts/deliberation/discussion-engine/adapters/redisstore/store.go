// Package redisstore backs the idempotency and event dedup ports with
// Redis. Expiry is native TTL; nothing is swept.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

const defaultTTL = 7 * 24 * time.Hour

type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		prefix: "discussion:",
	}
}

type idempotencyPayload struct {
	RequestHash string    `json:"request_hash"`
	UtteranceID string    `json:"utterance_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Store) idempotencyKey(key string) string {
	return s.prefix + "idem:" + key
}

func (s *Store) dedupKey(eventID string) string {
	return s.prefix + "dedup:" + eventID
}

func (s *Store) Get(ctx context.Context, key string, _ time.Time) (ports.IdempotencyRecord, bool, error) {
	raw, err := s.client.Get(ctx, s.idempotencyKey(key)).Result()
	if err == redis.Nil {
		return ports.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	var payload idempotencyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("unmarshal idempotency record: %w", err)
	}
	return ports.IdempotencyRecord{
		Key:         key,
		RequestHash: payload.RequestHash,
		UtteranceID: payload.UtteranceID,
		ExpiresAt:   payload.ExpiresAt,
	}, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	payload, err := json.Marshal(idempotencyPayload{
		RequestHash: record.RequestHash,
		UtteranceID: record.UtteranceID,
		ExpiresAt:   record.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		ttl = defaultTTL
	}

	key := s.idempotencyKey(record.Key)
	set, err := s.client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store idempotency record: %w", err)
	}
	if set {
		return nil
	}

	// The key already exists; the original record wins, but a different
	// request behind the same key is a caller bug worth surfacing.
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Expired between SetNX and Get; retry the write once.
		if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
			return fmt.Errorf("store idempotency record: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("idempotency conflict check: %w", err)
	}
	var existing idempotencyPayload
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return fmt.Errorf("unmarshal idempotency record: %w", err)
	}
	if existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

// ReserveEvent reports true when the event id was already reserved with
// the same payload hash.
func (s *Store) ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = defaultTTL
	}

	key := s.dedupKey(eventID)
	set, err := s.client.SetNX(ctx, key, payloadHash, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve event: %w", err)
	}
	if set {
		return false, nil
	}

	existing, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("event dedupe check: %w", err)
	}
	if existing != payloadHash {
		return false, domainerrors.ErrIdempotencyKeyConflict
	}
	return true, nil
}
