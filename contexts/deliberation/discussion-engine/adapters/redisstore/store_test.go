package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), server
}

func TestPutAndGetRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour).UTC()
	record := ports.IdempotencyRecord{
		Key:         "disc-1:p1:1:abc",
		RequestHash: "hash-1",
		UtteranceID: "disc-9",
		ExpiresAt:   expiresAt,
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := store.Get(ctx, record.Key, time.Now())
	if err != nil || !found {
		t.Fatalf("expected a live record, found=%v err=%v", found, err)
	}
	if got.Key != record.Key || got.RequestHash != "hash-1" || got.UtteranceID != "disc-9" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expiry should round-trip, got %v want %v", got.ExpiresAt, expiresAt)
	}

	_, found, err = store.Get(ctx, "unknown-key", time.Now())
	if err != nil || found {
		t.Fatalf("an unknown key must miss, found=%v err=%v", found, err)
	}
}

func TestPutKeepsTheFirstRecord(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	first := ports.IdempotencyRecord{Key: "disc-1:p1:1:abc", RequestHash: "hash-1", UtteranceID: "disc-9", ExpiresAt: expiresAt}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A replay with the same hash is accepted and the original record wins.
	replay := ports.IdempotencyRecord{Key: first.Key, RequestHash: "hash-1", UtteranceID: "disc-99", ExpiresAt: expiresAt}
	if err := store.Put(ctx, replay); err != nil {
		t.Fatalf("replay put: %v", err)
	}
	got, _, err := store.Get(ctx, first.Key, time.Now())
	if err != nil || got.UtteranceID != "disc-9" {
		t.Fatalf("the original record should survive a replay, got %+v err=%v", got, err)
	}

	conflicting := ports.IdempotencyRecord{Key: first.Key, RequestHash: "hash-2", UtteranceID: "disc-50", ExpiresAt: expiresAt}
	if err := store.Put(ctx, conflicting); !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected ErrIdempotencyKeyConflict, got %v", err)
	}
}

func TestRecordsExpireWithRedisTTL(t *testing.T) {
	store, server := setupStore(t)
	ctx := context.Background()

	record := ports.IdempotencyRecord{
		Key:         "disc-1:p1:1:abc",
		RequestHash: "hash-1",
		UtteranceID: "disc-9",
		ExpiresAt:   time.Now().Add(time.Minute),
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	server.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, record.Key, time.Now())
	if err != nil || found {
		t.Fatalf("the record should expire with its TTL, found=%v err=%v", found, err)
	}

	// The key is free again, so a different request may claim it.
	fresh := ports.IdempotencyRecord{Key: record.Key, RequestHash: "hash-2", UtteranceID: "disc-10", ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Put(ctx, fresh); err != nil {
		t.Fatalf("put after expiry: %v", err)
	}
}

func TestPutPastExpiryFallsBackToDefaultTTL(t *testing.T) {
	store, server := setupStore(t)
	ctx := context.Background()

	record := ports.IdempotencyRecord{
		Key:         "disc-1:p1:1:abc",
		RequestHash: "hash-1",
		UtteranceID: "disc-9",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	ttl := server.TTL("discussion:idem:" + record.Key)
	if ttl <= 6*24*time.Hour || ttl > 7*24*time.Hour {
		t.Fatalf("expected the default TTL window, got %v", ttl)
	}
}

func TestReserveEventProcessesOnce(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	seen, err := store.ReserveEvent(ctx, "evt-1", "hash-1", expiresAt)
	if err != nil || seen {
		t.Fatalf("first reservation should be fresh, seen=%v err=%v", seen, err)
	}
	seen, err = store.ReserveEvent(ctx, "evt-1", "hash-1", expiresAt)
	if err != nil || !seen {
		t.Fatalf("a replay should report already seen, seen=%v err=%v", seen, err)
	}
	if _, err := store.ReserveEvent(ctx, "evt-1", "hash-2", expiresAt); !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected ErrIdempotencyKeyConflict, got %v", err)
	}
}

func TestReserveEventExpires(t *testing.T) {
	store, server := setupStore(t)
	ctx := context.Background()

	if _, err := store.ReserveEvent(ctx, "evt-1", "hash-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	server.FastForward(2 * time.Minute)

	seen, err := store.ReserveEvent(ctx, "evt-1", "hash-2", time.Now().Add(time.Minute))
	if err != nil || seen {
		t.Fatalf("an expired reservation frees the event id, seen=%v err=%v", seen, err)
	}
}
