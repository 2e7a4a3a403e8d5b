package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"agora/contexts/deliberation/discussion-engine/ports"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func sampleRecord() ports.ArchiveRecord {
	base := time.Date(2026, time.April, 3, 10, 0, 0, 0, time.UTC)
	return ports.ArchiveRecord{
		SessionID:  "disc-1",
		Title:      "Release retrospective",
		TurnMode:   "round_robin",
		ArchivedAt: base.Add(time.Hour),
		Entries: []ports.ArchiveEntry{
			{
				TurnNumber:      1,
				RoundNumber:     1,
				ParticipantID:   "p1",
				ParticipantName: "Ada",
				Content:         "Ship it.",
				CreatedAt:       base,
			},
			{
				TurnNumber:      1,
				RoundNumber:     1,
				ParticipantID:   "p2",
				ParticipantName: "Grace",
				Content:         "Hold on, the migration is unfinished.",
				Interrupt:       true,
				CreatedAt:       base.Add(time.Minute),
			},
		},
	}
}

func TestSaveAndReadBackTranscript(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	record := sampleRecord()

	if err := store.SaveArchivedTranscript(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetArchivedTranscript(ctx, record.SessionID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.SessionID != "disc-1" || got.Title != "Release retrospective" || got.TurnMode != "round_robin" {
		t.Fatalf("unexpected header: %+v", got)
	}
	if !got.ArchivedAt.Equal(record.ArchivedAt) {
		t.Fatalf("archived time should round-trip, got %v want %v", got.ArchivedAt, record.ArchivedAt)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected both entries, got %+v", got.Entries)
	}
	first, second := got.Entries[0], got.Entries[1]
	if first.ParticipantID != "p1" || first.ParticipantName != "Ada" || first.Content != "Ship it." || first.Interrupt {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if !second.Interrupt || second.ParticipantID != "p2" {
		t.Fatalf("the interrupt flag should survive storage, got %+v", second)
	}
	if !first.CreatedAt.Equal(record.Entries[0].CreatedAt) {
		t.Fatalf("entry time should round-trip, got %v", first.CreatedAt)
	}
}

func TestSaveAgainIsANoOp(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	record := sampleRecord()

	if err := store.SaveArchivedTranscript(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	altered := record
	altered.Title = "Renamed after the fact"
	altered.Entries = record.Entries[:1]
	if err := store.SaveArchivedTranscript(ctx, altered); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.GetArchivedTranscript(ctx, record.SessionID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Title != "Release retrospective" || len(got.Entries) != 2 {
		t.Fatalf("the first archive write must win, got %+v", got)
	}
}

func TestHasArchivedTranscript(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	has, err := store.HasArchivedTranscript(ctx, "disc-1")
	if err != nil || has {
		t.Fatalf("nothing archived yet, has=%v err=%v", has, err)
	}
	if err := store.SaveArchivedTranscript(ctx, sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	has, err = store.HasArchivedTranscript(ctx, "disc-1")
	if err != nil || !has {
		t.Fatalf("expected the session to be archived, has=%v err=%v", has, err)
	}
}

func TestGetUnknownTranscript(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.GetArchivedTranscript(context.Background(), "disc-404"); err == nil {
		t.Fatalf("an unknown session should fail")
	}
}

func TestReopenSeesExistingData(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	if err := store.SaveArchivedTranscript(ctx, sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	has, err := reopened.HasArchivedTranscript(ctx, "disc-1")
	if err != nil || !has {
		t.Fatalf("archived data should persist across opens, has=%v err=%v", has, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("a blank path should be rejected")
	}
}
