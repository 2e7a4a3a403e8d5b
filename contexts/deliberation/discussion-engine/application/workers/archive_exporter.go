package workers

import (
	"context"
	"log/slog"
	"sort"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
)

// ArchiveExporter copies archived sessions' transcripts into cold storage
// and marks them exported. Retracted utterances are dropped; the export is
// the withdrawn-free final record, unlike the live transcript.
type ArchiveExporter struct {
	Sessions ports.SessionRepository
	Archive  ports.ArchiveStore
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (e ArchiveExporter) RunOnce(ctx context.Context) error {
	if e.Archive == nil {
		return nil
	}
	logger := application.ResolveLogger(e.Logger)
	now := time.Now().UTC()
	if e.Clock != nil {
		now = e.Clock.Now().UTC()
	}

	sessions, err := e.Sessions.ListSessions(ctx)
	if err != nil {
		logger.Error("archive sweep list failed",
			"event", "discussion_engine_archive_list_failed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	exported := 0
	for _, session := range sessions {
		if session.Status != entities.SessionStatusArchived || session.Exported {
			continue
		}

		// A crash between save and mark leaves the transcript stored but
		// the session unmarked; skip straight to marking in that case.
		already, err := e.Archive.HasArchivedTranscript(ctx, session.SessionID)
		if err != nil {
			logger.Error("archive lookup failed",
				"event", "discussion_engine_archive_lookup_failed",
				"module", "deliberation/discussion-engine",
				"layer", "worker",
				"session_id", session.SessionID,
				"error", err.Error(),
			)
			return err
		}
		if !already {
			record, err := e.buildRecord(ctx, session, now)
			if err != nil {
				logger.Error("archive record build failed",
					"event", "discussion_engine_archive_build_failed",
					"module", "deliberation/discussion-engine",
					"layer", "worker",
					"session_id", session.SessionID,
					"error", err.Error(),
				)
				return err
			}
			if err := e.Archive.SaveArchivedTranscript(ctx, record); err != nil {
				logger.Error("archive save failed",
					"event", "discussion_engine_archive_save_failed",
					"module", "deliberation/discussion-engine",
					"layer", "worker",
					"session_id", session.SessionID,
					"error", err.Error(),
				)
				return err
			}
		}

		session.Exported = true
		session.UpdatedAt = now
		if err := e.Sessions.UpdateSession(ctx, session); err != nil {
			logger.Error("archive mark exported failed",
				"event", "discussion_engine_archive_mark_failed",
				"module", "deliberation/discussion-engine",
				"layer", "worker",
				"session_id", session.SessionID,
				"error", err.Error(),
			)
			return err
		}
		exported++
	}

	if exported > 0 {
		logger.Info("archive sweep completed",
			"event", "discussion_engine_archive_sweep_completed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"exported_count", exported,
		)
	}
	return nil
}

func (e ArchiveExporter) buildRecord(ctx context.Context, session entities.Session, now time.Time) (ports.ArchiveRecord, error) {
	utterances, err := e.Sessions.ListUtterancesBySession(ctx, session.SessionID)
	if err != nil {
		return ports.ArchiveRecord{}, err
	}

	names := make(map[string]string, len(session.Participants))
	for _, participant := range session.Participants {
		names[participant.ParticipantID] = participant.Name
	}

	entries := make([]ports.ArchiveEntry, 0, len(utterances))
	for _, utterance := range utterances {
		if utterance.Retracted {
			continue
		}
		entries = append(entries, ports.ArchiveEntry{
			TurnNumber:      utterance.TurnNumber,
			RoundNumber:     utterance.RoundNumber,
			ParticipantID:   utterance.ParticipantID,
			ParticipantName: names[utterance.ParticipantID],
			Content:         utterance.Content,
			Interrupt:       utterance.Interrupt,
			CreatedAt:       utterance.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TurnNumber != entries[j].TurnNumber {
			return entries[i].TurnNumber < entries[j].TurnNumber
		}
		if entries[i].RoundNumber != entries[j].RoundNumber {
			return entries[i].RoundNumber < entries[j].RoundNumber
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return ports.ArchiveRecord{
		SessionID:  session.SessionID,
		Title:      session.Title,
		TurnMode:   string(session.TurnMode),
		ArchivedAt: now,
		Entries:    entries,
	}, nil
}
