package queries

import (
	"context"
	"log/slog"
	"sort"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type GetTranscriptQuery struct {
	SessionID string
}

// TranscriptEntry is one ledger line. Retracted entries stay visible so the
// transcript remains an honest append-only record.
type TranscriptEntry struct {
	UtteranceID     string
	ParticipantID   string
	ParticipantName string
	RoundNumber     int
	Content         string
	Interrupt       bool
	Retracted       bool
	CreatedAt       time.Time
}

type TranscriptTurn struct {
	TurnNumber int
	Prompt     string
	Status     string
	Rounds     int
	Entries    []TranscriptEntry
}

type GetTranscriptResult struct {
	SessionID string
	Title     string
	Turns     []TranscriptTurn
}

type GetTranscriptUseCase struct {
	Sessions ports.SessionRepository
	Logger   *slog.Logger
}

// Execute assembles the full ledger view: every turn with its prompt and
// utterances ordered by round, then arrival.
func (u GetTranscriptUseCase) Execute(ctx context.Context, query GetTranscriptQuery) (GetTranscriptResult, error) {
	logger := application.ResolveLogger(u.Logger)

	session, err := u.Sessions.GetSession(ctx, query.SessionID)
	if err != nil {
		logger.Error("get transcript failed",
			"event", "get_transcript_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", query.SessionID,
			"error", err.Error(),
		)
		return GetTranscriptResult{}, err
	}
	turns, err := u.Sessions.ListTurns(ctx, session.SessionID)
	if err != nil {
		return GetTranscriptResult{}, err
	}
	utterances, err := u.Sessions.ListUtterancesBySession(ctx, session.SessionID)
	if err != nil {
		return GetTranscriptResult{}, err
	}

	names := make(map[string]string, len(session.Participants))
	for _, participant := range session.Participants {
		names[participant.ParticipantID] = participant.Name
	}

	byTurn := make(map[int][]TranscriptEntry)
	for _, utterance := range utterances {
		byTurn[utterance.TurnNumber] = append(byTurn[utterance.TurnNumber], TranscriptEntry{
			UtteranceID:     utterance.UtteranceID,
			ParticipantID:   utterance.ParticipantID,
			ParticipantName: names[utterance.ParticipantID],
			RoundNumber:     utterance.RoundNumber,
			Content:         utterance.Content,
			Interrupt:       utterance.Interrupt,
			Retracted:       utterance.Retracted,
			CreatedAt:       utterance.CreatedAt,
		})
	}

	result := GetTranscriptResult{SessionID: session.SessionID, Title: session.Title}
	sort.Slice(turns, func(i, j int) bool { return turns[i].TurnNumber < turns[j].TurnNumber })
	for _, turn := range turns {
		entries := byTurn[turn.TurnNumber]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].RoundNumber != entries[j].RoundNumber {
				return entries[i].RoundNumber < entries[j].RoundNumber
			}
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})
		result.Turns = append(result.Turns, TranscriptTurn{
			TurnNumber: turn.TurnNumber,
			Prompt:     turn.Prompt,
			Status:     string(turn.Status),
			Rounds:     turn.CurrentRound,
			Entries:    entries,
		})
	}
	return result, nil
}
