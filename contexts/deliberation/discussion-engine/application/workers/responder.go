package workers

import (
	"context"
	"log/slog"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/application/commands"
	"agora/contexts/deliberation/discussion-engine/application/queries"
	"agora/contexts/deliberation/discussion-engine/ports"
)

// Responder drives discussion rounds for sessions that have no external
// poller: it walks the pending work snapshot, asks the generator for each
// outstanding contribution, and submits it through the same command path
// external callers use. Votes and polls are left to external clients.
type Responder struct {
	Pending   queries.ListPendingUseCase
	Submit    commands.SubmitUtteranceUseCase
	Generator ports.ResponseGenerator
	Disabled  bool
	Logger    *slog.Logger
}

func (r Responder) RunOnce(ctx context.Context) error {
	if r.Disabled || r.Generator == nil {
		return nil
	}
	logger := application.ResolveLogger(r.Logger)

	work, err := r.Pending.Execute(ctx)
	if err != nil {
		logger.Error("responder pending snapshot failed",
			"event", "discussion_engine_responder_snapshot_failed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	submitted := 0
	for _, session := range work.Sessions {
		for _, participant := range session.Pending {
			content, err := r.Generator.Generate(ctx, ports.GenerationRequest{
				SessionID:       session.SessionID,
				ParticipantID:   participant.ParticipantID,
				ParticipantName: participant.Name,
				Archetype:       participant.Archetype,
				Instructions:    session.Instructions,
				TurnNumber:      session.TurnNumber,
				RoundNumber:     session.RoundNumber,
				MaxRounds:       session.MaxRounds,
				History:         session.History,
			})
			if err != nil {
				logger.Error("responder generation failed",
					"event", "discussion_engine_responder_generation_failed",
					"module", "deliberation/discussion-engine",
					"layer", "worker",
					"session_id", session.SessionID,
					"participant_id", participant.ParticipantID,
					"round_number", session.RoundNumber,
					"error", err.Error(),
				)
				continue
			}

			_, err = r.Submit.Execute(ctx, commands.SubmitUtteranceCommand{
				SessionID:     session.SessionID,
				ParticipantID: participant.ParticipantID,
				Content:       content,
				RoundNumber:   session.RoundNumber,
			})
			if err != nil {
				// The snapshot can go stale between listing and submitting;
				// rejected submissions are retried on the next cycle.
				logger.Warn("responder submission rejected",
					"event", "discussion_engine_responder_submission_rejected",
					"module", "deliberation/discussion-engine",
					"layer", "worker",
					"session_id", session.SessionID,
					"participant_id", participant.ParticipantID,
					"round_number", session.RoundNumber,
					"error", err.Error(),
				)
				continue
			}
			submitted++
		}
	}

	if submitted > 0 {
		logger.Info("responder cycle completed",
			"event", "discussion_engine_responder_cycle_completed",
			"module", "deliberation/discussion-engine",
			"layer", "worker",
			"submitted_count", submitted,
		)
	}
	return nil
}
