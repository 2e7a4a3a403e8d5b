package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/application/commands"
	"agora/contexts/deliberation/discussion-engine/application/queries"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
	httptransport "agora/contexts/deliberation/discussion-engine/transport/http"
)

type Handler struct {
	CreateSession         commands.CreateSessionUseCase
	AddParticipant        commands.AddParticipantUseCase
	DeactivateParticipant commands.DeactivateParticipantUseCase
	DesignateModerator    commands.DesignateModeratorUseCase
	PauseSession          commands.PauseSessionUseCase
	ResumeSession         commands.ResumeSessionUseCase
	StopSession           commands.StopSessionUseCase
	ArchiveSession        commands.ArchiveSessionUseCase
	StartTurn             commands.StartTurnUseCase
	CompleteTurn          commands.CompleteTurnUseCase
	SubmitUtterance       commands.SubmitUtteranceUseCase
	RetractUtterance      commands.RetractUtteranceUseCase
	OpenProposal          commands.OpenProposalUseCase
	CastVote              commands.CastVoteUseCase
	ResolveProposal       commands.ResolveProposalUseCase
	StartPoll             commands.StartPollUseCase
	SubmitSynthesis       commands.SubmitSynthesisUseCase
	CastBallot            commands.CastBallotUseCase
	ForceAdvancePoll      commands.ForceAdvancePollUseCase

	GetSession      queries.GetSessionUseCase
	ListSessions    queries.ListSessionsUseCase
	GetTranscript   queries.GetTranscriptUseCase
	ListPending     queries.ListPendingUseCase
	GetTally        queries.GetTallyUseCase
	GetPoll         queries.GetPollUseCase
	GetPollResults  queries.GetPollResultsUseCase
	GetSpeakerStats queries.GetSpeakerStatsUseCase

	Logger *slog.Logger
}

// CreateSessionHandler godoc
// @Summary Create a discussion session
// @Description Creates a session with its initial roster. Moderator mode requires at most one moderator.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param request body httptransport.CreateSessionRequest true "Session payload"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /sessions [post]
func (h Handler) CreateSessionHandler(ctx context.Context, req httptransport.CreateSessionRequest) (httptransport.SessionResponse, error) {
	participants := make([]commands.ParticipantInput, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, commands.ParticipantInput{
			ParticipantID: p.ParticipantID,
			Name:          p.Name,
			Archetype:     p.Archetype,
			Moderator:     p.Moderator,
		})
	}
	session, err := h.CreateSession.Execute(ctx, commands.CreateSessionCommand{
		Title:        req.Title,
		TurnMode:     req.TurnMode,
		MinRounds:    req.MinRounds,
		MaxRounds:    req.MaxRounds,
		PollMode:     req.PollMode,
		Participants: participants,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// ListSessionsHandler godoc
// @Summary List sessions
// @Description Returns all sessions ordered by creation time.
// @Tags discussion-engine
// @Produce json
// @Success 200 {object} httptransport.ListSessionsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /sessions [get]
func (h Handler) ListSessionsHandler(ctx context.Context) (httptransport.ListSessionsResponse, error) {
	result, err := h.ListSessions.Execute(ctx)
	if err != nil {
		return httptransport.ListSessionsResponse{}, err
	}
	items := make([]httptransport.SessionDTO, 0, len(result.Sessions))
	for _, session := range result.Sessions {
		items = append(items, mapSession(session))
	}
	return httptransport.ListSessionsResponse{Items: items}, nil
}

// GetSessionHandler godoc
// @Summary Get session snapshot
// @Description Returns the session with its open turn, when one exists.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.GetSessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id} [get]
func (h Handler) GetSessionHandler(ctx context.Context, sessionID string) (httptransport.GetSessionResponse, error) {
	result, err := h.GetSession.Execute(ctx, queries.GetSessionQuery{SessionID: sessionID})
	if err != nil {
		return httptransport.GetSessionResponse{}, err
	}
	resp := httptransport.GetSessionResponse{Item: mapSession(result.Session)}
	if result.HasOpenTurn {
		turn := mapTurn(result.OpenTurn)
		resp.OpenTurn = &turn
	}
	return resp, nil
}

// AddParticipantHandler godoc
// @Summary Add a participant
// @Description Adds a participant to the roster while no turn is open.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param session_id path string true "Session id"
// @Param request body httptransport.AddParticipantRequest true "Participant payload"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/participants [post]
func (h Handler) AddParticipantHandler(ctx context.Context, sessionID string, req httptransport.AddParticipantRequest) (httptransport.SessionResponse, error) {
	session, err := h.AddParticipant.Execute(ctx, commands.AddParticipantCommand{
		SessionID: sessionID,
		Participant: commands.ParticipantInput{
			ParticipantID: req.ParticipantID,
			Name:          req.Name,
			Archetype:     req.Archetype,
			Moderator:     req.Moderator,
		},
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// DeactivateParticipantHandler godoc
// @Summary Deactivate a participant
// @Description Removes the participant from future expected sets; history stays.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Param participant_id path string true "Participant id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/participants/{participant_id}/deactivate [post]
func (h Handler) DeactivateParticipantHandler(ctx context.Context, sessionID, participantID string) (httptransport.SessionResponse, error) {
	session, err := h.DeactivateParticipant.Execute(ctx, commands.DeactivateParticipantCommand{
		SessionID:     sessionID,
		ParticipantID: participantID,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// DesignateModeratorHandler godoc
// @Summary Designate the moderator
// @Description Moves the moderator flag to the named active participant.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param session_id path string true "Session id"
// @Param request body httptransport.DesignateModeratorRequest true "Moderator payload"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/moderator [post]
func (h Handler) DesignateModeratorHandler(ctx context.Context, sessionID string, req httptransport.DesignateModeratorRequest) (httptransport.SessionResponse, error) {
	session, err := h.DesignateModerator.Execute(ctx, commands.DesignateModeratorCommand{
		SessionID:     sessionID,
		ParticipantID: req.ParticipantID,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// PauseSessionHandler godoc
// @Summary Pause a session
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/pause [post]
func (h Handler) PauseSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.PauseSession.Execute(ctx, commands.PauseSessionCommand{SessionID: sessionID})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// ResumeSessionHandler godoc
// @Summary Resume a paused session
// @Description Resumes the session and opens any round parked during the pause.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/resume [post]
func (h Handler) ResumeSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.ResumeSession.Execute(ctx, commands.ResumeSessionCommand{SessionID: sessionID})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// StopSessionHandler godoc
// @Summary Stop a session
// @Description Completes the session immediately, closing any open turn.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/stop [post]
func (h Handler) StopSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.StopSession.Execute(ctx, commands.StopSessionCommand{SessionID: sessionID})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// ArchiveSessionHandler godoc
// @Summary Archive a completed session
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.SessionResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/archive [post]
func (h Handler) ArchiveSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.ArchiveSession.Execute(ctx, commands.ArchiveSessionCommand{SessionID: sessionID})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Item: mapSession(session)}, nil
}

// StartTurnHandler godoc
// @Summary Start a turn
// @Description Opens a new turn with the given prompt and starts round one.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param session_id path string true "Session id"
// @Param request body httptransport.StartTurnRequest true "Turn payload"
// @Success 200 {object} httptransport.StartTurnResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/turns [post]
func (h Handler) StartTurnHandler(ctx context.Context, sessionID string, req httptransport.StartTurnRequest) (httptransport.StartTurnResponse, error) {
	turn, err := h.StartTurn.Execute(ctx, commands.StartTurnCommand{
		SessionID: sessionID,
		Prompt:    req.Prompt,
	})
	if err != nil {
		return httptransport.StartTurnResponse{}, err
	}
	return httptransport.StartTurnResponse{Item: mapTurn(turn)}, nil
}

// CompleteTurnHandler godoc
// @Summary Complete the open turn
// @Description Closes the open turn once the minimum round count is met.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.CompleteTurnResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/turns/complete [post]
func (h Handler) CompleteTurnHandler(ctx context.Context, sessionID string) (httptransport.CompleteTurnResponse, error) {
	turn, err := h.CompleteTurn.Execute(ctx, commands.CompleteTurnCommand{SessionID: sessionID})
	if err != nil {
		return httptransport.CompleteTurnResponse{}, err
	}
	return httptransport.CompleteTurnResponse{Item: mapTurn(turn)}, nil
}

// ListPendingHandler godoc
// @Summary List pending work
// @Description Returns outstanding submissions, votes, and poll actions across all accepting sessions.
// @Tags discussion-engine
// @Produce json
// @Success 200 {object} httptransport.ListPendingResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /pending [get]
func (h Handler) ListPendingHandler(ctx context.Context) (httptransport.ListPendingResponse, error) {
	work, err := h.ListPending.Execute(ctx)
	if err != nil {
		return httptransport.ListPendingResponse{}, err
	}

	resp := httptransport.ListPendingResponse{
		Sessions: make([]httptransport.SessionWorkDTO, 0, len(work.Sessions)),
		Votes:    make([]httptransport.VoteWorkDTO, 0, len(work.Votes)),
		Polls:    make([]httptransport.PollWorkDTO, 0, len(work.Polls)),
	}
	for _, item := range work.Sessions {
		pending := make([]httptransport.PendingParticipantDTO, 0, len(item.Pending))
		for _, p := range item.Pending {
			pending = append(pending, httptransport.PendingParticipantDTO{
				ParticipantID: p.ParticipantID,
				Name:          p.Name,
				Archetype:     p.Archetype,
			})
		}
		history := make([]httptransport.HistoryEntryDTO, 0, len(item.History))
		for _, entry := range item.History {
			history = append(history, mapHistoryEntry(entry))
		}
		resp.Sessions = append(resp.Sessions, httptransport.SessionWorkDTO{
			SessionID:    item.SessionID,
			Title:        item.Title,
			TurnMode:     item.TurnMode,
			TurnNumber:   item.TurnNumber,
			RoundNumber:  item.RoundNumber,
			MinRounds:    item.MinRounds,
			MaxRounds:    item.MaxRounds,
			Instructions: item.Instructions,
			Pending:      pending,
			History:      history,
		})
	}
	for _, item := range work.Votes {
		resp.Votes = append(resp.Votes, httptransport.VoteWorkDTO{
			ProposalID:    item.ProposalID,
			SessionID:     item.SessionID,
			Text:          item.Text,
			PendingVoters: item.PendingVoters,
		})
	}
	for _, item := range work.Polls {
		resp.Polls = append(resp.Polls, httptransport.PollWorkDTO{
			PollID:              item.PollID,
			SessionID:           item.SessionID,
			Question:            item.Question,
			Phase:               item.Phase,
			Round:               item.Round,
			PendingParticipants: item.PendingParticipants,
		})
	}
	return resp, nil
}

// SubmitUtteranceHandler godoc
// @Summary Submit an utterance
// @Description Records a participant's contribution to the open round. Identical resubmission replays; Idempotency-Key replays by key.
// @Tags discussion-engine
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body httptransport.SubmitUtteranceRequest true "Submission payload"
// @Success 200 {object} httptransport.SubmitUtteranceResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /submissions [post]
func (h Handler) SubmitUtteranceHandler(
	ctx context.Context,
	req httptransport.SubmitUtteranceRequest,
	idempotencyKey string,
) (httptransport.SubmitUtteranceResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	result, err := h.SubmitUtterance.Execute(ctx, commands.SubmitUtteranceCommand{
		SessionID:      req.SessionID,
		ParticipantID:  req.ParticipantID,
		Content:        req.Content,
		RoundNumber:    req.RoundNumber,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		logger.Warn("submission rejected",
			"event", "http_submission_rejected",
			"module", "deliberation/discussion-engine",
			"layer", "transport",
			"session_id", req.SessionID,
			"participant_id", req.ParticipantID,
			"error", err.Error(),
		)
		return httptransport.SubmitUtteranceResponse{}, err
	}
	return httptransport.SubmitUtteranceResponse{
		UtteranceID:    result.Utterance.UtteranceID,
		SessionID:      result.Utterance.SessionID,
		TurnNumber:     result.Utterance.TurnNumber,
		RoundNumber:    result.Utterance.RoundNumber,
		ParticipantID:  result.Utterance.ParticipantID,
		Interrupt:      result.Utterance.Interrupt,
		RoundCompleted: result.RoundCompleted,
		TurnCompleted:  result.TurnCompleted,
		NextRound:      result.NextRound,
		Replayed:       result.Replayed,
	}, nil
}

// RetractUtteranceHandler godoc
// @Summary Retract an utterance
// @Description Marks a current-round utterance retracted; its slot reopens.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Param utterance_id path string true "Utterance id"
// @Success 200 {object} httptransport.RetractUtteranceResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/utterances/{utterance_id}/retract [post]
func (h Handler) RetractUtteranceHandler(ctx context.Context, sessionID, utteranceID string) (httptransport.RetractUtteranceResponse, error) {
	utterance, err := h.RetractUtterance.Execute(ctx, commands.RetractUtteranceCommand{
		SessionID:   sessionID,
		UtteranceID: utteranceID,
	})
	if err != nil {
		return httptransport.RetractUtteranceResponse{}, err
	}
	return httptransport.RetractUtteranceResponse{
		UtteranceID: utterance.UtteranceID,
		SessionID:   utterance.SessionID,
		Retracted:   utterance.Retracted,
	}, nil
}

// GetTranscriptHandler godoc
// @Summary Get the session transcript
// @Description Returns the full ordered history including retracted entries.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.GetTranscriptResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/transcript [get]
func (h Handler) GetTranscriptHandler(ctx context.Context, sessionID string) (httptransport.GetTranscriptResponse, error) {
	result, err := h.GetTranscript.Execute(ctx, queries.GetTranscriptQuery{SessionID: sessionID})
	if err != nil {
		return httptransport.GetTranscriptResponse{}, err
	}

	turns := make([]httptransport.TranscriptTurnDTO, 0, len(result.Turns))
	for _, turn := range result.Turns {
		entries := make([]httptransport.TranscriptEntryDTO, 0, len(turn.Entries))
		for _, entry := range turn.Entries {
			entries = append(entries, httptransport.TranscriptEntryDTO{
				UtteranceID:     entry.UtteranceID,
				ParticipantID:   entry.ParticipantID,
				ParticipantName: entry.ParticipantName,
				RoundNumber:     entry.RoundNumber,
				Content:         entry.Content,
				Interrupt:       entry.Interrupt,
				Retracted:       entry.Retracted,
				CreatedAt:       formatTimestamp(entry.CreatedAt),
			})
		}
		turns = append(turns, httptransport.TranscriptTurnDTO{
			TurnNumber: turn.TurnNumber,
			Prompt:     turn.Prompt,
			Status:     turn.Status,
			Rounds:     turn.Rounds,
			Entries:    entries,
		})
	}
	return httptransport.GetTranscriptResponse{
		SessionID: result.SessionID,
		Title:     result.Title,
		Turns:     turns,
	}, nil
}

// GetSpeakerStatsHandler godoc
// @Summary Get speaker stats
// @Description Returns the per-participant activity read model.
// @Tags discussion-engine
// @Produce json
// @Param session_id path string true "Session id"
// @Success 200 {object} httptransport.GetSpeakerStatsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /sessions/{session_id}/speakers [get]
func (h Handler) GetSpeakerStatsHandler(ctx context.Context, sessionID string) (httptransport.GetSpeakerStatsResponse, error) {
	result, err := h.GetSpeakerStats.Execute(ctx, queries.GetSpeakerStatsQuery{SessionID: sessionID})
	if err != nil {
		return httptransport.GetSpeakerStatsResponse{}, err
	}
	items := make([]httptransport.SpeakerStatDTO, 0, len(result.Stats))
	for _, stat := range result.Stats {
		items = append(items, httptransport.SpeakerStatDTO{
			ParticipantID: stat.ParticipantID,
			Utterances:    stat.Utterances,
			Interrupts:    stat.Interrupts,
			LastTurn:      stat.LastTurn,
			LastRound:     stat.LastRound,
			LastActiveAt:  formatTimestamp(stat.LastActiveAt),
		})
	}
	return httptransport.GetSpeakerStatsResponse{
		SessionID: sessionID,
		Items:     items,
	}, nil
}

func mapSession(session entities.Session) httptransport.SessionDTO {
	participants := make([]httptransport.ParticipantDTO, 0, len(session.Participants))
	for _, participant := range session.Participants {
		participants = append(participants, httptransport.ParticipantDTO{
			ParticipantID: participant.ParticipantID,
			Name:          participant.Name,
			Archetype:     participant.Archetype,
			Moderator:     participant.Moderator,
			Active:        participant.Active,
			Position:      participant.Position,
		})
	}
	return httptransport.SessionDTO{
		SessionID:        session.SessionID,
		Title:            session.Title,
		TurnMode:         string(session.TurnMode),
		MinRounds:        session.Policy.MinRounds,
		MaxRounds:        session.Policy.MaxRounds,
		PollMode:         session.PollMode,
		Status:           string(session.Status),
		Phase:            string(session.Phase),
		TurnCount:        session.TurnCount,
		ActiveProposalID: session.ActiveProposalID,
		ActivePollID:     session.ActivePollID,
		Participants:     participants,
		CreatedAt:        formatTimestamp(session.CreatedAt),
		UpdatedAt:        formatTimestamp(session.UpdatedAt),
	}
}

func mapTurn(turn entities.Turn) httptransport.TurnDTO {
	return httptransport.TurnDTO{
		TurnID:       turn.TurnID,
		TurnNumber:   turn.TurnNumber,
		Prompt:       turn.Prompt,
		Status:       string(turn.Status),
		CurrentRound: turn.CurrentRound,
		Expected:     turn.Expected,
		StartedAt:    formatTimestamp(turn.StartedAt),
		CompletedAt:  formatTimestamp(turn.CompletedAt),
	}
}

func mapHistoryEntry(entry ports.HistoryEntry) httptransport.HistoryEntryDTO {
	return httptransport.HistoryEntryDTO{
		Role:            entry.Role,
		ParticipantID:   entry.ParticipantID,
		ParticipantName: entry.ParticipantName,
		Content:         entry.Content,
		TurnNumber:      entry.TurnNumber,
		RoundNumber:     entry.RoundNumber,
		Interrupt:       entry.Interrupt,
	}
}

// formatTimestamp renders UTC seconds precision; zero times render empty so
// omitempty drops them.
func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format("2006-01-02T15:04:05Z")
}
