package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	discussionengine "agora/contexts/deliberation/discussion-engine"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	httptransport "agora/contexts/deliberation/discussion-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "agora/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	discussion discussionengine.Module
}

func New(discussion discussionengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		discussion: discussion,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /sessions/{session_id}", s.handleGetSession)
	s.mux.HandleFunc("GET /sessions/{session_id}/transcript", s.handleGetTranscript)
	s.mux.HandleFunc("GET /sessions/{session_id}/speakers", s.handleGetSpeakerStats)
	s.mux.HandleFunc("POST /sessions/{session_id}/participants", s.handleAddParticipant)
	s.mux.HandleFunc("POST /sessions/{session_id}/participants/{participant_id}/deactivate", s.handleDeactivateParticipant)
	s.mux.HandleFunc("POST /sessions/{session_id}/moderator", s.handleDesignateModerator)
	s.mux.HandleFunc("POST /sessions/{session_id}/turns", s.handleStartTurn)
	s.mux.HandleFunc("POST /sessions/{session_id}/turns/complete", s.handleCompleteTurn)
	s.mux.HandleFunc("POST /sessions/{session_id}/pause", s.handlePauseSession)
	s.mux.HandleFunc("POST /sessions/{session_id}/resume", s.handleResumeSession)
	s.mux.HandleFunc("POST /sessions/{session_id}/stop", s.handleStopSession)
	s.mux.HandleFunc("POST /sessions/{session_id}/archive", s.handleArchiveSession)
	s.mux.HandleFunc("GET /pending", s.handleListPending)
	s.mux.HandleFunc("POST /submissions", s.handleSubmitUtterance)
	s.mux.HandleFunc("POST /sessions/{session_id}/utterances/{utterance_id}/retract", s.handleRetractUtterance)

	s.mux.HandleFunc("POST /sessions/{session_id}/proposals", s.handleOpenProposal)
	s.mux.HandleFunc("POST /proposals/{proposal_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /proposals/{proposal_id}/tally", s.handleGetTally)
	s.mux.HandleFunc("POST /proposals/{proposal_id}/resolve", s.handleResolveProposal)

	s.mux.HandleFunc("POST /sessions/{session_id}/polls", s.handleStartPoll)
	s.mux.HandleFunc("GET /polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("POST /polls/{poll_id}/synthesis", s.handleSubmitSynthesis)
	s.mux.HandleFunc("POST /polls/{poll_id}/ballots", s.handleCastBallot)
	s.mux.HandleFunc("POST /polls/{poll_id}/advance", s.handleForceAdvancePoll)
	s.mux.HandleFunc("GET /polls/{poll_id}/results", s.handleGetPollResults)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req httptransport.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.CreateSessionHandler(r.Context(), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.ListSessionsHandler(r.Context())
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.GetSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.GetTranscriptHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSpeakerStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.GetSpeakerStatsHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req httptransport.AddParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.AddParticipantHandler(r.Context(), r.PathValue("session_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateParticipant(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.DeactivateParticipantHandler(
		r.Context(),
		r.PathValue("session_id"),
		r.PathValue("participant_id"),
	)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDesignateModerator(w http.ResponseWriter, r *http.Request) {
	var req httptransport.DesignateModeratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.DesignateModeratorHandler(r.Context(), r.PathValue("session_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartTurn(w http.ResponseWriter, r *http.Request) {
	var req httptransport.StartTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.StartTurnHandler(r.Context(), r.PathValue("session_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteTurn(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.CompleteTurnHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.PauseSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.ResumeSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.StopSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArchiveSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.ArchiveSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.ListPendingHandler(r.Context())
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitUtterance(w http.ResponseWriter, r *http.Request) {
	var req httptransport.SubmitUtteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.SubmitUtteranceHandler(
		r.Context(),
		req,
		r.Header.Get("Idempotency-Key"),
	)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetractUtterance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.RetractUtteranceHandler(
		r.Context(),
		r.PathValue("session_id"),
		r.PathValue("utterance_id"),
	)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenProposal(w http.ResponseWriter, r *http.Request) {
	var req httptransport.OpenProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.OpenProposalHandler(r.Context(), r.PathValue("session_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req httptransport.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.CastVoteHandler(r.Context(), r.PathValue("proposal_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.GetTallyHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.ResolveProposalHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartPoll(w http.ResponseWriter, r *http.Request) {
	var req httptransport.StartPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.StartPollHandler(r.Context(), r.PathValue("session_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.GetPollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitSynthesis(w http.ResponseWriter, r *http.Request) {
	var req httptransport.SubmitSynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.SubmitSynthesisHandler(r.Context(), r.PathValue("poll_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	var req httptransport.CastBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDiscussionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.discussion.Handler.CastBallotHandler(r.Context(), r.PathValue("poll_id"), req)
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleForceAdvancePoll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.ForceAdvancePollHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPollResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.discussion.Handler.GetPollResultsHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writeDiscussionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeDiscussionDomainError maps domain sentinels onto the four transport
// statuses: validation 400, conflict 409, state 422, not found 404.
func writeDiscussionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidSessionInput),
		errors.Is(err, domainerrors.ErrInvalidTurnMode),
		errors.Is(err, domainerrors.ErrInvalidRoundPolicy),
		errors.Is(err, domainerrors.ErrInvalidParticipantInput),
		errors.Is(err, domainerrors.ErrParticipantCapExceeded),
		errors.Is(err, domainerrors.ErrInvalidTurnInput),
		errors.Is(err, domainerrors.ErrInvalidSubmission),
		errors.Is(err, domainerrors.ErrUnknownParticipant),
		errors.Is(err, domainerrors.ErrInvalidProposalInput),
		errors.Is(err, domainerrors.ErrInvalidVoteChoice),
		errors.Is(err, domainerrors.ErrInvalidConfidence),
		errors.Is(err, domainerrors.ErrInvalidPollInput),
		errors.Is(err, domainerrors.ErrInvalidSynthesisEntry),
		errors.Is(err, domainerrors.ErrOptionCountOutOfRange),
		errors.Is(err, domainerrors.ErrMalformedRanking),
		errors.Is(err, domainerrors.ErrInvalidBallotRound):
		writeDiscussionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyKeyConflict):
		writeDiscussionError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateParticipant),
		errors.Is(err, domainerrors.ErrDuplicateSubmission),
		errors.Is(err, domainerrors.ErrStaleRound),
		errors.Is(err, domainerrors.ErrProposalAlreadyOpen),
		errors.Is(err, domainerrors.ErrPollAlreadyActive):
		writeDiscussionError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domainerrors.ErrSessionNotActive),
		errors.Is(err, domainerrors.ErrSessionPaused),
		errors.Is(err, domainerrors.ErrInvalidStatusTransition),
		errors.Is(err, domainerrors.ErrPhaseConflict),
		errors.Is(err, domainerrors.ErrTurnAlreadyOpen),
		errors.Is(err, domainerrors.ErrNoOpenTurn),
		errors.Is(err, domainerrors.ErrRoundNotOpen),
		errors.Is(err, domainerrors.ErrRosterEmpty),
		errors.Is(err, domainerrors.ErrMinRoundsNotReached),
		errors.Is(err, domainerrors.ErrParticipantChangesLocked),
		errors.Is(err, domainerrors.ErrUtteranceRoundClosed),
		errors.Is(err, domainerrors.ErrProposalClosed),
		errors.Is(err, domainerrors.ErrPollPhaseClosed),
		errors.Is(err, domainerrors.ErrPollNotCompleted),
		errors.Is(err, domainerrors.ErrNoSynthesisEntries),
		errors.Is(err, domainerrors.ErrNoBallots):
		writeDiscussionError(w, http.StatusUnprocessableEntity, "state_conflict", err.Error())
	case errors.Is(err, domainerrors.ErrSessionNotFound),
		errors.Is(err, domainerrors.ErrParticipantNotFound),
		errors.Is(err, domainerrors.ErrTurnNotFound),
		errors.Is(err, domainerrors.ErrUtteranceNotFound),
		errors.Is(err, domainerrors.ErrProposalNotFound),
		errors.Is(err, domainerrors.ErrPollNotFound):
		writeDiscussionError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeDiscussionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDiscussionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
