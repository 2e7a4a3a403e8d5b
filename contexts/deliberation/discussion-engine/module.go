package discussionengine

import (
	"log/slog"
	"time"

	httpadapter "agora/contexts/deliberation/discussion-engine/adapters/http"
	"agora/contexts/deliberation/discussion-engine/adapters/memory"
	"agora/contexts/deliberation/discussion-engine/application/commands"
	"agora/contexts/deliberation/discussion-engine/application/queries"
	"agora/contexts/deliberation/discussion-engine/ports"
	"agora/internal/shared/locking"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Sessions       ports.SessionRepository
	Proposals      ports.ProposalRepository
	Polls          ports.PollRepository
	Idempotency    ports.IdempotencyStore
	Stats          ports.SpeakerStatsStore
	Outbox         ports.OutboxWriter
	Locker         ports.SessionLocker
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreateSession: commands.CreateSessionUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			AddParticipant: commands.AddParticipantUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			DeactivateParticipant: commands.DeactivateParticipantUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			DesignateModerator: commands.DesignateModeratorUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			PauseSession: commands.PauseSessionUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			ResumeSession: commands.ResumeSessionUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			StopSession: commands.StopSessionUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			ArchiveSession: commands.ArchiveSessionUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			StartTurn: commands.StartTurnUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			CompleteTurn: commands.CompleteTurnUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			SubmitUtterance: commands.SubmitUtteranceUseCase{
				Sessions:       deps.Sessions,
				Idempotency:    deps.Idempotency,
				Outbox:         deps.Outbox,
				Locker:         deps.Locker,
				Clock:          deps.Clock,
				IDGenerator:    deps.IDGenerator,
				IdempotencyTTL: deps.IdempotencyTTL,
				Logger:         deps.Logger,
			},
			RetractUtterance: commands.RetractUtteranceUseCase{
				Sessions:    deps.Sessions,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			OpenProposal: commands.OpenProposalUseCase{
				Sessions:    deps.Sessions,
				Proposals:   deps.Proposals,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			CastVote: commands.CastVoteUseCase{
				Sessions:    deps.Sessions,
				Proposals:   deps.Proposals,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			ResolveProposal: commands.ResolveProposalUseCase{
				Sessions:    deps.Sessions,
				Proposals:   deps.Proposals,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			StartPoll: commands.StartPollUseCase{
				Sessions:    deps.Sessions,
				Polls:       deps.Polls,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			SubmitSynthesis: commands.SubmitSynthesisUseCase{
				Sessions:    deps.Sessions,
				Polls:       deps.Polls,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			CastBallot: commands.CastBallotUseCase{
				Sessions:    deps.Sessions,
				Polls:       deps.Polls,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			ForceAdvancePoll: commands.ForceAdvancePollUseCase{
				Sessions:    deps.Sessions,
				Polls:       deps.Polls,
				Outbox:      deps.Outbox,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			GetSession: queries.GetSessionUseCase{
				Sessions: deps.Sessions,
				Logger:   deps.Logger,
			},
			ListSessions: queries.ListSessionsUseCase{
				Sessions: deps.Sessions,
				Logger:   deps.Logger,
			},
			GetTranscript: queries.GetTranscriptUseCase{
				Sessions: deps.Sessions,
				Logger:   deps.Logger,
			},
			ListPending: queries.ListPendingUseCase{
				Sessions:  deps.Sessions,
				Proposals: deps.Proposals,
				Polls:     deps.Polls,
				Logger:    deps.Logger,
			},
			GetTally: queries.GetTallyUseCase{
				Proposals: deps.Proposals,
				Logger:    deps.Logger,
			},
			GetPoll: queries.GetPollUseCase{
				Polls:  deps.Polls,
				Logger: deps.Logger,
			},
			GetPollResults: queries.GetPollResultsUseCase{
				Polls:  deps.Polls,
				Logger: deps.Logger,
			},
			GetSpeakerStats: queries.GetSpeakerStatsUseCase{
				Sessions: deps.Sessions,
				Stats:    deps.Stats,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to a single in-memory store. It backs
// tests and DSN-less local runs.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore(logger)
	module := NewModule(Dependencies{
		Sessions:       store,
		Proposals:      store,
		Polls:          store,
		Idempotency:    store,
		Stats:          store,
		Outbox:         store,
		Locker:         locking.NewKeyedMutex(),
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
