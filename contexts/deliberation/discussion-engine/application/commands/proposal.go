package commands

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type OpenProposalCommand struct {
	SessionID string
	Text      string
}

type OpenProposalUseCase struct {
	Sessions    ports.SessionRepository
	Proposals   ports.ProposalRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute opens the session's single consensus proposal and snapshots the
// eligible voter roster. A second open proposal is rejected until the first
// resolves.
func (u OpenProposalUseCase) Execute(ctx context.Context, cmd OpenProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(u.Logger)
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}

	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if session.Status != entities.SessionStatusActive {
		return entities.Proposal{}, domainerrors.ErrSessionNotActive
	}
	if session.ActiveProposalID != "" {
		return entities.Proposal{}, domainerrors.ErrProposalAlreadyOpen
	}
	if session.Phase != entities.PhaseIdle {
		return entities.Proposal{}, domainerrors.ErrPhaseConflict
	}
	roster := session.ActiveParticipantIDs()
	if len(roster) == 0 {
		return entities.Proposal{}, domainerrors.ErrRosterEmpty
	}

	now := clockNow(u.Clock)
	proposalID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	proposal := entities.Proposal{
		ProposalID: proposalID,
		SessionID:  session.SessionID,
		Text:       text,
		Status:     entities.ProposalStatusOpen,
		Roster:     roster,
		OpenedAt:   now,
	}
	if err := u.Proposals.CreateProposal(ctx, proposal); err != nil {
		logger.Error("proposal create failed",
			"event", "proposal_create_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", session.SessionID,
			"error", err.Error(),
		)
		return entities.Proposal{}, err
	}

	session.ActiveProposalID = proposal.ProposalID
	session.Phase = entities.PhaseVotePending
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Proposal{}, err
	}

	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventVoteOpened, session.SessionID, now, map[string]any{
		"session_id":  session.SessionID,
		"proposal_id": proposal.ProposalID,
	}); err != nil {
		return entities.Proposal{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal opened",
		"event", "proposal_opened",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"proposal_id", proposal.ProposalID,
		"eligible_voters", len(roster),
	)
	return proposal, nil
}

type CastVoteCommand struct {
	ProposalID    string
	ParticipantID string
	Choice        string
	Confidence    float64
	Reasoning     string
}

type CastVoteUseCase struct {
	Sessions    ports.SessionRepository
	Proposals   ports.ProposalRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute upserts one participant's position. Later casts overwrite earlier
// ones until the proposal resolves.
func (u CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(u.Logger)
	choice, err := entities.ParseVoteChoice(cmd.Choice)
	if err != nil {
		return entities.Vote{}, err
	}
	if cmd.Confidence < 0 || cmd.Confidence > 1 {
		return entities.Vote{}, domainerrors.ErrInvalidConfidence
	}
	participantID := strings.TrimSpace(cmd.ParticipantID)
	if participantID == "" {
		return entities.Vote{}, domainerrors.ErrInvalidParticipantInput
	}

	// Resolve the owning session before locking; the mapping is immutable.
	proposal, err := u.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return entities.Vote{}, err
	}
	release := u.Locker.Acquire(proposal.SessionID)
	defer release()

	proposal, err = u.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !proposal.Open() {
		return entities.Vote{}, domainerrors.ErrProposalClosed
	}
	session, err := u.Sessions.GetSession(ctx, proposal.SessionID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !session.Accepting() {
		return entities.Vote{}, domainerrors.ErrSessionNotActive
	}
	if !proposal.EligibleVoter(participantID) {
		return entities.Vote{}, domainerrors.ErrUnknownParticipant
	}

	now := clockNow(u.Clock)
	vote := entities.Vote{
		ProposalID:    proposal.ProposalID,
		ParticipantID: participantID,
		Choice:        choice,
		Confidence:    cmd.Confidence,
		Reasoning:     strings.TrimSpace(cmd.Reasoning),
		CastAt:        now,
		UpdatedAt:     now,
	}
	if err := u.Proposals.UpsertVote(ctx, vote); err != nil {
		logger.Error("vote upsert failed",
			"event", "vote_upsert_failed",
			"module", moduleName,
			"layer", "application",
			"proposal_id", proposal.ProposalID,
			"participant_id", participantID,
			"error", err.Error(),
		)
		return entities.Vote{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventVoteCast, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"proposal_id":    proposal.ProposalID,
		"participant_id": participantID,
	}); err != nil {
		return entities.Vote{}, err
	}

	logger.Info("vote cast",
		"event", "vote_cast",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"proposal_id", proposal.ProposalID,
		"participant_id", participantID,
		"choice", string(choice),
	)
	return vote, nil
}

type ResolveProposalCommand struct {
	ProposalID string
}

type ResolveProposalResult struct {
	Proposal entities.Proposal
	Tally    entities.ConsensusTally
}

type ResolveProposalUseCase struct {
	Sessions    ports.SessionRepository
	Proposals   ports.ProposalRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute freezes the proposal. Resolution is caller-driven; the engine
// never auto-closes a vote. Subsequent casts fail with ProposalClosed.
func (u ResolveProposalUseCase) Execute(ctx context.Context, cmd ResolveProposalCommand) (ResolveProposalResult, error) {
	logger := application.ResolveLogger(u.Logger)
	proposal, err := u.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return ResolveProposalResult{}, err
	}
	release := u.Locker.Acquire(proposal.SessionID)
	defer release()

	proposal, err = u.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return ResolveProposalResult{}, err
	}
	if !proposal.Open() {
		return ResolveProposalResult{}, domainerrors.ErrProposalClosed
	}
	session, err := u.Sessions.GetSession(ctx, proposal.SessionID)
	if err != nil {
		return ResolveProposalResult{}, err
	}

	votes, err := u.Proposals.ListVotesByProposal(ctx, proposal.ProposalID)
	if err != nil {
		return ResolveProposalResult{}, err
	}
	tally := entities.TallyVotes(votes)

	now := clockNow(u.Clock)
	proposal.Status = entities.ProposalStatusResolved
	proposal.ResolvedAt = now
	if err := u.Proposals.UpdateProposal(ctx, proposal); err != nil {
		return ResolveProposalResult{}, err
	}

	session.ActiveProposalID = ""
	if session.Phase == entities.PhaseVotePending {
		session.Phase = entities.PhaseIdle
	}
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return ResolveProposalResult{}, err
	}

	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventVoteResolved, session.SessionID, now, map[string]any{
		"session_id":  session.SessionID,
		"proposal_id": proposal.ProposalID,
		"agree":       tally.Agree,
		"disagree":    tally.Disagree,
		"abstain":     tally.Abstain,
	}); err != nil {
		return ResolveProposalResult{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return ResolveProposalResult{}, err
	}

	logger.Info("proposal resolved",
		"event", "proposal_resolved",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"proposal_id", proposal.ProposalID,
		"agree", tally.Agree,
		"disagree", tally.Disagree,
		"abstain", tally.Abstain,
	)
	return ResolveProposalResult{Proposal: proposal, Tally: tally}, nil
}
