package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

type StartPollCommand struct {
	SessionID string
	Question  string
}

type StartPollUseCase struct {
	Sessions    ports.SessionRepository
	Polls       ports.PollRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute opens a poll in the synthesis phase and snapshots the voter
// roster. One active poll per session; the next can start only after this
// one completes.
func (u StartPollUseCase) Execute(ctx context.Context, cmd StartPollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(u.Logger)
	question := strings.TrimSpace(cmd.Question)
	if question == "" {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	release := u.Locker.Acquire(cmd.SessionID)
	defer release()

	session, err := u.Sessions.GetSession(ctx, cmd.SessionID)
	if err != nil {
		return entities.Poll{}, err
	}
	if session.Status != entities.SessionStatusActive {
		return entities.Poll{}, domainerrors.ErrSessionNotActive
	}
	if session.ActivePollID != "" {
		return entities.Poll{}, domainerrors.ErrPollAlreadyActive
	}
	if session.Phase != entities.PhaseIdle {
		return entities.Poll{}, domainerrors.ErrPhaseConflict
	}
	roster := session.ActiveParticipantIDs()
	if len(roster) == 0 {
		return entities.Poll{}, domainerrors.ErrRosterEmpty
	}

	now := clockNow(u.Clock)
	pollID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	poll := entities.Poll{
		PollID:    pollID,
		SessionID: session.SessionID,
		Question:  question,
		Phase:     entities.PollPhaseSynthesis,
		Roster:    roster,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Polls.CreatePoll(ctx, poll); err != nil {
		logger.Error("poll create failed",
			"event", "poll_create_failed",
			"module", moduleName,
			"layer", "application",
			"session_id", session.SessionID,
			"error", err.Error(),
		)
		return entities.Poll{}, err
	}

	session.ActivePollID = poll.PollID
	session.Phase = entities.PhasePollSynthesis
	session.UpdatedAt = now
	if err := u.Sessions.UpdateSession(ctx, session); err != nil {
		return entities.Poll{}, err
	}

	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPollStarted, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"poll_id":    poll.PollID,
	}); err != nil {
		return entities.Poll{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll started",
		"event", "poll_started",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"poll_id", poll.PollID,
		"eligible_voters", len(roster),
	)
	return poll, nil
}

type SubmitSynthesisCommand struct {
	PollID        string
	ParticipantID string
	Framing       string
	Options       []string
}

type SubmitSynthesisResult struct {
	Entry    entities.SynthesisEntry
	Poll     entities.Poll
	Advanced bool
}

type SubmitSynthesisUseCase struct {
	Sessions    ports.SessionRepository
	Polls       ports.PollRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute upserts one participant's framing and options. When the final
// roster member submits, the poll materializes all options with
// session-unique ids and moves to vote round one.
func (u SubmitSynthesisUseCase) Execute(ctx context.Context, cmd SubmitSynthesisCommand) (SubmitSynthesisResult, error) {
	logger := application.ResolveLogger(u.Logger)
	participantID := strings.TrimSpace(cmd.ParticipantID)
	if participantID == "" {
		return SubmitSynthesisResult{}, domainerrors.ErrInvalidParticipantInput
	}

	poll, err := u.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return SubmitSynthesisResult{}, err
	}
	release := u.Locker.Acquire(poll.SessionID)
	defer release()

	poll, err = u.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return SubmitSynthesisResult{}, err
	}
	if poll.Phase != entities.PollPhaseSynthesis {
		return SubmitSynthesisResult{}, domainerrors.ErrPollPhaseClosed
	}
	session, err := u.Sessions.GetSession(ctx, poll.SessionID)
	if err != nil {
		return SubmitSynthesisResult{}, err
	}
	if !session.Accepting() {
		return SubmitSynthesisResult{}, domainerrors.ErrSessionNotActive
	}
	if !poll.EligibleVoter(participantID) {
		return SubmitSynthesisResult{}, domainerrors.ErrUnknownParticipant
	}

	now := clockNow(u.Clock)
	entry, err := entities.NewSynthesisEntry(poll.PollID, participantID, cmd.Framing, cmd.Options, now)
	if err != nil {
		return SubmitSynthesisResult{}, err
	}
	if err := u.Polls.UpsertSynthesisEntry(ctx, entry); err != nil {
		return SubmitSynthesisResult{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPollSynthesis, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"poll_id":        poll.PollID,
		"participant_id": participantID,
	}); err != nil {
		return SubmitSynthesisResult{}, err
	}

	entries, err := u.Polls.ListSynthesisEntries(ctx, poll.PollID)
	if err != nil {
		return SubmitSynthesisResult{}, err
	}
	result := SubmitSynthesisResult{Entry: entry, Poll: poll}
	if len(entries) == len(poll.Roster) {
		deps := pollDeps{Sessions: u.Sessions, Polls: u.Polls, Outbox: u.Outbox, IDGenerator: u.IDGenerator}
		if err := advancePollFromSynthesis(ctx, deps, &session, &poll, entries, now); err != nil {
			return SubmitSynthesisResult{}, err
		}
		result.Poll = poll
		result.Advanced = true
	}

	logger.Info("synthesis entry recorded",
		"event", "poll_synthesis_recorded",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"poll_id", poll.PollID,
		"participant_id", participantID,
		"submitted", len(entries),
		"roster", len(poll.Roster),
		"advanced", result.Advanced,
	)
	return result, nil
}

type CastBallotCommand struct {
	PollID        string
	ParticipantID string
	Round         int
	Ranking       []entities.RankedOption
}

type CastBallotResult struct {
	Ballot   entities.PollBallot
	Poll     entities.Poll
	Advanced bool
}

type CastBallotUseCase struct {
	Sessions    ports.SessionRepository
	Polls       ports.PollRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute upserts a complete ranking for the poll's current voting round.
// The ranking must be a permutation over exactly the round's option set.
// When the final roster member votes, the round closes: round one reduces
// to the top options via Borda scoring, round two freezes the results.
func (u CastBallotUseCase) Execute(ctx context.Context, cmd CastBallotCommand) (CastBallotResult, error) {
	logger := application.ResolveLogger(u.Logger)
	participantID := strings.TrimSpace(cmd.ParticipantID)
	if participantID == "" {
		return CastBallotResult{}, domainerrors.ErrInvalidParticipantInput
	}
	if cmd.Round != 1 && cmd.Round != 2 {
		return CastBallotResult{}, domainerrors.ErrInvalidBallotRound
	}

	poll, err := u.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return CastBallotResult{}, err
	}
	release := u.Locker.Acquire(poll.SessionID)
	defer release()

	poll, err = u.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return CastBallotResult{}, err
	}
	// A ballot for a round the poll has moved past (or not reached) is a
	// phase violation, never silently re-targeted.
	if poll.VoteRound() != cmd.Round {
		return CastBallotResult{}, domainerrors.ErrPollPhaseClosed
	}
	session, err := u.Sessions.GetSession(ctx, poll.SessionID)
	if err != nil {
		return CastBallotResult{}, err
	}
	if !session.Accepting() {
		return CastBallotResult{}, domainerrors.ErrSessionNotActive
	}
	if !poll.EligibleVoter(participantID) {
		return CastBallotResult{}, domainerrors.ErrUnknownParticipant
	}

	required, err := u.requiredOptionIDs(ctx, poll, cmd.Round)
	if err != nil {
		return CastBallotResult{}, err
	}
	if err := entities.ValidateRanking(cmd.Ranking, required); err != nil {
		logger.Warn("ballot rejected as malformed",
			"event", "poll_ballot_malformed",
			"module", moduleName,
			"layer", "application",
			"poll_id", poll.PollID,
			"participant_id", participantID,
			"round", cmd.Round,
		)
		return CastBallotResult{}, err
	}

	now := clockNow(u.Clock)
	ballot := entities.PollBallot{
		PollID:        poll.PollID,
		ParticipantID: participantID,
		Round:         cmd.Round,
		Ranking:       cmd.Ranking,
		CastAt:        now,
		UpdatedAt:     now,
	}
	if err := u.Polls.UpsertBallot(ctx, ballot); err != nil {
		return CastBallotResult{}, err
	}
	if err := appendEvent(ctx, u.Outbox, u.IDGenerator, eventPollVoteReceived, session.SessionID, now, map[string]any{
		"session_id":     session.SessionID,
		"poll_id":        poll.PollID,
		"participant_id": participantID,
		"round":          cmd.Round,
	}); err != nil {
		return CastBallotResult{}, err
	}

	ballots, err := u.Polls.ListBallots(ctx, poll.PollID, cmd.Round)
	if err != nil {
		return CastBallotResult{}, err
	}
	result := CastBallotResult{Ballot: ballot, Poll: poll}
	if len(ballots) == len(poll.Roster) {
		deps := pollDeps{Sessions: u.Sessions, Polls: u.Polls, Outbox: u.Outbox, IDGenerator: u.IDGenerator}
		switch cmd.Round {
		case 1:
			err = advancePollFromRound1(ctx, deps, &session, &poll, ballots, now)
		case 2:
			_, err = advancePollFromRound2(ctx, deps, &session, &poll, ballots, now)
		}
		if err != nil {
			return CastBallotResult{}, err
		}
		result.Poll = poll
		result.Advanced = true
	}

	logger.Info("poll ballot recorded",
		"event", "poll_ballot_recorded",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"poll_id", poll.PollID,
		"participant_id", participantID,
		"round", cmd.Round,
		"cast", len(ballots),
		"roster", len(poll.Roster),
		"advanced", result.Advanced,
	)
	return result, nil
}

func (u CastBallotUseCase) requiredOptionIDs(ctx context.Context, poll entities.Poll, round int) ([]int64, error) {
	if round == 2 {
		return poll.TopOptionIDs, nil
	}
	options, err := u.Polls.ListOptions(ctx, poll.PollID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(options))
	for _, option := range options {
		ids = append(ids, option.OptionID)
	}
	return ids, nil
}

type ForceAdvancePollCommand struct {
	PollID string
}

type ForceAdvancePollResult struct {
	Poll        entities.Poll
	PhaseBefore entities.PollPhase
	PhaseAfter  entities.PollPhase
}

type ForceAdvancePollUseCase struct {
	Sessions    ports.SessionRepository
	Polls       ports.PollRepository
	Outbox      ports.OutboxWriter
	Locker      ports.SessionLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute is the operator escape hatch: it closes the current phase with
// whatever submissions exist instead of waiting for the full roster. It
// refuses to advance an empty phase, and it is not a timer; timeout policy
// lives outside the engine.
func (u ForceAdvancePollUseCase) Execute(ctx context.Context, cmd ForceAdvancePollCommand) (ForceAdvancePollResult, error) {
	logger := application.ResolveLogger(u.Logger)
	poll, err := u.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return ForceAdvancePollResult{}, err
	}
	release := u.Locker.Acquire(poll.SessionID)
	defer release()

	poll, err = u.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return ForceAdvancePollResult{}, err
	}
	session, err := u.Sessions.GetSession(ctx, poll.SessionID)
	if err != nil {
		return ForceAdvancePollResult{}, err
	}

	now := clockNow(u.Clock)
	before := poll.Phase
	deps := pollDeps{Sessions: u.Sessions, Polls: u.Polls, Outbox: u.Outbox, IDGenerator: u.IDGenerator}

	switch poll.Phase {
	case entities.PollPhaseSynthesis:
		entries, err := u.Polls.ListSynthesisEntries(ctx, poll.PollID)
		if err != nil {
			return ForceAdvancePollResult{}, err
		}
		if len(entries) == 0 {
			return ForceAdvancePollResult{}, domainerrors.ErrNoSynthesisEntries
		}
		if err := advancePollFromSynthesis(ctx, deps, &session, &poll, entries, now); err != nil {
			return ForceAdvancePollResult{}, err
		}
	case entities.PollPhaseRound1:
		ballots, err := u.Polls.ListBallots(ctx, poll.PollID, 1)
		if err != nil {
			return ForceAdvancePollResult{}, err
		}
		if len(ballots) == 0 {
			return ForceAdvancePollResult{}, domainerrors.ErrNoBallots
		}
		if err := advancePollFromRound1(ctx, deps, &session, &poll, ballots, now); err != nil {
			return ForceAdvancePollResult{}, err
		}
	case entities.PollPhaseRound2:
		ballots, err := u.Polls.ListBallots(ctx, poll.PollID, 2)
		if err != nil {
			return ForceAdvancePollResult{}, err
		}
		if len(ballots) == 0 {
			return ForceAdvancePollResult{}, domainerrors.ErrNoBallots
		}
		if _, err := advancePollFromRound2(ctx, deps, &session, &poll, ballots, now); err != nil {
			return ForceAdvancePollResult{}, err
		}
	default:
		return ForceAdvancePollResult{}, domainerrors.ErrPollPhaseClosed
	}

	logger.Info("poll force advanced",
		"event", "poll_force_advanced",
		"module", moduleName,
		"layer", "application",
		"session_id", session.SessionID,
		"poll_id", poll.PollID,
		"phase_before", string(before),
		"phase_after", string(poll.Phase),
	)
	return ForceAdvancePollResult{Poll: poll, PhaseBefore: before, PhaseAfter: poll.Phase}, nil
}

// pollDeps bundles the ports the shared phase-advancement helpers write
// through.
type pollDeps struct {
	Sessions    ports.SessionRepository
	Polls       ports.PollRepository
	Outbox      ports.OutboxWriter
	IDGenerator ports.IDGenerator
}

// advancePollFromSynthesis materializes every submitted option with a
// session-unique monotonic id, in roster order of proposer, and opens vote
// round one.
func advancePollFromSynthesis(ctx context.Context, deps pollDeps, session *entities.Session, poll *entities.Poll, entries []entities.SynthesisEntry, now time.Time) error {
	byParticipant := make(map[string]entities.SynthesisEntry, len(entries))
	for _, entry := range entries {
		byParticipant[entry.ParticipantID] = entry
	}

	options := make([]entities.PollOption, 0, len(entries)*entities.MaxSynthesisOptions)
	for _, participantID := range poll.Roster {
		entry, ok := byParticipant[participantID]
		if !ok {
			continue
		}
		for _, text := range entry.Options {
			options = append(options, entities.PollOption{
				OptionID:   session.NextOptionID,
				PollID:     poll.PollID,
				Text:       text,
				ProposerID: participantID,
			})
			session.NextOptionID++
		}
	}
	if err := deps.Polls.CreateOptions(ctx, options); err != nil {
		return err
	}

	poll.Phase = entities.PollPhaseRound1
	poll.UpdatedAt = now
	if err := deps.Polls.UpdatePoll(ctx, *poll); err != nil {
		return err
	}
	session.Phase = entities.PhasePollRound1
	session.UpdatedAt = now
	if err := deps.Sessions.UpdateSession(ctx, *session); err != nil {
		return err
	}
	return appendPollPhaseEvents(ctx, deps, *session, *poll, now)
}

// advancePollFromRound1 Borda-scores every option from the round-1 ballots,
// persists the scores, selects the top options, and opens round two.
func advancePollFromRound1(ctx context.Context, deps pollDeps, session *entities.Session, poll *entities.Poll, ballots []entities.PollBallot, now time.Time) error {
	options, err := deps.Polls.ListOptions(ctx, poll.PollID)
	if err != nil {
		return err
	}
	optionIDs := make([]int64, 0, len(options))
	for _, option := range options {
		optionIDs = append(optionIDs, option.OptionID)
	}

	scores := entities.ComputeBordaScores(ballots, optionIDs)
	if err := deps.Polls.SetOptionScores(ctx, poll.PollID, scores); err != nil {
		return err
	}

	poll.TopOptionIDs = entities.SelectTopOptions(scores, entities.TopOptionLimit)
	poll.Phase = entities.PollPhaseRound2
	poll.UpdatedAt = now
	if err := deps.Polls.UpdatePoll(ctx, *poll); err != nil {
		return err
	}
	session.Phase = entities.PhasePollRound2
	session.UpdatedAt = now
	if err := deps.Sessions.UpdateSession(ctx, *session); err != nil {
		return err
	}
	return appendPollPhaseEvents(ctx, deps, *session, *poll, now)
}

// advancePollFromRound2 computes the three result lenses from the round-2
// ballots, freezes them, and completes the poll. Round-1 Borda scores come
// back off the stored options to break elimination ties.
func advancePollFromRound2(ctx context.Context, deps pollDeps, session *entities.Session, poll *entities.Poll, ballots []entities.PollBallot, now time.Time) (entities.PollResults, error) {
	options, err := deps.Polls.ListOptions(ctx, poll.PollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	bordaScores := make(map[int64]int, len(options))
	for _, option := range options {
		bordaScores[option.OptionID] = option.BordaScore
	}

	results := entities.ComputePollResults(ballots, poll.TopOptionIDs, bordaScores)
	if err := deps.Polls.SavePollResults(ctx, poll.PollID, results); err != nil {
		return entities.PollResults{}, err
	}

	poll.Phase = entities.PollPhaseCompleted
	poll.UpdatedAt = now
	poll.CompletedAt = now
	if err := deps.Polls.UpdatePoll(ctx, *poll); err != nil {
		return entities.PollResults{}, err
	}
	session.ActivePollID = ""
	session.Phase = entities.PhaseIdle
	session.UpdatedAt = now
	if err := deps.Sessions.UpdateSession(ctx, *session); err != nil {
		return entities.PollResults{}, err
	}

	if err := appendEvent(ctx, deps.Outbox, deps.IDGenerator, eventPollCompleted, session.SessionID, now, map[string]any{
		"session_id":       session.SessionID,
		"poll_id":          poll.PollID,
		"winner_option_id": results.Runoff.WinnerOptionID,
	}); err != nil {
		return entities.PollResults{}, err
	}
	if err := appendEvent(ctx, deps.Outbox, deps.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	}); err != nil {
		return entities.PollResults{}, err
	}
	return results, nil
}

func appendPollPhaseEvents(ctx context.Context, deps pollDeps, session entities.Session, poll entities.Poll, now time.Time) error {
	if err := appendEvent(ctx, deps.Outbox, deps.IDGenerator, eventPollPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"poll_id":    poll.PollID,
		"phase":      string(poll.Phase),
	}); err != nil {
		return err
	}
	return appendEvent(ctx, deps.Outbox, deps.IDGenerator, eventPhaseChanged, session.SessionID, now, map[string]any{
		"session_id": session.SessionID,
		"phase":      string(session.Phase),
	})
}
