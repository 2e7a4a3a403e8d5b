package queries

import (
	"context"
	"log/slog"
	"sort"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	"agora/contexts/deliberation/discussion-engine/ports"
)

// PendingParticipant identifies one participant whose contribution is
// outstanding.
type PendingParticipant struct {
	ParticipantID string
	Name          string
	Archetype     string
}

// SessionWork is one open round waiting on participants, with everything a
// generator needs: the remaining expected set, the full ordered history,
// round metadata, and round-specific instructions.
type SessionWork struct {
	SessionID    string
	Title        string
	TurnMode     string
	TurnNumber   int
	RoundNumber  int
	MinRounds    int
	MaxRounds    int
	Instructions string
	Pending      []PendingParticipant
	History      []ports.HistoryEntry
}

// VoteWork is an open proposal still missing votes.
type VoteWork struct {
	ProposalID    string
	SessionID     string
	Text          string
	PendingVoters []string
}

// PollWork is an active poll phase still missing submissions. Round is zero
// during synthesis.
type PollWork struct {
	PollID              string
	SessionID           string
	Question            string
	Phase               string
	Round               int
	PendingParticipants []string
}

type PendingWork struct {
	Sessions []SessionWork
	Votes    []VoteWork
	Polls    []PollWork
}

type ListPendingUseCase struct {
	Sessions  ports.SessionRepository
	Proposals ports.ProposalRepository
	Polls     ports.PollRepository
	Logger    *slog.Logger
}

// Execute computes everything outstanding across all sessions. It is a
// read-only snapshot: both the in-process responder and out-of-process
// pollers consume this one surface and submit through the same commands.
func (u ListPendingUseCase) Execute(ctx context.Context) (PendingWork, error) {
	logger := application.ResolveLogger(u.Logger)

	sessions, err := u.Sessions.ListSessions(ctx)
	if err != nil {
		logger.Error("list pending failed",
			"event", "list_pending_failed",
			"module", moduleName,
			"layer", "application",
			"error", err.Error(),
		)
		return PendingWork{}, err
	}

	work := PendingWork{}
	for _, session := range sessions {
		if !session.Accepting() {
			continue
		}

		if session.Phase == entities.PhaseAwaitingResponses {
			sessionWork, ok, err := u.collectSessionWork(ctx, session)
			if err != nil {
				return PendingWork{}, err
			}
			if ok {
				work.Sessions = append(work.Sessions, sessionWork)
			}
		}

		if session.ActiveProposalID != "" {
			voteWork, ok, err := u.collectVoteWork(ctx, session)
			if err != nil {
				return PendingWork{}, err
			}
			if ok {
				work.Votes = append(work.Votes, voteWork)
			}
		}

		if session.ActivePollID != "" {
			pollWork, ok, err := u.collectPollWork(ctx, session)
			if err != nil {
				return PendingWork{}, err
			}
			if ok {
				work.Polls = append(work.Polls, pollWork)
			}
		}
	}

	logger.Debug("list pending completed",
		"event", "list_pending_completed",
		"module", moduleName,
		"layer", "application",
		"sessions", len(work.Sessions),
		"votes", len(work.Votes),
		"polls", len(work.Polls),
	)
	return work, nil
}

func (u ListPendingUseCase) collectSessionWork(ctx context.Context, session entities.Session) (SessionWork, bool, error) {
	turn, open, err := u.Sessions.GetOpenTurn(ctx, session.SessionID)
	if err != nil {
		return SessionWork{}, false, err
	}
	if !open || len(turn.Expected) == 0 {
		return SessionWork{}, false, nil
	}

	utterances, err := u.Sessions.ListUtterancesByTurn(ctx, session.SessionID, turn.TurnNumber)
	if err != nil {
		return SessionWork{}, false, err
	}
	submitted := make(map[string]bool, len(turn.Expected))
	for _, utterance := range utterances {
		if utterance.RoundNumber != turn.CurrentRound || utterance.Retracted || utterance.Interrupt {
			continue
		}
		submitted[utterance.ParticipantID] = true
	}

	pending := make([]PendingParticipant, 0, len(turn.Expected))
	for _, id := range turn.Expected {
		if submitted[id] {
			continue
		}
		participant, _ := session.ParticipantByID(id)
		pending = append(pending, PendingParticipant{
			ParticipantID: id,
			Name:          participant.Name,
			Archetype:     participant.Archetype,
		})
	}
	if len(pending) == 0 {
		return SessionWork{}, false, nil
	}

	history, err := u.buildHistory(ctx, session)
	if err != nil {
		return SessionWork{}, false, err
	}
	return SessionWork{
		SessionID:    session.SessionID,
		Title:        session.Title,
		TurnMode:     string(session.TurnMode),
		TurnNumber:   turn.TurnNumber,
		RoundNumber:  turn.CurrentRound,
		MinRounds:    session.Policy.MinRounds,
		MaxRounds:    session.Policy.MaxRounds,
		Instructions: roundInstructions(session.TurnMode, turn.CurrentRound, session.Policy),
		Pending:      pending,
		History:      history,
	}, true, nil
}

func (u ListPendingUseCase) collectVoteWork(ctx context.Context, session entities.Session) (VoteWork, bool, error) {
	proposal, err := u.Proposals.GetProposal(ctx, session.ActiveProposalID)
	if err != nil {
		return VoteWork{}, false, err
	}
	if !proposal.Open() {
		return VoteWork{}, false, nil
	}
	votes, err := u.Proposals.ListVotesByProposal(ctx, proposal.ProposalID)
	if err != nil {
		return VoteWork{}, false, err
	}
	voted := make(map[string]bool, len(votes))
	for _, vote := range votes {
		voted[vote.ParticipantID] = true
	}
	pending := make([]string, 0, len(proposal.Roster))
	for _, id := range proposal.Roster {
		if !voted[id] {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return VoteWork{}, false, nil
	}
	return VoteWork{
		ProposalID:    proposal.ProposalID,
		SessionID:     session.SessionID,
		Text:          proposal.Text,
		PendingVoters: pending,
	}, true, nil
}

func (u ListPendingUseCase) collectPollWork(ctx context.Context, session entities.Session) (PollWork, bool, error) {
	poll, err := u.Polls.GetPoll(ctx, session.ActivePollID)
	if err != nil {
		return PollWork{}, false, err
	}

	acted := make(map[string]bool, len(poll.Roster))
	switch poll.Phase {
	case entities.PollPhaseSynthesis:
		entries, err := u.Polls.ListSynthesisEntries(ctx, poll.PollID)
		if err != nil {
			return PollWork{}, false, err
		}
		for _, entry := range entries {
			acted[entry.ParticipantID] = true
		}
	case entities.PollPhaseRound1, entities.PollPhaseRound2:
		ballots, err := u.Polls.ListBallots(ctx, poll.PollID, poll.VoteRound())
		if err != nil {
			return PollWork{}, false, err
		}
		for _, ballot := range ballots {
			acted[ballot.ParticipantID] = true
		}
	default:
		return PollWork{}, false, nil
	}

	pending := make([]string, 0, len(poll.Roster))
	for _, id := range poll.Roster {
		if !acted[id] {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return PollWork{}, false, nil
	}
	return PollWork{
		PollID:              poll.PollID,
		SessionID:           session.SessionID,
		Question:            poll.Question,
		Phase:               string(poll.Phase),
		Round:               poll.VoteRound(),
		PendingParticipants: pending,
	}, true, nil
}

// buildHistory returns the session's full ordered history: each turn's
// prompt followed by its non-retracted utterances ordered by round, then
// arrival.
func (u ListPendingUseCase) buildHistory(ctx context.Context, session entities.Session) ([]ports.HistoryEntry, error) {
	turns, err := u.Sessions.ListTurns(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	utterances, err := u.Sessions.ListUtterancesBySession(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(session.Participants))
	for _, participant := range session.Participants {
		names[participant.ParticipantID] = participant.Name
	}

	sort.Slice(turns, func(i, j int) bool { return turns[i].TurnNumber < turns[j].TurnNumber })
	sort.Slice(utterances, func(i, j int) bool {
		left, right := utterances[i], utterances[j]
		if left.TurnNumber != right.TurnNumber {
			return left.TurnNumber < right.TurnNumber
		}
		if left.RoundNumber != right.RoundNumber {
			return left.RoundNumber < right.RoundNumber
		}
		return left.CreatedAt.Before(right.CreatedAt)
	})

	history := make([]ports.HistoryEntry, 0, len(turns)+len(utterances))
	index := 0
	for _, turn := range turns {
		history = append(history, ports.HistoryEntry{
			Role:       "user",
			Content:    turn.Prompt,
			TurnNumber: turn.TurnNumber,
		})
		for index < len(utterances) && utterances[index].TurnNumber == turn.TurnNumber {
			utterance := utterances[index]
			index++
			if utterance.Retracted {
				continue
			}
			history = append(history, ports.HistoryEntry{
				Role:            "participant",
				ParticipantID:   utterance.ParticipantID,
				ParticipantName: names[utterance.ParticipantID],
				Content:         utterance.Content,
				TurnNumber:      utterance.TurnNumber,
				RoundNumber:     utterance.RoundNumber,
				Interrupt:       utterance.Interrupt,
			})
		}
	}
	return history, nil
}

// roundInstructions picks the guidance text for a round: an opening
// statement first, replies in the middle, and a synthesis on the final
// round. Moderator mode gets a framing instruction for its opening round.
func roundInstructions(mode entities.TurnMode, round int, policy entities.RoundPolicy) string {
	switch {
	case round <= 1 && mode == entities.TurnModeModerator:
		return "Open the discussion: frame the question and set direction for the panel."
	case round <= 1:
		return "Give your opening position on the prompt."
	case round >= policy.MaxRounds:
		return "This is the final round: synthesize the discussion into your final position."
	default:
		return "Respond to the points other participants raised in the previous round."
	}
}
