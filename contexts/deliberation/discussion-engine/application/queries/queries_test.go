package queries

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/deliberation/discussion-engine/application/commands"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

func TestGetTranscriptKeepsRetractedEntries(t *testing.T) {
	h := newHarness()
	session := h.mustRoundRobin(t, 1, 1, "p1", "p2")
	h.mustStartTurn(t, session.SessionID, "Kickoff.")
	draft := h.mustSubmit(t, session.SessionID, "p1", 1, "draft answer")
	if _, err := h.retract.Execute(context.Background(), commands.RetractUtteranceCommand{
		SessionID: session.SessionID, UtteranceID: draft.Utterance.UtteranceID,
	}); err != nil {
		t.Fatalf("retract: %v", err)
	}
	h.mustSubmit(t, session.SessionID, "p1", 1, "final answer")
	h.mustSubmit(t, session.SessionID, "p2", 1, "supporting view")

	result, err := h.transcript.Execute(context.Background(), GetTranscriptQuery{SessionID: session.SessionID})
	if err != nil {
		t.Fatalf("get transcript: %v", err)
	}
	if result.SessionID != session.SessionID || result.Title != "Capacity planning" {
		t.Fatalf("unexpected transcript header: %+v", result)
	}
	if len(result.Turns) != 1 {
		t.Fatalf("expected a single turn, got %+v", result.Turns)
	}
	turn := result.Turns[0]
	if turn.TurnNumber != 1 || turn.Prompt != "Kickoff." || turn.Status != "completed" || turn.Rounds != 1 {
		t.Fatalf("unexpected turn header: %+v", turn)
	}
	if len(turn.Entries) != 3 {
		t.Fatalf("the ledger keeps retracted entries, got %+v", turn.Entries)
	}
	if !turn.Entries[0].Retracted || turn.Entries[0].Content != "draft answer" {
		t.Fatalf("first entry should be the retracted draft, got %+v", turn.Entries[0])
	}
	if turn.Entries[1].Retracted || turn.Entries[1].Content != "final answer" || turn.Entries[1].ParticipantName != "Agent p1" {
		t.Fatalf("the replacement should be live with its name resolved, got %+v", turn.Entries[1])
	}
	if turn.Entries[2].ParticipantID != "p2" {
		t.Fatalf("entries should be ordered by arrival within the round, got %+v", turn.Entries[2])
	}
}

func TestGetTranscriptUnknownSession(t *testing.T) {
	h := newHarness()
	if _, err := h.transcript.Execute(context.Background(), GetTranscriptQuery{SessionID: "disc-404"}); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetSessionReportsOpenTurn(t *testing.T) {
	h := newHarness()
	session := h.mustRoundRobin(t, 1, 2, "p1", "p2")

	result, err := h.getSession.Execute(context.Background(), GetSessionQuery{SessionID: session.SessionID})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if result.HasOpenTurn {
		t.Fatalf("expected no open turn before the first start, got %+v", result.OpenTurn)
	}

	h.mustStartTurn(t, session.SessionID, "Begin.")
	result, err = h.getSession.Execute(context.Background(), GetSessionQuery{SessionID: session.SessionID})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !result.HasOpenTurn || result.OpenTurn.TurnNumber != 1 || result.OpenTurn.CurrentRound != 1 {
		t.Fatalf("expected turn 1 round 1 open, got %+v", result.OpenTurn)
	}
	if result.Session.Phase != entities.PhaseAwaitingResponses {
		t.Fatalf("expected the awaiting phase, got %q", result.Session.Phase)
	}

	if _, err := h.getSession.Execute(context.Background(), GetSessionQuery{SessionID: "disc-404"}); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetTallyRecomputesFromRecordedVotes(t *testing.T) {
	h := newHarness()
	session := h.mustRoundRobin(t, 1, 2, "p1", "p2", "p3", "p4")
	proposal, err := h.openProposal.Execute(context.Background(), commands.OpenProposalCommand{
		SessionID: session.SessionID, Text: "Merge the branches",
	})
	if err != nil {
		t.Fatalf("open proposal: %v", err)
	}
	votes := map[string]string{"p1": "agree", "p2": "agree", "p3": "disagree", "p4": "abstain"}
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		if _, err := h.castVote.Execute(context.Background(), commands.CastVoteCommand{
			ProposalID: proposal.ProposalID, ParticipantID: id, Choice: votes[id], Confidence: 0.7,
		}); err != nil {
			t.Fatalf("cast vote by %s: %v", id, err)
		}
	}

	result, err := h.tally.Execute(context.Background(), GetTallyQuery{ProposalID: proposal.ProposalID})
	if err != nil {
		t.Fatalf("get tally: %v", err)
	}
	tally := result.Tally
	if tally.Agree != 2 || tally.Disagree != 1 || tally.Abstain != 1 || tally.TotalVotes != 4 {
		t.Fatalf("unexpected counts: %+v", tally)
	}
	if tally.AgreementScore != 0.5 {
		t.Fatalf("abstentions count toward the score denominator, got %v", tally.AgreementScore)
	}
	if tally.Majority != entities.VoteAgree {
		t.Fatalf("expected an agree majority, got %q", tally.Majority)
	}
	if len(tally.Dissenters) != 1 || tally.Dissenters[0] != "p3" {
		t.Fatalf("only the losing side dissents, got %+v", tally.Dissenters)
	}
	if result.Proposal.ProposalID != proposal.ProposalID || len(result.Votes) != 4 {
		t.Fatalf("expected the proposal and its votes alongside the tally, got %+v", result)
	}
}

func TestGetTallyUnknownProposal(t *testing.T) {
	h := newHarness()
	if _, err := h.tally.Execute(context.Background(), GetTallyQuery{ProposalID: "disc-404"}); !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestGetPollReportsPhaseProgress(t *testing.T) {
	h := newHarness()
	session := h.mustRoundRobin(t, 1, 2, "p1", "p2")
	poll, err := h.startPoll.Execute(context.Background(), commands.StartPollCommand{
		SessionID: session.SessionID, Question: "Pick the quarter goal",
	})
	if err != nil {
		t.Fatalf("start poll: %v", err)
	}
	h.mustSynthesis(t, poll.PollID, "p1", "Goal A", "Goal B")

	result, err := h.getPoll.Execute(context.Background(), GetPollQuery{PollID: poll.PollID})
	if err != nil {
		t.Fatalf("get poll: %v", err)
	}
	if result.SynthesisSubmitted != 1 || result.Round1Ballots != 0 || result.Round2Ballots != 0 {
		t.Fatalf("unexpected synthesis progress: %+v", result)
	}
	if len(result.Options) != 0 {
		t.Fatalf("options materialize on advancement, got %+v", result.Options)
	}

	h.mustSynthesis(t, poll.PollID, "p2", "Goal C", "Goal D")
	h.mustBallot(t, poll.PollID, "p1", 1, 1, 2, 3, 4)

	result, err = h.getPoll.Execute(context.Background(), GetPollQuery{PollID: poll.PollID})
	if err != nil {
		t.Fatalf("get poll: %v", err)
	}
	if result.Poll.Phase != entities.PollPhaseRound1 || result.Round1Ballots != 1 || result.Round2Ballots != 0 {
		t.Fatalf("unexpected round 1 progress: %+v", result)
	}
	if len(result.Options) != 4 || result.Options[0].Text != "Goal A" || result.Options[0].ProposerID != "p1" {
		t.Fatalf("expected materialized options in roster order, got %+v", result.Options)
	}
}

func TestGetPollResultsOnlyAfterCompletion(t *testing.T) {
	h := newHarness()
	session := h.mustRoundRobin(t, 1, 2, "p1", "p2")
	poll, err := h.startPoll.Execute(context.Background(), commands.StartPollCommand{
		SessionID: session.SessionID, Question: "Which direction?",
	})
	if err != nil {
		t.Fatalf("start poll: %v", err)
	}
	h.mustSynthesis(t, poll.PollID, "p1", "North", "South")
	h.mustSynthesis(t, poll.PollID, "p2", "East", "West")

	if _, err := h.pollResults.Execute(context.Background(), GetPollResultsQuery{PollID: poll.PollID}); !errors.Is(err, domainerrors.ErrPollNotCompleted) {
		t.Fatalf("expected ErrPollNotCompleted before round 2 closes, got %v", err)
	}

	h.mustBallot(t, poll.PollID, "p1", 1, 1, 2, 3, 4)
	h.mustBallot(t, poll.PollID, "p2", 1, 1, 2, 4, 3)
	h.mustBallot(t, poll.PollID, "p1", 2, 1, 2, 3, 4)
	h.mustBallot(t, poll.PollID, "p2", 2, 1, 2, 4, 3)

	result, err := h.pollResults.Execute(context.Background(), GetPollResultsQuery{PollID: poll.PollID})
	if err != nil {
		t.Fatalf("get poll results: %v", err)
	}
	if result.Poll.Phase != entities.PollPhaseCompleted {
		t.Fatalf("expected a completed poll, got %+v", result.Poll)
	}
	majority := result.Results.Majority
	if majority.WinnerOptionID != 1 || majority.WinningShare != 100 || majority.TotalBallots != 2 {
		t.Fatalf("both ballots put option 1 first, got %+v", majority)
	}
	if result.Results.Runoff.WinnerOptionID != 1 || len(result.Results.Runoff.Rounds) != 1 {
		t.Fatalf("an immediate strict majority ends the runoff, got %+v", result.Results.Runoff)
	}
	if len(result.Results.Caucuses) != 1 || result.Results.Caucuses[0].Size != 2 {
		t.Fatalf("distinct rankings regroup by top choice, got %+v", result.Results.Caucuses)
	}
	if len(result.Options) != 4 {
		t.Fatalf("expected the option list alongside results, got %+v", result.Options)
	}
}

func TestGetSpeakerStatsReadsActivityModel(t *testing.T) {
	h := newHarness()
	session := h.mustRoundRobin(t, 1, 2, "p1", "p2")
	activity := ports.UtteranceActivity{
		SessionID:     session.SessionID,
		ParticipantID: "p2",
		TurnNumber:    1,
		RoundNumber:   1,
		OccurredAt:    h.clock.Now(),
	}
	if err := h.store.RecordUtteranceActivity(context.Background(), activity); err != nil {
		t.Fatalf("record activity: %v", err)
	}

	result, err := h.speakers.Execute(context.Background(), GetSpeakerStatsQuery{SessionID: session.SessionID})
	if err != nil {
		t.Fatalf("get speaker stats: %v", err)
	}
	if len(result.Stats) != 1 {
		t.Fatalf("expected one speaker row, got %+v", result.Stats)
	}
	stat := result.Stats[0]
	if stat.ParticipantID != "p2" || stat.Utterances != 1 || stat.LastTurn != 1 || stat.LastRound != 1 {
		t.Fatalf("unexpected speaker stat: %+v", stat)
	}

	if _, err := h.speakers.Execute(context.Background(), GetSpeakerStatsQuery{SessionID: "disc-404"}); !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestListSessionsOrdersByCreation(t *testing.T) {
	h := newHarness()
	first := h.mustRoundRobin(t, 1, 2, "p1", "p2")
	second := h.mustRoundRobin(t, 1, 2, "p1", "p2")

	result, err := h.list.Execute(context.Background())
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(result.Sessions) != 2 {
		t.Fatalf("expected two sessions, got %+v", result.Sessions)
	}
	if result.Sessions[0].SessionID != first.SessionID || result.Sessions[1].SessionID != second.SessionID {
		t.Fatalf("expected creation order, got %+v", result.Sessions)
	}
}
