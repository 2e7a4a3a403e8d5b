package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

func (e *engine) mustOpenProposal(t *testing.T, sessionID, text string) entities.Proposal {
	t.Helper()
	proposal, err := e.openProposal.Execute(context.Background(), OpenProposalCommand{SessionID: sessionID, Text: text})
	if err != nil {
		t.Fatalf("open proposal: %v", err)
	}
	return proposal
}

func (e *engine) mustVote(t *testing.T, proposalID, participantID, choice string) entities.Vote {
	t.Helper()
	vote, err := e.castVote.Execute(context.Background(), CastVoteCommand{
		ProposalID: proposalID, ParticipantID: participantID, Choice: choice, Confidence: 0.8,
	})
	if err != nil {
		t.Fatalf("cast vote %s by %s: %v", choice, participantID, err)
	}
	return vote
}

func TestOpenProposalSnapshotsRoster(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2", "p3")

	proposal := e.mustOpenProposal(t, session.SessionID, "Adopt the new process?")
	if len(proposal.Roster) != 3 {
		t.Fatalf("roster snapshot should hold 3 voters, got %v", proposal.Roster)
	}
	if proposal.Status != entities.ProposalStatusOpen {
		t.Fatalf("proposal should open, got %s", proposal.Status)
	}

	got := e.session(t, session.SessionID)
	if got.Phase != entities.PhaseVotePending || got.ActiveProposalID != proposal.ProposalID {
		t.Fatalf("session should enter vote_pending, got phase=%s active=%q", got.Phase, got.ActiveProposalID)
	}
	if count := e.eventCount("vote.opened"); count != 1 {
		t.Fatalf("expected vote.opened event, got %d", count)
	}
}

func TestOpenProposalSingleOpenAtATime(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	first := e.mustOpenProposal(t, session.SessionID, "First question")

	_, err := e.openProposal.Execute(context.Background(), OpenProposalCommand{SessionID: session.SessionID, Text: "Second question"})
	if !errors.Is(err, domainerrors.ErrProposalAlreadyOpen) {
		t.Fatalf("second open proposal: got %v", err)
	}

	if _, err := e.resolve.Execute(context.Background(), ResolveProposalCommand{ProposalID: first.ProposalID}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	e.mustOpenProposal(t, session.SessionID, "Second question")
}

func TestOpenProposalBlockedDuringTurn(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	e.mustStartTurn(t, session.SessionID, "Prompt")

	_, err := e.openProposal.Execute(context.Background(), OpenProposalCommand{SessionID: session.SessionID, Text: "Mid-turn vote?"})
	if !errors.Is(err, domainerrors.ErrPhaseConflict) {
		t.Fatalf("proposal during open turn: got %v", err)
	}
}

func TestCastVoteRevisionPreservesFirstCastTime(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	proposal := e.mustOpenProposal(t, session.SessionID, "Ship it?")

	firstCast := e.clock.now
	e.mustVote(t, proposal.ProposalID, "p1", "agree")
	e.clock.advance(time.Minute)
	e.mustVote(t, proposal.ProposalID, "p1", "disagree")

	votes, err := e.store.ListVotesByProposal(context.Background(), proposal.ProposalID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("revision must overwrite, got %d votes", len(votes))
	}
	vote := votes[0]
	if vote.Choice != entities.VoteDisagree {
		t.Fatalf("latest choice should win, got %s", vote.Choice)
	}
	if !vote.CastAt.Equal(firstCast) {
		t.Fatalf("CastAt should keep the original time, got %v want %v", vote.CastAt, firstCast)
	}
	if !vote.UpdatedAt.Equal(firstCast.Add(time.Minute)) {
		t.Fatalf("UpdatedAt should move with the revision, got %v", vote.UpdatedAt)
	}
}

func TestCastVoteRosterSnapshotExcludesLateJoiners(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	proposal := e.mustOpenProposal(t, session.SessionID, "Ship it?")

	if _, err := e.addParticipant.Execute(context.Background(), AddParticipantCommand{
		SessionID:   session.SessionID,
		Participant: ParticipantInput{ParticipantID: "p3", Name: "Late"},
	}); err != nil {
		t.Fatalf("add participant: %v", err)
	}

	_, err := e.castVote.Execute(context.Background(), CastVoteCommand{
		ProposalID: proposal.ProposalID, ParticipantID: "p3", Choice: "agree",
	})
	if !errors.Is(err, domainerrors.ErrUnknownParticipant) {
		t.Fatalf("late joiner voting: got %v", err)
	}
}

func TestCastVoteValidation(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	proposal := e.mustOpenProposal(t, session.SessionID, "Ship it?")

	if _, err := e.castVote.Execute(context.Background(), CastVoteCommand{
		ProposalID: proposal.ProposalID, ParticipantID: "p1", Choice: "maybe",
	}); !errors.Is(err, domainerrors.ErrInvalidVoteChoice) {
		t.Fatalf("bad choice: got %v", err)
	}
	if _, err := e.castVote.Execute(context.Background(), CastVoteCommand{
		ProposalID: proposal.ProposalID, ParticipantID: "p1", Choice: "agree", Confidence: 1.5,
	}); !errors.Is(err, domainerrors.ErrInvalidConfidence) {
		t.Fatalf("confidence out of range: got %v", err)
	}
	if _, err := e.castVote.Execute(context.Background(), CastVoteCommand{
		ProposalID: "ghost", ParticipantID: "p1", Choice: "agree",
	}); !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("missing proposal: got %v", err)
	}
}

func TestResolveProposalFreezesOutcome(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2", "p3", "p4", "p5")
	proposal := e.mustOpenProposal(t, session.SessionID, "Adopt the plan?")

	e.mustVote(t, proposal.ProposalID, "p1", "agree")
	e.mustVote(t, proposal.ProposalID, "p2", "agree")
	e.mustVote(t, proposal.ProposalID, "p3", "agree")
	e.mustVote(t, proposal.ProposalID, "p4", "disagree")
	e.mustVote(t, proposal.ProposalID, "p5", "abstain")

	result, err := e.resolve.Execute(context.Background(), ResolveProposalCommand{ProposalID: proposal.ProposalID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	tally := result.Tally
	if tally.Agree != 3 || tally.Disagree != 1 || tally.Abstain != 1 || tally.AgreementScore != 0.6 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
	if tally.Majority != entities.VoteAgree || len(tally.Dissenters) != 1 || tally.Dissenters[0] != "p4" {
		t.Fatalf("unexpected majority view: %+v", tally)
	}
	if result.Proposal.Status != entities.ProposalStatusResolved {
		t.Fatalf("proposal should resolve, got %s", result.Proposal.Status)
	}

	got := e.session(t, session.SessionID)
	if got.Phase != entities.PhaseIdle || got.ActiveProposalID != "" {
		t.Fatalf("session should idle after resolution, got phase=%s active=%q", got.Phase, got.ActiveProposalID)
	}

	if _, err := e.castVote.Execute(context.Background(), CastVoteCommand{
		ProposalID: proposal.ProposalID, ParticipantID: "p1", Choice: "disagree",
	}); !errors.Is(err, domainerrors.ErrProposalClosed) {
		t.Fatalf("vote after resolve: got %v", err)
	}
	if _, err := e.resolve.Execute(context.Background(), ResolveProposalCommand{ProposalID: proposal.ProposalID}); !errors.Is(err, domainerrors.ErrProposalClosed) {
		t.Fatalf("double resolve: got %v", err)
	}
}

func TestResolveProposalWithNoVotes(t *testing.T) {
	e := newEngine()
	session := e.mustRoundRobin(t, 1, 2, "p1", "p2")
	proposal := e.mustOpenProposal(t, session.SessionID, "Silence?")

	result, err := e.resolve.Execute(context.Background(), ResolveProposalCommand{ProposalID: proposal.ProposalID})
	if err != nil {
		t.Fatalf("resolving a voteless proposal is allowed: %v", err)
	}
	if result.Tally.TotalVotes != 0 || result.Tally.Majority != "" {
		t.Fatalf("empty tally expected, got %+v", result.Tally)
	}
}
