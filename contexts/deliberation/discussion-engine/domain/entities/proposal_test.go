package entities

import (
	"errors"
	"testing"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

func voteFor(participantID string, choice VoteChoice) Vote {
	return Vote{ProposalID: "prop-1", ParticipantID: participantID, Choice: choice}
}

func TestTallyVotesAgreeMajority(t *testing.T) {
	tally := TallyVotes([]Vote{
		voteFor("p1", VoteAgree),
		voteFor("p2", VoteAgree),
		voteFor("p3", VoteAgree),
		voteFor("p4", VoteDisagree),
		voteFor("p5", VoteAbstain),
	})

	if tally.Agree != 3 || tally.Disagree != 1 || tally.Abstain != 1 || tally.TotalVotes != 5 {
		t.Fatalf("unexpected counts: %+v", tally)
	}
	if tally.AgreementScore != 0.6 {
		t.Fatalf("agreement score counts abstains in the denominator, got %v", tally.AgreementScore)
	}
	if tally.Majority != VoteAgree {
		t.Fatalf("expected agree majority, got %q", tally.Majority)
	}
	if len(tally.Dissenters) != 1 || tally.Dissenters[0] != "p4" {
		t.Fatalf("dissenters are the losing side only, got %v", tally.Dissenters)
	}
}

func TestTallyVotesTieHasNoMajorityAndNoDissenters(t *testing.T) {
	tally := TallyVotes([]Vote{
		voteFor("p1", VoteAgree),
		voteFor("p2", VoteAgree),
		voteFor("p3", VoteDisagree),
		voteFor("p4", VoteDisagree),
		voteFor("p5", VoteAbstain),
	})

	if tally.Majority != "" {
		t.Fatalf("agree/disagree tie must leave majority empty, got %q", tally.Majority)
	}
	if tally.Dissenters != nil {
		t.Fatalf("no majority means no dissenters, got %v", tally.Dissenters)
	}
}

func TestTallyVotesAbstainersAreNeverDissenters(t *testing.T) {
	tally := TallyVotes([]Vote{
		voteFor("p1", VoteDisagree),
		voteFor("p2", VoteDisagree),
		voteFor("p5", VoteAbstain),
		voteFor("p3", VoteAgree),
	})

	if tally.Majority != VoteDisagree {
		t.Fatalf("expected disagree majority, got %q", tally.Majority)
	}
	if len(tally.Dissenters) != 1 || tally.Dissenters[0] != "p3" {
		t.Fatalf("only agree voters dissent against a disagree majority, got %v", tally.Dissenters)
	}
}

func TestTallyVotesSortsDissenters(t *testing.T) {
	tally := TallyVotes([]Vote{
		voteFor("p9", VoteDisagree),
		voteFor("p2", VoteDisagree),
		voteFor("p1", VoteAgree),
		voteFor("p4", VoteAgree),
		voteFor("p5", VoteAgree),
	})
	if len(tally.Dissenters) != 2 || tally.Dissenters[0] != "p2" || tally.Dissenters[1] != "p9" {
		t.Fatalf("dissenters should come back sorted, got %v", tally.Dissenters)
	}
}

func TestTallyVotesEmpty(t *testing.T) {
	tally := TallyVotes(nil)
	if tally.TotalVotes != 0 || tally.AgreementScore != 0 || tally.Majority != "" {
		t.Fatalf("empty tally should be all zero, got %+v", tally)
	}
}

func TestTallyVotesAllAbstain(t *testing.T) {
	tally := TallyVotes([]Vote{voteFor("p1", VoteAbstain), voteFor("p2", VoteAbstain)})
	if tally.AgreementScore != 0 {
		t.Fatalf("all-abstain score should be zero, got %v", tally.AgreementScore)
	}
	if tally.Majority != "" || tally.Dissenters != nil {
		t.Fatalf("all-abstain is a zero-zero tie, got %+v", tally)
	}
}

func TestParseVoteChoiceNormalizes(t *testing.T) {
	choice, err := ParseVoteChoice("  AGREE ")
	if err != nil || choice != VoteAgree {
		t.Fatalf("expected agree, got %q/%v", choice, err)
	}
	if _, err := ParseVoteChoice("maybe"); !errors.Is(err, domainerrors.ErrInvalidVoteChoice) {
		t.Fatalf("unknown choice: got %v", err)
	}
}

func TestProposalEligibleVoterUsesRosterSnapshot(t *testing.T) {
	proposal := Proposal{ProposalID: "prop-1", Roster: []string{"p1", "p2"}}
	if !proposal.EligibleVoter("p2") {
		t.Fatal("p2 is on the snapshot")
	}
	if proposal.EligibleVoter("p3") {
		t.Fatal("p3 joined after opening and must not vote")
	}
}
