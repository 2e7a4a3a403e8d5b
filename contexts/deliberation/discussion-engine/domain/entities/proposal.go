package entities

import (
	"sort"
	"strings"
	"time"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

// VoteChoice is one of the three consensus positions.
type VoteChoice string

const (
	VoteAgree    VoteChoice = "agree"
	VoteDisagree VoteChoice = "disagree"
	VoteAbstain  VoteChoice = "abstain"
)

// ParseVoteChoice normalizes raw input into a choice.
func ParseVoteChoice(raw string) (VoteChoice, error) {
	switch VoteChoice(strings.ToLower(strings.TrimSpace(raw))) {
	case VoteAgree:
		return VoteAgree, nil
	case VoteDisagree:
		return VoteDisagree, nil
	case VoteAbstain:
		return VoteAbstain, nil
	default:
		return "", domainerrors.ErrInvalidVoteChoice
	}
}

// ProposalStatus is the lifecycle of a consensus proposal.
type ProposalStatus string

const (
	ProposalStatusOpen     ProposalStatus = "open"
	ProposalStatusResolved ProposalStatus = "resolved"
)

// Proposal is the single open consensus question of a session. Roster
// snapshots the active participant ids at opening time, so later roster
// changes never shift who may vote.
type Proposal struct {
	ProposalID string
	SessionID  string
	Text       string
	Status     ProposalStatus
	Roster     []string
	OpenedAt   time.Time
	ResolvedAt time.Time
}

// Open reports whether votes are still accepted.
func (p Proposal) Open() bool {
	return p.Status == ProposalStatusOpen
}

// EligibleVoter reports roster membership.
func (p Proposal) EligibleVoter(participantID string) bool {
	for _, id := range p.Roster {
		if id == participantID {
			return true
		}
	}
	return false
}

// Vote is one participant's position on a proposal. Resubmission overwrites.
type Vote struct {
	ProposalID    string
	ParticipantID string
	Choice        VoteChoice
	Confidence    float64
	Reasoning     string
	CastAt        time.Time
	UpdatedAt     time.Time
}

// ConsensusTally is the aggregate view of a proposal's votes. Majority is
// decided strictly between agree and disagree and stays empty on a tie.
// Dissenters are the voters on the losing side of that pair; abstainers are
// counted in the agreement score denominator but are never dissenters.
type ConsensusTally struct {
	Agree          int
	Disagree       int
	Abstain        int
	TotalVotes     int
	AgreementScore float64
	Majority       VoteChoice
	Dissenters     []string
}

// TallyVotes folds the cast votes into a tally. The computation is pure so
// callers may re-run it at any point, before or after resolution, and get
// the same answer for the same votes.
func TallyVotes(votes []Vote) ConsensusTally {
	tally := ConsensusTally{TotalVotes: len(votes)}
	for _, vote := range votes {
		switch vote.Choice {
		case VoteAgree:
			tally.Agree++
		case VoteDisagree:
			tally.Disagree++
		case VoteAbstain:
			tally.Abstain++
		}
	}
	if tally.TotalVotes > 0 {
		tally.AgreementScore = float64(tally.Agree) / float64(tally.TotalVotes)
	}

	switch {
	case tally.Agree > tally.Disagree:
		tally.Majority = VoteAgree
	case tally.Disagree > tally.Agree:
		tally.Majority = VoteDisagree
	default:
		// Tie: no majority, and with no majority there are no dissenters.
		return tally
	}

	losing := VoteDisagree
	if tally.Majority == VoteDisagree {
		losing = VoteAgree
	}
	for _, vote := range votes {
		if vote.Choice == losing {
			tally.Dissenters = append(tally.Dissenters, vote.ParticipantID)
		}
	}
	sort.Strings(tally.Dissenters)
	return tally
}
