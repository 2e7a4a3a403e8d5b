package entities

import (
	"strings"
	"time"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

// PollPhase is the strictly sequential poll state machine. Phases never
// re-enter; advancement happens when the full roster has acted or when an
// operator forces it.
type PollPhase string

const (
	PollPhaseSynthesis PollPhase = "synthesis"
	PollPhaseRound1    PollPhase = "vote_round_1"
	PollPhaseRound2    PollPhase = "vote_round_2"
	PollPhaseCompleted PollPhase = "completed"
)

// Synthesis option bounds per participant.
const (
	MinSynthesisOptions = 2
	MaxSynthesisOptions = 5
)

// TopOptionLimit is how many options survive the round-1 Borda reduction.
const TopOptionLimit = 5

// Poll is a ranked election attached to one session. Roster snapshots the
// active participant ids at start; TopOptionIDs is filled once round 1
// closes.
type Poll struct {
	PollID    string
	SessionID string
	Question  string
	Phase     PollPhase
	Roster    []string

	TopOptionIDs []int64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
}

// EligibleVoter reports roster membership.
func (p Poll) EligibleVoter(participantID string) bool {
	for _, id := range p.Roster {
		if id == participantID {
			return true
		}
	}
	return false
}

// VoteRound maps the current phase onto a ballot round number, zero when
// the poll is not collecting ballots.
func (p Poll) VoteRound() int {
	switch p.Phase {
	case PollPhaseRound1:
		return 1
	case PollPhaseRound2:
		return 2
	default:
		return 0
	}
}

// PollOption is one candidate answer. Option ids are session-unique and
// monotonic so ballots stay unambiguous across successive polls. BordaScore
// is zero until round 1 closes.
type PollOption struct {
	OptionID   int64
	PollID     string
	Text       string
	ProposerID string
	BordaScore int
}

// SynthesisEntry is one participant's framing plus proposed options.
// Exactly one entry per participant; resubmission before advancement
// overwrites.
type SynthesisEntry struct {
	PollID        string
	ParticipantID string
	Framing       string
	Options       []string
	SubmittedAt   time.Time
}

// NewSynthesisEntry validates and normalizes a synthesis submission.
func NewSynthesisEntry(pollID, participantID, framing string, options []string, now time.Time) (SynthesisEntry, error) {
	framing = strings.TrimSpace(framing)
	if framing == "" {
		return SynthesisEntry{}, domainerrors.ErrInvalidSynthesisEntry
	}
	cleaned := make([]string, 0, len(options))
	for _, option := range options {
		if trimmed := strings.TrimSpace(option); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) < MinSynthesisOptions || len(cleaned) > MaxSynthesisOptions {
		return SynthesisEntry{}, domainerrors.ErrOptionCountOutOfRange
	}
	return SynthesisEntry{
		PollID:        pollID,
		ParticipantID: participantID,
		Framing:       framing,
		Options:       cleaned,
		SubmittedAt:   now.UTC(),
	}, nil
}

// RankedOption pairs an option with its 1-indexed rank on a ballot.
type RankedOption struct {
	OptionID int64 `json:"option_id"`
	Rank     int   `json:"rank"`
}

// PollBallot is one participant's complete ranking for a voting round.
// Resubmission overwrites while the round is open.
type PollBallot struct {
	PollID        string
	ParticipantID string
	Round         int
	Ranking       []RankedOption
	CastAt        time.Time
	UpdatedAt     time.Time
}

// TopRemaining returns the highest-ranked option on the ballot that is
// still in the running. The second result is false when every ranked
// option has been eliminated.
func (b PollBallot) TopRemaining(remaining map[int64]bool) (int64, bool) {
	best := int64(0)
	bestRank := 0
	for _, ranked := range b.Ranking {
		if !remaining[ranked.OptionID] {
			continue
		}
		if bestRank == 0 || ranked.Rank < bestRank {
			best = ranked.OptionID
			bestRank = ranked.Rank
		}
	}
	return best, bestRank != 0
}

// ValidateRanking checks that ranking is a permutation of exactly the given
// option ids: every id ranked once, ranks running 1..K with no gaps or
// repeats.
func ValidateRanking(ranking []RankedOption, optionIDs []int64) error {
	if len(ranking) != len(optionIDs) {
		return domainerrors.ErrMalformedRanking
	}
	required := make(map[int64]bool, len(optionIDs))
	for _, id := range optionIDs {
		required[id] = true
	}
	seenOptions := make(map[int64]bool, len(ranking))
	seenRanks := make(map[int]bool, len(ranking))
	for _, ranked := range ranking {
		if !required[ranked.OptionID] || seenOptions[ranked.OptionID] {
			return domainerrors.ErrMalformedRanking
		}
		if ranked.Rank < 1 || ranked.Rank > len(optionIDs) || seenRanks[ranked.Rank] {
			return domainerrors.ErrMalformedRanking
		}
		seenOptions[ranked.OptionID] = true
		seenRanks[ranked.Rank] = true
	}
	return nil
}
