package entities

import (
	"strings"
	"time"

	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
)

// SessionStatus is the coarse lifecycle of a discussion session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusArchived  SessionStatus = "archived"
)

// SessionPhase tracks what the session is waiting on right now. Phases move
// forward only; completing a turn, resolving a proposal, or finishing a poll
// resets the session to PhaseIdle so the next turn can begin.
type SessionPhase string

const (
	PhaseIdle              SessionPhase = "not_started"
	PhaseAwaitingResponses SessionPhase = "awaiting_responses"
	PhaseVotePending       SessionPhase = "vote_pending"
	PhasePollSynthesis     SessionPhase = "poll_synthesis"
	PhasePollRound1        SessionPhase = "poll_round1"
	PhasePollRound2        SessionPhase = "poll_round2"
	PhaseCompleted         SessionPhase = "completed"
)

// Participant caps. Poll-capable sessions admit a larger roster because the
// two-round poll flow was designed for bigger panels.
const (
	DefaultParticipantCap  = 5
	PollModeParticipantCap = 21
)

// RoundPolicy bounds how many rounds a turn runs.
type RoundPolicy struct {
	MinRounds int
	MaxRounds int
}

// Validate rejects non-positive or inverted bounds.
func (p RoundPolicy) Validate() error {
	if p.MinRounds < 1 || p.MaxRounds < 1 || p.MinRounds > p.MaxRounds {
		return domainerrors.ErrInvalidRoundPolicy
	}
	return nil
}

// Participant is one member of a session roster. The identity is immutable
// once registered; only the Active and Moderator flags change afterwards.
type Participant struct {
	ParticipantID string
	Name          string
	Archetype     string
	Moderator     bool
	Active        bool
	Position      int
	AddedAt       time.Time
}

// NewParticipant normalizes and validates a roster entry.
func NewParticipant(id, name, archetype string, position int, addedAt time.Time) (Participant, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return Participant{}, domainerrors.ErrInvalidParticipantInput
	}
	return Participant{
		ParticipantID: id,
		Name:          name,
		Archetype:     strings.TrimSpace(archetype),
		Active:        true,
		Position:      position,
		AddedAt:       addedAt.UTC(),
	}, nil
}

// Session is the aggregate root. Every mutating operation runs inside the
// session's critical section, so a single writer observes and advances this
// state at a time.
type Session struct {
	SessionID string
	Title     string
	TurnMode  TurnMode
	Policy    RoundPolicy
	PollMode  bool

	Status SessionStatus
	Phase  SessionPhase

	Participants []Participant

	// TurnCount is the number of turns opened so far; the open turn, when
	// present, carries number TurnCount.
	TurnCount int

	ActiveProposalID string
	ActivePollID     string

	// NextOptionID allocates session-unique monotonic poll option ids.
	NextOptionID int64

	// Exported marks archived sessions already written to cold storage.
	Exported bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession validates inputs and assembles an active session in the idle
// phase. Participants keep their slice order as roster positions.
func NewSession(id, title string, mode TurnMode, policy RoundPolicy, pollMode bool, participants []Participant, now time.Time) (Session, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" || title == "" {
		return Session{}, domainerrors.ErrInvalidSessionInput
	}
	if !mode.Valid() {
		return Session{}, domainerrors.ErrInvalidTurnMode
	}
	if err := policy.Validate(); err != nil {
		return Session{}, err
	}

	session := Session{
		SessionID:    id,
		Title:        title,
		TurnMode:     mode,
		Policy:       policy,
		PollMode:     pollMode,
		Status:       SessionStatusActive,
		Phase:        PhaseIdle,
		NextOptionID: 1,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if len(participants) > session.ParticipantCap() {
		return Session{}, domainerrors.ErrParticipantCapExceeded
	}
	seen := make(map[string]struct{}, len(participants))
	for i, participant := range participants {
		if _, dup := seen[participant.ParticipantID]; dup {
			return Session{}, domainerrors.ErrDuplicateParticipant
		}
		seen[participant.ParticipantID] = struct{}{}
		participant.Position = i
		session.Participants = append(session.Participants, participant)
	}
	return session, nil
}

// ParticipantCap returns the roster limit for this session.
func (s Session) ParticipantCap() int {
	if s.PollMode {
		return PollModeParticipantCap
	}
	return DefaultParticipantCap
}

// ParticipantByID finds a roster entry by identity.
func (s Session) ParticipantByID(id string) (Participant, bool) {
	for _, participant := range s.Participants {
		if participant.ParticipantID == id {
			return participant, true
		}
	}
	return Participant{}, false
}

// ActiveParticipants returns the active roster in position order.
func (s Session) ActiveParticipants() []Participant {
	active := make([]Participant, 0, len(s.Participants))
	for _, participant := range s.Participants {
		if participant.Active {
			active = append(active, participant)
		}
	}
	return active
}

// ActiveParticipantIDs returns the active roster identities in position
// order. Poll and proposal rosters snapshot this slice when they open.
func (s Session) ActiveParticipantIDs() []string {
	active := s.ActiveParticipants()
	ids := make([]string, 0, len(active))
	for _, participant := range active {
		ids = append(ids, participant.ParticipantID)
	}
	return ids
}

// ModeratorID returns the designated moderator, when one exists.
func (s Session) ModeratorID() (string, bool) {
	for _, participant := range s.Participants {
		if participant.Moderator && participant.Active {
			return participant.ParticipantID, true
		}
	}
	return "", false
}

// Accepting reports whether the session takes new submissions at all.
// Paused sessions still accept in-flight responses for the open round.
func (s Session) Accepting() bool {
	return s.Status == SessionStatusActive || s.Status == SessionStatusPaused
}

// TurnStatus is the lifecycle of a single turn.
type TurnStatus string

const (
	TurnStatusOpen      TurnStatus = "open"
	TurnStatusCompleted TurnStatus = "completed"
)

// Turn is one prompt-and-response exchange. CurrentRound and Expected
// describe the round in flight; completed rounds live on as utterances.
type Turn struct {
	TurnID     string
	SessionID  string
	TurnNumber int
	Prompt     string
	Status     TurnStatus

	CurrentRound int
	// Expected is the ordered participant set whose submissions close the
	// current round.
	Expected []string

	// PendingRound holds the next round number when a round completed while
	// the session was paused; resume opens it.
	PendingRound int

	StartedAt   time.Time
	CompletedAt time.Time
}

// Open reports whether the turn still collects responses.
func (t Turn) Open() bool {
	return t.Status == TurnStatusOpen
}

// ExpectedContains reports membership in the current expected set.
func (t Turn) ExpectedContains(participantID string) bool {
	for _, id := range t.Expected {
		if id == participantID {
			return true
		}
	}
	return false
}

// Utterance is one recorded contribution. Interrupt entries are
// supplementary commentary that never consume a response slot. A retracted
// utterance stays in the ledger but no longer counts toward completion.
type Utterance struct {
	UtteranceID   string
	SessionID     string
	TurnNumber    int
	RoundNumber   int
	ParticipantID string
	Content       string
	Interrupt     bool
	Retracted     bool
	CreatedAt     time.Time
}
