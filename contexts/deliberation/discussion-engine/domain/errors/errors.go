package errors

import "errors"

// Validation errors: the request is malformed regardless of current state.
var (
	ErrInvalidSessionInput     = errors.New("session input is invalid")
	ErrInvalidTurnMode         = errors.New("turn mode is not recognized")
	ErrInvalidRoundPolicy      = errors.New("round policy is invalid")
	ErrInvalidParticipantInput = errors.New("participant input is invalid")
	ErrParticipantCapExceeded  = errors.New("participant count exceeds session cap")
	ErrInvalidTurnInput        = errors.New("turn input is invalid")
	ErrInvalidSubmission       = errors.New("submission input is invalid")
	ErrUnknownParticipant      = errors.New("participant is not expected for this action")
	ErrInvalidProposalInput    = errors.New("proposal input is invalid")
	ErrInvalidVoteChoice       = errors.New("vote choice is not recognized")
	ErrInvalidConfidence       = errors.New("vote confidence is outside [0, 1]")
	ErrInvalidPollInput        = errors.New("poll input is invalid")
	ErrInvalidSynthesisEntry   = errors.New("synthesis entry is invalid")
	ErrOptionCountOutOfRange   = errors.New("synthesis entry must carry between 2 and 5 options")
	ErrMalformedRanking        = errors.New("ballot ranking is not a permutation of the required options")
	ErrInvalidBallotRound      = errors.New("ballot round is not recognized")
)

// Conflict errors: the request collides with something already recorded.
var (
	ErrDuplicateParticipant   = errors.New("participant id already registered in session")
	ErrDuplicateSubmission    = errors.New("participant already submitted for this round")
	ErrStaleRound             = errors.New("round already advanced past the targeted round")
	ErrProposalAlreadyOpen    = errors.New("session already has an open proposal")
	ErrPollAlreadyActive      = errors.New("session already has an active poll")
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with different request")
)

// State errors: the request is well formed but the aggregate cannot accept
// it in its current phase or status.
var (
	ErrSessionNotActive         = errors.New("session is not active")
	ErrSessionPaused            = errors.New("session is paused")
	ErrInvalidStatusTransition  = errors.New("session status transition is not allowed")
	ErrPhaseConflict            = errors.New("action is not allowed in the current session phase")
	ErrTurnAlreadyOpen          = errors.New("session already has an open turn")
	ErrNoOpenTurn               = errors.New("session has no open turn")
	ErrRoundNotOpen             = errors.New("targeted round has not been opened")
	ErrRosterEmpty              = errors.New("session has no active participants")
	ErrMinRoundsNotReached      = errors.New("turn has not reached the minimum round count")
	ErrParticipantChangesLocked = errors.New("roster changes are only allowed between turns")
	ErrUtteranceRoundClosed     = errors.New("utterance round is no longer open")
	ErrProposalClosed           = errors.New("proposal is already resolved")
	ErrPollPhaseClosed          = errors.New("action is not valid for the poll's current phase")
	ErrPollNotCompleted         = errors.New("poll has not completed yet")
	ErrNoSynthesisEntries       = errors.New("poll has no synthesis entries to advance with")
	ErrNoBallots                = errors.New("poll round has no ballots to advance with")
)

// Not-found errors.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrParticipantNotFound = errors.New("participant not found in session")
	ErrTurnNotFound        = errors.New("turn not found")
	ErrUtteranceNotFound   = errors.New("utterance not found")
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrPollNotFound        = errors.New("poll not found")
)

// ErrRepositoryInvariantBroke reports storage corruption detected at the
// adapter boundary.
var ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
