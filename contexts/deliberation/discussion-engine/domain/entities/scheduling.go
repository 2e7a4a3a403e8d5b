package entities

// TurnMode names the scheduling strategy a session runs under.
type TurnMode string

const (
	TurnModeRoundRobin TurnMode = "round_robin"
	TurnModeModerator  TurnMode = "moderator"
	TurnModeFreeForm   TurnMode = "free_form"
	TurnModeInterrupt  TurnMode = "interrupt"
	TurnModeParallel   TurnMode = "parallel"
)

// Valid reports whether the mode is one of the five supported strategies.
func (m TurnMode) Valid() bool {
	switch m {
	case TurnModeRoundRobin, TurnModeModerator, TurnModeFreeForm, TurnModeInterrupt, TurnModeParallel:
		return true
	}
	return false
}

// SchedulingPolicy decides which participants a round waits on. Modes are
// strategies behind this interface rather than variants baked into the
// scheduler, so adding a mode never touches the round bookkeeping.
type SchedulingPolicy interface {
	Mode() TurnMode
	// ExpectedSet returns the ordered participant ids whose submissions
	// close the given round.
	ExpectedSet(session Session, roundNumber int) []string
	// AllowsInterrupts reports whether the mode records off-slot
	// submissions as supplementary interruptions instead of rejecting them.
	AllowsInterrupts() bool
}

// InvitationPolicy picks the speakers for moderator-mode rounds after the
// moderator's opening round. It is pluggable so callers can model panels
// where the moderator selects who responds.
type InvitationPolicy interface {
	Invite(session Session, roundNumber int) []string
}

// PolicyFor maps a turn mode to its strategy. Moderator mode receives the
// full-roster invitation policy by default; PolicyWithInvitations overrides
// it.
func PolicyFor(mode TurnMode) SchedulingPolicy {
	return PolicyWithInvitations(mode, fullRosterInvitations{})
}

// PolicyWithInvitations builds the strategy for mode, wiring invitations
// into moderator mode. Other modes ignore the invitation policy.
func PolicyWithInvitations(mode TurnMode, invitations InvitationPolicy) SchedulingPolicy {
	switch mode {
	case TurnModeModerator:
		if invitations == nil {
			invitations = fullRosterInvitations{}
		}
		return moderatorPolicy{invitations: invitations}
	case TurnModeInterrupt:
		return interruptPolicy{}
	default:
		return wholeRosterPolicy{mode: mode}
	}
}

// wholeRosterPolicy covers round_robin, free_form, and parallel: every
// active participant is expected each round. The mode still matters to
// callers, who present slots sequentially or all at once, but completion
// semantics are identical.
type wholeRosterPolicy struct {
	mode TurnMode
}

func (p wholeRosterPolicy) Mode() TurnMode { return p.mode }

func (p wholeRosterPolicy) ExpectedSet(session Session, _ int) []string {
	return session.ActiveParticipantIDs()
}

func (p wholeRosterPolicy) AllowsInterrupts() bool { return false }

// interruptPolicy expects the whole roster but tolerates supplementary
// interruptions on top of consumed slots.
type interruptPolicy struct{}

func (p interruptPolicy) Mode() TurnMode { return TurnModeInterrupt }

func (p interruptPolicy) ExpectedSet(session Session, _ int) []string {
	return session.ActiveParticipantIDs()
}

func (p interruptPolicy) AllowsInterrupts() bool { return true }

// moderatorPolicy expects only the moderator in round one; later rounds ask
// the invitation policy. A session without a designated moderator degrades
// to whole-roster scheduling so the turn can still make progress.
type moderatorPolicy struct {
	invitations InvitationPolicy
}

func (p moderatorPolicy) Mode() TurnMode { return TurnModeModerator }

func (p moderatorPolicy) ExpectedSet(session Session, roundNumber int) []string {
	moderatorID, ok := session.ModeratorID()
	if !ok {
		return session.ActiveParticipantIDs()
	}
	if roundNumber <= 1 {
		return []string{moderatorID}
	}
	return p.invitations.Invite(session, roundNumber)
}

func (p moderatorPolicy) AllowsInterrupts() bool { return false }

// fullRosterInvitations invites every active participant except the
// moderator, who already spoke in the opening round.
type fullRosterInvitations struct{}

func (fullRosterInvitations) Invite(session Session, _ int) []string {
	moderatorID, ok := session.ModeratorID()
	ids := make([]string, 0, len(session.Participants))
	for _, participant := range session.ActiveParticipants() {
		if ok && participant.ParticipantID == moderatorID {
			continue
		}
		ids = append(ids, participant.ParticipantID)
	}
	return ids
}
