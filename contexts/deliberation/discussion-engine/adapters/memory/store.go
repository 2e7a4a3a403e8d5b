package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	application "agora/contexts/deliberation/discussion-engine/application"
	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"
	"agora/contexts/deliberation/discussion-engine/ports"
)

// Store is an in-memory adapter implementing the engine's persistence ports
// for local runtime and tests. It is not intended as production persistence.
type Store struct {
	mu             sync.RWMutex
	sessions       map[string]entities.Session
	turns          map[string]entities.Turn
	utterances     map[string]entities.Utterance
	utteranceOrder map[string][]string
	proposals      map[string]entities.Proposal
	votes          map[string]map[string]entities.Vote
	polls          map[string]entities.Poll
	synthesis      map[string]map[string]entities.SynthesisEntry
	options        map[string][]entities.PollOption
	ballots        map[string]map[int]map[string]entities.PollBallot
	pollResults    map[string]entities.PollResults
	stats          map[string]map[string]ports.SpeakerStat
	idempotency    map[string]ports.IdempotencyRecord
	outbox         map[string]ports.OutboxMessage
	outboxOrder    []string
	outboxSent     map[string]time.Time
	eventDedup     map[string]string
	sequence       uint64
	logger         *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		sessions:       make(map[string]entities.Session),
		turns:          make(map[string]entities.Turn),
		utterances:     make(map[string]entities.Utterance),
		utteranceOrder: make(map[string][]string),
		proposals:      make(map[string]entities.Proposal),
		votes:          make(map[string]map[string]entities.Vote),
		polls:          make(map[string]entities.Poll),
		synthesis:      make(map[string]map[string]entities.SynthesisEntry),
		options:        make(map[string][]entities.PollOption),
		ballots:        make(map[string]map[int]map[string]entities.PollBallot),
		pollResults:    make(map[string]entities.PollResults),
		stats:          make(map[string]map[string]ports.SpeakerStat),
		idempotency:    make(map[string]ports.IdempotencyRecord),
		outbox:         make(map[string]ports.OutboxMessage),
		outboxOrder:    make([]string, 0),
		outboxSent:     make(map[string]time.Time),
		eventDedup:     make(map[string]string),
		logger:         application.ResolveLogger(logger),
	}
}

func (s *Store) CreateSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.SessionID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.sessions[session.SessionID] = copySession(session)

	s.logger.Debug("session persisted in memory store",
		"event", "memory_create_session",
		"module", "deliberation/discussion-engine",
		"layer", "adapter",
		"session_id", session.SessionID,
	)
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return copySession(session), nil
}

// UpdateSession writes the session's scalar state; the stored roster is
// kept as is per the port contract.
func (s *Store) UpdateSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.SessionID]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	next := copySession(session)
	next.Participants = stored.Participants
	s.sessions[session.SessionID] = next
	return nil
}

func (s *Store) ListSessions(_ context.Context) ([]entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, copySession(session))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].SessionID < result[j].SessionID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) AddParticipant(_ context.Context, sessionID string, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	for _, existing := range session.Participants {
		if existing.ParticipantID == participant.ParticipantID {
			return domainerrors.ErrDuplicateParticipant
		}
	}
	session.Participants = append(append([]entities.Participant(nil), session.Participants...), participant)
	s.sessions[sessionID] = session
	return nil
}

func (s *Store) UpdateParticipant(_ context.Context, sessionID string, participant entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	roster := append([]entities.Participant(nil), session.Participants...)
	for i, existing := range roster {
		if existing.ParticipantID == participant.ParticipantID {
			roster[i] = participant
			session.Participants = roster
			s.sessions[sessionID] = session
			return nil
		}
	}
	return domainerrors.ErrParticipantNotFound
}

func (s *Store) CreateTurn(_ context.Context, turn entities.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[turn.TurnID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.turns[turn.TurnID] = copyTurn(turn)
	return nil
}

func (s *Store) UpdateTurn(_ context.Context, turn entities.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[turn.TurnID]; !ok {
		return domainerrors.ErrTurnNotFound
	}
	s.turns[turn.TurnID] = copyTurn(turn)
	return nil
}

func (s *Store) GetOpenTurn(_ context.Context, sessionID string) (entities.Turn, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var open entities.Turn
	found := false
	for _, turn := range s.turns {
		if turn.SessionID != sessionID || !turn.Open() {
			continue
		}
		if found {
			return entities.Turn{}, false, domainerrors.ErrRepositoryInvariantBroke
		}
		open = turn
		found = true
	}
	if !found {
		return entities.Turn{}, false, nil
	}
	return copyTurn(open), true, nil
}

func (s *Store) ListTurns(_ context.Context, sessionID string) ([]entities.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Turn, 0)
	for _, turn := range s.turns {
		if turn.SessionID == sessionID {
			result = append(result, copyTurn(turn))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TurnNumber < result[j].TurnNumber
	})
	return result, nil
}

func (s *Store) AppendUtterance(_ context.Context, utterance entities.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.utterances[utterance.UtteranceID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.utterances[utterance.UtteranceID] = utterance
	s.utteranceOrder[utterance.SessionID] = append(s.utteranceOrder[utterance.SessionID], utterance.UtteranceID)
	return nil
}

func (s *Store) GetUtterance(_ context.Context, utteranceID string) (entities.Utterance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	utterance, ok := s.utterances[utteranceID]
	if !ok {
		return entities.Utterance{}, domainerrors.ErrUtteranceNotFound
	}
	return utterance, nil
}

func (s *Store) GetUtteranceByIdentity(
	_ context.Context,
	sessionID string,
	turnNumber, roundNumber int,
	participantID string,
) (entities.Utterance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.utteranceOrder[sessionID] {
		utterance := s.utterances[id]
		if utterance.TurnNumber != turnNumber || utterance.RoundNumber != roundNumber {
			continue
		}
		if utterance.ParticipantID != participantID {
			continue
		}
		if utterance.Retracted || utterance.Interrupt {
			continue
		}
		return utterance, true, nil
	}
	return entities.Utterance{}, false, nil
}

func (s *Store) MarkUtteranceRetracted(_ context.Context, utteranceID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	utterance, ok := s.utterances[utteranceID]
	if !ok {
		return domainerrors.ErrUtteranceNotFound
	}
	utterance.Retracted = true
	s.utterances[utteranceID] = utterance
	return nil
}

func (s *Store) ListUtterancesByTurn(_ context.Context, sessionID string, turnNumber int) ([]entities.Utterance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Utterance, 0)
	for _, id := range s.utteranceOrder[sessionID] {
		utterance := s.utterances[id]
		if utterance.TurnNumber == turnNumber {
			result = append(result, utterance)
		}
	}
	return result, nil
}

func (s *Store) ListUtterancesBySession(_ context.Context, sessionID string) ([]entities.Utterance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := s.utteranceOrder[sessionID]
	result := make([]entities.Utterance, 0, len(order))
	for _, id := range order {
		result = append(result, s.utterances[id])
	}
	return result, nil
}

func (s *Store) CreateProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ProposalID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.proposals[proposal.ProposalID] = copyProposal(proposal)
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return copyProposal(proposal), nil
}

func (s *Store) UpdateProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ProposalID]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.proposals[proposal.ProposalID] = copyProposal(proposal)
	return nil
}

// UpsertVote overwrites a participant's prior vote; the original CastAt is
// kept so the record shows when the voter first weighed in.
func (s *Store) UpsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byParticipant, ok := s.votes[vote.ProposalID]
	if !ok {
		byParticipant = make(map[string]entities.Vote)
		s.votes[vote.ProposalID] = byParticipant
	}
	if existing, ok := byParticipant[vote.ParticipantID]; ok {
		vote.CastAt = existing.CastAt
	}
	byParticipant[vote.ParticipantID] = vote
	return nil
}

func (s *Store) ListVotesByProposal(_ context.Context, proposalID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byParticipant := s.votes[proposalID]
	result := make([]entities.Vote, 0, len(byParticipant))
	for _, vote := range byParticipant {
		result = append(result, vote)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

func (s *Store) CreatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[poll.PollID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.polls[poll.PollID] = copyPoll(poll)
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return copyPoll(poll), nil
}

func (s *Store) UpdatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[poll.PollID]; !ok {
		return domainerrors.ErrPollNotFound
	}
	s.polls[poll.PollID] = copyPoll(poll)
	return nil
}

func (s *Store) UpsertSynthesisEntry(_ context.Context, entry entities.SynthesisEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byParticipant, ok := s.synthesis[entry.PollID]
	if !ok {
		byParticipant = make(map[string]entities.SynthesisEntry)
		s.synthesis[entry.PollID] = byParticipant
	}
	entry.Options = append([]string(nil), entry.Options...)
	byParticipant[entry.ParticipantID] = entry
	return nil
}

func (s *Store) ListSynthesisEntries(_ context.Context, pollID string) ([]entities.SynthesisEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byParticipant := s.synthesis[pollID]
	result := make([]entities.SynthesisEntry, 0, len(byParticipant))
	for _, entry := range byParticipant {
		entry.Options = append([]string(nil), entry.Options...)
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

func (s *Store) CreateOptions(_ context.Context, options []entities.PollOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, option := range options {
		existing := s.options[option.PollID]
		for _, prior := range existing {
			if prior.OptionID == option.OptionID {
				return domainerrors.ErrRepositoryInvariantBroke
			}
		}
		s.options[option.PollID] = append(existing, option)
	}
	return nil
}

func (s *Store) SetOptionScores(_ context.Context, pollID string, scores map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	options := s.options[pollID]
	for i, option := range options {
		if score, ok := scores[option.OptionID]; ok {
			options[i].BordaScore = score
		}
	}
	return nil
}

func (s *Store) ListOptions(_ context.Context, pollID string) ([]entities.PollOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := append([]entities.PollOption(nil), s.options[pollID]...)
	sort.Slice(result, func(i, j int) bool {
		return result[i].OptionID < result[j].OptionID
	})
	return result, nil
}

// UpsertBallot overwrites a participant's prior ballot for the round; the
// original CastAt is kept, mirroring UpsertVote.
func (s *Store) UpsertBallot(_ context.Context, ballot entities.PollBallot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byRound, ok := s.ballots[ballot.PollID]
	if !ok {
		byRound = make(map[int]map[string]entities.PollBallot)
		s.ballots[ballot.PollID] = byRound
	}
	byParticipant, ok := byRound[ballot.Round]
	if !ok {
		byParticipant = make(map[string]entities.PollBallot)
		byRound[ballot.Round] = byParticipant
	}
	if existing, ok := byParticipant[ballot.ParticipantID]; ok {
		ballot.CastAt = existing.CastAt
	}
	ballot.Ranking = append([]entities.RankedOption(nil), ballot.Ranking...)
	byParticipant[ballot.ParticipantID] = ballot
	return nil
}

func (s *Store) ListBallots(_ context.Context, pollID string, round int) ([]entities.PollBallot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byParticipant := s.ballots[pollID][round]
	result := make([]entities.PollBallot, 0, len(byParticipant))
	for _, ballot := range byParticipant {
		ballot.Ranking = append([]entities.RankedOption(nil), ballot.Ranking...)
		result = append(result, ballot)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

func (s *Store) SavePollResults(_ context.Context, pollID string, results entities.PollResults) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollResults[pollID] = results
	return nil
}

func (s *Store) GetPollResults(_ context.Context, pollID string) (entities.PollResults, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, ok := s.pollResults[pollID]
	if !ok {
		return entities.PollResults{}, false, nil
	}
	return results, true, nil
}

func (s *Store) RecordUtteranceActivity(_ context.Context, activity ports.UtteranceActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byParticipant, ok := s.stats[activity.SessionID]
	if !ok {
		byParticipant = make(map[string]ports.SpeakerStat)
		s.stats[activity.SessionID] = byParticipant
	}
	stat, ok := byParticipant[activity.ParticipantID]
	if !ok {
		stat = ports.SpeakerStat{
			SessionID:     activity.SessionID,
			ParticipantID: activity.ParticipantID,
		}
	}
	stat.Utterances++
	if activity.Interrupt {
		stat.Interrupts++
	}
	if activity.TurnNumber > stat.LastTurn ||
		(activity.TurnNumber == stat.LastTurn && activity.RoundNumber > stat.LastRound) {
		stat.LastTurn = activity.TurnNumber
		stat.LastRound = activity.RoundNumber
	}
	if activity.OccurredAt.After(stat.LastActiveAt) {
		stat.LastActiveAt = activity.OccurredAt
	}
	byParticipant[activity.ParticipantID] = stat
	return nil
}

func (s *Store) ListSpeakerStats(_ context.Context, sessionID string) ([]ports.SpeakerStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byParticipant := s.stats[sessionID]
	result := make([]ports.SpeakerStat, 0, len(byParticipant))
	for _, stat := range byParticipant {
		result = append(result, stat)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	// Expired keys are lazily evicted on read.
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyKeyConflict
		}
		return nil
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.eventDedup[eventID]; ok {
		if existing != payloadHash {
			return false, domainerrors.ErrIdempotencyKeyConflict
		}
		return true, nil
	}
	s.eventDedup[eventID] = payloadHash
	return false, nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, ok := s.outbox[event.EventID]; ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("disc-%d", value), nil
}

// OutboxEvents returns every appended outbox message in order; tests use it
// to assert on emitted events.
func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		if evt, ok := s.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}

// Entities carry slices; copies are cloned on the way in and out so callers
// never alias store state.

func copySession(session entities.Session) entities.Session {
	session.Participants = append([]entities.Participant(nil), session.Participants...)
	return session
}

func copyTurn(turn entities.Turn) entities.Turn {
	turn.Expected = append([]string(nil), turn.Expected...)
	return turn
}

func copyProposal(proposal entities.Proposal) entities.Proposal {
	proposal.Roster = append([]string(nil), proposal.Roster...)
	return proposal
}

func copyPoll(poll entities.Poll) entities.Poll {
	poll.Roster = append([]string(nil), poll.Roster...)
	poll.TopOptionIDs = append([]int64(nil), poll.TopOptionIDs...)
	return poll
}
