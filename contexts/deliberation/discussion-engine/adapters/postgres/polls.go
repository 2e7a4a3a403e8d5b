package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal) error {
	row, err := proposalModelFromEntity(proposal)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, err
	}
	return row.toEntity()
}

func (r *Repository) UpdateProposal(ctx context.Context, proposal entities.Proposal) error {
	var resolvedAt *time.Time
	if !proposal.ResolvedAt.IsZero() {
		utc := proposal.ResolvedAt.UTC()
		resolvedAt = &utc
	}
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ?", proposal.ProposalID).
		Updates(map[string]any{
			"status":      string(proposal.Status),
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

// UpsertVote overwrites a prior vote in place; cast_at is excluded from the
// update so the original timestamp survives resubmission.
func (r *Repository) UpsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "proposal_id"}, {Name: "participant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"choice", "confidence", "reasoning", "updated_at",
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ListVotesByProposal(ctx context.Context, proposalID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("participant_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, row.toEntity())
	}
	return votes, nil
}

func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) error {
	row, err := pollModelFromEntity(poll)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, err
	}
	return row.toEntity()
}

func (r *Repository) UpdatePoll(ctx context.Context, poll entities.Poll) error {
	topOptionIDs, err := json.Marshal(poll.TopOptionIDs)
	if err != nil {
		return err
	}
	var completedAt *time.Time
	if !poll.CompletedAt.IsZero() {
		utc := poll.CompletedAt.UTC()
		completedAt = &utc
	}
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("poll_id = ?", poll.PollID).
		Updates(map[string]any{
			"phase":          string(poll.Phase),
			"top_option_ids": topOptionIDs,
			"updated_at":     poll.UpdatedAt.UTC(),
			"completed_at":   completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPollNotFound
	}
	return nil
}

func (r *Repository) UpsertSynthesisEntry(ctx context.Context, entry entities.SynthesisEntry) error {
	row, err := synthesisModelFromEntity(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "poll_id"}, {Name: "participant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"framing", "options", "submitted_at",
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ListSynthesisEntries(ctx context.Context, pollID string) ([]entities.SynthesisEntry, error) {
	var rows []synthesisModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("participant_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	entries := make([]entities.SynthesisEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Repository) CreateOptions(ctx context.Context, options []entities.PollOption) error {
	if len(options) == 0 {
		return nil
	}
	rows := make([]pollOptionModel, 0, len(options))
	for _, option := range options {
		rows = append(rows, pollOptionModelFromEntity(option))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) SetOptionScores(ctx context.Context, pollID string, scores map[int64]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for optionID, score := range scores {
			result := tx.
				Model(&pollOptionModel{}).
				Where("poll_id = ? AND option_id = ?", pollID, optionID).
				Update("borda_score", score)
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}

func (r *Repository) ListOptions(ctx context.Context, pollID string) ([]entities.PollOption, error) {
	var rows []pollOptionModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("option_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	options := make([]entities.PollOption, 0, len(rows))
	for _, row := range rows {
		options = append(options, row.toEntity())
	}
	return options, nil
}

// UpsertBallot overwrites a prior ballot for the round; cast_at survives
// like UpsertVote.
func (r *Repository) UpsertBallot(ctx context.Context, ballot entities.PollBallot) error {
	row, err := ballotModelFromEntity(ballot)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "poll_id"}, {Name: "round"}, {Name: "participant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"ranking", "updated_at",
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ListBallots(ctx context.Context, pollID string, round int) ([]entities.PollBallot, error) {
	var rows []ballotModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ? AND round = ?", pollID, round).
		Order("participant_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	ballots := make([]entities.PollBallot, 0, len(rows))
	for _, row := range rows {
		ballot, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, ballot)
	}
	return ballots, nil
}

func (r *Repository) SavePollResults(ctx context.Context, pollID string, results entities.PollResults) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	row := pollResultsModel{
		PollID:  pollID,
		Results: payload,
		SavedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "poll_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"results", "saved_at"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) GetPollResults(ctx context.Context, pollID string) (entities.PollResults, bool, error) {
	var row pollResultsModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PollResults{}, false, nil
		}
		return entities.PollResults{}, false, err
	}
	var results entities.PollResults
	if err := json.Unmarshal(row.Results, &results); err != nil {
		return entities.PollResults{}, false, err
	}
	return results, true, nil
}

type proposalModel struct {
	ProposalID string     `gorm:"column:proposal_id;primaryKey"`
	SessionID  string     `gorm:"column:session_id"`
	Text       string     `gorm:"column:text"`
	Status     string     `gorm:"column:status"`
	Roster     []byte     `gorm:"column:roster"`
	OpenedAt   time.Time  `gorm:"column:opened_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
}

func (proposalModel) TableName() string {
	return "discussion_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) (proposalModel, error) {
	roster, err := json.Marshal(proposal.Roster)
	if err != nil {
		return proposalModel{}, err
	}
	var resolvedAt *time.Time
	if !proposal.ResolvedAt.IsZero() {
		utc := proposal.ResolvedAt.UTC()
		resolvedAt = &utc
	}
	return proposalModel{
		ProposalID: proposal.ProposalID,
		SessionID:  proposal.SessionID,
		Text:       proposal.Text,
		Status:     string(proposal.Status),
		Roster:     roster,
		OpenedAt:   proposal.OpenedAt.UTC(),
		ResolvedAt: resolvedAt,
	}, nil
}

func (m proposalModel) toEntity() (entities.Proposal, error) {
	var roster []string
	if len(m.Roster) > 0 {
		if err := json.Unmarshal(m.Roster, &roster); err != nil {
			return entities.Proposal{}, err
		}
	}
	proposal := entities.Proposal{
		ProposalID: m.ProposalID,
		SessionID:  m.SessionID,
		Text:       m.Text,
		Status:     entities.ProposalStatus(m.Status),
		Roster:     roster,
		OpenedAt:   m.OpenedAt.UTC(),
	}
	if m.ResolvedAt != nil {
		proposal.ResolvedAt = m.ResolvedAt.UTC()
	}
	return proposal, nil
}

type voteModel struct {
	ProposalID    string    `gorm:"column:proposal_id;primaryKey"`
	ParticipantID string    `gorm:"column:participant_id;primaryKey"`
	Choice        string    `gorm:"column:choice"`
	Confidence    float64   `gorm:"column:confidence"`
	Reasoning     string    `gorm:"column:reasoning"`
	CastAt        time.Time `gorm:"column:cast_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "discussion_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ProposalID:    vote.ProposalID,
		ParticipantID: vote.ParticipantID,
		Choice:        string(vote.Choice),
		Confidence:    vote.Confidence,
		Reasoning:     vote.Reasoning,
		CastAt:        vote.CastAt.UTC(),
		UpdatedAt:     vote.UpdatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		ProposalID:    m.ProposalID,
		ParticipantID: m.ParticipantID,
		Choice:        entities.VoteChoice(m.Choice),
		Confidence:    m.Confidence,
		Reasoning:     m.Reasoning,
		CastAt:        m.CastAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type pollModel struct {
	PollID       string     `gorm:"column:poll_id;primaryKey"`
	SessionID    string     `gorm:"column:session_id"`
	Question     string     `gorm:"column:question"`
	Phase        string     `gorm:"column:phase"`
	Roster       []byte     `gorm:"column:roster"`
	TopOptionIDs []byte     `gorm:"column:top_option_ids"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
}

func (pollModel) TableName() string {
	return "discussion_polls"
}

func pollModelFromEntity(poll entities.Poll) (pollModel, error) {
	roster, err := json.Marshal(poll.Roster)
	if err != nil {
		return pollModel{}, err
	}
	topOptionIDs, err := json.Marshal(poll.TopOptionIDs)
	if err != nil {
		return pollModel{}, err
	}
	var completedAt *time.Time
	if !poll.CompletedAt.IsZero() {
		utc := poll.CompletedAt.UTC()
		completedAt = &utc
	}
	return pollModel{
		PollID:       poll.PollID,
		SessionID:    poll.SessionID,
		Question:     poll.Question,
		Phase:        string(poll.Phase),
		Roster:       roster,
		TopOptionIDs: topOptionIDs,
		CreatedAt:    poll.CreatedAt.UTC(),
		UpdatedAt:    poll.UpdatedAt.UTC(),
		CompletedAt:  completedAt,
	}, nil
}

func (m pollModel) toEntity() (entities.Poll, error) {
	var roster []string
	if len(m.Roster) > 0 {
		if err := json.Unmarshal(m.Roster, &roster); err != nil {
			return entities.Poll{}, err
		}
	}
	var topOptionIDs []int64
	if len(m.TopOptionIDs) > 0 {
		if err := json.Unmarshal(m.TopOptionIDs, &topOptionIDs); err != nil {
			return entities.Poll{}, err
		}
	}
	poll := entities.Poll{
		PollID:       m.PollID,
		SessionID:    m.SessionID,
		Question:     m.Question,
		Phase:        entities.PollPhase(m.Phase),
		Roster:       roster,
		TopOptionIDs: topOptionIDs,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		poll.CompletedAt = m.CompletedAt.UTC()
	}
	return poll, nil
}

type pollOptionModel struct {
	PollID     string `gorm:"column:poll_id;primaryKey"`
	OptionID   int64  `gorm:"column:option_id;primaryKey"`
	Text       string `gorm:"column:text"`
	ProposerID string `gorm:"column:proposer_id"`
	BordaScore int    `gorm:"column:borda_score"`
}

func (pollOptionModel) TableName() string {
	return "discussion_poll_options"
}

func pollOptionModelFromEntity(option entities.PollOption) pollOptionModel {
	return pollOptionModel{
		PollID:     option.PollID,
		OptionID:   option.OptionID,
		Text:       option.Text,
		ProposerID: option.ProposerID,
		BordaScore: option.BordaScore,
	}
}

func (m pollOptionModel) toEntity() entities.PollOption {
	return entities.PollOption{
		OptionID:   m.OptionID,
		PollID:     m.PollID,
		Text:       m.Text,
		ProposerID: m.ProposerID,
		BordaScore: m.BordaScore,
	}
}

type synthesisModel struct {
	PollID        string    `gorm:"column:poll_id;primaryKey"`
	ParticipantID string    `gorm:"column:participant_id;primaryKey"`
	Framing       string    `gorm:"column:framing"`
	Options       []byte    `gorm:"column:options"`
	SubmittedAt   time.Time `gorm:"column:submitted_at"`
}

func (synthesisModel) TableName() string {
	return "discussion_synthesis_entries"
}

func synthesisModelFromEntity(entry entities.SynthesisEntry) (synthesisModel, error) {
	options, err := json.Marshal(entry.Options)
	if err != nil {
		return synthesisModel{}, err
	}
	return synthesisModel{
		PollID:        entry.PollID,
		ParticipantID: entry.ParticipantID,
		Framing:       entry.Framing,
		Options:       options,
		SubmittedAt:   entry.SubmittedAt.UTC(),
	}, nil
}

func (m synthesisModel) toEntity() (entities.SynthesisEntry, error) {
	var options []string
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return entities.SynthesisEntry{}, err
		}
	}
	return entities.SynthesisEntry{
		PollID:        m.PollID,
		ParticipantID: m.ParticipantID,
		Framing:       m.Framing,
		Options:       options,
		SubmittedAt:   m.SubmittedAt.UTC(),
	}, nil
}

type ballotModel struct {
	PollID        string    `gorm:"column:poll_id;primaryKey"`
	Round         int       `gorm:"column:round;primaryKey"`
	ParticipantID string    `gorm:"column:participant_id;primaryKey"`
	Ranking       []byte    `gorm:"column:ranking"`
	CastAt        time.Time `gorm:"column:cast_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ballotModel) TableName() string {
	return "discussion_poll_ballots"
}

func ballotModelFromEntity(ballot entities.PollBallot) (ballotModel, error) {
	ranking, err := json.Marshal(ballot.Ranking)
	if err != nil {
		return ballotModel{}, err
	}
	return ballotModel{
		PollID:        ballot.PollID,
		Round:         ballot.Round,
		ParticipantID: ballot.ParticipantID,
		Ranking:       ranking,
		CastAt:        ballot.CastAt.UTC(),
		UpdatedAt:     ballot.UpdatedAt.UTC(),
	}, nil
}

func (m ballotModel) toEntity() (entities.PollBallot, error) {
	var ranking []entities.RankedOption
	if len(m.Ranking) > 0 {
		if err := json.Unmarshal(m.Ranking, &ranking); err != nil {
			return entities.PollBallot{}, err
		}
	}
	return entities.PollBallot{
		PollID:        m.PollID,
		ParticipantID: m.ParticipantID,
		Round:         m.Round,
		Ranking:       ranking,
		CastAt:        m.CastAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}, nil
}

type pollResultsModel struct {
	PollID  string    `gorm:"column:poll_id;primaryKey"`
	Results []byte    `gorm:"column:results"`
	SavedAt time.Time `gorm:"column:saved_at"`
}

func (pollResultsModel) TableName() string {
	return "discussion_poll_results"
}
