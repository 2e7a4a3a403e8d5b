package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"agora/contexts/deliberation/discussion-engine/domain/entities"
	domainerrors "agora/contexts/deliberation/discussion-engine/domain/errors"

	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateSession(ctx context.Context, session entities.Session) error {
	sessionRow := sessionModelFromEntity(session)
	participantRows := make([]participantModel, 0, len(session.Participants))
	for _, participant := range session.Participants {
		participantRows = append(participantRows, participantModelFromEntity(session.SessionID, participant))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sessionRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRepositoryInvariantBroke
			}
			return err
		}
		if len(participantRows) > 0 {
			if err := tx.Create(&participantRows).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrDuplicateParticipant
				}
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.Session, error) {
	var sessionRow sessionModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&sessionRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, domainerrors.ErrSessionNotFound
		}
		return entities.Session{}, err
	}

	var participantRows []participantModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&participantRows).
		Error; err != nil {
		return entities.Session{}, err
	}

	session := sessionRow.toEntity()
	session.Participants = make([]entities.Participant, 0, len(participantRows))
	for _, row := range participantRows {
		session.Participants = append(session.Participants, row.toEntity())
	}
	return session, nil
}

// UpdateSession writes the session's scalar state; roster rows are managed
// through the participant methods.
func (r *Repository) UpdateSession(ctx context.Context, session entities.Session) error {
	result := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", session.SessionID).
		Updates(map[string]any{
			"title":              session.Title,
			"turn_mode":          string(session.TurnMode),
			"min_rounds":         session.Policy.MinRounds,
			"max_rounds":         session.Policy.MaxRounds,
			"poll_mode":          session.PollMode,
			"status":             string(session.Status),
			"phase":              string(session.Phase),
			"turn_count":         session.TurnCount,
			"active_proposal_id": session.ActiveProposalID,
			"active_poll_id":     session.ActivePollID,
			"next_option_id":     session.NextOptionID,
			"exported":           session.Exported,
			"updated_at":         session.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSessionNotFound
	}
	return nil
}

func (r *Repository) ListSessions(ctx context.Context) ([]entities.Session, error) {
	var sessionRows []sessionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("session_id ASC").
		Find(&sessionRows).
		Error; err != nil {
		return nil, err
	}
	if len(sessionRows) == 0 {
		return []entities.Session{}, nil
	}

	sessionIDs := make([]string, 0, len(sessionRows))
	for _, row := range sessionRows {
		sessionIDs = append(sessionIDs, row.SessionID)
	}

	var participantRows []participantModel
	if err := r.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("position ASC").
		Find(&participantRows).
		Error; err != nil {
		return nil, err
	}
	bySession := make(map[string][]entities.Participant, len(sessionRows))
	for _, row := range participantRows {
		bySession[row.SessionID] = append(bySession[row.SessionID], row.toEntity())
	}

	sessions := make([]entities.Session, 0, len(sessionRows))
	for _, row := range sessionRows {
		session := row.toEntity()
		session.Participants = bySession[row.SessionID]
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *Repository) AddParticipant(ctx context.Context, sessionID string, participant entities.Participant) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", sessionID).
		Count(&count).
		Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrSessionNotFound
	}

	row := participantModelFromEntity(sessionID, participant)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateParticipant
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateParticipant(ctx context.Context, sessionID string, participant entities.Participant) error {
	result := r.db.WithContext(ctx).
		Model(&participantModel{}).
		Where("session_id = ? AND participant_id = ?", sessionID, participant.ParticipantID).
		Updates(map[string]any{
			"name":      participant.Name,
			"archetype": participant.Archetype,
			"moderator": participant.Moderator,
			"active":    participant.Active,
			"position":  participant.Position,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrParticipantNotFound
	}
	return nil
}

func (r *Repository) CreateTurn(ctx context.Context, turn entities.Turn) error {
	row, err := turnModelFromEntity(turn)
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

func (r *Repository) UpdateTurn(ctx context.Context, turn entities.Turn) error {
	expected, err := json.Marshal(turn.Expected)
	if err != nil {
		return err
	}
	var completedAt *time.Time
	if !turn.CompletedAt.IsZero() {
		utc := turn.CompletedAt.UTC()
		completedAt = &utc
	}
	result := r.db.WithContext(ctx).
		Model(&turnModel{}).
		Where("turn_id = ?", turn.TurnID).
		Updates(map[string]any{
			"status":        string(turn.Status),
			"current_round": turn.CurrentRound,
			"expected":      expected,
			"pending_round": turn.PendingRound,
			"completed_at":  completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTurnNotFound
	}
	return nil
}

func (r *Repository) GetOpenTurn(ctx context.Context, sessionID string) (entities.Turn, bool, error) {
	var row turnModel
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, string(entities.TurnStatusOpen)).
		Order("turn_number DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Turn{}, false, nil
		}
		return entities.Turn{}, false, err
	}
	turn, err := row.toEntity()
	if err != nil {
		return entities.Turn{}, false, err
	}
	return turn, true, nil
}

func (r *Repository) ListTurns(ctx context.Context, sessionID string) ([]entities.Turn, error) {
	var rows []turnModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("turn_number ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	turns := make([]entities.Turn, 0, len(rows))
	for _, row := range rows {
		turn, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (r *Repository) AppendUtterance(ctx context.Context, utterance entities.Utterance) error {
	row := utteranceModelFromEntity(utterance)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) GetUtterance(ctx context.Context, utteranceID string) (entities.Utterance, error) {
	var row utteranceModel
	err := r.db.WithContext(ctx).
		Where("utterance_id = ?", utteranceID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Utterance{}, domainerrors.ErrUtteranceNotFound
		}
		return entities.Utterance{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUtteranceByIdentity(
	ctx context.Context,
	sessionID string,
	turnNumber, roundNumber int,
	participantID string,
) (entities.Utterance, bool, error) {
	var row utteranceModel
	err := r.db.WithContext(ctx).
		Where(
			"session_id = ? AND turn_number = ? AND round_number = ? AND participant_id = ? AND retracted = ? AND interrupt = ?",
			sessionID, turnNumber, roundNumber, participantID, false, false,
		).
		Order("created_at ASC").
		Order("utterance_id ASC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Utterance{}, false, nil
		}
		return entities.Utterance{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) MarkUtteranceRetracted(ctx context.Context, utteranceID string, retractedAt time.Time) error {
	retracted := retractedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&utteranceModel{}).
		Where("utterance_id = ?", utteranceID).
		Updates(map[string]any{
			"retracted":    true,
			"retracted_at": &retracted,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUtteranceNotFound
	}
	return nil
}

func (r *Repository) ListUtterancesByTurn(ctx context.Context, sessionID string, turnNumber int) ([]entities.Utterance, error) {
	var rows []utteranceModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND turn_number = ?", sessionID, turnNumber).
		Order("created_at ASC").
		Order("utterance_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Utterance, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListUtterancesBySession(ctx context.Context, sessionID string) ([]entities.Utterance, error) {
	var rows []utteranceModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("utterance_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Utterance, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type sessionModel struct {
	SessionID        string    `gorm:"column:session_id;primaryKey"`
	Title            string    `gorm:"column:title"`
	TurnMode         string    `gorm:"column:turn_mode"`
	MinRounds        int       `gorm:"column:min_rounds"`
	MaxRounds        int       `gorm:"column:max_rounds"`
	PollMode         bool      `gorm:"column:poll_mode"`
	Status           string    `gorm:"column:status"`
	Phase            string    `gorm:"column:phase"`
	TurnCount        int       `gorm:"column:turn_count"`
	ActiveProposalID string    `gorm:"column:active_proposal_id"`
	ActivePollID     string    `gorm:"column:active_poll_id"`
	NextOptionID     int64     `gorm:"column:next_option_id"`
	Exported         bool      `gorm:"column:exported"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string {
	return "discussion_sessions"
}

func sessionModelFromEntity(session entities.Session) sessionModel {
	return sessionModel{
		SessionID:        session.SessionID,
		Title:            session.Title,
		TurnMode:         string(session.TurnMode),
		MinRounds:        session.Policy.MinRounds,
		MaxRounds:        session.Policy.MaxRounds,
		PollMode:         session.PollMode,
		Status:           string(session.Status),
		Phase:            string(session.Phase),
		TurnCount:        session.TurnCount,
		ActiveProposalID: session.ActiveProposalID,
		ActivePollID:     session.ActivePollID,
		NextOptionID:     session.NextOptionID,
		Exported:         session.Exported,
		CreatedAt:        session.CreatedAt.UTC(),
		UpdatedAt:        session.UpdatedAt.UTC(),
	}
}

func (m sessionModel) toEntity() entities.Session {
	return entities.Session{
		SessionID: m.SessionID,
		Title:     m.Title,
		TurnMode:  entities.TurnMode(m.TurnMode),
		Policy: entities.RoundPolicy{
			MinRounds: m.MinRounds,
			MaxRounds: m.MaxRounds,
		},
		PollMode:         m.PollMode,
		Status:           entities.SessionStatus(m.Status),
		Phase:            entities.SessionPhase(m.Phase),
		TurnCount:        m.TurnCount,
		ActiveProposalID: m.ActiveProposalID,
		ActivePollID:     m.ActivePollID,
		NextOptionID:     m.NextOptionID,
		Exported:         m.Exported,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type participantModel struct {
	SessionID     string    `gorm:"column:session_id;primaryKey"`
	ParticipantID string    `gorm:"column:participant_id;primaryKey"`
	Name          string    `gorm:"column:name"`
	Archetype     string    `gorm:"column:archetype"`
	Moderator     bool      `gorm:"column:moderator"`
	Active        bool      `gorm:"column:active"`
	Position      int       `gorm:"column:position"`
	AddedAt       time.Time `gorm:"column:added_at"`
}

func (participantModel) TableName() string {
	return "discussion_participants"
}

func participantModelFromEntity(sessionID string, participant entities.Participant) participantModel {
	return participantModel{
		SessionID:     sessionID,
		ParticipantID: participant.ParticipantID,
		Name:          participant.Name,
		Archetype:     participant.Archetype,
		Moderator:     participant.Moderator,
		Active:        participant.Active,
		Position:      participant.Position,
		AddedAt:       participant.AddedAt.UTC(),
	}
}

func (m participantModel) toEntity() entities.Participant {
	return entities.Participant{
		ParticipantID: m.ParticipantID,
		Name:          m.Name,
		Archetype:     m.Archetype,
		Moderator:     m.Moderator,
		Active:        m.Active,
		Position:      m.Position,
		AddedAt:       m.AddedAt.UTC(),
	}
}

type turnModel struct {
	TurnID       string     `gorm:"column:turn_id;primaryKey"`
	SessionID    string     `gorm:"column:session_id"`
	TurnNumber   int        `gorm:"column:turn_number"`
	Prompt       string     `gorm:"column:prompt"`
	Status       string     `gorm:"column:status"`
	CurrentRound int        `gorm:"column:current_round"`
	Expected     []byte     `gorm:"column:expected"`
	PendingRound int        `gorm:"column:pending_round"`
	StartedAt    time.Time  `gorm:"column:started_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
}

func (turnModel) TableName() string {
	return "discussion_turns"
}

func turnModelFromEntity(turn entities.Turn) (turnModel, error) {
	expected, err := json.Marshal(turn.Expected)
	if err != nil {
		return turnModel{}, err
	}
	var completedAt *time.Time
	if !turn.CompletedAt.IsZero() {
		utc := turn.CompletedAt.UTC()
		completedAt = &utc
	}
	return turnModel{
		TurnID:       turn.TurnID,
		SessionID:    turn.SessionID,
		TurnNumber:   turn.TurnNumber,
		Prompt:       turn.Prompt,
		Status:       string(turn.Status),
		CurrentRound: turn.CurrentRound,
		Expected:     expected,
		PendingRound: turn.PendingRound,
		StartedAt:    turn.StartedAt.UTC(),
		CompletedAt:  completedAt,
	}, nil
}

func (m turnModel) toEntity() (entities.Turn, error) {
	var expected []string
	if len(m.Expected) > 0 {
		if err := json.Unmarshal(m.Expected, &expected); err != nil {
			return entities.Turn{}, err
		}
	}
	turn := entities.Turn{
		TurnID:       m.TurnID,
		SessionID:    m.SessionID,
		TurnNumber:   m.TurnNumber,
		Prompt:       m.Prompt,
		Status:       entities.TurnStatus(m.Status),
		CurrentRound: m.CurrentRound,
		Expected:     expected,
		PendingRound: m.PendingRound,
		StartedAt:    m.StartedAt.UTC(),
	}
	if m.CompletedAt != nil {
		turn.CompletedAt = m.CompletedAt.UTC()
	}
	return turn, nil
}

type utteranceModel struct {
	UtteranceID   string     `gorm:"column:utterance_id;primaryKey"`
	SessionID     string     `gorm:"column:session_id"`
	TurnNumber    int        `gorm:"column:turn_number"`
	RoundNumber   int        `gorm:"column:round_number"`
	ParticipantID string     `gorm:"column:participant_id"`
	Content       string     `gorm:"column:content"`
	Interrupt     bool       `gorm:"column:interrupt"`
	Retracted     bool       `gorm:"column:retracted"`
	RetractedAt   *time.Time `gorm:"column:retracted_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (utteranceModel) TableName() string {
	return "discussion_utterances"
}

func utteranceModelFromEntity(utterance entities.Utterance) utteranceModel {
	return utteranceModel{
		UtteranceID:   utterance.UtteranceID,
		SessionID:     utterance.SessionID,
		TurnNumber:    utterance.TurnNumber,
		RoundNumber:   utterance.RoundNumber,
		ParticipantID: utterance.ParticipantID,
		Content:       utterance.Content,
		Interrupt:     utterance.Interrupt,
		Retracted:     utterance.Retracted,
		CreatedAt:     utterance.CreatedAt.UTC(),
	}
}

func (m utteranceModel) toEntity() entities.Utterance {
	return entities.Utterance{
		UtteranceID:   m.UtteranceID,
		SessionID:     m.SessionID,
		TurnNumber:    m.TurnNumber,
		RoundNumber:   m.RoundNumber,
		ParticipantID: m.ParticipantID,
		Content:       m.Content,
		Interrupt:     m.Interrupt,
		Retracted:     m.Retracted,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}
