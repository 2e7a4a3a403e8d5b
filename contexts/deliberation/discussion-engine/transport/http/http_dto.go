package httptransport

type ParticipantInputDTO struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Archetype     string `json:"archetype,omitempty"`
	Moderator     bool   `json:"moderator,omitempty"`
}

type CreateSessionRequest struct {
	Title        string                `json:"title"`
	TurnMode     string                `json:"turn_mode"`
	MinRounds    int                   `json:"min_rounds,omitempty"`
	MaxRounds    int                   `json:"max_rounds,omitempty"`
	PollMode     bool                  `json:"poll_mode,omitempty"`
	Participants []ParticipantInputDTO `json:"participants"`
}

type AddParticipantRequest struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Archetype     string `json:"archetype,omitempty"`
	Moderator     bool   `json:"moderator,omitempty"`
}

type DesignateModeratorRequest struct {
	ParticipantID string `json:"participant_id"`
}

type StartTurnRequest struct {
	Prompt string `json:"prompt"`
}

type SubmitUtteranceRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	Content       string `json:"content"`
	RoundNumber   int    `json:"round_number"`
}

type OpenProposalRequest struct {
	Text string `json:"text"`
}

type CastVoteRequest struct {
	ParticipantID string  `json:"participant_id"`
	Choice        string  `json:"choice"`
	Confidence    float64 `json:"confidence,omitempty"`
	Reasoning     string  `json:"reasoning,omitempty"`
}

type StartPollRequest struct {
	Question string `json:"question"`
}

type SubmitSynthesisRequest struct {
	ParticipantID string   `json:"participant_id"`
	Framing       string   `json:"framing,omitempty"`
	Options       []string `json:"options"`
}

type RankedOptionDTO struct {
	OptionID int64 `json:"option_id"`
	Rank     int   `json:"rank"`
}

type CastBallotRequest struct {
	ParticipantID string            `json:"participant_id"`
	Round         int               `json:"round"`
	Ranking       []RankedOptionDTO `json:"ranking"`
}

type ParticipantDTO struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Archetype     string `json:"archetype,omitempty"`
	Moderator     bool   `json:"moderator,omitempty"`
	Active        bool   `json:"active"`
	Position      int    `json:"position"`
}

type SessionDTO struct {
	SessionID        string           `json:"session_id"`
	Title            string           `json:"title"`
	TurnMode         string           `json:"turn_mode"`
	MinRounds        int              `json:"min_rounds"`
	MaxRounds        int              `json:"max_rounds"`
	PollMode         bool             `json:"poll_mode,omitempty"`
	Status           string           `json:"status"`
	Phase            string           `json:"phase"`
	TurnCount        int              `json:"turn_count"`
	ActiveProposalID string           `json:"active_proposal_id,omitempty"`
	ActivePollID     string           `json:"active_poll_id,omitempty"`
	Participants     []ParticipantDTO `json:"participants"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type SessionResponse struct {
	Item SessionDTO `json:"item"`
}

type ListSessionsResponse struct {
	Items []SessionDTO `json:"items"`
}

type TurnDTO struct {
	TurnID       string   `json:"turn_id"`
	TurnNumber   int      `json:"turn_number"`
	Prompt       string   `json:"prompt"`
	Status       string   `json:"status"`
	CurrentRound int      `json:"current_round"`
	Expected     []string `json:"expected"`
	StartedAt    string   `json:"started_at"`
	CompletedAt  string   `json:"completed_at,omitempty"`
}

type GetSessionResponse struct {
	Item     SessionDTO `json:"item"`
	OpenTurn *TurnDTO   `json:"open_turn,omitempty"`
}

type StartTurnResponse struct {
	Item TurnDTO `json:"item"`
}

type CompleteTurnResponse struct {
	Item TurnDTO `json:"item"`
}

type SubmitUtteranceResponse struct {
	UtteranceID    string `json:"utterance_id"`
	SessionID      string `json:"session_id"`
	TurnNumber     int    `json:"turn_number"`
	RoundNumber    int    `json:"round_number"`
	ParticipantID  string `json:"participant_id"`
	Interrupt      bool   `json:"interrupt,omitempty"`
	RoundCompleted bool   `json:"round_completed,omitempty"`
	TurnCompleted  bool   `json:"turn_completed,omitempty"`
	NextRound      int    `json:"next_round,omitempty"`
	Replayed       bool   `json:"replayed,omitempty"`
}

type RetractUtteranceResponse struct {
	UtteranceID string `json:"utterance_id"`
	SessionID   string `json:"session_id"`
	Retracted   bool   `json:"retracted"`
}

type TranscriptEntryDTO struct {
	UtteranceID     string `json:"utterance_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	RoundNumber     int    `json:"round_number"`
	Content         string `json:"content"`
	Interrupt       bool   `json:"interrupt,omitempty"`
	Retracted       bool   `json:"retracted,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type TranscriptTurnDTO struct {
	TurnNumber int                  `json:"turn_number"`
	Prompt     string               `json:"prompt"`
	Status     string               `json:"status"`
	Rounds     int                  `json:"rounds"`
	Entries    []TranscriptEntryDTO `json:"entries"`
}

type GetTranscriptResponse struct {
	SessionID string              `json:"session_id"`
	Title     string              `json:"title"`
	Turns     []TranscriptTurnDTO `json:"turns"`
}

type SpeakerStatDTO struct {
	ParticipantID string `json:"participant_id"`
	Utterances    int    `json:"utterances"`
	Interrupts    int    `json:"interrupts,omitempty"`
	LastTurn      int    `json:"last_turn"`
	LastRound     int    `json:"last_round"`
	LastActiveAt  string `json:"last_active_at"`
}

type GetSpeakerStatsResponse struct {
	SessionID string           `json:"session_id"`
	Items     []SpeakerStatDTO `json:"items"`
}

type PendingParticipantDTO struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Archetype     string `json:"archetype,omitempty"`
}

type HistoryEntryDTO struct {
	Role            string `json:"role"`
	ParticipantID   string `json:"participant_id,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
	Content         string `json:"content"`
	TurnNumber      int    `json:"turn_number"`
	RoundNumber     int    `json:"round_number,omitempty"`
	Interrupt       bool   `json:"interrupt,omitempty"`
}

type SessionWorkDTO struct {
	SessionID    string                  `json:"session_id"`
	Title        string                  `json:"title"`
	TurnMode     string                  `json:"turn_mode"`
	TurnNumber   int                     `json:"turn_number"`
	RoundNumber  int                     `json:"round_number"`
	MinRounds    int                     `json:"min_rounds"`
	MaxRounds    int                     `json:"max_rounds"`
	Instructions string                  `json:"instructions"`
	Pending      []PendingParticipantDTO `json:"pending"`
	History      []HistoryEntryDTO       `json:"history"`
}

type VoteWorkDTO struct {
	ProposalID    string   `json:"proposal_id"`
	SessionID     string   `json:"session_id"`
	Text          string   `json:"text"`
	PendingVoters []string `json:"pending_voters"`
}

type PollWorkDTO struct {
	PollID              string   `json:"poll_id"`
	SessionID           string   `json:"session_id"`
	Question            string   `json:"question"`
	Phase               string   `json:"phase"`
	Round               int      `json:"round,omitempty"`
	PendingParticipants []string `json:"pending_participants"`
}

type ListPendingResponse struct {
	Sessions []SessionWorkDTO `json:"sessions"`
	Votes    []VoteWorkDTO    `json:"votes"`
	Polls    []PollWorkDTO    `json:"polls"`
}

type ProposalDTO struct {
	ProposalID string   `json:"proposal_id"`
	SessionID  string   `json:"session_id"`
	Text       string   `json:"text"`
	Status     string   `json:"status"`
	Roster     []string `json:"roster"`
	OpenedAt   string   `json:"opened_at"`
	ResolvedAt string   `json:"resolved_at,omitempty"`
}

type OpenProposalResponse struct {
	Item ProposalDTO `json:"item"`
}

type CastVoteResponse struct {
	ProposalID    string  `json:"proposal_id"`
	ParticipantID string  `json:"participant_id"`
	Choice        string  `json:"choice"`
	Confidence    float64 `json:"confidence,omitempty"`
	CastAt        string  `json:"cast_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type TallyDTO struct {
	Agree          int      `json:"agree"`
	Disagree       int      `json:"disagree"`
	Abstain        int      `json:"abstain"`
	TotalVotes     int      `json:"total_votes"`
	AgreementScore float64  `json:"agreement_score"`
	Majority       string   `json:"majority,omitempty"`
	Dissenters     []string `json:"dissenters"`
}

type VoteDTO struct {
	ParticipantID string  `json:"participant_id"`
	Choice        string  `json:"choice"`
	Confidence    float64 `json:"confidence,omitempty"`
	Reasoning     string  `json:"reasoning,omitempty"`
	CastAt        string  `json:"cast_at"`
}

type GetTallyResponse struct {
	Item  ProposalDTO `json:"item"`
	Tally TallyDTO    `json:"tally"`
	Votes []VoteDTO   `json:"votes"`
}

type ResolveProposalResponse struct {
	Item  ProposalDTO `json:"item"`
	Tally TallyDTO    `json:"tally"`
}

type PollDTO struct {
	PollID       string   `json:"poll_id"`
	SessionID    string   `json:"session_id"`
	Question     string   `json:"question"`
	Phase        string   `json:"phase"`
	Roster       []string `json:"roster"`
	TopOptionIDs []int64  `json:"top_option_ids,omitempty"`
	CreatedAt    string   `json:"created_at"`
	CompletedAt  string   `json:"completed_at,omitempty"`
}

type PollOptionDTO struct {
	OptionID   int64  `json:"option_id"`
	Text       string `json:"text"`
	ProposerID string `json:"proposer_id"`
	BordaScore int    `json:"borda_score,omitempty"`
}

type StartPollResponse struct {
	Item PollDTO `json:"item"`
}

type SubmitSynthesisResponse struct {
	PollID        string   `json:"poll_id"`
	ParticipantID string   `json:"participant_id"`
	Framing       string   `json:"framing,omitempty"`
	Options       []string `json:"options"`
	Phase         string   `json:"phase"`
	Advanced      bool     `json:"advanced,omitempty"`
}

type CastBallotResponse struct {
	PollID        string `json:"poll_id"`
	ParticipantID string `json:"participant_id"`
	Round         int    `json:"round"`
	Phase         string `json:"phase"`
	Advanced      bool   `json:"advanced,omitempty"`
}

type ForceAdvancePollResponse struct {
	Item        PollDTO `json:"item"`
	PhaseBefore string  `json:"phase_before"`
	PhaseAfter  string  `json:"phase_after"`
}

type GetPollResponse struct {
	Item               PollDTO         `json:"item"`
	Options            []PollOptionDTO `json:"options"`
	SynthesisSubmitted int             `json:"synthesis_submitted"`
	Round1Ballots      int             `json:"round1_ballots"`
	Round2Ballots      int             `json:"round2_ballots"`
}

type FirstPlaceCountDTO struct {
	OptionID int64 `json:"option_id"`
	Count    int   `json:"count"`
}

type MajorityResultDTO struct {
	WinnerOptionID int64                `json:"winner_option_id"`
	FirstPlace     []FirstPlaceCountDTO `json:"first_place"`
	WinningShare   float64              `json:"winning_share"`
	TotalBallots   int                  `json:"total_ballots"`
}

type CaucusDTO struct {
	Label   string   `json:"label"`
	Basis   string   `json:"basis"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

type RunoffRoundDTO struct {
	Number             int                  `json:"number"`
	Counts             []FirstPlaceCountDTO `json:"counts"`
	EliminatedOptionID int64                `json:"eliminated_option_id,omitempty"`
}

type RunoffResultDTO struct {
	Rounds         []RunoffRoundDTO `json:"rounds"`
	WinnerOptionID int64            `json:"winner_option_id"`
}

type PollResultsDTO struct {
	Majority MajorityResultDTO `json:"majority"`
	Caucuses []CaucusDTO       `json:"caucuses"`
	Runoff   RunoffResultDTO   `json:"runoff"`
}

type GetPollResultsResponse struct {
	Item    PollDTO         `json:"item"`
	Options []PollOptionDTO `json:"options"`
	Results PollResultsDTO  `json:"results"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
