package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle position of a boss fight session.
type SessionStatus string

const (
	SessionWaiting  SessionStatus = "waiting"
	SessionActive   SessionStatus = "active"
	SessionDefeated SessionStatus = "defeated"
	SessionCooldown SessionStatus = "cooldown"
	SessionEnded    SessionStatus = "ended"
)

// PlayerStatus is the lifecycle position of a player within a session.
type PlayerStatus string

const (
	PlayerWaiting    PlayerStatus = "waiting"
	PlayerReady      PlayerStatus = "ready"
	PlayerActive     PlayerStatus = "active"
	PlayerKnockedOut PlayerStatus = "knocked_out"
)

// BossDefinition is the read-only catalog record a session is built from.
type BossDefinition struct {
	ID              string
	Name            string
	Description     string
	NumberOfTeams   int
	CooldownSeconds int
	CategoryID      string
}

// Question is a raw catalog question with all candidate answers.
// Exactly one answer is correct.
type Question struct {
	ID        string
	Text      string
	TimeLimit time.Duration
	Answers   []Answer
}

type Answer struct {
	Text    string
	Correct bool
}

// QuestionView is the question as displayed to a player: four answers,
// the correct one among them, correctness withheld.
type QuestionView struct {
	QuestionID string            `json:"question_id"`
	Text       string            `json:"text"`
	Answers    []DisplayedAnswer `json:"answers"`
	TimeLimit  time.Duration     `json:"time_limit"`
}

type DisplayedAnswer struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Session is the externally visible state of a boss fight session.
type Session struct {
	SessionID     string          `json:"session_id"`
	BossID        string          `json:"boss_id"`
	BossName      string          `json:"boss_name"`
	HostID        string          `json:"host_id"`
	Status        SessionStatus   `json:"status"`
	CurrentHP     decimal.Decimal `json:"current_hp"`
	MaxHP         decimal.Decimal `json:"max_hp"`
	TotalDamage   decimal.Decimal `json:"total_damage"`
	TotalPlayers  int             `json:"total_players"`
	Teams         []TeamState     `json:"teams"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	WinningTeamID int             `json:"winning_team_id"`
}

// TeamState is the externally visible state of one team.
type TeamState struct {
	TeamID      int             `json:"team_id"`
	Name        string          `json:"name"`
	PlayerCount int             `json:"player_count"`
	Players     []string        `json:"players"`
	TotalDamage decimal.Decimal `json:"total_damage"`
}

// PlayerState is the externally visible state of one player session.
type PlayerState struct {
	PlayerID          string          `json:"player_id"`
	Nickname          string          `json:"nickname"`
	SessionID         string          `json:"session_id"`
	BossID            string          `json:"boss_id"`
	TeamID            int             `json:"team_id"`
	Hearts            int             `json:"hearts"`
	TotalDamage       decimal.Decimal `json:"total_damage"`
	QuestionsAnswered int             `json:"questions_answered"`
	CorrectAnswers    int             `json:"correct_answers"`
	IncorrectAnswers  int             `json:"incorrect_answers"`
	Status            PlayerStatus    `json:"status"`
	Badges            []string        `json:"badges"`
}

// AnswerResult reports the outcome of one answer submission.
type AnswerResult struct {
	PlayerID        string          `json:"player_id"`
	SessionID       string          `json:"session_id"`
	QuestionID      string          `json:"question_id"`
	Correct         bool            `json:"correct"`
	ResponseTime    time.Duration   `json:"response_time"`
	Damage          decimal.Decimal `json:"damage"`
	HeartsRemaining int             `json:"hearts_remaining"`
	BossHP          decimal.Decimal `json:"boss_hp"`
	BossDefeated    bool            `json:"boss_defeated"`
}

// ReviveResult reports a successful revival.
type ReviveResult struct {
	SessionID string `json:"session_id"`
	ReviverID string `json:"reviver_id"`
	TargetID  string `json:"target_id"`
	TeamID    int    `json:"team_id"`
}

// Leaderboard is the ranked view over a session: teams and individuals,
// both sorted by damage descending.
type Leaderboard struct {
	SessionID   string           `json:"session_id"`
	BossID      string           `json:"boss_id"`
	Status      SessionStatus    `json:"status"`
	CurrentHP   decimal.Decimal  `json:"current_hp"`
	MaxHP       decimal.Decimal  `json:"max_hp"`
	TotalDamage decimal.Decimal  `json:"total_damage"`
	Teams       []TeamStanding   `json:"teams"`
	Players     []PlayerStanding `json:"players"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Winner      int              `json:"winner"`
}

type TeamStanding struct {
	TeamID      int             `json:"team_id"`
	Name        string          `json:"name"`
	TotalDamage decimal.Decimal `json:"total_damage"`
	PlayerCount int             `json:"player_count"`
	Players     []string        `json:"players"`
}

type PlayerStanding struct {
	PlayerID          string          `json:"player_id"`
	Nickname          string          `json:"nickname"`
	TeamID            int             `json:"team_id"`
	TotalDamage       decimal.Decimal `json:"total_damage"`
	QuestionsAnswered int             `json:"questions_answered"`
	CorrectAnswers    int             `json:"correct_answers"`
	IncorrectAnswers  int             `json:"incorrect_answers"`
	Hearts            int             `json:"hearts"`
	Status            PlayerStatus    `json:"status"`
	Badges            []string        `json:"badges"`
}

// PlayerRanking is a player's 1-based position on the individual leaderboard.
type PlayerRanking struct {
	Rank         int            `json:"rank"`
	TotalPlayers int            `json:"total_players"`
	Player       PlayerStanding `json:"player"`
}

// EngagementSnapshot is a live metrics view over one session.
type EngagementSnapshot struct {
	SessionID      string           `json:"session_id"`
	BossID         string           `json:"boss_id"`
	Status         SessionStatus    `json:"status"`
	TotalPlayers   int              `json:"total_players"`
	ActivePlayers  int              `json:"active_players"`
	KnockedOut     int              `json:"knocked_out"`
	WaitingPlayers int              `json:"waiting_players"`
	CurrentHP      decimal.Decimal  `json:"current_hp"`
	MaxHP          decimal.Decimal  `json:"max_hp"`
	TotalDamage    decimal.Decimal  `json:"total_damage"`
	Teams          []TeamState      `json:"teams"`
	Players        []PlayerStanding `json:"players"`
}

// CooldownStatus reports whether a boss can host a new fight yet.
type CooldownStatus struct {
	BossID     string        `json:"boss_id"`
	OnCooldown bool          `json:"on_cooldown"`
	Remaining  time.Duration `json:"remaining"`
	EndsAt     time.Time     `json:"ends_at"`
}

// BadgeLedger is the full award set produced when a boss is defeated.
type BadgeLedger struct {
	BossDefeated []string `json:"boss_defeated"`
	LastHit      string   `json:"last_hit"`
	MVP          string   `json:"mvp"`
}

// Badge names.
const (
	BadgeBossDefeated = "boss_defeated"
	BadgeLastHit      = "last_hit"
	BadgeMVP          = "mvp"
)

// AnswerMilestones are the correct-answer counts that earn a milestone badge.
var AnswerMilestones = []int{10, 25, 50, 100}

// MilestoneBadge returns the badge name for a correct-answer milestone.
func MilestoneBadge(milestone int) string {
	return "answers_" + strconv.Itoa(milestone)
}
