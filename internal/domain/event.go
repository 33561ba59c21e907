package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event names published on the bus. The transport relay fans these out to
// per-session (or per-boss) channels.
const (
	EventNameSessionCreated     = "session.created"
	EventNamePlayerJoined       = "player.joined"
	EventNamePlayerReady        = "player.ready"
	EventNameSessionStarted     = "session.started"
	EventNameQuestionSent       = "question.sent"
	EventNameAnswerSubmitted    = "answer.submitted"
	EventNameQuestionTimeout    = "question.timeout"
	EventNameDamageDealt        = "damage.dealt"
	EventNameBadgeAwarded       = "badge.awarded"
	EventNameKnockedOut         = "player.knocked_out"
	EventNamePlayerRevived      = "player.revived"
	EventNameRevivalExpired     = "revival.expired"
	EventNameBossDefeated       = "boss.defeated"
	EventNameBadgesAwarded      = "badges.awarded"
	EventNameCooldownStarted    = "cooldown.started"
	EventNameCooldownEnded      = "cooldown.ended"
	EventNameSessionEnded       = "session.ended"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

// Scoped routes an event to its pub/sub audience: ("session", sessionID) for
// in-fight events, ("boss", bossID) for events that outlive a session.
type Scoped interface {
	Scope() (kind, id string)
}

type EventSessionCreated struct {
	SessionID     string        `json:"session_id"`
	BossID        string        `json:"boss_id"`
	BossName      string        `json:"boss_name"`
	Status        SessionStatus `json:"status"`
	NumberOfTeams int           `json:"number_of_teams"`
	Teams         []TeamState   `json:"teams"`
}

func (EventSessionCreated) Name() string              { return EventNameSessionCreated }
func (e EventSessionCreated) Scope() (string, string) { return "boss", e.BossID }

type EventPlayerJoined struct {
	SessionID    string          `json:"session_id"`
	PlayerID     string          `json:"player_id"`
	Nickname     string          `json:"nickname"`
	TotalPlayers int             `json:"total_players"`
	BossHP       decimal.Decimal `json:"boss_hp"`
	MaxHP        decimal.Decimal `json:"max_hp"`
	HPIncrease   decimal.Decimal `json:"hp_increase"`
}

func (EventPlayerJoined) Name() string              { return EventNamePlayerJoined }
func (e EventPlayerJoined) Scope() (string, string) { return "session", e.SessionID }

type EventPlayerReady struct {
	SessionID    string `json:"session_id"`
	PlayerID     string `json:"player_id"`
	TeamID       int    `json:"team_id"`
	ReadyPlayers int    `json:"ready_players"`
	CanStart     bool   `json:"can_start"`
}

func (EventPlayerReady) Name() string              { return EventNamePlayerReady }
func (e EventPlayerReady) Scope() (string, string) { return "session", e.SessionID }

type StartedPlayer struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	TeamID   int    `json:"team_id"`
}

type EventSessionStarted struct {
	SessionID string          `json:"session_id"`
	BossID    string          `json:"boss_id"`
	StartTime time.Time       `json:"start_time"`
	Players   []StartedPlayer `json:"players"`
}

func (EventSessionStarted) Name() string              { return EventNameSessionStarted }
func (e EventSessionStarted) Scope() (string, string) { return "session", e.SessionID }

type EventQuestionSent struct {
	SessionID string       `json:"session_id"`
	PlayerID  string       `json:"player_id"`
	Question  QuestionView `json:"question"`
}

func (EventQuestionSent) Name() string              { return EventNameQuestionSent }
func (e EventQuestionSent) Scope() (string, string) { return "session", e.SessionID }

type EventAnswerSubmitted struct {
	SessionID       string          `json:"session_id"`
	PlayerID        string          `json:"player_id"`
	QuestionID      string          `json:"question_id"`
	Correct         bool            `json:"correct"`
	ResponseTime    time.Duration   `json:"response_time"`
	Damage          decimal.Decimal `json:"damage"`
	HeartsRemaining int             `json:"hearts_remaining"`
}

func (EventAnswerSubmitted) Name() string              { return EventNameAnswerSubmitted }
func (e EventAnswerSubmitted) Scope() (string, string) { return "session", e.SessionID }

type EventQuestionTimeout struct {
	SessionID       string `json:"session_id"`
	PlayerID        string `json:"player_id"`
	QuestionID      string `json:"question_id"`
	HeartsRemaining int    `json:"hearts_remaining"`
}

func (EventQuestionTimeout) Name() string              { return EventNameQuestionTimeout }
func (e EventQuestionTimeout) Scope() (string, string) { return "session", e.SessionID }

type EventDamageDealt struct {
	SessionID   string          `json:"session_id"`
	PlayerID    string          `json:"player_id"`
	Nickname    string          `json:"nickname"`
	TeamID      int             `json:"team_id"`
	Damage      decimal.Decimal `json:"damage"`
	BossHP      decimal.Decimal `json:"boss_hp"`
	TeamDamage  decimal.Decimal `json:"team_damage"`
	TotalDamage decimal.Decimal `json:"total_damage"`
}

func (EventDamageDealt) Name() string              { return EventNameDamageDealt }
func (e EventDamageDealt) Scope() (string, string) { return "session", e.SessionID }

type EventBadgeAwarded struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Badge     string `json:"badge"`
	Milestone int    `json:"milestone"`
}

func (EventBadgeAwarded) Name() string              { return EventNameBadgeAwarded }
func (e EventBadgeAwarded) Scope() (string, string) { return "session", e.SessionID }

type Reviver struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Hearts   int    `json:"hearts"`
}

type EventPlayerKnockedOut struct {
	SessionID   string    `json:"session_id"`
	PlayerID    string    `json:"player_id"`
	TeamID      int       `json:"team_id"`
	RevivalCode string    `json:"revival_code"`
	ExpiresAt   time.Time `json:"expires_at"`
	Revivers    []Reviver `json:"revivers"`
}

func (EventPlayerKnockedOut) Name() string              { return EventNameKnockedOut }
func (e EventPlayerKnockedOut) Scope() (string, string) { return "session", e.SessionID }

type EventPlayerRevived struct {
	SessionID string `json:"session_id"`
	ReviverID string `json:"reviver_id"`
	TargetID  string `json:"target_id"`
	TeamID    int    `json:"team_id"`
}

func (EventPlayerRevived) Name() string              { return EventNamePlayerRevived }
func (e EventPlayerRevived) Scope() (string, string) { return "session", e.SessionID }

type EventRevivalExpired struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

func (EventRevivalExpired) Name() string              { return EventNameRevivalExpired }
func (e EventRevivalExpired) Scope() (string, string) { return "session", e.SessionID }

type EventBossDefeated struct {
	SessionID     string                  `json:"session_id"`
	BossID        string                  `json:"boss_id"`
	WinningTeamID int                     `json:"winning_team_id"`
	EndTime       time.Time               `json:"end_time"`
	TotalDamage   decimal.Decimal         `json:"total_damage"`
	TeamDamage    map[int]decimal.Decimal `json:"team_damage"`
}

func (EventBossDefeated) Name() string              { return EventNameBossDefeated }
func (e EventBossDefeated) Scope() (string, string) { return "session", e.SessionID }

type EventBadgesAwarded struct {
	SessionID string        `json:"session_id"`
	Badges    BadgeLedger   `json:"badges"`
	Duration  time.Duration `json:"duration"`
}

func (EventBadgesAwarded) Name() string              { return EventNameBadgesAwarded }
func (e EventBadgesAwarded) Scope() (string, string) { return "session", e.SessionID }

type EventCooldownStarted struct {
	SessionID string        `json:"session_id"`
	BossID    string        `json:"boss_id"`
	Duration  time.Duration `json:"duration"`
	EndsAt    time.Time     `json:"ends_at"`
}

func (EventCooldownStarted) Name() string              { return EventNameCooldownStarted }
func (e EventCooldownStarted) Scope() (string, string) { return "boss", e.BossID }

type EventCooldownEnded struct {
	BossID string        `json:"boss_id"`
	Status SessionStatus `json:"status"`
}

func (EventCooldownEnded) Name() string              { return EventNameCooldownEnded }
func (e EventCooldownEnded) Scope() (string, string) { return "boss", e.BossID }

type EventSessionEnded struct {
	SessionID string    `json:"session_id"`
	BossID    string    `json:"boss_id"`
	EndTime   time.Time `json:"end_time"`
}

func (EventSessionEnded) Name() string              { return EventNameSessionEnded }
func (e EventSessionEnded) Scope() (string, string) { return "boss", e.BossID }

// DamageEntry is one row of the redis-mirrored damage board.
type DamageEntry struct {
	PlayerID string  `json:"player_id"`
	Damage   float64 `json:"damage"`
}

type EventLeaderboardUpdated struct {
	SessionID string        `json:"session_id"`
	Entries   []DamageEntry `json:"entries"`
}

func (EventLeaderboardUpdated) Name() string              { return EventNameLeaderboardUpdated }
func (e EventLeaderboardUpdated) Scope() (string, string) { return "session", e.SessionID }
