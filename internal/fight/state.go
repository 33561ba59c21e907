package fight

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
)

const startingHearts = 3

// session is one live boss fight. All fields are guarded by mu; the registry
// is the single writer per session, and timer callbacks re-enter through the
// same lock.
type session struct {
	mu sync.Mutex

	id     string
	boss   domain.BossDefinition
	hostID string
	status domain.SessionStatus

	players map[string]*player
	joinSeq int
	teams   map[int]*team

	currentHP   decimal.Decimal
	maxHP       decimal.Decimal
	totalDamage decimal.Decimal

	startTime     time.Time
	endTime       time.Time
	winningTeamID int

	badges badgeLedger
}

// player is one player's state within a session.
type player struct {
	id        string
	nickname  string
	sessionID string
	bossID    string
	teamID    int // 0 until assigned
	seq       int // join order, tie-break key

	hearts            int
	totalDamage       decimal.Decimal
	questionsAnswered int
	correctAnswers    int
	incorrectAnswers  int
	status            domain.PlayerStatus
	badges            map[string]struct{}

	pending     *pendingQuestion
	dispatchSeq uint64
	revival     *revivalTicket
	asked       map[string]struct{}
}

type team struct {
	id          int
	name        string
	members     map[string]struct{}
	totalDamage decimal.Decimal
}

// pendingQuestion is the single outstanding question for a player. It is
// consumed exactly once, by whichever of answer or timeout runs first; the
// timer is stopped on consumption. token identifies this dispatch, not the
// question: the same question ID can be re-served once a category's pool is
// exhausted, so the timeout guard must not key on it.
type pendingQuestion struct {
	token        uint64
	questionID   string
	text         string
	answers      []domain.DisplayedAnswer
	correctIndex int
	sentAt       time.Time
	timeLimit    time.Duration
	timer        *time.Timer
}

// revivalTicket exists only while its owner is knocked out. Redemption and
// expiry race; whichever removes the ticket first wins.
type revivalTicket struct {
	code      string
	expiresAt time.Time
	timer     *time.Timer
}

type badgeLedger struct {
	milestones   map[string]int // playerID -> highest milestone awarded
	bossDefeated []string
	lastHit      string
	mvp          string
}

func newBadgeLedger() badgeLedger {
	return badgeLedger{milestones: make(map[string]int)}
}

// cancelTimers stops every outstanding timer owned by the session's players.
// Callers hold s.mu. Stale callbacks that already fired find their guarded
// entity gone and no-op.
func (s *session) cancelTimers() {
	for _, p := range s.players {
		if p.pending != nil {
			p.pending.timer.Stop()
			p.pending = nil
		}
		if p.revival != nil {
			p.revival.timer.Stop()
			p.revival = nil
		}
	}
}

// playersBySeq returns the players in join order. Callers hold s.mu.
func (s *session) playersBySeq() []*player {
	ps := make([]*player, 0, len(s.players))
	for _, p := range s.players {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].seq < ps[j].seq })
	return ps
}

// teamsByID returns the teams ordered by teamID. Callers hold s.mu.
func (s *session) teamsByID() []*team {
	ts := make([]*team, 0, len(s.teams))
	for _, t := range s.teams {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].id < ts[j].id })
	return ts
}

// view builds the external session snapshot. Callers hold s.mu.
func (s *session) view() *domain.Session {
	return &domain.Session{
		SessionID:     s.id,
		BossID:        s.boss.ID,
		BossName:      s.boss.Name,
		HostID:        s.hostID,
		Status:        s.status,
		CurrentHP:     s.currentHP,
		MaxHP:         s.maxHP,
		TotalDamage:   s.totalDamage,
		TotalPlayers:  len(s.players),
		Teams:         s.teamStates(),
		StartTime:     s.startTime,
		EndTime:       s.endTime,
		WinningTeamID: s.winningTeamID,
	}
}

func (s *session) teamStates() []domain.TeamState {
	ts := make([]domain.TeamState, 0, len(s.teams))
	for _, t := range s.teamsByID() {
		ts = append(ts, domain.TeamState{
			TeamID:      t.id,
			Name:        t.name,
			PlayerCount: len(t.members),
			Players:     sortedKeys(t.members),
			TotalDamage: t.totalDamage,
		})
	}
	return ts
}

func (p *player) view() *domain.PlayerState {
	return &domain.PlayerState{
		PlayerID:          p.id,
		Nickname:          p.nickname,
		SessionID:         p.sessionID,
		BossID:            p.bossID,
		TeamID:            p.teamID,
		Hearts:            p.hearts,
		TotalDamage:       p.totalDamage,
		QuestionsAnswered: p.questionsAnswered,
		CorrectAnswers:    p.correctAnswers,
		IncorrectAnswers:  p.incorrectAnswers,
		Status:            p.status,
		Badges:            sortedKeys(p.badges),
	}
}

func (p *player) standing() domain.PlayerStanding {
	return domain.PlayerStanding{
		PlayerID:          p.id,
		Nickname:          p.nickname,
		TeamID:            p.teamID,
		TotalDamage:       p.totalDamage,
		QuestionsAnswered: p.questionsAnswered,
		CorrectAnswers:    p.correctAnswers,
		IncorrectAnswers:  p.incorrectAnswers,
		Hearts:            p.hearts,
		Status:            p.status,
		Badges:            sortedKeys(p.badges),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
