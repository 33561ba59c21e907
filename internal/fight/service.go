package fight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/event"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/telemetry"
)

// BossRepository is the external catalog of boss definitions.
type BossRepository interface {
	BossByID(ctx context.Context, bossID string) (*domain.BossDefinition, error)
}

// QuestionProvider serves random questions for a category, excluding IDs the
// player has already seen.
type QuestionProvider interface {
	RandomQuestion(ctx context.Context, categoryID string, excludeIDs []string) (*domain.Question, error)
}

const (
	defaultQuestionTimeLimit = 30 * time.Second
	defaultQuestionDelay     = time.Second
	defaultRevivalTimeout    = 60 * time.Second
)

type Config struct {
	EventBus  *event.Bus
	Bosses    BossRepository
	Questions QuestionProvider

	// Zero values fall back to the engine defaults. Tests shrink these.
	QuestionTimeLimit time.Duration
	QuestionDelay     time.Duration
	RevivalTimeout    time.Duration
}

// Service is the session registry: it owns every live boss fight, the global
// player index, and the cooldown timers, and it emits the domain event stream.
type Service struct {
	eb        *event.Bus
	bosses    BossRepository
	questions QuestionProvider

	questionTimeLimit time.Duration
	questionDelay     time.Duration
	revivalTimeout    time.Duration

	mu       sync.RWMutex
	byBoss   map[string]*session
	byPlayer map[string]*session

	cooldowns *cooldownScheduler
}

func NewService(c Config) *Service {
	s := &Service{
		eb:                c.EventBus,
		bosses:            c.Bosses,
		questions:         c.Questions,
		questionTimeLimit: c.QuestionTimeLimit,
		questionDelay:     c.QuestionDelay,
		revivalTimeout:    c.RevivalTimeout,
		byBoss:            make(map[string]*session),
		byPlayer:          make(map[string]*session),
		cooldowns:         newCooldownScheduler(),
	}

	if s.questionTimeLimit == 0 {
		s.questionTimeLimit = defaultQuestionTimeLimit
	}
	if s.questionDelay == 0 {
		s.questionDelay = defaultQuestionDelay
	}
	if s.revivalTimeout == 0 {
		s.revivalTimeout = defaultRevivalTimeout
	}

	return s
}

// CreateSession spawns a new boss fight for the boss. At most one non-ended
// session may exist per boss, and a boss on cooldown cannot spawn.
func (s *Service) CreateSession(ctx context.Context, bossID, hostID string) (*domain.Session, error) {
	if err := s.checkSpawnable(bossID); err != nil {
		return nil, err
	}

	// Catalog fetch happens before any lock is held for mutation.
	boss, err := s.bosses.BossByID(ctx, bossID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	sess := &session{
		id:        id.String(),
		boss:      *boss,
		hostID:    hostID,
		status:    domain.SessionWaiting,
		players:   make(map[string]*player),
		teams:     initializeTeams(boss.NumberOfTeams, id.String()),
		currentHP: decimal.NewFromInt(minimumHP),
		maxHP:     decimal.NewFromInt(minimumHP),
		badges:    newBadgeLedger(),
	}

	s.mu.Lock()
	// The spawnability check reruns under the write lock; a racing create may
	// have won in between.
	if err := s.checkSpawnableLocked(bossID); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.byBoss[bossID] = sess
	s.mu.Unlock()

	telemetry.SessionsCreated.Inc()
	telemetry.ActiveSessions.Inc()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.eb.Publish(ctx, domain.EventSessionCreated{
		SessionID:     sess.id,
		BossID:        bossID,
		BossName:      boss.Name,
		Status:        sess.status,
		NumberOfTeams: boss.NumberOfTeams,
		Teams:         sess.teamStates(),
	})

	return sess.view(), nil
}

func (s *Service) checkSpawnable(bossID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkSpawnableLocked(bossID)
}

func (s *Service) checkSpawnableLocked(bossID string) error {
	if _, ok := s.byBoss[bossID]; ok {
		return errors.New(errors.CodeAlreadyExists,
			errors.WithMessagef("boss fight already exists: boss=%s", bossID))
	}
	if s.cooldowns.isOnCooldown(bossID) {
		return errors.New(errors.CodeAlreadyExists,
			errors.WithMessagef("boss is on cooldown: boss=%s", bossID))
	}
	return nil
}

// JoinSession adds a player to the boss's live session. Joining twice with
// the same player ID is idempotent and returns the existing state.
func (s *Service) JoinSession(ctx context.Context, bossID, playerID, nickname string) (*domain.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byBoss[bossID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("boss fight not found: boss=%s", bossID))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.status == domain.SessionEnded {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("boss fight has ended: boss=%s", bossID))
	}

	if p, ok := sess.players[playerID]; ok {
		return p.view(), nil
	}

	sess.joinSeq++
	p := &player{
		id:        playerID,
		nickname:  nickname,
		sessionID: sess.id,
		bossID:    bossID,
		seq:       sess.joinSeq,
		hearts:    startingHearts,
		status:    domain.PlayerWaiting,
		badges:    make(map[string]struct{}),
		asked:     make(map[string]struct{}),
	}
	sess.players[playerID] = p
	s.byPlayer[playerID] = sess

	delta := scaleMaxHP(sess, len(sess.players))

	s.eb.Publish(ctx, domain.EventPlayerJoined{
		SessionID:    sess.id,
		PlayerID:     playerID,
		Nickname:     nickname,
		TotalPlayers: len(sess.players),
		BossHP:       sess.currentHP,
		MaxHP:        sess.maxHP,
		HPIncrease:   delta,
	})

	return p.view(), nil
}

// MarkReady confirms a player for battle, assigning a team if needed. When
// the start predicate holds, the session goes active and every ready player
// gets their first question.
func (s *Service) MarkReady(ctx context.Context, playerID string) error {
	sess, err := s.sessionByPlayer(playerID)
	if err != nil {
		return err
	}

	sess.mu.Lock()

	p := sess.players[playerID]
	if p == nil {
		sess.mu.Unlock()
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef("player session not found: player=%s", playerID))
	}

	if sess.status == domain.SessionCooldown {
		sess.mu.Unlock()
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("boss is on cooldown: boss=%s", sess.boss.ID))
	}

	if p.teamID == 0 {
		p.teamID = assignTeam(sess, playerID)
	}
	p.status = domain.PlayerReady

	ready := sess.readyPlayers()
	start := sess.status == domain.SessionWaiting && canStart(ready)

	s.eb.Publish(ctx, domain.EventPlayerReady{
		SessionID:    sess.id,
		PlayerID:     playerID,
		TeamID:       p.teamID,
		ReadyPlayers: len(ready),
		CanStart:     start,
	})

	var activated []string
	if start {
		activated = s.startFight(ctx, sess)
	}
	sess.mu.Unlock()

	// First questions are fetched outside the session lock.
	for _, pid := range activated {
		go s.dispatchQuestion(sess, pid)
	}

	return nil
}

// startFight flips the session to active. Callers hold sess.mu.
func (s *Service) startFight(ctx context.Context, sess *session) []string {
	sess.status = domain.SessionActive
	sess.startTime = time.Now()

	var started []domain.StartedPlayer
	var activated []string
	for _, p := range sess.playersBySeq() {
		if p.status == domain.PlayerReady {
			p.status = domain.PlayerActive
			activated = append(activated, p.id)
		}
		started = append(started, domain.StartedPlayer{
			PlayerID: p.id,
			Nickname: p.nickname,
			TeamID:   p.teamID,
		})
	}

	telemetry.SessionsStarted.Inc()

	s.eb.Publish(ctx, domain.EventSessionStarted{
		SessionID: sess.id,
		BossID:    sess.boss.ID,
		StartTime: sess.startTime,
		Players:   started,
	})

	return activated
}

// EndSession tears the session down. Only the host may end a fight; every
// outstanding timer is cancelled so nothing fires into the dead session.
func (s *Service) EndSession(ctx context.Context, bossID, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byBoss[bossID]
	if !ok {
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef("boss fight not found: boss=%s", bossID))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.hostID != hostID {
		return errors.New(errors.CodePermissionDenied,
			errors.WithMessagef("only the host can end the boss fight: boss=%s", bossID))
	}

	sess.cancelTimers()
	s.cooldowns.clear(bossID)

	sess.status = domain.SessionEnded
	sess.endTime = time.Now()

	for playerID := range sess.players {
		delete(s.byPlayer, playerID)
	}
	delete(s.byBoss, bossID)
	telemetry.ActiveSessions.Dec()

	s.eb.Publish(ctx, domain.EventSessionEnded{
		SessionID: sess.id,
		BossID:    bossID,
		EndTime:   sess.endTime,
	})

	return nil
}

// defeatBoss runs the Active -> Defeated -> Cooldown transition in one
// logical step. Callers hold sess.mu.
func (s *Service) defeatBoss(ctx context.Context, sess *session, lastHit *player) {
	sess.status = domain.SessionDefeated
	sess.endTime = time.Now()
	sess.currentHP = decimal.Zero

	// Remaining question and revival timers are dead weight now.
	sess.cancelTimers()

	sess.winningTeamID = winningTeam(sess)

	teamDamage := make(map[int]decimal.Decimal, len(sess.teams))
	for id, t := range sess.teams {
		teamDamage[id] = t.totalDamage
	}

	telemetry.BossesDefeated.Inc()

	s.eb.Publish(ctx, domain.EventBossDefeated{
		SessionID:     sess.id,
		BossID:        sess.boss.ID,
		WinningTeamID: sess.winningTeamID,
		EndTime:       sess.endTime,
		TotalDamage:   sess.totalDamage,
		TeamDamage:    teamDamage,
	})

	ledger := awardEndOfFight(sess, lastHit)
	s.eb.Publish(ctx, domain.EventBadgesAwarded{
		SessionID: sess.id,
		Badges:    ledger,
		Duration:  sess.endTime.Sub(sess.startTime),
	})

	s.startCooldown(ctx, sess)
}

// startCooldown arms the per-boss cooldown timer. Callers hold sess.mu.
func (s *Service) startCooldown(ctx context.Context, sess *session) {
	d := time.Duration(sess.boss.CooldownSeconds) * time.Second
	endsAt := s.cooldowns.start(sess.boss.ID, d, s.onCooldownElapsed)

	sess.status = domain.SessionCooldown

	s.eb.Publish(ctx, domain.EventCooldownStarted{
		SessionID: sess.id,
		BossID:    sess.boss.ID,
		Duration:  d,
		EndsAt:    endsAt,
	})
}

// onCooldownElapsed resets the session for the next fight: full HP, zeroed
// damage, every player back to three hearts in the waiting state.
func (s *Service) onCooldownElapsed(bossID string) {
	ctx := context.Background()

	s.mu.RLock()
	sess := s.byBoss[bossID]
	s.mu.RUnlock()

	if sess != nil {
		sess.mu.Lock()
		if sess.status == domain.SessionCooldown {
			sess.currentHP = sess.maxHP
			sess.totalDamage = decimal.Zero
			for _, t := range sess.teams {
				t.totalDamage = decimal.Zero
			}
			sess.startTime = time.Time{}
			sess.endTime = time.Time{}
			sess.winningTeamID = 0

			for _, p := range sess.players {
				p.hearts = startingHearts
				p.status = domain.PlayerWaiting
				p.totalDamage = decimal.Zero
				p.pending = nil
				p.revival = nil
			}

			sess.status = domain.SessionWaiting
		}
		sess.mu.Unlock()
	}

	s.eb.Publish(ctx, domain.EventCooldownEnded{
		BossID: bossID,
		Status: domain.SessionWaiting,
	})
}

// CooldownStatus reports the boss's cooldown timer.
func (s *Service) CooldownStatus(_ context.Context, bossID string) *domain.CooldownStatus {
	remaining, endsAt := s.cooldowns.remaining(bossID)
	return &domain.CooldownStatus{
		BossID:     bossID,
		OnCooldown: s.cooldowns.isOnCooldown(bossID),
		Remaining:  remaining,
		EndsAt:     endsAt,
	}
}

// GetEngagementSnapshot captures live per-player and per-team stats.
func (s *Service) GetEngagementSnapshot(_ context.Context, bossID string) (*domain.EngagementSnapshot, error) {
	s.mu.RLock()
	sess := s.byBoss[bossID]
	s.mu.RUnlock()

	if sess == nil {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("boss fight not found: boss=%s", bossID))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := &domain.EngagementSnapshot{
		SessionID:    sess.id,
		BossID:       bossID,
		Status:       sess.status,
		TotalPlayers: len(sess.players),
		CurrentHP:    sess.currentHP,
		MaxHP:        sess.maxHP,
		TotalDamage:  sess.totalDamage,
		Teams:        sess.teamStates(),
	}

	for _, p := range sess.playersBySeq() {
		switch p.status {
		case domain.PlayerActive:
			snap.ActivePlayers++
		case domain.PlayerKnockedOut:
			snap.KnockedOut++
		case domain.PlayerWaiting:
			snap.WaitingPlayers++
		}
		snap.Players = append(snap.Players, p.standing())
	}

	return snap, nil
}

// GetPlayerState returns the player's current state, or NotFound.
func (s *Service) GetPlayerState(_ context.Context, playerID string) (*domain.PlayerState, error) {
	sess, err := s.sessionByPlayer(playerID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	p := sess.players[playerID]
	if p == nil {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("player session not found: player=%s", playerID))
	}
	return p.view(), nil
}

func (s *Service) sessionByPlayer(playerID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byPlayer[playerID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("player session not found: player=%s", playerID))
	}
	return sess, nil
}

func (s *Service) sessionByID(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.byBoss {
		if sess.id == sessionID {
			return sess, nil
		}
	}
	return nil, errors.New(errors.CodeNotFound,
		errors.WithMessagef("session not found: session=%s", sessionID))
}
