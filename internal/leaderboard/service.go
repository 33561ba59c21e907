// Package leaderboard mirrors per-player damage totals into Redis sorted
// sets. The in-memory session state stays authoritative; the mirror exists so
// the transport layer can read rankings without touching the engine, and so
// leaderboard refreshes fan out at a bounded rate.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/event"
)

const publishInterval = 200 * time.Millisecond

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
}

type Service struct {
	eb     *event.Bus
	redis  redis.UniversalClient
	prefix string
}

func NewService(c Config) *Service {
	s := &Service{
		eb:     c.EventBus,
		redis:  c.Redis,
		prefix: c.Prefix,
	}

	s.eb.Subscribe(domain.EventNameDamageDealt, func(ctx context.Context, e event.Event) error {
		return s.RecordDamage(ctx, e.(domain.EventDamageDealt))
	})

	s.eb.Subscribe(domain.EventNameSessionEnded, func(ctx context.Context, e event.Event) error {
		return s.DropSession(ctx, e.(domain.EventSessionEnded).SessionID)
	})

	return s
}

type GetDamageBoardRequest struct {
	SessionID string
}

// GetDamageBoard returns the mirrored damage totals, highest first.
func (s *Service) GetDamageBoard(ctx context.Context, req GetDamageBoardRequest) (*domain.EventLeaderboardUpdated, error) {
	res, err := s.redis.ZRevRangeWithScores(ctx, s.boardKey(req.SessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get damage board: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("damage board not found: session=%s", req.SessionID))
	}

	board := &domain.EventLeaderboardUpdated{
		SessionID: req.SessionID,
		Entries:   make([]domain.DamageEntry, 0, len(res)),
	}
	for _, z := range res {
		board.Entries = append(board.Entries, domain.DamageEntry{
			PlayerID: z.Member.(string),
			Damage:   z.Score,
		})
	}

	return board, nil
}

// RecordDamage folds one damage event into the player's mirrored total.
func (s *Service) RecordDamage(ctx context.Context, e domain.EventDamageDealt) error {
	damage, _ := e.Damage.Float64()
	if err := s.redis.ZIncrBy(ctx, s.boardKey(e.SessionID), damage, e.PlayerID).Err(); err != nil {
		return fmt.Errorf("record damage: %w", err)
	}

	return s.schedulePublish(ctx, e.SessionID)
}

// schedulePublish rate-limits leaderboard fan-out: at most one
// leaderboard.updated per session per publish interval, no matter how many
// answers land inside it.
func (s *Service) schedulePublish(ctx context.Context, sessionID string) error {
	ok, err := s.redis.SetNX(ctx, s.timeKey(sessionID), time.Now().UnixMilli(), publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if !ok {
		return nil
	}

	board, err := s.GetDamageBoard(ctx, GetDamageBoardRequest{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("publish damage board: session=%s: %w", sessionID, err)
	}

	s.eb.Publish(ctx, *board)
	return nil
}

// DropSession removes the mirror for an ended session.
func (s *Service) DropSession(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, s.boardKey(sessionID), s.timeKey(sessionID)).Err()
}

func (s *Service) boardKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:damage", s.prefix, sessionID)
}

func (s *Service) timeKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:time", s.prefix, sessionID)
}
