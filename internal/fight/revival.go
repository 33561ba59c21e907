package fight

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/telemetry"
)

const (
	revivalCodeLength   = 6
	revivalCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func newRevivalCode() string {
	b := make([]byte, revivalCodeLength)
	for i := range b {
		b[i] = revivalCodeAlphabet[rand.IntN(len(revivalCodeAlphabet))]
	}
	return string(b)
}

// knockOut moves a player to the knocked-out state and issues a time-limited
// revival ticket. Callers hold sess.mu.
func (s *Service) knockOut(ctx context.Context, sess *session, p *player) {
	p.status = domain.PlayerKnockedOut

	code := newRevivalCode()
	expiresAt := time.Now().Add(s.revivalTimeout)

	playerID := p.id
	p.revival = &revivalTicket{
		code:      code,
		expiresAt: expiresAt,
		timer: time.AfterFunc(s.revivalTimeout, func() {
			s.handleRevivalExpiry(sess, playerID, code)
		}),
	}

	telemetry.Knockouts.Inc()

	s.eb.Publish(ctx, domain.EventPlayerKnockedOut{
		SessionID:   sess.id,
		PlayerID:    p.id,
		TeamID:      p.teamID,
		RevivalCode: code,
		ExpiresAt:   expiresAt,
		Revivers:    availableRevivers(sess, p),
	})
}

// availableRevivers lists the knocked-out player's active teammates.
// Callers hold sess.mu.
func availableRevivers(sess *session, target *player) []domain.Reviver {
	var revivers []domain.Reviver
	for _, p := range sess.playersBySeq() {
		if p.teamID == target.teamID && p.status == domain.PlayerActive && p.id != target.id {
			revivers = append(revivers, domain.Reviver{
				PlayerID: p.id,
				Nickname: p.nickname,
				Hearts:   p.hearts,
			})
		}
	}
	return revivers
}

// ReviveAttempt redeems a revival code. The ticket is removed atomically:
// a revive racing the expiry timer either wins outright or fails, never both.
func (s *Service) ReviveAttempt(ctx context.Context, reviverID, targetID, code string) (*domain.ReviveResult, error) {
	sess, err := s.sessionByPlayer(reviverID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	reviver := sess.players[reviverID]
	target := sess.players[targetID]
	if reviver == nil || target == nil {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("player session not found: reviver=%s target=%s", reviverID, targetID))
	}

	if sess.status != domain.SessionActive {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("boss fight not active: session=%s", sess.id))
	}
	if reviver.status != domain.PlayerActive {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("reviver must be active: player=%s", reviverID))
	}
	if target.status != domain.PlayerKnockedOut {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("target is not knocked out: player=%s", targetID))
	}

	ticket := target.revival
	if ticket == nil {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no revival ticket: player=%s", targetID))
	}
	if ticket.code != code {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid revival code: player=%s", targetID))
	}
	if time.Now().After(ticket.expiresAt) {
		return nil, errors.New(errors.CodeDeadlineExceeded,
			errors.WithMessagef("revival code expired: player=%s", targetID))
	}

	// Redeem: the armed expiry timer is now stale.
	ticket.timer.Stop()
	target.revival = nil
	target.hearts = startingHearts
	target.status = domain.PlayerActive

	telemetry.Revivals.Inc()

	s.eb.Publish(ctx, domain.EventPlayerRevived{
		SessionID: sess.id,
		ReviverID: reviverID,
		TargetID:  targetID,
		TeamID:    target.teamID,
	})

	s.scheduleNextQuestion(sess, target)

	return &domain.ReviveResult{
		SessionID: sess.id,
		ReviverID: reviverID,
		TargetID:  targetID,
		TeamID:    target.teamID,
	}, nil
}

// handleRevivalExpiry is the ticket's timer path. It fires only if the ticket
// is still outstanding; the player stays knocked out but remains in the
// session.
func (s *Service) handleRevivalExpiry(sess *session, playerID, code string) {
	ctx := context.Background()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	p := sess.players[playerID]
	if p == nil || p.revival == nil || p.revival.code != code {
		return // redeemed, or the session moved on
	}
	if p.status != domain.PlayerKnockedOut {
		return
	}

	p.revival = nil

	s.eb.Publish(ctx, domain.EventRevivalExpired{
		SessionID: sess.id,
		PlayerID:  playerID,
	})
}
