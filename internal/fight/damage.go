package fight

import (
	"time"

	"github.com/shopspring/decimal"
)

// HP scaling: a fight needs at least minimumHP worth of correct answers, plus
// a per-player increment so big lobbies don't melt the boss instantly.
const (
	minimumHP       = 30
	hpPerPlayer     = 5
	fastAnswerLimit = 10 * time.Second
	slowAnswerLimit = 25 * time.Second
)

var (
	damageFast   = decimal.NewFromFloat(1.5)
	damageNormal = decimal.NewFromInt(1)
	damageSlow   = decimal.NewFromFloat(0.5)
)

// damageForResponseTime tiers damage by how fast the correct answer came in.
// Timeouts never reach here; they are scored as incorrect.
func damageForResponseTime(rt time.Duration) decimal.Decimal {
	switch {
	case rt <= fastAnswerLimit:
		return damageFast
	case rt <= slowAnswerLimit:
		return damageNormal
	default:
		return damageSlow
	}
}

// scaleMaxHP raises the boss HP pool for the given player count and returns
// the delta. HP only ever grows while a fight is live; currentHP rises by the
// same delta so accumulated damage is preserved. Callers hold s.mu.
func scaleMaxHP(s *session, playerCount int) decimal.Decimal {
	target := decimal.NewFromInt(int64(max(minimumHP, minimumHP+playerCount*hpPerPlayer)))

	if target.LessThanOrEqual(s.maxHP) {
		return decimal.Zero
	}

	delta := target.Sub(s.maxHP)
	s.maxHP = target
	s.currentHP = s.currentHP.Add(delta)
	return delta
}

// applyDamage clamps boss HP at zero and keeps the session, team and player
// damage totals in lockstep. Callers hold s.mu.
func applyDamage(s *session, p *player, amount decimal.Decimal) {
	s.currentHP = decimal.Max(decimal.Zero, s.currentHP.Sub(amount))
	s.totalDamage = s.totalDamage.Add(amount)
	p.totalDamage = p.totalDamage.Add(amount)

	if t := s.teams[p.teamID]; t != nil {
		t.totalDamage = t.totalDamage.Add(amount)
	}
}

// isDefeated reports whether the boss HP pool is depleted. Callers hold s.mu.
func isDefeated(s *session) bool {
	return s.currentHP.LessThanOrEqual(decimal.Zero)
}
