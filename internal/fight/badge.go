package fight

import (
	"github.com/shopspring/decimal"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
)

// checkMilestones awards any correct-answer milestones the player newly
// crossed. The per-player watermark makes each award idempotent.
// Callers hold sess.mu.
func checkMilestones(sess *session, p *player) []domain.EventBadgeAwarded {
	current := sess.badges.milestones[p.id]

	var awards []domain.EventBadgeAwarded
	for _, milestone := range domain.AnswerMilestones {
		if p.correctAnswers >= milestone && current < milestone {
			sess.badges.milestones[p.id] = milestone
			current = milestone
			badge := domain.MilestoneBadge(milestone)
			p.badges[badge] = struct{}{}
			awards = append(awards, domain.EventBadgeAwarded{
				SessionID: sess.id,
				PlayerID:  p.id,
				Badge:     badge,
				Milestone: milestone,
			})
		}
	}
	return awards
}

// winningTeam returns the team with strictly greatest damage, or 0 when the
// top teams tie. Teams are scanned by ascending ID so the result is
// deterministic. Callers hold sess.mu.
func winningTeam(sess *session) int {
	winner := 0
	best := decimal.Zero
	tied := false

	for _, t := range sess.teamsByID() {
		switch {
		case t.totalDamage.GreaterThan(best):
			best = t.totalDamage
			winner = t.id
			tied = false
		case t.totalDamage.Equal(best) && winner != 0:
			tied = true
		}
	}

	if tied || best.IsZero() {
		return 0
	}
	return winner
}

// awardEndOfFight hands out the defeat badges: every member of the winning
// team, the last hit, and the MVP. The MVP scan runs in join order, so damage
// ties resolve to the earliest joiner. Callers hold sess.mu.
func awardEndOfFight(sess *session, lastHit *player) domain.BadgeLedger {
	ledger := domain.BadgeLedger{}

	if sess.winningTeamID != 0 {
		for _, p := range sess.playersBySeq() {
			if p.teamID == sess.winningTeamID {
				p.badges[domain.BadgeBossDefeated] = struct{}{}
				ledger.BossDefeated = append(ledger.BossDefeated, p.id)
			}
		}
		sess.badges.bossDefeated = ledger.BossDefeated
	}

	if lastHit != nil {
		lastHit.badges[domain.BadgeLastHit] = struct{}{}
		sess.badges.lastHit = lastHit.id
		ledger.LastHit = lastHit.id
	}

	if mvp := findMVP(sess); mvp != nil {
		mvp.badges[domain.BadgeMVP] = struct{}{}
		sess.badges.mvp = mvp.id
		ledger.MVP = mvp.id
	}

	return ledger
}

// findMVP picks the player with strictly greatest damage, earliest joiner on
// ties. Callers hold sess.mu.
func findMVP(sess *session) *player {
	var mvp *player
	best := decimal.Zero

	for _, p := range sess.playersBySeq() {
		if p.totalDamage.GreaterThan(best) {
			best = p.totalDamage
			mvp = p
		}
	}
	return mvp
}
