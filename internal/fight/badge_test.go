package fight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
)

func TestCheckMilestones(t *testing.T) {
	sess := &session{id: "s1", badges: newBadgeLedger()}
	p := &player{id: "p1", correctAnswers: 10, badges: make(map[string]struct{})}

	awards := checkMilestones(sess, p)
	require.Len(t, awards, 1)
	require.Equal(t, "answers_10", awards[0].Badge)
	require.Equal(t, 10, awards[0].Milestone)
	require.Contains(t, p.badges, "answers_10")

	// Reaching the same milestone again awards nothing.
	require.Empty(t, checkMilestones(sess, p))

	// Jumping past several milestones awards each of them once.
	p.correctAnswers = 50
	awards = checkMilestones(sess, p)
	require.Len(t, awards, 2)
	require.Equal(t, "answers_25", awards[0].Badge)
	require.Equal(t, "answers_50", awards[1].Badge)
}

func TestWinningTeam(t *testing.T) {
	tests := map[string]struct {
		damage map[int]float64
		want   int
	}{
		"clear winner": {
			damage: map[int]float64{1: 3, 2: 5},
			want:   2,
		},
		"tied top damage has no winner": {
			damage: map[int]float64{1: 5, 2: 5},
			want:   0,
		},
		"no damage has no winner": {
			damage: map[int]float64{1: 0, 2: 0},
			want:   0,
		},
		"tie below the top does not block the winner": {
			damage: map[int]float64{1: 2, 2: 2, 3: 7},
			want:   3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sess := &session{teams: make(map[int]*team)}
			for id, d := range tt.damage {
				sess.teams[id] = &team{id: id, totalDamage: decimal.NewFromFloat(d)}
			}

			require.Equal(t, tt.want, winningTeam(sess))
		})
	}
}

func TestFindMVP(t *testing.T) {
	sess := &session{
		players: map[string]*player{
			"p1": {id: "p1", seq: 1, totalDamage: decimal.NewFromInt(4)},
			"p2": {id: "p2", seq: 2, totalDamage: decimal.NewFromInt(4)},
			"p3": {id: "p3", seq: 3, totalDamage: decimal.NewFromInt(2)},
		},
	}

	mvp := findMVP(sess)
	require.NotNil(t, mvp)
	require.Equal(t, "p1", mvp.id, "damage ties resolve to the earliest joiner")
}

func TestFindMVP_NoDamage(t *testing.T) {
	sess := &session{
		players: map[string]*player{
			"p1": {id: "p1", seq: 1},
		},
	}
	require.Nil(t, findMVP(sess))
}

func TestAwardEndOfFight(t *testing.T) {
	sess := &session{
		id:            "s1",
		winningTeamID: 1,
		badges:        newBadgeLedger(),
		players: map[string]*player{
			"p1": {id: "p1", seq: 1, teamID: 1, totalDamage: decimal.NewFromInt(10), badges: make(map[string]struct{})},
			"p2": {id: "p2", seq: 2, teamID: 1, totalDamage: decimal.NewFromInt(5), badges: make(map[string]struct{})},
			"p3": {id: "p3", seq: 3, teamID: 2, totalDamage: decimal.NewFromInt(8), badges: make(map[string]struct{})},
		},
		teams: map[int]*team{
			1: {id: 1},
			2: {id: 2},
		},
	}

	ledger := awardEndOfFight(sess, sess.players["p3"])

	require.Equal(t, []string{"p1", "p2"}, ledger.BossDefeated, "winning team members in join order")
	require.Equal(t, "p3", ledger.LastHit)
	require.Equal(t, "p1", ledger.MVP)

	require.Contains(t, sess.players["p1"].badges, domain.BadgeBossDefeated)
	require.Contains(t, sess.players["p1"].badges, domain.BadgeMVP)
	require.Contains(t, sess.players["p3"].badges, domain.BadgeLastHit)
	require.NotContains(t, sess.players["p3"].badges, domain.BadgeBossDefeated)
}
