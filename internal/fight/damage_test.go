package fight

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
)

func TestDamageForResponseTime(t *testing.T) {
	tests := map[string]struct {
		responseTime time.Duration
		want         decimal.Decimal
	}{
		"instant answer earns fast damage":         {0, damageFast},
		"fast boundary earns fast damage":          {10 * time.Second, damageFast},
		"just over fast earns normal damage":       {10*time.Second + time.Millisecond, damageNormal},
		"slow boundary earns normal damage":        {25 * time.Second, damageNormal},
		"just over slow earns reduced damage":      {25*time.Second + time.Millisecond, damageSlow},
		"very slow answer earns reduced damage":    {5 * time.Minute, damageSlow},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.True(t, tt.want.Equal(damageForResponseTime(tt.responseTime)))
		})
	}
}

func TestScaleMaxHP(t *testing.T) {
	s := &session{
		currentHP: decimal.NewFromInt(minimumHP),
		maxHP:     decimal.NewFromInt(minimumHP),
	}

	delta := scaleMaxHP(s, 1)
	require.True(t, decimal.NewFromInt(5).Equal(delta))
	require.True(t, decimal.NewFromInt(35).Equal(s.maxHP))
	require.True(t, decimal.NewFromInt(35).Equal(s.currentHP))

	delta = scaleMaxHP(s, 2)
	require.True(t, decimal.NewFromInt(5).Equal(delta))
	require.True(t, decimal.NewFromInt(40).Equal(s.maxHP))

	// HP never shrinks while a fight is live.
	delta = scaleMaxHP(s, 1)
	require.True(t, delta.IsZero())
	require.True(t, decimal.NewFromInt(40).Equal(s.maxHP))
}

func TestScaleMaxHP_PreservesAccumulatedDamage(t *testing.T) {
	s := &session{
		currentHP: decimal.NewFromInt(20),
		maxHP:     decimal.NewFromInt(35),
	}

	scaleMaxHP(s, 2)

	require.True(t, decimal.NewFromInt(40).Equal(s.maxHP))
	require.True(t, decimal.NewFromInt(25).Equal(s.currentHP), "15 damage should still be accounted for")
}

func TestApplyDamage(t *testing.T) {
	p := &player{id: "p1", teamID: 1}
	s := &session{
		currentHP: decimal.NewFromInt(1),
		maxHP:     decimal.NewFromInt(30),
		teams: map[int]*team{
			1: {id: 1, members: map[string]struct{}{"p1": {}}},
		},
	}

	applyDamage(s, p, damageFast)

	require.True(t, s.currentHP.IsZero(), "boss HP should clamp at zero")
	require.True(t, damageFast.Equal(s.totalDamage))
	require.True(t, damageFast.Equal(p.totalDamage))
	require.True(t, damageFast.Equal(s.teams[1].totalDamage))
	require.True(t, isDefeated(s))
}

func TestView_ReflectsTeamsInOrder(t *testing.T) {
	s := &session{
		id:     "s1",
		boss:   domain.BossDefinition{ID: "b1", Name: "Hydra"},
		status: domain.SessionWaiting,
		teams: map[int]*team{
			2: {id: 2, name: "Mighty Wolf", members: map[string]struct{}{}},
			1: {id: 1, name: "Fierce Tiger", members: map[string]struct{}{"p1": {}}},
		},
		players: map[string]*player{
			"p1": {id: "p1", seq: 1},
		},
	}

	v := s.view()
	require.Equal(t, "s1", v.SessionID)
	require.Len(t, v.Teams, 2)
	require.Equal(t, 1, v.Teams[0].TeamID)
	require.Equal(t, 2, v.Teams[1].TeamID)
	require.Equal(t, []string{"p1"}, v.Teams[0].Players)
}
