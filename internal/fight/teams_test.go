package fight

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
)

func TestInitializeTeams(t *testing.T) {
	teams := initializeTeams(3, "session-seed")
	require.Len(t, teams, 3)

	names := make(map[string]struct{})
	for id := 1; id <= 3; id++ {
		tm := teams[id]
		require.NotNil(t, tm)
		require.Equal(t, id, tm.id)
		require.NotEmpty(t, tm.name)
		names[tm.name] = struct{}{}
	}
	require.Len(t, names, 3, "team names should be distinct")

	// Same seed, same names.
	again := initializeTeams(3, "session-seed")
	for id := 1; id <= 3; id++ {
		require.Equal(t, teams[id].name, again[id].name)
	}
}

func TestAssignTeam(t *testing.T) {
	s := &session{teams: initializeTeams(2, "s1")}

	require.Equal(t, 1, assignTeam(s, "p1"), "first player goes to the lowest team ID")
	require.Equal(t, 2, assignTeam(s, "p2"), "second player balances onto the empty team")
	require.Equal(t, 1, assignTeam(s, "p3"), "ties break to the lowest team ID")
	require.Equal(t, 2, assignTeam(s, "p4"))

	require.Len(t, s.teams[1].members, 2)
	require.Len(t, s.teams[2].members, 2)
}

func TestCanStart(t *testing.T) {
	tests := map[string]struct {
		ready []*player
		want  bool
	}{
		"no players": {
			ready: nil,
			want:  false,
		},
		"single ready player": {
			ready: []*player{{id: "p1", teamID: 1}},
			want:  false,
		},
		"two ready players on the same team": {
			ready: []*player{{id: "p1", teamID: 1}, {id: "p2", teamID: 1}},
			want:  false,
		},
		"two ready players across two teams": {
			ready: []*player{{id: "p1", teamID: 1}, {id: "p2", teamID: 2}},
			want:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.want, canStart(tt.ready))
		})
	}
}

func TestReadyPlayers_JoinOrder(t *testing.T) {
	s := &session{
		players: map[string]*player{
			"p3": {id: "p3", seq: 3, status: domain.PlayerReady},
			"p1": {id: "p1", seq: 1, status: domain.PlayerReady},
			"p2": {id: "p2", seq: 2, status: domain.PlayerWaiting},
		},
	}

	ready := s.readyPlayers()
	require.Len(t, ready, 2)
	require.Equal(t, "p1", ready[0].id)
	require.Equal(t, "p3", ready[1].id)
}
