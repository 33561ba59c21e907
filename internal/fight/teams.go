package fight

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
)

var teamAnimals = []string{
	"Tiger", "Lion", "Wolf", "Eagle", "Bear", "Shark", "Panther", "Falcon",
	"Rhino", "Cobra", "Dragon", "Phoenix", "Raven", "Leopard", "Viper",
	"Hawk", "Scorpion", "Griffin", "Kraken", "Hydra",
}

var teamAdjectives = []string{
	"Fierce", "Mighty", "Savage", "Bold", "Swift", "Ruthless", "Legendary",
	"Blazing", "Thunder", "Steel", "Shadow", "Crimson", "Golden", "Iron",
	"Storm", "Mystic", "Wild", "Ancient", "Royal", "Valiant",
}

// initializeTeams builds n teams with display names seeded by the session ID,
// so the same session always names its teams the same way.
func initializeTeams(n int, seed string) map[int]*team {
	h := fnv.New64a()
	h.Write([]byte(seed))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(n)))

	animals := rng.Perm(len(teamAnimals))
	adjectives := rng.Perm(len(teamAdjectives))

	teams := make(map[int]*team, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("%s %s",
			teamAdjectives[adjectives[(i-1)%len(teamAdjectives)]],
			teamAnimals[animals[(i-1)%len(teamAnimals)]],
		)
		teams[i] = &team{
			id:          i,
			name:        name,
			members:     make(map[string]struct{}),
			totalDamage: decimal.Zero,
		}
	}
	return teams
}

// assignTeam places the player on the team with the fewest members, ties
// broken by lowest teamID, and returns the chosen teamID. Callers hold s.mu.
func assignTeam(s *session, playerID string) int {
	var chosen *team
	for _, t := range s.teamsByID() {
		if chosen == nil || len(t.members) < len(chosen.members) {
			chosen = t
		}
	}

	chosen.members[playerID] = struct{}{}
	return chosen.id
}

// canStart holds when at least two ready players span at least two distinct
// teams. Callers hold s.mu.
func canStart(ready []*player) bool {
	if len(ready) < 2 {
		return false
	}

	teams := make(map[int]struct{})
	for _, p := range ready {
		teams[p.teamID] = struct{}{}
	}
	return len(teams) >= 2
}

// readyPlayers returns players currently in Ready status, in join order.
// Callers hold s.mu.
func (s *session) readyPlayers() []*player {
	var ready []*player
	for _, p := range s.playersBySeq() {
		if p.status == domain.PlayerReady {
			ready = append(ready, p)
		}
	}
	return ready
}
