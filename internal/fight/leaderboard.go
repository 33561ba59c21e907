package fight

import (
	"context"
	"sort"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
)

// GetLeaderboard projects the session into ranked team and individual views.
// Read-only: the session is snapshotted under its lock and sorting happens on
// the copies.
func (s *Service) GetLeaderboard(_ context.Context, sessionID string) (*domain.Leaderboard, error) {
	sess, err := s.sessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	lb := &domain.Leaderboard{
		SessionID:   sess.id,
		BossID:      sess.boss.ID,
		Status:      sess.status,
		CurrentHP:   sess.currentHP,
		MaxHP:       sess.maxHP,
		TotalDamage: sess.totalDamage,
		Teams:       teamLeaderboard(sess),
		Players:     individualLeaderboard(sess),
		StartTime:   sess.startTime,
		EndTime:     sess.endTime,
		Winner:      sess.winningTeamID,
	}

	return lb, nil
}

// GetPlayerRanking returns the player's 1-based rank on the individual
// leaderboard plus the participant count.
func (s *Service) GetPlayerRanking(_ context.Context, sessionID, playerID string) (*domain.PlayerRanking, error) {
	sess, err := s.sessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	players := individualLeaderboard(sess)
	for i, p := range players {
		if p.PlayerID == playerID {
			return &domain.PlayerRanking{
				Rank:         i + 1,
				TotalPlayers: len(players),
				Player:       p,
			}, nil
		}
	}

	return nil, errors.New(errors.CodeNotFound,
		errors.WithMessagef("player not in session: session=%s player=%s", sessionID, playerID))
}

// teamLeaderboard sorts teams by damage descending, teamID ascending on ties.
// Callers hold sess.mu.
func teamLeaderboard(sess *session) []domain.TeamStanding {
	standings := make([]domain.TeamStanding, 0, len(sess.teams))
	for _, t := range sess.teamsByID() {
		standings = append(standings, domain.TeamStanding{
			TeamID:      t.id,
			Name:        t.name,
			TotalDamage: t.totalDamage,
			PlayerCount: len(t.members),
			Players:     sortedKeys(t.members),
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalDamage.GreaterThan(standings[j].TotalDamage)
	})
	return standings
}

// individualLeaderboard sorts players by damage descending, join order on
// ties. Callers hold sess.mu.
func individualLeaderboard(sess *session) []domain.PlayerStanding {
	players := sess.playersBySeq()

	standings := make([]domain.PlayerStanding, 0, len(players))
	for _, p := range players {
		standings = append(standings, p.standing())
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalDamage.GreaterThan(standings[j].TotalDamage)
	})
	return standings
}
