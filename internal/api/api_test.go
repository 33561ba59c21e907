package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/api"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/event"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/fight"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/leaderboard"
)

type fixedCatalog struct {
	boss domain.BossDefinition
}

func (f fixedCatalog) BossByID(_ context.Context, bossID string) (*domain.BossDefinition, error) {
	if bossID != f.boss.ID {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("boss not found: boss=%s", bossID))
	}
	boss := f.boss
	return &boss, nil
}

func (f fixedCatalog) RandomQuestion(context.Context, string, []string) (*domain.Question, error) {
	return &domain.Question{
		ID:   "q1",
		Text: "2 + 2 = ?",
		Answers: []domain.Answer{
			{Text: "4", Correct: true},
			{Text: "3"}, {Text: "5"}, {Text: "22"},
		},
	}, nil
}

func makeRouter(t *testing.T) (*gin.Engine, *event.Bus) {
	t.Helper()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{rs.Addr()}})

	eb := event.NewBus()
	fs := fight.NewService(fight.Config{
		EventBus: eb,
		Bosses: fixedCatalog{boss: domain.BossDefinition{
			ID:              "goblin-king",
			Name:            "Goblin King",
			NumberOfTeams:   2,
			CooldownSeconds: 300,
			CategoryID:      "general",
		}},
		Questions: fixedCatalog{},
	})
	ls := leaderboard.NewService(leaderboard.Config{
		EventBus: eb,
		Redis:    rc,
		Prefix:   "bf",
	})

	e := gin.New()
	api.New(api.Config{
		Router:       e,
		EventBus:     eb,
		Fight:        fs,
		Leaderboard:  ls,
		Redis:        rc,
		PubsubPrefix: "bf",
	})
	return e, eb
}

func do(t *testing.T, e *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

func TestAPI_CreateSession(t *testing.T) {
	e, _ := makeRouter(t)

	w := do(t, e, http.MethodPost, "/sessions", `{"boss_id":"goblin-king","host_id":"host-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var sess domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.Equal(t, "goblin-king", sess.BossID)
	require.Equal(t, domain.SessionWaiting, sess.Status)
	require.Len(t, sess.Teams, 2)

	// A second live session for the same boss conflicts.
	w = do(t, e, http.MethodPost, "/sessions", `{"boss_id":"goblin-king","host_id":"host-2"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_CreateSession_BadRequest(t *testing.T) {
	e, _ := makeRouter(t)

	w := do(t, e, http.MethodPost, "/sessions", `{"boss_id":"goblin-king"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPost, "/sessions", `{"boss_id":"nobody-home","host_id":"h"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_JoinAndInspect(t *testing.T) {
	e, _ := makeRouter(t)

	w := do(t, e, http.MethodPost, "/sessions", `{"boss_id":"goblin-king","host_id":"host-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, e, http.MethodPost, "/sessions/goblin-king/join", `{"player_id":"p1","nickname":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var ps domain.PlayerState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ps))
	require.Equal(t, "p1", ps.PlayerID)
	require.Equal(t, 3, ps.Hearts)

	w = do(t, e, http.MethodGet, "/players/p1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, e, http.MethodGet, "/bosses/goblin-king/engagement", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap domain.EngagementSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Equal(t, 1, snap.TotalPlayers)

	w = do(t, e, http.MethodGet, "/bosses/goblin-king/cooldown", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cd domain.CooldownStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cd))
	require.False(t, cd.OnCooldown)
}

func TestAPI_AnswerWithoutPendingQuestion(t *testing.T) {
	e, _ := makeRouter(t)

	do(t, e, http.MethodPost, "/sessions", `{"boss_id":"goblin-king","host_id":"host-1"}`)
	do(t, e, http.MethodPost, "/sessions/goblin-king/join", `{"player_id":"p1","nickname":"Alice"}`)

	w := do(t, e, http.MethodPost, "/players/p1/answer", `{"answer_index":0}`)
	require.Equal(t, http.StatusConflict, w.Code, "no fight running, nothing to answer")
}

func TestAPI_DamageBoard(t *testing.T) {
	e, eb := makeRouter(t)

	w := do(t, e, http.MethodGet, "/sessions/s1/damage", "")
	require.Equal(t, http.StatusNotFound, w.Code, "no damage recorded yet")

	eb.Publish(context.Background(), domain.EventDamageDealt{
		SessionID: "s1",
		PlayerID:  "p1",
		Damage:    decimal.NewFromFloat(1.5),
	})

	require.Eventually(t, func() bool {
		w := do(t, e, http.MethodGet, "/sessions/s1/damage", "")
		if w.Code != http.StatusOK {
			return false
		}

		var board domain.EventLeaderboardUpdated
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
		return len(board.Entries) == 1 &&
			board.Entries[0].PlayerID == "p1" &&
			board.Entries[0].Damage == 1.5
	}, time.Second, 10*time.Millisecond)
}

func TestAPI_EndSession_HostOnly(t *testing.T) {
	e, _ := makeRouter(t)

	do(t, e, http.MethodPost, "/sessions", `{"boss_id":"goblin-king","host_id":"host-1"}`)
	do(t, e, http.MethodPost, "/sessions/goblin-king/join", `{"player_id":"p1","nickname":"Alice"}`)

	w := do(t, e, http.MethodDelete, "/sessions/goblin-king", `{"host_id":"p1"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, e, http.MethodDelete, "/sessions/goblin-king", `{"host_id":"host-1"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, e, http.MethodGet, "/players/p1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
