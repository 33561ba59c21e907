package api_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/api"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/event"
)

func TestRelay_SessionScopedEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{rs.Addr()}})
	require.NoError(t, rc.Ping(ctx).Err())

	sub := rc.Subscribe(ctx, "bf:session:s1")
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "subscription should be confirmed")

	firehose := rc.Subscribe(ctx, "bf:events")
	_, err = firehose.Receive(ctx)
	require.NoError(t, err)

	eb := event.NewBus()
	api.New(api.Config{
		Router:       gin.New(),
		EventBus:     eb,
		Redis:        rc,
		PubsubPrefix: "bf",
	})

	eb.Publish(ctx, domain.EventDamageDealt{
		SessionID: "s1",
		PlayerID:  "p1",
		Nickname:  "Alice",
		TeamID:    1,
		Damage:    decimal.NewFromFloat(1.5),
	})
	eb.Stop()

	for _, ch := range []*redis.PubSub{sub, firehose} {
		msg, err := ch.ReceiveMessage(ctx)
		require.NoError(t, err)

		var n api.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		require.Equal(t, domain.EventNameDamageDealt, n.Event)

		data := n.Data.(map[string]any)
		require.Equal(t, "s1", data["session_id"])
		require.Equal(t, "p1", data["player_id"])
	}
}

func TestRelay_BossScopedEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{rs.Addr()}})
	require.NoError(t, rc.Ping(ctx).Err())

	sub := rc.Subscribe(ctx, "bf:boss:goblin-king")
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	eb := event.NewBus()
	api.New(api.Config{
		Router:       gin.New(),
		EventBus:     eb,
		Redis:        rc,
		PubsubPrefix: "bf",
	})

	eb.Publish(ctx, domain.EventCooldownEnded{
		BossID: "goblin-king",
		Status: domain.SessionWaiting,
	})
	eb.Stop()

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var n api.Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
	require.Equal(t, domain.EventNameCooldownEnded, n.Event)
}
