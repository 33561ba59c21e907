package api

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/event"
)

type Notification struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// relayEvent forwards one domain event to redis pub/sub. Scoped events go to
// their session or boss channel so clients subscribe only to the fight they
// are in; everything also lands on the firehose channel for dashboards.
func (a *API) relayEvent(ctx context.Context, e event.Event) error {
	b, err := json.Marshal(Notification{Event: e.Name(), Data: e})
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", e.Name(), err)
	}

	channels := []string{fmt.Sprintf("%s:events", a.prefix)}
	if s, ok := e.(domain.Scoped); ok {
		kind, id := s.Scope()
		channels = append(channels, fmt.Sprintf("%s:%s:%s", a.prefix, kind, id))
	}

	var eg errgroup.Group
	for _, ch := range channels {
		eg.Go(func() error {
			return a.redis.Publish(ctx, ch, b).Err()
		})
	}

	return eg.Wait()
}
