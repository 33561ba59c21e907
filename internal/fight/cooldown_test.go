package fight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCooldownScheduler(t *testing.T) {
	c := newCooldownScheduler()

	require.False(t, c.isOnCooldown("b1"))

	elapsed := make(chan string, 1)
	endsAt := c.start("b1", 20*time.Millisecond, func(bossID string) {
		elapsed <- bossID
	})

	require.True(t, c.isOnCooldown("b1"))
	require.False(t, endsAt.IsZero())

	remaining, at := c.remaining("b1")
	require.Greater(t, remaining, time.Duration(0))
	require.Equal(t, endsAt, at)

	select {
	case bossID := <-elapsed:
		require.Equal(t, "b1", bossID)
	case <-time.After(time.Second):
		t.Fatal("cooldown callback never fired")
	}

	require.Eventually(t, func() bool { return !c.isOnCooldown("b1") },
		time.Second, time.Millisecond)
}

func TestCooldownScheduler_Clear(t *testing.T) {
	c := newCooldownScheduler()

	fired := make(chan struct{}, 1)
	c.start("b1", 20*time.Millisecond, func(string) {
		fired <- struct{}{}
	})

	c.clear("b1")
	require.False(t, c.isOnCooldown("b1"))

	select {
	case <-fired:
		t.Fatal("cleared cooldown should not fire its callback")
	case <-time.After(60 * time.Millisecond):
	}

	remaining, endsAt := c.remaining("b1")
	require.Zero(t, remaining)
	require.True(t, endsAt.IsZero())
}

func TestCooldownScheduler_RestartReplacesTimer(t *testing.T) {
	c := newCooldownScheduler()

	first := make(chan struct{}, 1)
	c.start("b1", 10*time.Millisecond, func(string) {
		first <- struct{}{}
	})

	second := make(chan struct{}, 1)
	c.start("b1", 30*time.Millisecond, func(string) {
		second <- struct{}{}
	})

	select {
	case <-first:
		t.Fatal("replaced cooldown should not fire")
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("restarted cooldown never fired")
	}
}
