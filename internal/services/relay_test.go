package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisRelay(t *testing.T) {
	hub := NewHub()

	for _, addr := range []string{"redis://localhost:6379/2", "localhost:6379"} {
		relay, err := NewRedisRelay(addr, hub)
		require.NoError(t, err, addr)
		assert.NoError(t, relay.Close())
	}

	_, err := NewRedisRelay("redis://%zz", hub)
	assert.Error(t, err)
}

func newTestRelay(t *testing.T, mr *miniredis.Miniredis, hub *Hub) *RedisRelay {
	t.Helper()
	relay, err := NewRedisRelay(mr.Addr(), hub)
	require.NoError(t, err)
	t.Cleanup(func() { _ = relay.Close() })
	return relay
}

func woken(sub *Subscription, within time.Duration) bool {
	select {
	case <-sub.C():
		return true
	case <-time.After(within):
		return false
	}
}

func TestRedisRelay_ForwardsBetweenReplicas(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubA, hubB := NewHub(), NewHub()
	relayA := newTestRelay(t, mr, hubA)
	relayB := newTestRelay(t, mr, hubB)
	require.NoError(t, relayA.Ping(ctx))

	done := make(chan error, 1)
	go func() { done <- relayB.Run(ctx) }()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(relayChannel)[relayChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	messages := hubB.Subscribe(TableMessages)
	defer messages.Close()
	groups := hubB.Subscribe(TableGroups)
	defer groups.Close()

	relayA.Notify(ctx, TableMessages)

	assert.True(t, woken(messages, 2*time.Second), "messages subscription on the other replica was not woken")
	assert.False(t, woken(groups, 100*time.Millisecond), "groups subscription woke for a messages write")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

func TestRedisRelay_PublishFailureBroadcastsLocally(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	hub := NewHub()
	relay := newTestRelay(t, mr, hub)

	messages := hub.Subscribe(TableMessages)
	defer messages.Close()
	groups := hub.Subscribe(TableGroups)
	defer groups.Close()

	mr.SetError("MASTERDOWN Link with MASTER is down")
	relay.Notify(ctx, TableMessages)

	assert.True(t, woken(messages, time.Second), "local subscription was not woken after a failed publish")
	assert.False(t, woken(groups, 50*time.Millisecond))
}
