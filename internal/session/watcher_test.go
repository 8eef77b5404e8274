package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_WarnsThenExpires(t *testing.T) {
	var warned, expired atomic.Int32
	var remaining atomic.Int64
	w := NewWatcher(80*time.Millisecond, 40*time.Millisecond,
		func(r time.Duration) { warned.Add(1); remaining.Store(int64(r)) },
		func() { expired.Add(1) },
	)
	w.Start(context.Background())

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not expire")
	}
	require.Eventually(t, func() bool { return expired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), warned.Load())
	assert.Equal(t, int64(40*time.Millisecond), remaining.Load())
	assert.True(t, w.Expired())
	assert.False(t, w.Touch())
}

func TestWatcher_TouchPostpones(t *testing.T) {
	var expired atomic.Int32
	w := NewWatcher(150*time.Millisecond, 0, nil, func() { expired.Add(1) })
	w.Start(context.Background())
	defer w.Stop()

	for i := 0; i < 4; i++ {
		time.Sleep(60 * time.Millisecond)
		require.True(t, w.Touch())
	}
	assert.Equal(t, int32(0), expired.Load())
	assert.False(t, w.Expired())
}

func TestWatcher_StopSkipsExpire(t *testing.T) {
	var expired atomic.Int32
	w := NewWatcher(50*time.Millisecond, 10*time.Millisecond, nil, func() { expired.Add(1) })
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), expired.Load())
	assert.False(t, w.Expired())
	<-w.Done()
}

func TestWatcher_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(time.Hour, time.Minute, nil, nil)
	w.Start(ctx)
	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher still running after cancel")
	}
	assert.False(t, w.Expired())
}

func TestNewWatcher_ClampsLead(t *testing.T) {
	w := NewWatcher(time.Second, time.Hour, nil, nil)
	assert.Equal(t, time.Second, w.lead)
	w = NewWatcher(time.Second, -time.Second, nil, nil)
	assert.Equal(t, time.Duration(0), w.lead)
}
