package resultbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fenwick/pkg/types"
)

func TestPushThenDrainYieldsInPushOrder(t *testing.T) {
	b := New(10)
	b.Push("t1", types.ResultEnvelope{TaskID: "t1", Payload: []byte("a")})
	b.Push("t1", types.ResultEnvelope{TaskID: "t1", Payload: []byte("b")})

	got := b.Drain("t1")
	require.Len(t, got, 2)
	assert.Equal(t, []byte("a"), got[0].Payload)
	assert.Equal(t, []byte("b"), got[1].Payload)
}

func TestDrainReturnsEmptyAfterTimeoutWithNoPush(t *testing.T) {
	b := New(10)
	start := time.Now()
	got := b.Drain("idle-task")
	assert.Empty(t, got)
	assert.GreaterOrEqual(t, time.Since(start), drainWait-50*time.Millisecond)
}

func TestDrainWakesEarlyOnPush(t *testing.T) {
	b := New(10)
	go func() {
		time.Sleep(50 * time.Millisecond)
		b.Push("t1", types.ResultEnvelope{TaskID: "t1", Payload: []byte("x")})
	}()

	start := time.Now()
	got := b.Drain("t1")
	elapsed := time.Since(start)

	require.Len(t, got, 1)
	assert.Less(t, elapsed, drainWait)
}

func TestHighWaterMarkDropsOldest(t *testing.T) {
	b := New(2)
	b.Push("t1", types.ResultEnvelope{Payload: []byte("1")})
	b.Push("t1", types.ResultEnvelope{Payload: []byte("2")})
	b.Push("t1", types.ResultEnvelope{Payload: []byte("3")})

	got := b.Drain("t1")
	require.Len(t, got, 2)
	assert.Equal(t, []byte("2"), got[0].Payload)
	assert.Equal(t, []byte("3"), got[1].Payload)
}

func TestDiscardRemovesQueue(t *testing.T) {
	b := New(10)
	b.Push("t1", types.ResultEnvelope{Payload: []byte("1")})
	b.Discard("t1")

	// A new queue is created lazily; it should not retain the old items.
	got := b.Drain("t1")
	assert.Empty(t, got)
}
