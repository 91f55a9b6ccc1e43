package connmon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMonitorFollowsStream(t *testing.T) {
	m := New()
	assert.False(t, m.Connected())

	changes, unsubscribe := m.Subscribe()
	defer unsubscribe()

	stream := make(chan bool)
	done := make(chan struct{})
	go func() {
		m.Run(context.Background(), stream)
		close(done)
	}()

	stream <- true
	select {
	case up := <-changes:
		assert.True(t, up)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
	assert.True(t, m.Connected())

	// duplicate values are not changes
	stream <- true
	stream <- false
	select {
	case up := <-changes:
		assert.False(t, up)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}

	stream <- true
	close(stream)
	<-done
	assert.False(t, m.Connected(), "closed stream must leave the monitor disconnected")
}

func TestMonitorStopsOnCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	stream := make(chan bool)

	done := make(chan struct{})
	go func() {
		m.Run(ctx, stream)
		close(done)
	}()
	stream <- true
	require.Eventually(t, m.Connected, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.False(t, m.Connected())
}
