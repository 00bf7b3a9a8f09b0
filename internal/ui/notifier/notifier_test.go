package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New[int]()

	// Subscribe creates a channel
	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	// Unsubscribe removes and closes the channel
	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Len())
	_, open := <-ch
	assert.False(t, open)

	// A second Unsubscribe is a no-op
	n.Unsubscribe(ch)
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New[string]()

	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	assert.Equal(t, 0, n.Broadcast("insert"))

	for _, ch := range []chan string{ch1, ch2} {
		select {
		case v := <-ch:
			assert.Equal(t, "insert", v)
		case <-time.After(100 * time.Millisecond):
			t.Error("listener did not receive broadcast")
		}
	}
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := NewBuffered[int](1)

	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// Fill the channel buffer
	ch <- 1

	done := make(chan int)
	go func() {
		done <- n.Broadcast(2)
	}()

	select {
	case missed := <-done:
		assert.Equal(t, 1, missed)
	case <-time.After(100 * time.Millisecond):
		t.Error("Broadcast blocked on full channel")
	}
	assert.Equal(t, 1, <-ch, "the buffered value is kept")
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New[int]()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Broadcast(i)
			n.Unsubscribe(ch)
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, n.Len())
}
