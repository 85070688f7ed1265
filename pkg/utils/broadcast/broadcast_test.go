package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("no value received")
	}
	var zero T
	return zero
}

func TestBroadcast(t *testing.T) {
	source := make(chan int)
	s := NewServer("test", source, WithBufferSize[int](10))
	defer s.Close()

	a := s.Subscribe()
	b := s.Subscribe()
	source <- 1
	source <- 2

	assert.Equal(t, 1, receive(t, a))
	assert.Equal(t, 2, receive(t, a))
	assert.Equal(t, 1, receive(t, b))
	assert.Equal(t, 2, receive(t, b))
}

func TestCancelSubscription(t *testing.T) {
	source := make(chan string)
	s := NewServer("test", source, WithBufferSize[string](10))
	defer s.Close()

	a := s.Subscribe()
	b := s.Subscribe()
	s.CancelSubscription(a)
	_, ok := <-a
	assert.False(t, ok)

	source <- "x"
	assert.Equal(t, "x", receive(t, b))
}

func TestSlowListenerIsSkipped(t *testing.T) {
	source := make(chan int)
	s := NewServer("test", source, WithSendTimeout[int](time.Millisecond))
	defer s.Close()

	slow := s.Subscribe()
	source <- 1
	time.Sleep(20 * time.Millisecond)
	select {
	case v := <-slow:
		t.Fatalf("unexpected value %d", v)
	default:
	}
}

func TestSourceClosed(t *testing.T) {
	source := make(chan int)
	s := NewServer("test", source)
	a := s.Subscribe()
	close(source)
	_, ok := <-a
	assert.False(t, ok)
	s.Close()

	late := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
