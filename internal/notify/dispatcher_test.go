package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"tutorchat/backend/internal/notify"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	mu      sync.Mutex
	seen    []string
	release chan struct{}
}

func (h *recordingHandler) Notify(_ context.Context, ev notify.MessageEvent) notify.Outcome {
	if h.release != nil {
		<-h.release
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, ev.MessageID)
	return notify.Outcome{}
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestDispatcher_ProcessesQueuedEvents(t *testing.T) {
	h := &recordingHandler{}
	d := notify.NewDispatcher(h, 2, 10, time.Second)
	d.Start()

	for _, id := range []string{"m1", "m2", "m3"} {
		assert.True(t, d.Enqueue(notify.MessageEvent{MessageID: id}))
	}
	d.Stop()

	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, h.seen)
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	h := &recordingHandler{release: make(chan struct{})}
	d := notify.NewDispatcher(h, 1, 1, 0)
	d.Start()

	assert.True(t, d.Enqueue(notify.MessageEvent{MessageID: "m1"}))
	// m1 is picked by the only worker (blocked on release); m2 fills the queue.
	assert.Eventually(t, func() bool { return d.Enqueue(notify.MessageEvent{MessageID: "m2"}) }, time.Second, 5*time.Millisecond)

	done := make(chan bool)
	go func() { done <- d.Enqueue(notify.MessageEvent{MessageID: "m3"}) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(h.release)
	d.Stop()
	assert.Equal(t, 2, h.count())
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := notify.NewDispatcher(&recordingHandler{}, 1, 1, 0)
	d.Start()
	d.Stop()
	d.Stop()

	assert.False(t, d.Enqueue(notify.MessageEvent{MessageID: "late"}))
}
