package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// EventHandler processes one queued event.
type EventHandler interface {
	Notify(ctx context.Context, ev MessageEvent) Outcome
}

// Dispatcher is a fixed pool of workers draining a bounded queue of events.
type Dispatcher struct {
	handler EventHandler
	queue   chan MessageEvent
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewDispatcher(handler EventHandler, workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		handler: handler,
		queue:   make(chan MessageEvent, queueSize),
		workers: workers,
		timeout: timeout,
	}
}

// Start launches the workers. They exit once Stop has drained the queue.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	log.Printf("INFO: notification dispatcher started with %d workers", d.workers)
}

// Enqueue never blocks. It reports false when the event was dropped.
func (d *Dispatcher) Enqueue(ev MessageEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		log.Printf("WARNING: notification for message %s dropped: dispatcher stopped", ev.MessageID)
		return false
	}

	select {
	case d.queue <- ev:
		return true
	default:
		log.Printf("WARNING: notification queue full, dropped message %s for %s", ev.MessageID, ev.RecipientID)
		return false
	}
}

// Stop refuses new events and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.handle(ev)
	}
}

func (d *Dispatcher) handle(ev MessageEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: notification worker panic for message %s: %v", ev.MessageID, r)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	out := d.handler.Notify(ctx, ev)
	log.Printf("INFO: message %s notified: in-app=%t email=%t push=%d", ev.MessageID, out.InApp.Success, out.Email.Sent, out.Push.Sent)
}
