package portalcore

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples event emission from sink delivery. Operations
// enqueue onto a buffered channel and a single pump goroutine feeds the
// sink, so a slow sink never stalls a mutation path unless the buffer fills
// with DropIfFull disabled.
type auditDispatcher struct {
	sink     AuditSink
	events   chan AuditEvent
	overflow bool
	dropped  atomic.Uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:     sink,
		events:   make(chan AuditEvent, buffer),
		overflow: cfg.DropIfFull,
		done:     make(chan struct{}),
	}
	go d.pump()
	return d
}

// pump is the only goroutine touching the sink. It exits once the event
// channel is closed and fully drained.
func (d *auditDispatcher) pump() {
	defer close(d.done)
	for event := range d.events {
		d.sink.Write(event)
	}
}

// Emit enqueues one event. With DropIfFull set a full buffer discards the
// event and counts the drop; otherwise Emit blocks until the pump catches
// up or the context is canceled.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.overflow {
		select {
		case d.events <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	}
}

// Close stops intake, waits for buffered events to reach the sink, then
// returns. Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()

	<-d.done
}

// Dropped reports how many events overflow handling discarded.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
