// Persistence dispatcher - fire-and-forget async writes

package storage

import (
	"log"
	"sync"
	"time"
)

// Dispatcher decouples persistence from the streaming path. Event and
// session-end writes enqueue and return immediately; worker failures are
// logged, never propagated, so a slow or broken database can never stall a
// live stream. Session creation is the one synchronous call: the close-path
// summarizer reads the row back, so it must exist before anything can
// reference it.
type Dispatcher struct {
	store *Storage
	jobs  chan job
	wg    sync.WaitGroup

	closeOnce sync.Once
}

type job struct {
	kind      string
	sessionID string
	run       func() error
}

// NewDispatcher starts the worker pool. A single worker (the default)
// keeps writes roughly in enqueue order.
func NewDispatcher(store *Storage, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		store: store,
		jobs:  make(chan job, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		if err := j.run(); err != nil {
			log.Printf("[DB] %s failed for %s: %v", j.kind, j.sessionID, err)
		}
	}
}

// enqueue never blocks the caller. A full queue drops the write (logged).
func (d *Dispatcher) enqueue(kind, sessionID string, run func() error) {
	select {
	case d.jobs <- job{kind: kind, sessionID: sessionID, run: run}:
	default:
		log.Printf("[DB] queue full, dropping %s for %s", kind, sessionID)
	}
}

// CreateSession writes the session row synchronously. A queued create could
// land after the close-path summary reads, leaving a row that never gets its
// end_time; writing it inline closes that window.
func (d *Dispatcher) CreateSession(sessionID, userID string) error {
	return d.store.CreateSession(sessionID, userID)
}

// Record dispatches one event insert
func (d *Dispatcher) Record(sessionID, role, content string) {
	d.enqueue("record", sessionID, func() error {
		return d.store.InsertEvent(sessionID, role, content)
	})
}

// UpdateSessionEnd dispatches the terminal session update
func (d *Dispatcher) UpdateSessionEnd(sessionID string, endTime time.Time, durationSecs int, summary string) {
	d.enqueue("update_session_end", sessionID, func() error {
		return d.store.UpdateSessionEnd(sessionID, endTime, durationSecs, summary)
	})
}

// Close stops accepting work and drains pending writes
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}
