// Package gateway coalesces program state writes into ordered batches.
//
// Callers commit individual document fields as they change; the gateway
// debounces them for a short window, merges field updates (last write per
// field wins), and hands the merged batch to a single writer goroutine so
// batches reach storage in issuance order.
package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/resetdopa/engine/internal/infra/metrics"
)

// Store is the persistence surface the gateway writes through.
type Store interface {
	LoadState(userID string) (map[string]json.RawMessage, error)
	ApplyFields(userID string, fields map[string]json.RawMessage) error
}

const (
	defaultCoalesceWindow = 50 * time.Millisecond
	retryDelay            = 1 * time.Second
)

type batch struct {
	fields map[string]json.RawMessage
	ack    chan struct{}
}

// Gateway debounces and serializes state writes for one user.
type Gateway struct {
	store  Store
	userID string
	window time.Duration
	sleep  func(time.Duration)

	mu      sync.Mutex
	pending map[string]json.RawMessage
	timer   *time.Timer
	closed  bool

	queue chan batch
	done  chan struct{}
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithWindow overrides the coalescing window.
func WithWindow(d time.Duration) Option {
	return func(g *Gateway) { g.window = d }
}

// WithSleep overrides the retry delay function. Tests use this to avoid
// real one-second waits.
func WithSleep(fn func(time.Duration)) Option {
	return func(g *Gateway) { g.sleep = fn }
}

// New creates a gateway for userID backed by store and starts its writer.
func New(store Store, userID string, opts ...Option) *Gateway {
	g := &Gateway{
		store:   store,
		userID:  userID,
		window:  defaultCoalesceWindow,
		sleep:   time.Sleep,
		pending: map[string]json.RawMessage{},
		queue:   make(chan batch, 64),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	go g.writer()
	return g
}

// Load fetches the stored document fields for the gateway's user.
func (g *Gateway) Load() (map[string]json.RawMessage, error) {
	return g.store.LoadState(g.userID)
}

// Commit stages field updates for the next coalesced batch. Values are
// marshaled immediately so later in-memory mutation cannot leak into the
// write.
func (g *Gateway) Commit(fields map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(fields))
	for name, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", name, err)
		}
		encoded[name] = raw
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return fmt.Errorf("gateway closed")
	}
	for name, raw := range encoded {
		g.pending[name] = raw
	}
	if g.timer == nil {
		g.timer = time.AfterFunc(g.window, g.dispatch)
	} else {
		g.timer.Reset(g.window)
	}
	return nil
}

// dispatch moves the pending set onto the write queue. The send happens
// under the mutex: every sender checks closed under the same lock Close
// holds when it closes the queue, so a send can never race the close.
// The writer drains without taking the lock, so a full queue still makes
// progress.
func (g *Gateway) dispatch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timer = nil
	if len(g.pending) == 0 || g.closed {
		return
	}
	b := batch{fields: g.pending}
	g.pending = map[string]json.RawMessage{}
	g.queue <- b
}

// Flush forces any staged fields to storage and waits for every queued
// batch to finish.
func (g *Gateway) Flush() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	b := batch{ack: make(chan struct{})}
	if len(g.pending) > 0 {
		b.fields = g.pending
		g.pending = map[string]json.RawMessage{}
	}
	g.queue <- b
	g.mu.Unlock()

	<-b.ack
}

// Close flushes staged writes and stops the writer goroutine.
func (g *Gateway) Close() {
	g.Flush()
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	close(g.queue)
	g.mu.Unlock()
	<-g.done
}

// writer drains the batch queue in order. A failed write is retried once;
// a second failure drops the batch so later state can still land.
func (g *Gateway) writer() {
	defer close(g.done)
	for b := range g.queue {
		if len(b.fields) > 0 {
			g.write(b.fields)
		}
		if b.ack != nil {
			close(b.ack)
		}
	}
}

func (g *Gateway) write(fields map[string]json.RawMessage) {
	metrics.StateBatchFields.Observe(float64(len(fields)))

	err := g.store.ApplyFields(g.userID, fields)
	if err == nil {
		metrics.StateWrites.Inc()
		return
	}

	log.Printf("[gateway] state write failed, retrying: %v", err)
	metrics.StateWriteRetries.Inc()
	g.sleep(retryDelay)

	if err := g.store.ApplyFields(g.userID, fields); err != nil {
		log.Printf("[gateway] state write dropped after retry: %v", err)
		metrics.StateWriteFailures.Inc()
		return
	}
	metrics.StateWrites.Inc()
}
