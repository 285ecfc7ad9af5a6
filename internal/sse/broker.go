// Package sse implements the Server-Sent Events broker behind live reload.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	EventBuildCompleted = "build.completed"
	EventBuildFailed    = "build.failed"
	EventContentPrefix  = "content."
)

// retryMillis tells browsers how long to wait before reconnecting after the
// preview server restarts.
const retryMillis = 1000

var ping = []byte(": ping\n\n")

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BuildResult is the payload of build events.
type BuildResult struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	Posts       int    `json:"posts"`
	Duration    string `json:"duration,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Broker fans build and content events out to live reload clients.
//
// The client set lives in a single goroutine; public methods talk to it over
// channels. The most recent successful build is replayed to every new client,
// so a page that reconnects after missing a rebuild can tell its content is
// stale by comparing fingerprints.
type Broker struct {
	heartbeat time.Duration

	join   chan chan []byte
	leave  chan chan []byte
	events chan Event
	builds chan BuildResult
	counts chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends a keep-alive comment to every client
// each heartbeat interval.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	b := &Broker{
		heartbeat: heartbeat,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		events:    make(chan Event, 256),
		builds:    make(chan BuildResult, 16),
		counts:    make(chan chan int),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	go b.loop()
	return b
}

// hub is the state owned by the broker goroutine.
type hub struct {
	clients     map[chan []byte]struct{}
	seq         uint64
	fingerprint string
	lastBuild   []byte
}

// frame encodes an event with a monotonically increasing id.
func (h *hub) frame(e Event) []byte {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil
	}
	h.seq++
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, e.Type, payload))
}

// send delivers raw to every client. A slow client misses the message rather
// than stalling everyone else.
func (h *hub) send(raw []byte) {
	if raw == nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
		}
	}
}

func (h *hub) build(res BuildResult) {
	if res.Error != "" {
		h.send(h.frame(Event{Type: EventBuildFailed, Data: res}))
		return
	}
	// Identical output needs no reload.
	if res.Fingerprint != "" && res.Fingerprint == h.fingerprint {
		return
	}
	h.fingerprint = res.Fingerprint
	h.lastBuild = h.frame(Event{Type: EventBuildCompleted, Data: res})
	h.send(h.lastBuild)
}

func (b *Broker) loop() {
	defer close(b.stopped)

	h := &hub{clients: make(map[chan []byte]struct{})}
	tick := time.NewTicker(b.heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-b.stop:
			for ch := range h.clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			h.clients[ch] = struct{}{}
			if h.lastBuild != nil {
				ch <- h.lastBuild
			}

		case ch := <-b.leave:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}

		case e := <-b.events:
			h.send(h.frame(e))

		case res := <-b.builds:
			h.build(res)

		case <-tick.C:
			h.send(ping)

		case resp := <-b.counts:
			resp <- len(h.clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed when the
// client leaves or the broker shuts down.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.counts <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- event:
	case <-b.stopped:
	}
}

// PublishChange announces a content file change ("content.created", ...).
func (b *Broker) PublishChange(kind, path string) {
	b.Publish(Event{Type: EventContentPrefix + kind, Data: map[string]string{"path": path}})
}

// PublishBuild announces a finished build. Successful builds whose
// fingerprint matches the previous one are not broadcast.
func (b *Broker) PublishBuild(res BuildResult) {
	if b.closed.Load() {
		return
	}
	select {
	case b.builds <- res:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
