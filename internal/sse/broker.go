// Package sse streams ledger events to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/starford/notesman/internal/ledger"
)

// Event types.
const (
	EventProcessed = "ledger.processed"
	EventChanged   = "ledger.changed"
)

// ChangeEvent is the payload of ledger.changed.
type ChangeEvent struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Broker fans ledger events out to connected clients. One goroutine owns the
// client set; every other method hands it a closure to run.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	cmds      chan func(*hub)
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type hub struct {
	clients    map[chan []byte]struct{}
	seq        uint64
	lastChange time.Time
	// lastRun is the most recent ledger.processed frame. New clients get it
	// first so they start from the latest run.
	lastRun []byte
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often idle streams receive a comment frame.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.keepAlive = d
		}
	}
}

// NewBroker creates a broker that emits at most one ledger.changed event
// per changeThrottle.
func NewBroker(changeThrottle time.Duration, opts ...Option) *Broker {
	if changeThrottle <= 0 {
		changeThrottle = time.Second
	}
	b := &Broker{
		throttle:  changeThrottle,
		keepAlive: 30 * time.Second,
		cmds:      make(chan func(*hub), 256),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.done:
			for ch := range h.clients {
				close(ch)
			}
			return
		case cmd := <-b.cmds:
			cmd(h)
		}
	}
}

// do queues cmd for the loop. It returns false once the broker is closed.
func (b *Broker) do(cmd func(*hub)) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.cmds <- cmd:
		return true
	case <-b.stopped:
		return false
	}
}

func (h *hub) broadcast(eventType string, payload []byte) []byte {
	h.seq++
	frame := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", h.seq, eventType, payload)
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
			// slow client misses this frame
		}
	}
	return frame
}

// Close stops the broker and closes every subscriber channel.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	<-b.stopped
}

// Subscribe registers a client. The channel is closed by Unsubscribe or
// Close; on a closed broker it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	added := make(chan struct{})
	ok := b.do(func(h *hub) {
		h.clients[ch] = struct{}{}
		if h.lastRun != nil {
			ch <- h.lastRun
		}
		close(added)
	})
	if ok {
		select {
		case <-added:
			return ch
		case <-b.stopped:
			select {
			case <-added:
				// registered, and the loop closed it on the way out
				return ch
			default:
			}
		}
	}
	close(ch)
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishProcessed announces a finished ledger run.
func (b *Broker) PublishProcessed(rep ledger.Report) {
	payload, err := json.Marshal(rep)
	if err != nil {
		return
	}
	b.do(func(h *hub) {
		h.lastRun = h.broadcast(EventProcessed, payload)
	})
}

// PublishChange announces an outside edit of path. Calls within the
// throttle window of the previous announcement are dropped.
func (b *Broker) PublishChange(path string) {
	b.do(func(h *hub) {
		now := time.Now()
		if now.Sub(h.lastChange) < b.throttle {
			return
		}
		h.lastChange = now
		payload, err := json.Marshal(ChangeEvent{Path: path, At: now})
		if err != nil {
			return
		}
		h.broadcast(EventChanged, payload)
	})
}

// ServeHTTP streams events to one client (GET /api/events).
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
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
