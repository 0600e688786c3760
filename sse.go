package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// Session event types, sent as the SSE "event:" field.
const (
	eventSessionState = "session_state" // sessionView, once on connect
	eventPlayerJoined = "player_joined" // Player
	eventPlayerLeft   = "player_left"   // playerLeft
	eventWordFound    = "word_found"    // FoundWord
	eventCompleted    = "completed"     // SessionState
)

// Event is one message on a session stream. Data is sent as JSON.
type Event struct {
	Type string
	Data any
}

type playerLeft struct {
	Pseudo string `json:"pseudo"`
}

// frame is an encoded event, shared by every client it is sent to.
type frame struct {
	event string
	data  []byte
}

func encodeEvent(evt Event) (frame, error) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return frame{}, fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	return frame{event: evt.Type, data: data}, nil
}

func (f frame) writeTo(w http.ResponseWriter) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.event, f.data)
}

// client is one open event stream.
type client struct {
	ch        chan frame
	sessionID string
}

// Broadcaster fans session events out to the streams open on each session.
type Broadcaster struct {
	mu       sync.RWMutex
	sessions map[string]map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		sessions: make(map[string]map[*client]struct{}),
	}
}

// Register opens a stream on a session.
func (b *Broadcaster) Register(sessionID string) *client {
	c := &client{
		ch:        make(chan frame, sseChannelBuffer),
		sessionID: sessionID,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	clients, ok := b.sessions[sessionID]
	if !ok {
		clients = make(map[*client]struct{})
		b.sessions[sessionID] = clients
	}
	clients[c] = struct{}{}
	return c
}

// Unregister closes a stream. Closing it again is a no-op.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clients := b.sessions[c.sessionID]
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.ch)
	if len(clients) == 0 {
		delete(b.sessions, c.sessionID)
	}
}

// Broadcast encodes evt once and queues it on every stream of the session.
// Streams whose buffer is full miss it.
func (b *Broadcaster) Broadcast(sessionID string, evt Event) error {
	f, err := encodeEvent(evt)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.sessions[sessionID] {
		select {
		case c.ch <- f:
		default:
		}
	}
	return nil
}

// ClientCount returns the number of open streams on a session.
func (b *Broadcaster) ClientCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions[sessionID])
}

// ServeSSE streams a session's events until the request ends. The event
// returned by initial is written first; the stream is registered before
// initial runs so nothing broadcast after it is lost.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string, initial func() Event, onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	c := b.Register(sessionID)
	defer func() {
		b.Unregister(c)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()

	first, err := encodeEvent(initial())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	first.writeTo(w)
	flusher.Flush()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case f, ok := <-c.ch:
			if !ok {
				return
			}
			f.writeTo(w)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
