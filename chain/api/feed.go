package api

import (
	"log"
	"net/http"
	"sync"

	"finova/chain/core"

	"github.com/gorilla/websocket"
)

// Feed is a broadcast hub for chain/core's event log: every *core.Core
// operation that emits an Event reaches Feed.Emit, which fans it out as
// JSON to every currently-connected /v1/feed websocket client. It
// implements core.EventSink the way a single RPC connection's
// request/response loop (chain/node/rpc.go's handleWebSocket) is
// generalized here into a one-to-many push.
type Feed struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan wireEvent
}

// wireEvent is the JSON shape written to each subscriber: the event's
// name plus its own fields nested under "data".
type wireEvent struct {
	Type string     `json:"type"`
	Data core.Event `json:"data"`
}

// NewFeed builds an empty Feed ready to accept subscribers and events.
func NewFeed() *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Emit implements core.EventSink: it is called synchronously from
// inside a *core.Core operation, so it never blocks on a slow or dead
// client — each client has its own buffered channel and a drop-if-full
// policy.
func (f *Feed) Emit(e core.Event) {
	msg := wireEvent{Type: e.EventName(), Data: e}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer: drop the event rather than block Emit.
		}
	}
}

// ServeWS upgrades r into a websocket connection and streams every
// subsequent event to it until the client disconnects. Subscribers are
// read-only: the server never expects inbound frames on this route.
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan wireEvent, 64)}
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.clients, c)
		f.mu.Unlock()
		conn.Close()
	}()

	// Drain inbound frames so a client's close/ping is observed even
	// though the route never reads application data.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for msg := range c.send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
