package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finova/chain/core"
	"finova/chain/types"

	"github.com/gorilla/websocket"
)

func TestFeedBroadcastsEmittedEvents(t *testing.T) {
	feed := NewFeed()
	ts := httptest.NewServer(http.HandlerFunc(feed.ServeWS))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give ServeWS's registration a moment to land before emitting,
	// since the upgrade and the client-registry write race the dial.
	time.Sleep(50 * time.Millisecond)

	feed.Emit(core.RewardsMinted{User: types.BytesToPubkey([]byte("user")), Amount: 1_000})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "RewardsMinted" {
		t.Errorf("expected type RewardsMinted, got %q", msg.Type)
	}
}

func TestFeedEmitWithNoSubscribersDoesNotBlock(t *testing.T) {
	feed := NewFeed()
	done := make(chan struct{})
	go func() {
		feed.Emit(core.UserInitialized{User: types.BytesToPubkey([]byte("user"))})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Emit with no subscribers to return immediately")
	}
}
