package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubSendToUserReachesEverySocket(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a := &Client{Hub: hub, UserID: 1, Send: make(chan []byte, 4)}
	b := &Client{Hub: hub, UserID: 1, Send: make(chan []byte, 4)}
	other := &Client{Hub: hub, UserID: 2, Send: make(chan []byte, 4)}
	for _, c := range []*Client{a, b, other} {
		hub.Register <- c
	}
	waitFor(t, func() bool { return len(hub.ConnectedUsers()) == 2 })

	hub.SendToUser(1, "notification", map[string]string{"title": "Booking confirmed"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Type != "notification" {
				t.Fatalf("unexpected type %q", msg.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("message not delivered")
		}
	}
	select {
	case <-other.Send:
		t.Fatalf("message leaked to another user")
	default:
	}

	hub.Unregister <- a
	waitFor(t, func() bool {
		select {
		case _, open := <-a.Send:
			return !open
		default:
			return false
		}
	})
	if !hub.IsUserConnected(1) {
		t.Fatalf("user 1 still has a socket open")
	}
}

func TestHubSendToUserDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := &Client{Hub: hub, UserID: 3, Send: make(chan []byte, 1)}
	hub.Register <- c
	waitFor(t, func() bool { return hub.IsUserConnected(3) })

	hub.SendToUser(3, "notification", nil)
	hub.SendToUser(3, "notification", nil)

	if len(c.Send) != 1 {
		t.Fatalf("expected the second message to be dropped, buffer has %d", len(c.Send))
	}
}

func TestServeNotificationsStream(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeNotifications(hub, w, r, 9, "parent", map[string]int{"unreadCount": 2})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	read := func() Message {
		t.Helper()
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != "connected" {
		t.Fatalf("expected connected greeting got %q", msg.Type)
	}

	waitFor(t, func() bool { return hub.IsUserConnected(9) })
	hub.SendToUser(9, "notification", map[string]string{"title": "Checked in"})
	if msg := read(); msg.Type != "notification" {
		t.Fatalf("expected notification got %q", msg.Type)
	}

	if err := conn.WriteJSON(Message{Type: "ping", Timestamp: time.Now()}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := read(); msg.Type != "pong" {
		t.Fatalf("expected pong got %q", msg.Type)
	}

	conn.Close()
	waitFor(t, func() bool { return !hub.IsUserConnected(9) })
}
