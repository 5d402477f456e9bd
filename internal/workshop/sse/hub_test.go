package sse

import (
	"strings"
	"testing"
)

func newTestClient(id, userID string) *Client {
	return &Client{ID: id, UserID: userID, Events: make(chan Event, 4)}
}

// TestBroadcastReachesAllClients verifies every registered client gets the event
func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := newTestClient("client-a", "user-1")
	b := newTestClient("client-b", "user-2")
	hub.Register(a)
	hub.Register(b)
	defer hub.Unregister("client-a")
	defer hub.Unregister("client-b")

	hub.Broadcast(Event{EventType: "event_update", Data: `{"action":"created"}`})

	for _, client := range []*Client{a, b} {
		select {
		case ev := <-client.Events:
			if ev.EventType != "event_update" {
				t.Fatalf("expected event_update, got %s", ev.EventType)
			}
		default:
			t.Fatalf("client %s did not receive broadcast", client.ID)
		}
	}
}

// TestNotifyRequestDecisionTargetsRequester verifies the decision push only
// reaches the requesting user's connections
func TestNotifyRequestDecisionTargetsRequester(t *testing.T) {
	requester := newTestClient("client-req", "user-requester")
	other := newTestClient("client-other", "user-other")
	GlobalHub.Register(requester)
	GlobalHub.Register(other)
	defer GlobalHub.Unregister("client-req")
	defer GlobalHub.Unregister("client-other")

	NotifyRequestDecision("user-requester", "req-001", "approved")

	select {
	case ev := <-requester.Events:
		if ev.EventType != "request_decision" {
			t.Fatalf("expected request_decision, got %s", ev.EventType)
		}
		if !strings.Contains(ev.Data, `"request_id":"req-001"`) || !strings.Contains(ev.Data, `"status":"approved"`) {
			t.Fatalf("unexpected payload: %s", ev.Data)
		}
	default:
		t.Fatal("requester did not receive decision event")
	}

	select {
	case ev := <-other.Events:
		t.Fatalf("unrelated user received decision event: %+v", ev)
	default:
	}
}
