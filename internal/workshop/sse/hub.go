package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the singleton SSE Hub instance
var GlobalHub = NewHub()

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// PublishEventUpdate 事件创建/关闭时广播（模具/设备详情页刷新）
func PublishEventUpdate(sourceID, eventID, action string) {
	data := fmt.Sprintf(`{"source_id":"%s","event_id":"%s","action":"%s"}`, sourceID, eventID, action)
	GlobalHub.Broadcast(Event{
		EventType: "event_update",
		Data:      data,
	})
	log.Printf("[SSE] Published event_update: source=%s event=%s action=%s", sourceID, eventID, action)
}

// PublishRequestUpdate 维修申请状态变化时广播（待办列表刷新）
func PublishRequestUpdate(requestID, status string) {
	data := fmt.Sprintf(`{"request_id":"%s","status":"%s"}`, requestID, status)
	GlobalHub.Broadcast(Event{
		EventType: "request_update",
		Data:      data,
	})
	log.Printf("[SSE] Published request_update: request=%s status=%s", requestID, status)
}

// NotifyRequestDecision 审批结果定向推送给申请人
func NotifyRequestDecision(userID, requestID, status string) {
	data := fmt.Sprintf(`{"request_id":"%s","status":"%s"}`, requestID, status)
	SendToUser(userID, Event{
		EventType: "request_decision",
		Data:      data,
	})
	log.Printf("[SSE] Sent request_decision: user=%s request=%s status=%s", userID, requestID, status)
}

// SendToUser 给特定用户发送事件（而非广播）
func SendToUser(userID string, event Event) {
	GlobalHub.mu.RLock()
	defer GlobalHub.mu.RUnlock()
	for _, client := range GlobalHub.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping user event", client.ID)
			}
		}
	}
}
