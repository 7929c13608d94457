package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/pkg/logger"
)

// 서버 → 클라이언트 이벤트 타입
const (
	EventNotification = "notification"
	EventPong         = "pong"
)

// Event 클라이언트로 보내는 메시지
type Event struct {
	Type         string              `json:"type"`
	Notification *model.Notification `json:"notification,omitempty"`
}

type delivery struct {
	userID string
	data   []byte
}

// Hub 사용자별 WebSocket 세션 관리 (멀티 디바이스 지원)
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	done       chan struct{} // Run 종료 시 닫힘

	mu sync.RWMutex
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliveries:
			h.mu.RLock()
			for _, client := range h.clients[d.userID] {
				select {
				case client.Send <- d.data:
				default:
					// 버퍼가 가득 찬 세션은 정리
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": d.userID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// Dispatch pushes a stored notification to every live session of the user.
// Delivery is best effort: offline users read it from the notifications API.
func (h *Hub) Dispatch(userID string, notification *model.Notification) {
	data, err := json.Marshal(Event{Type: EventNotification, Notification: notification})
	if err != nil {
		logger.Error("Failed to marshal notification event", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	select {
	case h.deliveries <- delivery{userID: userID, data: data}:
	default:
		logger.Warn("Delivery channel full, notification push dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
}

// Register 클라이언트 등록 (Hub 종료 후에는 세션을 바로 닫음)
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister 클라이언트 등록 해제 (Hub 종료 후에는 no-op)
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// IsUserOnline 사용자 온라인 여부 확인
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SessionCount 사용자의 연결 수
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
