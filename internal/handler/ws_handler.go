package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/websocket"
	"prepkit-sync-server/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

// WebSocketHandler upgrades connections onto the alert feed. Auth happens
// before the upgrade, via query token or Authorization header.
type WebSocketHandler struct {
	manager   *websocket.Manager
	jwtSecret string
	upgrader  ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		manager:   manager,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		log.Printf("[WebSocket] Token validation failed: %v", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	userID := claims.UserID

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		deviceID = "default"
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Failed to upgrade connection: %v", err)
		return
	}

	clientID := uuid.New().String()
	client := websocket.NewClient(clientID, userID, deviceID, conn, h.manager)

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// AlertFeedMessageHandler answers client pings; the feed is otherwise
// server-push only.
type AlertFeedMessageHandler struct{}

func NewAlertFeedMessageHandler() *AlertFeedMessageHandler {
	return &AlertFeedMessageHandler{}
}

func (h *AlertFeedMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypePing:
		pongMsg, err := websocket.NewMessage(websocket.TypePong, nil)
		if err != nil {
			return err
		}
		pongBytes, _ := json.Marshal(pongMsg)
		client.Send <- pongBytes

	default:
		log.Printf("unknown message type: %s", msg.Type)
	}

	return nil
}

// FeedBroadcaster adapts the websocket manager to the service-layer
// broadcast interfaces.
type FeedBroadcaster struct {
	manager *websocket.Manager
}

func NewFeedBroadcaster(manager *websocket.Manager) *FeedBroadcaster {
	return &FeedBroadcaster{manager: manager}
}

func (b *FeedBroadcaster) BroadcastNewAlert(alert *domain.Alert) error {
	msg, err := websocket.NewMessage(websocket.TypeAlertNew, alert)
	if err != nil {
		return err
	}
	return b.manager.BroadcastAll(msg)
}

func (b *FeedBroadcaster) BroadcastExpiredAlert(alertID string) error {
	msg, err := websocket.NewMessage(websocket.TypeAlertExpired, &websocket.AlertExpiredPayload{AlertID: alertID})
	if err != nil {
		return err
	}
	return b.manager.BroadcastAll(msg)
}

// NotifySyncComplete pings the user's other devices after one device drains
// its queue, excluding the device that synced.
func (b *FeedBroadcaster) NotifySyncComplete(userID, deviceID string, at time.Time) error {
	msg, err := websocket.NewMessage(websocket.TypeSyncComplete, &websocket.SyncCompletePayload{
		DeviceID: deviceID,
		SyncTime: at,
	})
	if err != nil {
		return err
	}
	return b.manager.BroadcastToUser(userID, msg, deviceID)
}
