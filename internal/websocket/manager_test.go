package websocket

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(5, 10*time.Second, 60*time.Second, 54*time.Second)
	go m.Run()
	return m
}

// slowClient has no send buffer at all, so any broadcast attempt
// hits the full-buffer path immediately.
func slowClient(id, userID, deviceID string, m *Manager) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		DeviceID: deviceID,
		Manager:  m,
		Send:     make(chan []byte),
	}
}

func register(t *testing.T, m *Manager, c *Client) {
	t.Helper()
	m.Register <- c

	deadline := time.Now().Add(time.Second)
	for m.GetUserConnections(c.UserID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client %s never registered", c.ID)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitForDisconnect(t *testing.T, m *Manager, userID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for m.GetUserConnections(userID) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("slow clients for user %s were never unregistered", userID)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManager_BroadcastAllDisconnectsSlowClients(t *testing.T) {
	m := newTestManager(t)

	register(t, m, slowClient("c1", "user-1", "phone", m))
	register(t, m, slowClient("c2", "user-2", "tablet", m))

	msg, err := NewMessage(TypeAlertNew, map[string]string{"id": "alert-1"})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.BroadcastAll(msg) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("BroadcastAll() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastAll() blocked with multiple slow clients")
	}

	waitForDisconnect(t, m, "user-1")
	waitForDisconnect(t, m, "user-2")
}

func TestManager_BroadcastToUserDisconnectsSlowClients(t *testing.T) {
	m := newTestManager(t)

	register(t, m, slowClient("c1", "user-1", "phone", m))
	c2 := slowClient("c2", "user-1", "tablet", m)
	m.Register <- c2
	deadline := time.Now().Add(time.Second)
	for m.GetUserConnections("user-1") < 2 {
		if time.Now().After(deadline) {
			t.Fatal("second client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	msg, err := NewMessage(TypeSyncComplete, SyncCompletePayload{DeviceID: "laptop"})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.BroadcastToUser("user-1", msg, "") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("BroadcastToUser() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastToUser() blocked with multiple slow clients")
	}

	waitForDisconnect(t, m, "user-1")
}

func TestManager_BroadcastToUserDelivers(t *testing.T) {
	m := newTestManager(t)

	c := &Client{
		ID:       "c1",
		UserID:   "user-1",
		DeviceID: "phone",
		Manager:  m,
		Send:     make(chan []byte, 1),
	}
	register(t, m, c)

	msg, err := NewMessage(TypeAlertNew, map[string]string{"id": "alert-1"})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if err := m.BroadcastToUser("user-1", msg, ""); err != nil {
		t.Fatalf("BroadcastToUser() error = %v", err)
	}

	select {
	case raw := <-c.Send:
		if len(raw) == 0 {
			t.Error("delivered message is empty")
		}
	default:
		t.Error("message not delivered to connected client")
	}

	if m.GetUserConnections("user-1") != 1 {
		t.Error("healthy client was unregistered")
	}
}

func TestManager_BroadcastToUserExcludesDevice(t *testing.T) {
	m := newTestManager(t)

	c := &Client{
		ID:       "c1",
		UserID:   "user-1",
		DeviceID: "phone",
		Manager:  m,
		Send:     make(chan []byte, 1),
	}
	register(t, m, c)

	msg, err := NewMessage(TypeSyncComplete, SyncCompletePayload{DeviceID: "phone"})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if err := m.BroadcastToUser("user-1", msg, "phone"); err != nil {
		t.Fatalf("BroadcastToUser() error = %v", err)
	}

	select {
	case <-c.Send:
		t.Error("message delivered to the excluded device")
	default:
	}
}
