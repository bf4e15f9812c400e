package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubClient(userID uint, connectionID string) *Client {
	return &Client{
		userID:       userID,
		connectionID: connectionID,
		send:         make(chan []byte, clientBufferSize),
	}
}

func TestHub_NotifyUserReachesAllConnections(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	phone := newHubClient(7, "conn-phone")
	laptop := newHubClient(7, "conn-laptop")
	other := newHubClient(8, "conn-other")
	hub.register <- phone
	hub.register <- laptop
	hub.register <- other

	// Ждем обработки регистраций
	require.Eventually(t, func() bool {
		return hub.ConnectionCount(7) == 2 && hub.ConnectionCount(8) == 1
	}, time.Second, 10*time.Millisecond)

	// Act
	hub.NotifyUser(7, Event{Type: LOGOUT_ALL_DEVICES})

	// Assert: событие пришло на оба устройства пользователя 7
	for _, client := range []*Client{phone, laptop} {
		select {
		case payload := <-client.send:
			var event Event
			require.NoError(t, json.Unmarshal(payload, &event))
			assert.Equal(t, LOGOUT_ALL_DEVICES, event.Type)
		case <-time.After(time.Second):
			t.Fatalf("клиент %s не получил событие", client.connectionID)
		}
	}

	// Чужой пользователь событие не получает
	select {
	case <-other.send:
		t.Fatal("событие не должно доходить до другого пользователя")
	default:
	}
}

func TestHub_UnregisterRemovesConnection(t *testing.T) {
	// Arrange
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := newHubClient(7, "conn-1")
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ConnectionCount(7) == 1 }, time.Second, 10*time.Millisecond)

	// Act
	hub.unregister <- client

	// Assert
	require.Eventually(t, func() bool { return hub.ConnectionCount(7) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-client.send
	assert.False(t, open, "канал отправки должен быть закрыт")
}

func TestHub_NotifyUnknownUserIsNoop(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Не должно паниковать и блокироваться
	hub.NotifyUser(404, Event{Type: SESSION_REVOKED})
}
