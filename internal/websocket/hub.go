package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub хранит активные соединения и рассылает события по пользователям.
// Один пользователь может держать несколько соединений (разные устройства).
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрацию и отключение клиентов до вызова Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.mu.Unlock()
			log.Printf("[Hub] Подключен клиент user_id=%d connection_id=%s", client.userID, client.connectionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[Hub] Отключен клиент user_id=%d connection_id=%s", client.userID, client.connectionID)

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			h.clients = make(map[uint]map[*Client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Stop завершает цикл Run и закрывает все соединения
func (h *Hub) Stop() {
	close(h.done)
}

// NotifyUser отправляет событие на все соединения пользователя.
// Переполненный буфер клиента приводит к потере события, не к блокировке.
func (h *Hub) NotifyUser(userID uint, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			log.Printf("[Hub] Буфер клиента переполнен, событие %s потеряно (user_id=%d)", event.Type, userID)
		}
	}
}

// ConnectionCount возвращает число активных соединений пользователя
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
