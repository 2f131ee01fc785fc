package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"socialhub/services"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Manager routes activity events to the connections of the user they concern.
// It implements services.Notifier.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if m.clients[client.userID] == nil {
				m.clients[client.userID] = make(map[*Client]struct{})
			}
			m.clients[client.userID][client] = struct{}{}
			m.mu.Unlock()
			log.Printf("[ws] client registered for user %s", client.userID)

		case client := <-m.unregister:
			m.remove(client)
			log.Printf("[ws] client unregistered for user %s", client.userID)

		case <-m.done:
			m.mu.Lock()
			for _, set := range m.clients {
				for client := range set {
					close(client.send)
				}
			}
			m.clients = make(map[string]map[*Client]struct{})
			m.mu.Unlock()
			return
		}
	}
}

// Stop closes every connection and ends Start.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *Manager) remove(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.clients[client.userID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(m.clients, client.userID)
	}
}

// NotifyUser queues event for every connection of userID. Clients with a full
// buffer miss the event rather than blocking the request that produced it.
func (m *Manager) NotifyUser(userID string, event services.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] error marshaling %s event: %v", event.Type, err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.clients[userID] {
		select {
		case client.send <- msg:
		default:
			log.Printf("[ws] dropping %s event for user %s: send buffer full", event.Type, userID)
		}
	}
}

func (m *Manager) ConnectedUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Serve upgrades an already authenticated request and attaches it to userID.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, sendBuffer),
		manager: m,
	}

	welcome, _ := json.Marshal(services.Event{
		Type: "connected",
		Payload: map[string]any{
			"userId": userID,
			"time":   time.Now().Unix(),
		},
	})
	client.send <- welcome

	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error for user %s: %v", c.userID, err)
			}
			return
		}

		var data struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}
		if data.Type == "ping" {
			c.sendPong()
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendPong() {
	msg, _ := json.Marshal(services.Event{
		Type:    "pong",
		Payload: map[string]any{"time": time.Now().Unix()},
	})

	c.manager.mu.RLock()
	defer c.manager.mu.RUnlock()
	if _, ok := c.manager.clients[c.userID][c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
