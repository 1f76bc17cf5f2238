package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"medialib/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one live connection. A user can hold several.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu            sync.Mutex
	subscriptions map[string]func()
	closed        bool
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Conn:          conn,
		Send:          make(chan []byte, sendBufferSize),
		subscriptions: make(map[string]func()),
	}
}

// Subscribe stores cancel under key, cancelling whatever held the key before.
// Once the client is closed cancel runs immediately.
func (c *Client) Subscribe(key string, cancel func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	previous := c.subscriptions[key]
	c.subscriptions[key] = cancel
	c.mu.Unlock()

	if previous != nil {
		previous()
	}
}

func (c *Client) closeSubscriptions() {
	c.mu.Lock()
	c.closed = true
	subs := c.subscriptions
	c.subscriptions = map[string]func(){}
	c.mu.Unlock()

	for _, cancel := range subs {
		cancel()
	}
}

// Manager tracks every active connection.
type Manager struct {
	clients map[string]*Client
	mutex   sync.RWMutex
	stopped bool
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
	}
}

// Start closes every connection once ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()

		m.mutex.Lock()
		clients := m.clients
		m.clients = make(map[string]*Client)
		m.stopped = true
		m.mutex.Unlock()

		for _, client := range clients {
			close(client.Send)
			client.closeSubscriptions()
		}
	}()
}

// Register makes the client reachable by SendToClient and SendToUser. It
// is synchronous so messages queued right after it are not lost.
func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	if m.stopped {
		m.mutex.Unlock()
		close(client.Send)
		client.closeSubscriptions()
		return
	}
	m.clients[client.ID] = client
	m.mutex.Unlock()

	logger.Debug("Client registered: %s (user %s)", client.ID, client.UserID)
}

// Unregister closes the client's send queue and cancels its subscriptions.
// Calling it twice is harmless.
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	_, ok := m.clients[client.ID]
	if ok {
		delete(m.clients, client.ID)
		close(client.Send)
	}
	m.mutex.Unlock()

	if ok {
		client.closeSubscriptions()
		logger.Debug("Client unregistered: %s (user %s)", client.ID, client.UserID)
	}
}

// SendToClient queues message for one connection. Slow clients are dropped.
func (m *Manager) SendToClient(client *Client, message []byte) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if _, ok := m.clients[client.ID]; !ok {
		return false
	}

	select {
	case client.Send <- message:
		return true
	default:
		logger.Warn("Dropping message for slow client %s", client.ID)
		return false
	}
}

// SendToUser queues message on every connection the user holds.
func (m *Manager) SendToUser(userID string, message []byte) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sent := 0
	for _, client := range m.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Send <- message:
			sent++
		default:
			logger.Warn("Dropping message for slow client %s", client.ID)
		}
	}
	return sent
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads frames until the connection fails and hands each decoded
// message to handle.
func (c *Client) ReadPump(m *Manager, handle func(*Client, WSMessage)) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error for %s: %v", c.ID, err)
			}
			return
		}

		var message WSMessage
		if err := json.Unmarshal(raw, &message); err != nil {
			logger.Debug("Ignoring malformed frame from %s: %v", c.ID, err)
			continue
		}
		handle(c, message)
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("WebSocket write error for %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
