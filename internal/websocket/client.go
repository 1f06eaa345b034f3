// internal/websocket/client.go
package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	wstypes "spendora-service/internal/domain/websocket"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 64KB
)

// ClientAuth holds authentication information
type ClientAuth struct {
	UserID int64
	JTI    string
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
	jti    string

	// Channels this client is listening to
	subscriptions map[wstypes.ChannelType]bool
	subMutex      sync.RWMutex

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, auth *ClientAuth) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 256),
		userID:        auth.UserID,
		jti:           auth.JTI,
		subscriptions: make(map[wstypes.ChannelType]bool),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Subscribe to a channel
func (c *Client) Subscribe(channel wstypes.ChannelType) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	c.subscriptions[channel] = true
}

// Unsubscribe from a channel
func (c *Client) Unsubscribe(channel wstypes.ChannelType) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	delete(c.subscriptions, channel)
}

// IsSubscribed checks if client is subscribed to a channel
func (c *Client) IsSubscribed(channel wstypes.ChannelType) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()
	return c.subscriptions[channel]
}

// GetUserID returns the owning user's ID
func (c *Client) GetUserID() int64 {
	return c.userID
}

// ReadPump handles incoming messages from client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, message, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}

			c.handleMessage(message)
		}
	}
}

// WritePump handles outgoing messages to client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
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

// handleMessage processes incoming messages from client
func (c *Client) handleMessage(data []byte) {
	msg, err := wstypes.ParseMessage(data)
	if err != nil {
		c.SendError("invalid_message", "Failed to parse message", err.Error())
		return
	}

	switch msg.Type {
	case wstypes.EventTypePing:
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))

	case wstypes.EventTypeSubscribe:
		var req wstypes.SubscribeRequest
		if err := mapToStruct(msg.Data, &req); err != nil {
			c.SendError("invalid_subscribe", "Invalid subscribe request", err.Error())
			return
		}
		for _, channel := range req.Channels {
			c.Subscribe(channel)
		}
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypeSubscribe, map[string]interface{}{
			"channels": req.Channels,
			"status":   "subscribed",
		}))

	case wstypes.EventTypeUnsubscribe:
		var req wstypes.UnsubscribeRequest
		if err := mapToStruct(msg.Data, &req); err != nil {
			c.SendError("invalid_unsubscribe", "Invalid unsubscribe request", err.Error())
			return
		}
		for _, channel := range req.Channels {
			c.Unsubscribe(channel)
		}
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypeUnsubscribe, map[string]interface{}{
			"channels": req.Channels,
			"status":   "unsubscribed",
		}))
	}
}

// SendMessage sends a message to the client
func (c *Client) SendMessage(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		log.Printf("failed to marshal message: %v", err)
		return
	}

	if c.ctx.Err() != nil {
		return
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		// Send buffer full, drop the connection. This path runs inside the
		// hub loop during delivery, and the hub loop is the sole receiver
		// of unregister, so the handoff must not block: close the client
		// here and let its read pump complete the unregistration.
		c.Close()
		select {
		case c.hub.unregister <- c:
		default:
		}
	}
}

// SendError sends an error message to the client
func (c *Client) SendError(code, message, details string) {
	c.SendMessage(wstypes.NewMessage(wstypes.EventTypeError, wstypes.ErrorData{
		Code:    code,
		Message: message,
		Details: details,
	}))
}

// Close gracefully closes the client connection. The send channel is left
// open: the hub may still be delivering to this client concurrently, and the
// context cancellation already stops both pumps.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
	})
}
