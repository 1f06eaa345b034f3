// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "spendora-service/internal/domain/websocket"
	"spendora-service/internal/pkg/jwt"
	redisrepo "spendora-service/internal/repository/redis"

	"go.uber.org/zap"
)

// Hub fans events out to connected clients. It is the concrete
// EventPublisher handed to the CRUD services and the renewal scheduler.
type Hub struct {
	// Registered clients by owning user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Auth dependencies
	jwtManager *jwt.Manager
	blacklist  *redisrepo.TokenBlacklist

	logger *zap.Logger
}

type BroadcastMessage struct {
	// UserIDs nil means broadcast to everyone.
	UserIDs []int64
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(jwtManager *jwt.Manager, blacklist *redisrepo.TokenBlacklist, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		jwtManager: jwtManager,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// AuthenticateClient validates the JWT token and returns the client identity.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtManager.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := h.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenBlacklisted
	}

	return &ClientAuth{
		UserID: claims.UserID,
		JTI:    claims.ID,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	// Subscribe to the default channels so dashboard refresh events flow
	// without a handshake.
	for _, ch := range wstypes.DefaultChannels {
		client.Subscribe(ch)
	}

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id":  client.userID,
		"channels": wstypes.DefaultChannels,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) deliver(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
		return
	}

	for _, userID := range msg.UserIDs {
		if clients, ok := h.clients[userID]; ok {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
	}
}

// Publish broadcasts a named event to every connected client. Delivery is
// best-effort: if the broadcast buffer is saturated the event is dropped and
// an error returned for the caller to log.
func (h *Hub) Publish(event string, payload interface{}) error {
	eventType := wstypes.EventType(event)
	return h.enqueue(&BroadcastMessage{
		UserIDs: nil,
		Channel: channelFor(eventType),
		Message: wstypes.NewMessage(eventType, payload),
	})
}

// PublishToOwner sends a named event to one user's connections only.
func (h *Hub) PublishToOwner(ownerID int64, event string, payload interface{}) error {
	eventType := wstypes.EventType(event)
	return h.enqueue(&BroadcastMessage{
		UserIDs: []int64{ownerID},
		Channel: channelFor(eventType),
		Message: wstypes.NewMessage(eventType, payload),
	})
}

func (h *Hub) enqueue(msg *BroadcastMessage) error {
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrBroadcastBufferFull
	}
}

func channelFor(event wstypes.EventType) wstypes.ChannelType {
	switch event {
	case wstypes.EventTypeNotification:
		return wstypes.ChannelNotifications
	case wstypes.EventTypeSubscriptionAdded,
		wstypes.EventTypeSubscriptionUpdated,
		wstypes.EventTypeSubscriptionDeleted,
		wstypes.EventTypePaymentProcessed:
		return wstypes.ChannelSubscriptions
	default:
		return wstypes.ChannelSystem
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
