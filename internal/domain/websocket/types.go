// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Subscription lifecycle events (server -> client)
	EventTypeSubscriptionAdded   EventType = "subscription_added"
	EventTypeSubscriptionUpdated EventType = "subscription_updated"
	EventTypeSubscriptionDeleted EventType = "subscription_deleted"

	// Renewal events (server -> client)
	EventTypePaymentProcessed EventType = "payment_processed"

	// In-app notification (server -> client, targeted)
	EventTypeNotification EventType = "notification"

	// Channel management (client -> server)
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// Subscription channels that clients can listen on
type ChannelType string

const (
	ChannelSubscriptions ChannelType = "subscriptions"
	ChannelNotifications ChannelType = "notifications"
	ChannelSystem        ChannelType = "system"
)

// DefaultChannels are attached to every client at registration so that
// dashboard refresh events arrive without an explicit subscribe handshake.
var DefaultChannels = []ChannelType{ChannelSubscriptions, ChannelNotifications}

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaymentProcessedData is the payment_processed payload. Field names are
// part of the client wire contract and must not change.
type PaymentProcessedData struct {
	Subscription string    `json:"subscription"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	UserID       int64     `json:"user"`
}

// NotificationData is the targeted notification payload.
type NotificationData struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Helper to create messages
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        generateMessageID(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}

func generateMessageID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
