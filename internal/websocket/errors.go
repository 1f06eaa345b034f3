// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrTokenBlacklisted    = errors.New("token has been revoked")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrBroadcastBufferFull = errors.New("broadcast buffer full, event dropped")
)
