package websocket

import (
	"context"
	"testing"
	"time"

	wstypes "spendora-service/internal/domain/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChannelForRoutesEvents(t *testing.T) {
	assert.Equal(t, wstypes.ChannelSubscriptions, channelFor(wstypes.EventTypeSubscriptionAdded))
	assert.Equal(t, wstypes.ChannelSubscriptions, channelFor(wstypes.EventTypeSubscriptionUpdated))
	assert.Equal(t, wstypes.ChannelSubscriptions, channelFor(wstypes.EventTypeSubscriptionDeleted))
	assert.Equal(t, wstypes.ChannelSubscriptions, channelFor(wstypes.EventTypePaymentProcessed))
	assert.Equal(t, wstypes.ChannelNotifications, channelFor(wstypes.EventTypeNotification))
	assert.Equal(t, wstypes.ChannelSystem, channelFor(wstypes.EventTypePing))
}

func TestPublishEnqueuesUntilBufferFull(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())

	// Fill the broadcast buffer without a running hub loop.
	for i := 0; i < cap(hub.broadcast); i++ {
		require.NoError(t, hub.Publish(string(wstypes.EventTypeSubscriptionUpdated), nil))
	}

	err := hub.Publish(string(wstypes.EventTypeSubscriptionUpdated), nil)
	assert.ErrorIs(t, err, ErrBroadcastBufferFull)
}

func TestPublishToOwnerTargetsSingleUser(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())

	require.NoError(t, hub.PublishToOwner(42, string(wstypes.EventTypeNotification), wstypes.NotificationData{
		Title:   "Upcoming renewal",
		Message: "Netflix renews soon.",
	}))

	msg := <-hub.broadcast
	assert.Equal(t, []int64{42}, msg.UserIDs)
	assert.Equal(t, wstypes.ChannelNotifications, msg.Channel)
	assert.Equal(t, wstypes.EventTypeNotification, msg.Message.Type)
}

func TestDeliverDropsSlowClientWithoutBlockingHub(t *testing.T) {
	hub := NewHub(nil, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := NewClient(hub, nil, &ClientAuth{UserID: 7})
	hub.Register <- slow

	// Saturate the client's send buffer so the next delivery hits the
	// slow-client path.
fill:
	for {
		select {
		case slow.send <- []byte("{}"):
		default:
			break fill
		}
	}

	require.NoError(t, hub.Publish(string(wstypes.EventTypeSubscriptionUpdated), nil))

	// The hub loop must survive the drop and keep serving registrations.
	next := NewClient(hub, nil, &ClientAuth{UserID: 8})
	select {
	case hub.Register <- next:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting registrations after delivering to a saturated client")
	}

	assert.Eventually(t, func() bool {
		return slow.ctx.Err() != nil
	}, 2*time.Second, 10*time.Millisecond, "saturated client should be detached")
}
