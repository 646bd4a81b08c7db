package realtime

import (
	"livechat/internal/bus"
	"livechat/internal/protocol"
)

// On registers fn for every notification of kind.
func (c *Client) On(kind protocol.Kind, fn func(protocol.Notification)) bus.Registration {
	return c.notifications.Register(kind, fn)
}

func on[T protocol.Notification](c *Client, kind protocol.Kind, fn func(T)) bus.Registration {
	if fn == nil {
		return func() {}
	}
	return c.notifications.Register(kind, func(n protocol.Notification) {
		if v, ok := n.(T); ok {
			fn(v)
		}
	})
}

// OnConnected registers fn for the server's connection acknowledgement.
func (c *Client) OnConnected(fn func(protocol.Connected)) bus.Registration {
	return on(c, protocol.KindConnected, fn)
}

// OnMessage registers fn for new chat messages.
func (c *Client) OnMessage(fn func(protocol.NewMessage)) bus.Registration {
	return on(c, protocol.KindNewMessage, fn)
}

// OnChatUpdate registers fn for chat summary changes.
func (c *Client) OnChatUpdate(fn func(protocol.ChatUpdate)) bus.Registration {
	return on(c, protocol.KindChatUpdate, fn)
}

// OnTyping registers fn for remote typing activity.
func (c *Client) OnTyping(fn func(protocol.UserTyping)) bus.Registration {
	return on(c, protocol.KindUserTyping, fn)
}

// OnError registers fn for server errors, transport failures and reconnect exhaustion.
func (c *Client) OnError(fn func(protocol.ErrorNotification)) bus.Registration {
	return on(c, protocol.KindError, fn)
}

// OnSubscriptionConfirmed registers fn for subscribe and unsubscribe acknowledgements.
func (c *Client) OnSubscriptionConfirmed(fn func(protocol.SubscriptionConfirmed)) bus.Registration {
	return on(c, protocol.KindSubscriptionConfirmed, fn)
}

// OnConnect registers fn for every successful open.
func (c *Client) OnConnect(fn func()) bus.Registration {
	if fn == nil {
		return func() {}
	}
	return c.lifecycle.Register(LifecycleConnect, func(struct{}) { fn() })
}

// OnDisconnect registers fn for every close, expected or not.
func (c *Client) OnDisconnect(fn func()) bus.Registration {
	if fn == nil {
		return func() {}
	}
	return c.lifecycle.Register(LifecycleDisconnect, func(struct{}) { fn() })
}
