package protocol

import (
	"livechat/pkg/exception"

	"github.com/yanun0323/errors"
)

// Notification is an inbound event. The concrete type is fixed by Kind.
type Notification interface {
	Kind() Kind
}

// Message is a chat message as carried by new_message.
type Message struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	Sender       string    `json:"sender"`
	Timestamp    Timestamp `json:"timestamp"`
	IsOwnMessage bool      `json:"isOwnMessage"`
}

// Connected acknowledges a new connection.
type Connected struct {
	UserID    string
	Message   string
	Timestamp Timestamp
}

// NewMessage announces a message posted to a chat.
type NewMessage struct {
	ChatID    string
	Message   Message
	Timestamp Timestamp
}

// ChatUpdate summarizes the latest activity of a chat.
type ChatUpdate struct {
	ChatID          string
	LastMessage     string
	LastMessageTime Timestamp
	// UnreadCount is nil when the server omitted it.
	UnreadCount *int
	Timestamp   Timestamp
}

// UserTyping reports typing activity of another participant.
type UserTyping struct {
	ChatID    string
	UserID    string
	Username  string
	IsTyping  bool
	Timestamp Timestamp
}

// Origin tells where an ErrorNotification came from.
type Origin uint8

const (
	// OriginServer is an error frame sent by the server.
	OriginServer Origin = iota
	// OriginTransport is a failure of the underlying connection.
	OriginTransport
	// OriginReconnectExhausted is raised once the reconnect ceiling is hit.
	OriginReconnectExhausted
)

func (o Origin) String() string {
	switch o {
	case OriginServer:
		return "server"
	case OriginTransport:
		return "transport"
	case OriginReconnectExhausted:
		return "reconnect_exhausted"
	default:
		return "unknown"
	}
}

// ErrorNotification is delivered to error handlers, whether decoded from
// the wire or raised by the client itself.
type ErrorNotification struct {
	Message   string
	Details   string
	Origin    Origin
	Timestamp Timestamp
}

// Err converts the notification into an error matching the exception sentinels.
func (n ErrorNotification) Err() error {
	switch n.Origin {
	case OriginTransport:
		return errors.Wrap(exception.ErrTransport, n.Message)
	case OriginReconnectExhausted:
		return errors.Wrap(exception.ErrReconnectExhausted, n.Message)
	default:
		if n.Details == "" {
			return errors.New(n.Message)
		}
		return errors.New(n.Message + ": " + n.Details)
	}
}

// SubscriptionConfirmed acknowledges a subscribe or unsubscribe action.
type SubscriptionConfirmed struct {
	Action    string
	ChatID    string
	Message   string
	Timestamp Timestamp
}

func (Connected) Kind() Kind             { return KindConnected }
func (NewMessage) Kind() Kind            { return KindNewMessage }
func (ChatUpdate) Kind() Kind            { return KindChatUpdate }
func (UserTyping) Kind() Kind            { return KindUserTyping }
func (ErrorNotification) Kind() Kind     { return KindError }
func (SubscriptionConfirmed) Kind() Kind { return KindSubscriptionConfirmed }
