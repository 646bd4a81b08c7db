package protocol

import (
	"errors"

	"livechat/pkg/exception"

	"github.com/bytedance/sonic"
	errs "github.com/yanun0323/errors"
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	typeTyping        = "typing"
)

var codec = sonic.ConfigStd

type envelope struct {
	Type *string `json:"type"`
}

type connectedFrame struct {
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

type newMessageFrame struct {
	ChatID    string    `json:"chatId"`
	Message   *Message  `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

type chatUpdateFrame struct {
	ChatID          string    `json:"chatId"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime Timestamp `json:"lastMessageTime"`
	UnreadCount     *int      `json:"unreadCount"`
	Timestamp       Timestamp `json:"timestamp"`
}

type userTypingFrame struct {
	ChatID    string    `json:"chatId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	IsTyping  *bool     `json:"isTyping"`
	Timestamp Timestamp `json:"timestamp"`
}

type errorFrame struct {
	Error     string    `json:"error"`
	Details   *string   `json:"details"`
	Timestamp Timestamp `json:"timestamp"`
}

type subscriptionConfirmedFrame struct {
	Action    string    `json:"action"`
	ChatID    string    `json:"chatId"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

type subscriptionActionFrame struct {
	Action string `json:"action"`
	ChatID string `json:"chatId"`
}

type typingActionFrame struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

// IsUnrecognized reports whether err is the soft outcome for an unknown type tag.
func IsUnrecognized(err error) bool {
	return errors.Is(err, exception.ErrDecodeUnrecognized)
}

// Decode parses one inbound frame.
func Decode(raw []byte) (Notification, error) {
	var env envelope
	if err := codec.Unmarshal(raw, &env); err != nil {
		return nil, errs.Wrap(exception.ErrDecodeMalformed, err.Error())
	}
	if env.Type == nil || *env.Type == "" {
		return nil, exception.ErrDecodeMissingKind
	}
	kind, ok := ParseKind(*env.Type)
	if !ok {
		return nil, errs.Wrapf(exception.ErrDecodeUnrecognized, "type: %s", *env.Type)
	}

	switch kind {
	case KindConnected:
		return decodeConnected(raw)
	case KindNewMessage:
		return decodeNewMessage(raw)
	case KindChatUpdate:
		return decodeChatUpdate(raw)
	case KindUserTyping:
		return decodeUserTyping(raw)
	case KindError:
		return decodeError(raw)
	case KindSubscriptionConfirmed:
		return decodeSubscriptionConfirmed(raw)
	default:
		return nil, errs.Wrapf(exception.ErrDecodeUnrecognized, "type: %s", *env.Type)
	}
}

func unmarshalFrame(raw []byte, dst any, kind Kind) error {
	if err := codec.Unmarshal(raw, dst); err != nil {
		return errs.Wrapf(exception.ErrDecodeMalformed, "%s: %s", kind, err.Error())
	}
	return nil
}

func invalid(kind Kind, field string) error {
	return errs.Wrapf(exception.ErrDecodeInvalid, "%s: missing %s", kind, field)
}

func decodeConnected(raw []byte) (Notification, error) {
	var f connectedFrame
	if err := unmarshalFrame(raw, &f, KindConnected); err != nil {
		return nil, err
	}
	if f.UserID == "" {
		return nil, invalid(KindConnected, "userId")
	}
	return Connected{UserID: f.UserID, Message: f.Message, Timestamp: f.Timestamp}, nil
}

func decodeNewMessage(raw []byte) (Notification, error) {
	var f newMessageFrame
	if err := unmarshalFrame(raw, &f, KindNewMessage); err != nil {
		return nil, err
	}
	if f.ChatID == "" {
		return nil, invalid(KindNewMessage, "chatId")
	}
	if f.Message == nil {
		return nil, invalid(KindNewMessage, "message")
	}
	return NewMessage{ChatID: f.ChatID, Message: *f.Message, Timestamp: f.Timestamp}, nil
}

func decodeChatUpdate(raw []byte) (Notification, error) {
	var f chatUpdateFrame
	if err := unmarshalFrame(raw, &f, KindChatUpdate); err != nil {
		return nil, err
	}
	if f.ChatID == "" {
		return nil, invalid(KindChatUpdate, "chatId")
	}
	return ChatUpdate{
		ChatID:          f.ChatID,
		LastMessage:     f.LastMessage,
		LastMessageTime: f.LastMessageTime,
		UnreadCount:     f.UnreadCount,
		Timestamp:       f.Timestamp,
	}, nil
}

func decodeUserTyping(raw []byte) (Notification, error) {
	var f userTypingFrame
	if err := unmarshalFrame(raw, &f, KindUserTyping); err != nil {
		return nil, err
	}
	switch {
	case f.ChatID == "":
		return nil, invalid(KindUserTyping, "chatId")
	case f.UserID == "":
		return nil, invalid(KindUserTyping, "userId")
	case f.IsTyping == nil:
		return nil, invalid(KindUserTyping, "isTyping")
	}
	return UserTyping{
		ChatID:    f.ChatID,
		UserID:    f.UserID,
		Username:  f.Username,
		IsTyping:  *f.IsTyping,
		Timestamp: f.Timestamp,
	}, nil
}

func decodeError(raw []byte) (Notification, error) {
	var f errorFrame
	if err := unmarshalFrame(raw, &f, KindError); err != nil {
		return nil, err
	}
	if f.Error == "" {
		return nil, invalid(KindError, "error")
	}
	n := ErrorNotification{Message: f.Error, Origin: OriginServer, Timestamp: f.Timestamp}
	if f.Details != nil {
		n.Details = *f.Details
	}
	return n, nil
}

func decodeSubscriptionConfirmed(raw []byte) (Notification, error) {
	var f subscriptionConfirmedFrame
	if err := unmarshalFrame(raw, &f, KindSubscriptionConfirmed); err != nil {
		return nil, err
	}
	if f.Action != actionSubscribe && f.Action != actionUnsubscribe {
		return nil, invalid(KindSubscriptionConfirmed, "action")
	}
	if f.ChatID == "" {
		return nil, invalid(KindSubscriptionConfirmed, "chatId")
	}
	return SubscriptionConfirmed{
		Action:    f.Action,
		ChatID:    f.ChatID,
		Message:   f.Message,
		Timestamp: f.Timestamp,
	}, nil
}

// Encode serializes a control action into a text frame payload.
func Encode(action ControlAction) ([]byte, error) {
	if action == nil {
		return nil, exception.ErrEncodeUnsupported
	}
	if action.Topic() == "" {
		return nil, errs.Wrap(exception.ErrInvalidArgument, "empty topic")
	}

	var frame any
	switch a := action.(type) {
	case Subscribe:
		frame = subscriptionActionFrame{Action: actionSubscribe, ChatID: a.Chat}
	case Unsubscribe:
		frame = subscriptionActionFrame{Action: actionUnsubscribe, ChatID: a.Chat}
	case TypingSignal:
		frame = typingActionFrame{Type: typeTyping, ChatID: a.Chat, IsTyping: a.Active}
	default:
		return nil, exception.ErrEncodeUnsupported
	}

	payload, err := codec.Marshal(frame)
	if err != nil {
		return nil, errs.Wrap(err, "marshal control action")
	}
	return payload, nil
}
