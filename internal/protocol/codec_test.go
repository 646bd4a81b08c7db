package protocol

import (
	"errors"
	"testing"
	"time"

	"livechat/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariants(t *testing.T) {
	unread := 3
	cases := []struct {
		name string
		raw  string
		want Notification
	}{
		{
			name: "connected",
			raw:  `{"type":"connected","userId":"u1","message":"Successfully connected to WebSocket","timestamp":"2025-01-02T03:04:05.123456"}`,
			want: Connected{
				UserID:    "u1",
				Message:   "Successfully connected to WebSocket",
				Timestamp: Timestamp{time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)},
			},
		},
		{
			name: "new message",
			raw:  `{"type":"new_message","chatId":"1","message":{"id":"m1","text":"hi","sender":"Bo","timestamp":"2025-01-02T03:04:05Z","isOwnMessage":false}}`,
			want: NewMessage{
				ChatID: "1",
				Message: Message{
					ID:        "m1",
					Text:      "hi",
					Sender:    "Bo",
					Timestamp: Timestamp{time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
				},
			},
		},
		{
			name: "chat update with unread",
			raw:  `{"type":"chat_update","chatId":"2","lastMessage":"hey","lastMessageTime":"2025-01-02T03:04:05","unreadCount":3}`,
			want: ChatUpdate{
				ChatID:          "2",
				LastMessage:     "hey",
				LastMessageTime: Timestamp{time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
				UnreadCount:     &unread,
			},
		},
		{
			name: "chat update without unread",
			raw:  `{"type":"chat_update","chatId":"2","lastMessage":"hey","lastMessageTime":"2025-01-02T03:04:05","unreadCount":null}`,
			want: ChatUpdate{
				ChatID:          "2",
				LastMessage:     "hey",
				LastMessageTime: Timestamp{time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
			},
		},
		{
			name: "user typing",
			raw:  `{"type":"user_typing","chatId":"1","userId":"u2","username":"Bo","isTyping":false}`,
			want: UserTyping{ChatID: "1", UserID: "u2", Username: "Bo", IsTyping: false},
		},
		{
			name: "server error",
			raw:  `{"type":"error","error":"Invalid JSON","details":"Could not parse message as JSON"}`,
			want: ErrorNotification{Message: "Invalid JSON", Details: "Could not parse message as JSON", Origin: OriginServer},
		},
		{
			name: "server error null details",
			raw:  `{"type":"error","error":"Unknown message type","details":null}`,
			want: ErrorNotification{Message: "Unknown message type", Origin: OriginServer},
		},
		{
			name: "subscription confirmed",
			raw:  `{"type":"subscription_confirmed","action":"subscribe","chatId":"1","message":"Subscribed to chat 1"}`,
			want: SubscriptionConfirmed{Action: "subscribe", ChatID: "1", Message: "Subscribed to chat 1"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Decode([]byte(c.raw))
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.want.Kind(), got.Kind())
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{name: "not json", raw: `{type:`, want: exception.ErrDecodeMalformed},
		{name: "json array", raw: `[1,2]`, want: exception.ErrDecodeMalformed},
		{name: "missing type", raw: `{"chatId":"1"}`, want: exception.ErrDecodeMissingKind},
		{name: "empty type", raw: `{"type":""}`, want: exception.ErrDecodeMissingKind},
		{name: "unknown type", raw: `{"type":"unknown_kind"}`, want: exception.ErrDecodeUnrecognized},
		{name: "new message without chat", raw: `{"type":"new_message","message":{"id":"m1"}}`, want: exception.ErrDecodeInvalid},
		{name: "new message without message", raw: `{"type":"new_message","chatId":"1"}`, want: exception.ErrDecodeInvalid},
		{name: "typing without flag", raw: `{"type":"user_typing","chatId":"1","userId":"u2"}`, want: exception.ErrDecodeInvalid},
		{name: "typing flag wrong type", raw: `{"type":"user_typing","chatId":"1","userId":"u2","isTyping":"yes"}`, want: exception.ErrDecodeMalformed},
		{name: "confirmation bad action", raw: `{"type":"subscription_confirmed","action":"join","chatId":"1"}`, want: exception.ErrDecodeInvalid},
		{name: "error without message", raw: `{"type":"error"}`, want: exception.ErrDecodeInvalid},
		{name: "connected without user", raw: `{"type":"connected"}`, want: exception.ErrDecodeInvalid},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := Decode([]byte(c.raw))
			assert.Nil(t, n)
			require.Error(t, err)
			assert.Truef(t, errors.Is(err, c.want), "want %v, got %v", c.want, err)
		})
	}
}

func TestIsUnrecognizedOnlyForUnknownKinds(t *testing.T) {
	_, err := Decode([]byte(`{"type":"unknown_kind"}`))
	assert.True(t, IsUnrecognized(err))

	_, err = Decode([]byte(`not json`))
	assert.False(t, IsUnrecognized(err))
}

func TestEncodeControlActions(t *testing.T) {
	cases := []struct {
		action ControlAction
		want   string
	}{
		{action: Subscribe{Chat: "1"}, want: `{"action":"subscribe","chatId":"1"}`},
		{action: Unsubscribe{Chat: "1"}, want: `{"action":"unsubscribe","chatId":"1"}`},
		{action: TypingSignal{Chat: "7", Active: true}, want: `{"type":"typing","chatId":"7","isTyping":true}`},
		{action: TypingSignal{Chat: "7"}, want: `{"type":"typing","chatId":"7","isTyping":false}`},
	}
	for _, c := range cases {
		payload, err := Encode(c.action)
		require.NoError(t, err)
		assert.JSONEq(t, c.want, string(payload))
	}
}

func TestEncodeRejectsMalformedActions(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, exception.ErrEncodeUnsupported)

	_, err = Encode(Subscribe{})
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("unknown")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(200).String())
}

func TestErrorNotificationErr(t *testing.T) {
	assert.ErrorIs(t, ErrorNotification{Message: "x", Origin: OriginTransport}.Err(), exception.ErrTransport)
	assert.ErrorIs(t, ErrorNotification{Message: "x", Origin: OriginReconnectExhausted}.Err(), exception.ErrReconnectExhausted)
	err := ErrorNotification{Message: "Invalid JSON", Details: "bad"}.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid JSON: bad")
}
