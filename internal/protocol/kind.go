package protocol

// Kind is the type tag of an inbound notification.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConnected
	KindNewMessage
	KindChatUpdate
	KindUserTyping
	KindError
	KindSubscriptionConfirmed
)

var kindNames = [...]string{
	KindUnknown:               "unknown",
	KindConnected:             "connected",
	KindNewMessage:            "new_message",
	KindChatUpdate:            "chat_update",
	KindUserTyping:            "user_typing",
	KindError:                 "error",
	KindSubscriptionConfirmed: "subscription_confirmed",
}

// String returns the wire tag of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// ParseKind maps a wire tag to a Kind.
func ParseKind(tag string) (Kind, bool) {
	for k := KindConnected; int(k) < len(kindNames); k++ {
		if kindNames[k] == tag {
			return k, true
		}
	}
	return KindUnknown, false
}

// Kinds returns every known notification kind.
func Kinds() []Kind {
	return []Kind{
		KindConnected,
		KindNewMessage,
		KindChatUpdate,
		KindUserTyping,
		KindError,
		KindSubscriptionConfirmed,
	}
}
