package protocol

// ControlAction is an outbound request. The set is closed:
// Subscribe, Unsubscribe and TypingSignal.
type ControlAction interface {
	Topic() string
	controlAction()
}

// Subscribe asks the server to deliver notifications of a chat.
type Subscribe struct {
	Chat string
}

// Unsubscribe stops notifications of a chat.
type Unsubscribe struct {
	Chat string
}

// TypingSignal tells the other participants of a chat that the local user
// started or stopped typing.
type TypingSignal struct {
	Chat   string
	Active bool
}

func (a Subscribe) Topic() string    { return a.Chat }
func (a Unsubscribe) Topic() string  { return a.Chat }
func (a TypingSignal) Topic() string { return a.Chat }

func (Subscribe) controlAction()    {}
func (Unsubscribe) controlAction()  {}
func (TypingSignal) controlAction() {}
