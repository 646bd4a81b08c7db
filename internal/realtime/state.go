package realtime

// State is the lifecycle position of a Client.
type State uint8

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Lifecycle is a connection transition observed by OnConnect and OnDisconnect.
type Lifecycle uint8

const (
	LifecycleConnect Lifecycle = iota + 1
	LifecycleDisconnect
)
