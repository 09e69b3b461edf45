package genchat

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateConfigured
	StateChatActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateChatActive:
		return "chat_active"
	}
	return "unknown"
}
