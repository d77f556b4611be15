package session

// State is the reconciliation state of the current identity session
type State int

const (
	Idle State = iota
	Loading
	Ready
	Switching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Switching:
		return "switching"
	default:
		return "unknown"
	}
}

// Transition is delivered to observers on every state change
type Transition struct {
	From   State
	To     State
	UserID string
}
