package client

// State is the per-client party state machine:
// Unjoined -> Joining -> Member -> {Terminated, UserLeft, Error} -> Unjoined.
type State int

const (
	Unjoined State = iota
	Joining
	Member
	Terminated
	UserLeft
	Errored
)

func (s State) String() string {
	switch s {
	case Unjoined:
		return "unjoined"
	case Joining:
		return "joining"
	case Member:
		return "member"
	case Terminated:
		return "terminated"
	case UserLeft:
		return "user_left"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}
