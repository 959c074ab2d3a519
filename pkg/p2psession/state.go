package p2psession

import "fmt"

// State is a P2PSession's position in the per-session state machine
// of spec §4.8.
type State int

const (
	// Initiated is entered the moment a local session-initiate is
	// sent (or a remote one is received and accepted upward).
	Initiated State = iota
	// Ringing is entered on a device-ringing hint before accept.
	Ringing
	// Accepted is the steady state once session-accept completes.
	Accepted
	// Updating is entered while a session-update is in flight.
	Updating
	// Terminating is entered once a session-terminate has been sent
	// or received, awaiting the ack.
	Terminating
	// Closed is the terminal state; the session is removed from the
	// Manager's table once reached.
	Closed
)

var stateNames = map[State]string{
	Initiated:   "initiated",
	Ringing:     "ringing",
	Accepted:    "accepted",
	Updating:    "updating",
	Terminating: "terminating",
	Closed:      "closed",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTerminal reports whether s is Closed.
func (s State) IsTerminal() bool { return s == Closed }
