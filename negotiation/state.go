// Package negotiation drives the WFD M1-M16 RTSP handshake as source: a
// strict state machine from connection accept through Ready/Playing, plus
// the M16 keepalive ticker. It is the state-machine half of session
// lifecycle (spec.md §4.3); package session owns the connection and
// dispatches into it.
package negotiation

// State is one node of the negotiation state machine (spec.md §4.3).
type State int

// States, in the order the handshake visits them.
const (
	StateInit State = iota
	StateM1Sent
	StateM2Received
	StateM3Sent
	StateM3Received
	StateM4Sent
	StateM4Received
	StateReady
	StateSetup
	StatePlaying
	StatePaused
	StateTeardown
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateM1Sent:
		return "M1Sent"
	case StateM2Received:
		return "M2Received"
	case StateM3Sent:
		return "M3Sent"
	case StateM3Received:
		return "M3Received"
	case StateM4Sent:
		return "M4Sent"
	case StateM4Received:
		return "M4Received"
	case StateReady:
		return "Ready"
	case StateSetup:
		return "Setup"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateTeardown:
		return "Teardown"
	}
	return "unknown"
}

// validNext enumerates the strict forward transitions of §4.3. Teardown is
// reachable from any state (failure / explicit trigger), so it is checked
// separately in Machine.Advance.
var validNext = map[State][]State{
	StateInit:        {StateM1Sent},
	StateM1Sent:      {StateM2Received},
	StateM2Received:  {StateM3Sent},
	StateM3Sent:      {StateM3Received},
	StateM3Received:  {StateM4Sent},
	StateM4Sent:      {StateM4Received},
	StateM4Received:  {StateReady},
	StateReady:       {StateSetup},
	StateSetup:       {StatePlaying, StatePaused},
	StatePlaying:     {StatePaused, StateTeardown},
	StatePaused:      {StatePlaying, StateTeardown},
}

// Machine is the per-session negotiation state machine. It is not
// goroutine-safe on its own; package session serializes access to it
// under session.lock, matching spec.md §5.
type Machine struct {
	current State
}

// NewMachine returns a Machine in StateInit.
func NewMachine() *Machine {
	return &Machine{current: StateInit}
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Advance transitions to next if the move is legal, or returns false. Any
// state may transition to StateTeardown.
func (m *Machine) Advance(next State) bool {
	if next == StateTeardown {
		m.current = StateTeardown
		return true
	}
	for _, candidate := range validNext[m.current] {
		if candidate == next {
			m.current = next
			return true
		}
	}
	return false
}
