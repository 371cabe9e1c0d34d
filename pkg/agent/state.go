package agent

// State is the source agent's lifecycle state. The trigger control and
// the terminal status line both render it.
//
// Transitions: idle → armed once the board region is detected; armed →
// processing on activation; processing → success or error; both terminal
// states auto-reset to armed (the ready state) after their display
// window.
type State string

const (
	StateIdle       State = "idle"
	StateArmed      State = "armed"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
)
