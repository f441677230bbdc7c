package escape

import "strings"

// Command trigger bytes. A trigger only acts as a command when the
// Prefix byte arrived immediately before it.
const (
	quitTriggers  = `qQkK\`
	resetTriggers = "rR"
	helpTrigger   = '?'
)

// resetPreamble opens the reset sequence on the wire. Remote ends
// depend on these exact bytes; do not change them.
const resetPreamble = "\x01\x0B\ntrue\n"

// Machine interprets keystrokes bound for the serial port. It carries
// exactly one bit of state: whether the previous byte was the Prefix.
//
// Feed is not safe for concurrent use; the session's relay loop is
// expected to be the only caller.
type Machine struct {
	terminalType string
	pending      bool
}

// NewMachine returns a Machine that embeds terminalType in the remote
// reset sequence. An empty terminalType falls back to
// DefaultTerminalType.
func NewMachine(terminalType string) *Machine {
	if terminalType == "" {
		terminalType = DefaultTerminalType
	}
	return &Machine{terminalType: terminalType}
}

// Feed interprets one keystroke.
//
// With no prefix pending, the Prefix byte arms the machine and every
// other byte passes through unchanged. With a prefix pending, the byte
// picks a command: quit, reset, help, a literal Prefix, or, when it
// matches nothing, plain pass-through of the byte itself.
func (m *Machine) Feed(b byte) Result {
	if !m.pending {
		if b == Prefix {
			m.pending = true
			return Result{Action: ActionNone}
		}
		return Result{Action: ActionSend, Payload: []byte{b}}
	}

	m.pending = false

	switch {
	case strings.IndexByte(quitTriggers, b) >= 0:
		return Result{Action: ActionQuit}
	case strings.IndexByte(resetTriggers, b) >= 0:
		return Result{Action: ActionSend, Payload: m.ResetSequence()}
	case b == helpTrigger:
		return Result{Action: ActionHelp}
	}

	// Unrecognized command bytes (the Prefix itself included) degrade to
	// a literal send.
	return Result{Action: ActionSend, Payload: []byte{b}}
}

// Pending reports whether the machine is armed. A Prefix arriving as
// the final byte of a read burst stays armed for the first byte of the
// next burst.
func (m *Machine) Pending() bool {
	return m.pending
}

// ResetSequence builds the byte sequence that restores a usable remote
// shell: the preamble, then export TERM, resize and reset chained into
// one command line.
func (m *Machine) ResetSequence() []byte {
	commands := []string{
		"export TERM=" + m.terminalType,
		"resize",
		"reset",
	}
	return []byte(resetPreamble + strings.Join(commands, " && ") + "\n")
}
