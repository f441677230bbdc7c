// Package escape implements the console's control protocol: a single
// prefix byte arms the interpreter, and the byte that follows selects a
// local command or degrades back to literal pass-through.
package escape

const (
	// Prefix arms the interpreter (CTRL+A). Sending it twice in a row
	// delivers one literal Prefix byte to the remote side.
	Prefix byte = 0x01

	// DefaultTerminalType is substituted into the reset sequence when no
	// terminal type is configured.
	DefaultTerminalType = "vt100"
)

// Action tells the session what to do with a fed byte.
type Action int

const (
	ActionNone Action = iota // nothing to emit (prefix armed)
	ActionSend               // Payload goes to the port
	ActionQuit               // end the session, discard pending output
	ActionHelp               // show the local help menu
)

// Result is the interpretation of a single fed byte.
type Result struct {
	// Action selects the session behavior.
	Action Action
	// Payload holds the bytes destined for the port. It is only set for
	// ActionSend.
	Payload []byte
}
