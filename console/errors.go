package console

import "errors"

var (
	// ErrNoDialer is returned when a Console is constructed without a
	// Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order
	// to reach the serial device.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrAlreadyClosed is returned when Close is called on a Console that
	// has already been closed, or when Run is called after Close.
	ErrAlreadyClosed = errors.New("console already closed")

	// ErrSessionRunning is returned by Run while a relay loop is already
	// active on this Console.
	ErrSessionRunning = errors.New("session already running")
)
