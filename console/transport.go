package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=console

// Transport represents an established, bidirectional byte stream to a
// serial device.
//
// A Transport is assumed to be already connected and ready for use. It
// provides the low-level I/O primitives the session relays bytes over.
// Typical implementations include serial ports, PTY pairs, or in-memory
// fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a serial device.
//
// Dialer abstracts how the connection is created (a real serial port, a
// PTY, or a test double) and is intended to be used during session
// construction only. Once a Transport is obtained, the Dialer is no
// longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation provided by the
	// context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a local serial device using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, for example /dev/ttyUSB0.
	PortName string
	// Mode configures baud rate, parity and framing. When nil, 115200
	// baud with no parity, 8 data bits and one stop bit is used.
	Mode *serial.Mode
}

// Dial opens and configures the serial port, then drains both driver
// buffers so bytes queued before the session existed cannot leak into
// it.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("console: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("console: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 115200,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.PortName, err)
	}

	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("drain input buffer: %w", err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("drain output buffer: %w", err)
	}

	return port, nil
}
