// Package console implements the interactive serial session: a relay
// loop that moves bytes between the local terminal and a serial port,
// trapping the escape prefix on the keyboard side for local commands.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"tinyterm/escape"
)

// batchSize is the read buffer size for both relay directions.
const batchSize = 4096

// interruptByte is what the remote side receives when the local user
// presses CTRL+C.
const interruptByte = 0x03

// The local terminal is in raw mode while the session runs, so output
// post-processing is off and every local line needs an explicit \r.
const (
	welcomeBanner = "--- Press [CTRL+A] and then q to quit. ---\r\n"
	goodbyeBanner = "\r\n--- Goodbye. ---\r\n"
)

var helpText = []byte("Tiny-term commands:\r\n" +
	" [CTRL+a, (q, k, or \\)]: Exit\r\n" +
	" [CTRL+a, r]:            Send shell commands terminal-config\r\n" +
	" [CTRL+a, CTRL+a]:       Send literal CTRL+a\r\n" +
	" [CTRL+a, ?]:            Show this menu\r\n")

// Console is one interactive session between the local terminal and a
// serial device. It relays bytes in both directions and interprets the
// escape prefix on the keyboard side.
//
// All relay state is owned by the Run loop goroutine; the pump
// goroutines only move bytes. Close may be called from any goroutine.
type Console struct {
	// transport is the open connection to the serial device.
	transport Transport
	// input is the session's keyboard handle.
	input io.Reader
	// display is the session's screen handle.
	display io.Writer
	// machine interprets escape-prefixed keystrokes.
	machine *escape.Machine
	// interrupts delivers SIGINT notifications to the loop.
	interrupts <-chan os.Signal
	logger     *slog.Logger

	// mu guards closed and running.
	mu sync.Mutex
	// closed marks the console as shut down.
	closed bool
	// running marks an active relay loop.
	running bool
}

// New dials the serial device and prepares a session around it. The
// relay does not start until Run is called.
func New(ctx context.Context, config Config) (*Console, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	return &Console{
		transport:  transport,
		input:      config.Input,
		display:    config.Display,
		machine:    escape.NewMachine(config.TerminalType),
		interrupts: config.Interrupts,
		logger:     config.Logger,
	}, nil
}

// Run relays bytes between the local terminal and the serial device
// until the user sends the quit command, the context ends, or either
// side fails.
//
// The loop is the only goroutine that touches relay state and the only
// writer to the port and the display. Two pump goroutines perform the
// blocking reads and hand over batches; the select below is the
// readiness wait. There are no timeouts in the steady state: the loop
// parks until a side has bytes, an interrupt arrives, or the context
// ends.
func (c *Console) Run(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unbuffered on purpose: a pump must not read ahead of the loop
	// servicing its previous batch.
	portBatches := make(chan []byte)
	inputBatches := make(chan []byte)
	pumpErrs := make(chan error, 2)

	go pump(pumpCtx, c.transport, portBatches, pumpErrs)
	go pump(pumpCtx, c.input, inputBatches, pumpErrs)

	if _, err := io.WriteString(c.display, welcomeBanner); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}
	c.logger.Debug("Session started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case batch := <-portBatches:
			// Inbound bytes reach the screen immediately and unmodified.
			if _, err := c.display.Write(batch); err != nil {
				return fmt.Errorf("write display: %w", err)
			}

		case batch := <-inputBatches:
			stop, err := c.relay(batch)
			if err != nil {
				return err
			}
			if stop {
				c.logger.Debug("Session stopped by quit command")
				if _, err := io.WriteString(c.display, goodbyeBanner); err != nil {
					return fmt.Errorf("write banner: %w", err)
				}
				return nil
			}

		case <-c.interrupts:
			// CTRL+C belongs to the remote side, not to this process.
			if _, err := c.transport.Write([]byte{interruptByte}); err != nil {
				return fmt.Errorf("forward interrupt: %w", err)
			}

		case err := <-pumpErrs:
			return fmt.Errorf("session read: %w", err)
		}
	}
}

// relay interprets one keyboard batch and flushes the surviving bytes
// to the port in a single write. A quit command anywhere in the batch
// wins over everything buffered: nothing from that batch reaches the
// wire.
func (c *Console) relay(batch []byte) (stop bool, err error) {
	var outbuf []byte

	for _, b := range batch {
		result := c.machine.Feed(b)
		switch result.Action {
		case escape.ActionQuit:
			stop = true
		case escape.ActionHelp:
			if _, err := c.display.Write(helpText); err != nil {
				return false, fmt.Errorf("write help: %w", err)
			}
		case escape.ActionSend:
			outbuf = append(outbuf, result.Payload...)
		}
	}

	if stop {
		return true, nil
	}
	if len(outbuf) == 0 {
		return false, nil
	}
	if _, err := c.transport.Write(outbuf); err != nil {
		return false, fmt.Errorf("write port: %w", err)
	}
	return false, nil
}

// Close shuts down the session and releases the transport. After Close
// the console cannot be reused. Closing the transport also unblocks a
// running relay loop, which then returns a read error.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrAlreadyClosed
	}
	c.closed = true

	if c.transport != nil {
		return c.transport.Close()
	}
	return nil
}

func (c *Console) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrAlreadyClosed
	}
	if c.running {
		return ErrSessionRunning
	}
	c.running = true
	return nil
}

func (c *Console) end() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// pump moves bytes from a blocking reader to the relay loop. It owns no
// relay state and exits when the read fails (io.EOF included) or the
// context ends.
func pump(ctx context.Context, r io.Reader, batches chan<- []byte, errs chan<- error) {
	buf := make([]byte, batchSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			batch := make([]byte, n)
			copy(batch, buf[:n])
			select {
			case batches <- batch:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}
	}
}
