package console

import (
	"io"
	"log/slog"
	"os"
)

// Config carries everything a Console needs to run a session.
type Config struct {
	// Dialer opens the serial transport. Required.
	Dialer Dialer
	// Input is the local keyboard handle, already switched to raw mode.
	// Defaults to os.Stdin.
	Input io.Reader
	// Display is the local screen handle. Defaults to os.Stdout.
	Display io.Writer
	// TerminalType is embedded in the remote reset sequence. Empty means
	// the escape package's default.
	TerminalType string
	// Interrupts delivers SIGINT notifications for the relay loop to
	// forward to the remote side. Without it, CTRL+C never reaches the
	// port.
	Interrupts <-chan os.Signal
	// Logger receives session lifecycle events. Defaults to a discarding
	// logger.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Input == nil {
		c.Input = os.Stdin
	}
	if c.Display == nil {
		c.Display = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}
