package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"go.bug.st/serial"
	"golang.org/x/term"

	"tinyterm/console"
)

func main() {
	flag.String("device", "/dev/ttyUSB0", "Target serial port")
	flag.String("d", "/dev/ttyUSB0", "Target serial port (shorthand)")
	flag.String("D", "/dev/ttyUSB0", "Target serial port (shorthand)")
	flag.String("baud", "115200", "Serial baud rate (default: 115200)")
	flag.String("b", "115200", "Serial baud rate (shorthand)")
	flag.String("parity", "N", "Serial parity (default: None)")
	flag.String("p", "N", "Serial parity (shorthand)")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	// Diagnostics go to stderr so they never interleave with session
	// traffic on stdout. Text for humans, JSON when piped.
	options := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	logger := slog.New(handler)

	parity, err := ParseParity(config.Parity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		os.Exit(1)
	}

	baud, err := ParseBaud(config.Baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		os.Exit(1)
	}

	if err := CheckDevice(config.Device); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		os.Exit(1)
	}

	if err := run(config.Device, baud, parity, logger); err != nil {
		logger.Error("Session failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource of one session. Each acquisition registers a
// release with the shutdown registry, and the deferred Run covers every
// exit path, error or not.
func run(device string, baud int, parity serial.Parity, logger *slog.Logger) error {
	shutdown := console.NewShutdown(logger.With("component", "shutdown"))
	defer shutdown.Run()

	// CTRL+C is session traffic, not a kill switch: the relay loop
	// forwards it to the remote side.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)

	c, err := console.New(context.Background(), console.Config{
		Dialer: console.SerialDialer{
			PortName: device,
			Mode: &serial.Mode{
				BaudRate: baud,
				DataBits: 8,
				Parity:   parity,
				StopBits: serial.OneStopBit,
			},
		},
		TerminalType: os.Getenv("TERM"),
		Interrupts:   interrupts,
		Logger:       logger.With("component", "console"),
	})
	if err != nil {
		return fmt.Errorf("open serial console: %w", err)
	}
	shutdown.Register("serial port", c.Close)

	restore, err := console.RawMode(os.Stdin)
	if err != nil {
		return fmt.Errorf("configure terminal: %w", err)
	}
	shutdown.Register("terminal settings", restore)

	logger.Debug("Session starting", "device", device, "baud", baud)
	return c.Run(context.Background())
}
