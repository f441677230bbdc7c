package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.bug.st/serial"
)

// Config holds the application configuration. Values stay strings until
// the Parse and Check helpers validate them, so error reporting can
// echo exactly what the user supplied.
type Config struct {
	// Device is the path to the serial port (e.g. "/dev/ttyUSB0")
	Device string
	// Baud is the serial baud rate (e.g. "115200")
	Baud string
	// Parity is the serial parity setting ("N", "E" or "O")
	Parity string
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.Device = "/dev/ttyUSB0"
		c.Baud = "115200"
		c.Parity = "N"
		c.LogLevel = "info"
		return nil
	}
}

// envOverrides mirrors Config for envconfig; an empty field means the
// variable was not set.
type envOverrides struct {
	Device   string `envconfig:"DEVICE"`
	Baud     string `envconfig:"BAUD"`
	Parity   string `envconfig:"PARITY"`
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// WithEnv loads configuration from TINYTERM_* environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		var env envOverrides
		if err := envconfig.Process("tinyterm", &env); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}

		if env.Device != "" {
			c.Device = env.Device
		}
		if env.Baud != "" {
			c.Baud = env.Baud
		}
		if env.Parity != "" {
			c.Parity = env.Parity
		}
		if env.LogLevel != "" {
			c.LogLevel = env.LogLevel
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "device", "d", "D":
				c.Device = f.Value.String()
			case "baud", "b":
				c.Baud = f.Value.String()
			case "parity", "p":
				c.Parity = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			}

		})
		return nil
	}

}

// ParseParity normalizes and validates a parity setting: surrounding
// whitespace is stripped, case is ignored, and only the first letter
// counts.
func ParseParity(setting string) (serial.Parity, error) {
	normalized := strings.ToUpper(strings.TrimSpace(setting))
	if normalized == "" {
		return serial.NoParity, errors.New("unknown parity setting []")
	}

	switch normalized[0] {
	case 'N':
		return serial.NoParity, nil
	case 'E':
		return serial.EvenParity, nil
	case 'O':
		return serial.OddParity, nil
	}
	return serial.NoParity, fmt.Errorf("unknown parity setting [%c]", normalized[0])
}

// ParseBaud converts the baud rate argument to an integer.
func ParseBaud(rate string) (int, error) {
	baud, err := strconv.Atoi(rate)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse baud rate [%s]", rate)
	}
	return baud, nil
}

// CheckDevice verifies that the serial device exists before anything
// tries to open it.
func CheckDevice(device string) error {
	if _, err := os.Stat(device); err != nil {
		return fmt.Errorf("couldn't find device [%s]", device)
	}
	return nil
}
