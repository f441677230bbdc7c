package console

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestSerialDialerValidation(t *testing.T) {
	tests := []struct {
		name    string
		dialer  SerialDialer
		ctx     context.Context
		wantErr string
	}{
		{
			name:    "empty port name",
			dialer:  SerialDialer{},
			ctx:     context.Background(),
			wantErr: "console: serial port name is required",
		},
		{
			name:    "nil context",
			dialer:  SerialDialer{PortName: "/dev/ttyUSB0"},
			ctx:     nil,
			wantErr: "console: context is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := tt.dialer.Dial(tt.ctx)

			if transport != nil {
				t.Error("expected nil transport")
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestSerialDialerContextCanceled(t *testing.T) {
	dialer := SerialDialer{PortName: "/dev/nonexistent"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport, err := dialer.Dial(ctx)

	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if transport != nil {
		t.Error("expected nil transport for canceled context")
	}
}

func TestSerialDialerOpenError(t *testing.T) {
	tests := []struct {
		name   string
		dialer SerialDialer
	}{
		{
			name:   "default mode",
			dialer: SerialDialer{PortName: "/dev/nonexistent"},
		},
		{
			name: "explicit mode",
			dialer: SerialDialer{
				PortName: "/dev/nonexistent",
				Mode: &serial.Mode{
					BaudRate: 9600,
					DataBits: 8,
					Parity:   serial.EvenParity,
					StopBits: serial.OneStopBit,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := tt.dialer.Dial(context.Background())

			if err == nil {
				t.Error("expected error for non-existent port")
			}
			if transport != nil {
				t.Error("expected nil transport for non-existent port")
			}
		})
	}
}

// TestSerialDialerOverPTY opens a real PTY slave through the dialer and
// checks that bytes cross in both directions and that stale input from
// before the dial is drained.
func TestSerialDialerOverPTY(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	// Queued before the dial; the open must flush it away.
	_, err = master.Write([]byte("stale"))
	require.NoError(t, err)

	dialer := SerialDialer{PortName: slave.Name()}
	transport, err := dialer.Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { transport.Close() })

	_, err = master.Write([]byte("fresh\n"))
	require.NoError(t, err)

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := transport.Read(buf)
		if err != nil {
			return
		}
		got <- string(buf[:n])
	}()

	select {
	case data := <-got:
		require.Equal(t, "fresh\n", data)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for port data")
	}

	_, err = transport.Write([]byte("pong\n"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	done := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(master, buf)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
		require.Equal(t, "pong\n", string(buf))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for master data")
	}
}
