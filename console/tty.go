package console

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// RawMode switches the terminal behind f into raw mode, so keystrokes
// reach the session byte by byte with echo and line editing off. It
// returns a restore function that puts the original settings back;
// calling restore more than once is harmless.
func RawMode(f *os.File) (restore func() error, err error) {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set terminal raw mode: %w", err)
	}
	return func() error {
		return term.Restore(fd, oldState)
	}, nil
}
