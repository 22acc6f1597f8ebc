// Package tty adapts a Unix terminal to the machine's host interfaces: a non-blocking keystroke
// probe, a blocking byte read, and a byte sink for output.
package tty

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned when standard input is not a terminal, in which case raw mode and the
// non-blocking keystroke probe are unavailable.
var ErrNoTTY = errors.New("tty: not a terminal")

// Console adapts a terminal for use as the machine's keyboard and display.
type Console struct {
	fd    int
	in    *os.File
	out   io.Writer
	state *term.State
}

// NewConsole puts in into raw mode and returns a Console that reads keystrokes from in and writes
// output to out. Callers must call Restore when done to return the terminal to its original mode.
func NewConsole(in *os.File, out io.Writer) (*Console, error) {
	fd := int(in.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	return &Console{fd: fd, in: in, out: out, state: state}, nil
}

// Restore returns the terminal to the mode it was in before NewConsole.
func (c *Console) Restore() error {
	return term.Restore(c.fd, c.state)
}

// Writer returns the sink output is written to.
func (c *Console) Writer() io.Writer {
	return c.out
}

// KeyPending reports whether a keystroke is available to read without blocking.
func (c *Console) KeyPending() bool {
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, 0)
	if err != nil {
		return false
	}

	return n > 0 && fds[0].Revents&unix.POLLIN != 0
}

// ReadByte blocks until a single byte is available from the terminal and returns it.
func (c *Console) ReadByte() (byte, error) {
	var buf [1]byte

	if _, err := io.ReadFull(c.in, buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}
