package vm

// host.go declares the small capability set the core requires from its environment. A real
// terminal (internal/tty), a scripted buffer (tests), or anything else implementing these
// interfaces can drive the machine; the core never imports os or a terminal library directly.

import "io"

// KeyboardProbe reports whether a keystroke is waiting to be read, without blocking.
type KeyboardProbe interface {
	KeyPending() bool
}

// Host bundles the capabilities the VM needs from its environment: a source of input bytes
// (which must also support KeyboardProbe), and a sink for output bytes.
type Host struct {
	// In is read one byte at a time by GETC/IN; KeyPending backs the KBSR poll.
	In interface {
		io.ByteReader
		KeyboardProbe
	}

	// Out receives the bytes written by OUT/PUTS/IN/PUTSP/HALT.
	Out io.Writer
}
