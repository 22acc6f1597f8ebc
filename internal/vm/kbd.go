package vm

// kbd.go implements the memory-mapped keyboard device. Unlike the teacher's interrupt-driven
// keyboard, there is no interrupt vector here: programs poll KBSRAddr and the device answers
// synchronously from the host's keystroke probe. See Memory.Read.

import "fmt"

// KeyboardReady is the high bit of KBSRAddr; it is set whenever a keystroke has just been
// copied into KBDRAddr.
const KeyboardReady Word = 1 << 15

// Keyboard is the hardwired, pollable input device at KBSRAddr/KBDRAddr.
type Keyboard struct {
	in interface {
		ReadByte() (byte, error)
		KeyPending() bool
	}
}

// NewKeyboard creates a keyboard device backed by the given byte source.
func NewKeyboard(in interface {
	ReadByte() (byte, error)
	KeyPending() bool
}) *Keyboard {
	return &Keyboard{in: in}
}

// Poll is invoked on every read of KBSRAddr. If a keystroke is pending, it is consumed from the
// host source into KBDRAddr and the ready bit is set in KBSRAddr; otherwise KBSRAddr is cleared.
func (k *Keyboard) Poll(mem *Memory) error {
	if !k.in.KeyPending() {
		mem.cell[KBSRAddr] = 0

		return nil
	}

	b, err := k.in.ReadByte()
	if err != nil {
		return fmt.Errorf("kbd: %w", err)
	}

	mem.cell[KBDRAddr] = Word(b)
	mem.cell[KBSRAddr] = KeyboardReady

	return nil
}
