package vm

// mem.go is the machine's memory controller: a flat 64Ki-word address space with two
// memory-mapped keyboard registers handled specially on read.

import (
	"errors"
	"fmt"

	"github.com/mprast/lc3vm/internal/log"
)

// Addresses of the memory-mapped keyboard registers. See Keyboard.
const (
	KBSRAddr Word = 0xfe00 // Keyboard status register.
	KBDRAddr Word = 0xfe02 // Keyboard data register.
)

// UserOrigin is the standard LC-3 starting address for user programs.
const UserOrigin Word = 0x3000

// PhysicalMemory is the VM's entire addressable word space.
type PhysicalMemory [1 << 16]Word

// Memory mediates all reads and writes, routing the two keyboard addresses through the
// keyboard device and everything else directly to the backing array.
type Memory struct {
	cell PhysicalMemory
	kbd  *Keyboard

	log *log.Logger
}

// NewMemory creates a zero-filled memory controller with the keyboard device mapped at
// KBSRAddr/KBDRAddr.
func NewMemory(kbd *Keyboard) *Memory {
	return &Memory{
		kbd: kbd,
		log: log.DefaultLogger(),
	}
}

// Read loads the word at addr. Reading KBSRAddr polls the keyboard device, which may update
// both KBSRAddr and KBDRAddr before the value is returned.
func (mem *Memory) Read(addr Word) (Word, error) {
	if addr == KBSRAddr {
		if err := mem.kbd.Poll(mem); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrMemory, err)
		}
	}

	return mem.cell[addr], nil
}

// Write stores val at addr directly; writes to the keyboard registers are permitted but have
// no architectural effect beyond the store (the next KBSRAddr poll overwrites KBSRAddr, and
// KBDRAddr too when a keystroke is pending).
func (mem *Memory) Write(addr, val Word) {
	mem.cell[addr] = val
}

// ErrMemory wraps every error the memory controller returns; it is typically a host I/O failure
// surfaced while polling the keyboard.
var ErrMemory = errors.New("memory error")
