// Package trap implements the machine's TRAP service routines natively in Go: GETC, OUT, PUTS,
// IN, PUTSP, and HALT. The reference architecture implements these as a table of LC-3 subroutines
// loaded at boot; this machine has no assembler to produce that code, so each routine is a plain
// Go function registered in a vector table and invoked directly from the TRAP instruction.
package trap

import (
	"github.com/mprast/lc3vm/internal/log"
	"github.com/mprast/lc3vm/internal/vm"
)

// The trap vectors, per the architecture's reserved TRAP table.
const (
	GETC  uint8 = 0x20
	OUT   uint8 = 0x21
	PUTS  uint8 = 0x22
	IN    uint8 = 0x23
	PUTSP uint8 = 0x24
	HALT  uint8 = 0x25
)

// inPrompt is printed by TRAP IN before it blocks for a keystroke.
const inPrompt = "Enter a character: "

// Table builds a vm.TrapHandler dispatching the six standard service routines. An unrecognized
// vector is a no-op, matching the reference implementation's bare switch statement.
func Table() vm.TrapHandler {
	return func(m *vm.LC3, vector uint8) {
		switch vector {
		case GETC:
			getc(m)
		case OUT:
			out(m)
		case PUTS:
			puts(m)
		case IN:
			in(m)
		case PUTSP:
			putsp(m)
		case HALT:
			halt(m)
		}
	}
}

// getc reads one raw byte from the host into R0, without echoing it, and sets COND from R0.
func getc(m *vm.LC3) {
	b, err := m.Host.In.ReadByte()
	if err != nil {
		return
	}

	m.Reg[vm.R0] = vm.Register(b)
	m.Cond.Set(m.Reg[vm.R0])
}

// out writes the low byte of R0 to the host.
func out(m *vm.LC3) {
	_, _ = m.Host.Out.Write([]byte{byte(m.Reg[vm.R0])})
}

// puts writes a NUL-terminated string, one character per memory word, starting at the address in
// R0.
func puts(m *vm.LC3) {
	addr := vm.Word(m.Reg[vm.R0])

	for {
		w, err := m.Mem.Read(addr)
		if err != nil || w == 0 {
			return
		}

		if _, err := m.Host.Out.Write([]byte{byte(w)}); err != nil {
			return
		}

		addr++
	}
}

// in prompts the user, reads and echoes one byte, stores it in R0, and sets COND from R0.
func in(m *vm.LC3) {
	_, _ = m.Host.Out.Write([]byte(inPrompt))

	b, err := m.Host.In.ReadByte()
	if err != nil {
		return
	}

	_, _ = m.Host.Out.Write([]byte{b})

	m.Reg[vm.R0] = vm.Register(b)
	m.Cond.Set(m.Reg[vm.R0])
}

// putsp writes a string packed two characters per memory word, low byte first, stopping at the
// first zero word. A zero high byte is not written, and the next word is still read.
func putsp(m *vm.LC3) {
	addr := vm.Word(m.Reg[vm.R0])

	for {
		w, err := m.Mem.Read(addr)
		if err != nil || w == 0 {
			return
		}

		lo := byte(w & 0xff)
		if _, err := m.Host.Out.Write([]byte{lo}); err != nil {
			return
		}

		if hi := byte(w >> 8); hi != 0 {
			if _, err := m.Host.Out.Write([]byte{hi}); err != nil {
				return
			}
		}

		addr++
	}
}

// halt prints the conventional banner and stops the run loop.
func halt(m *vm.LC3) {
	log.DefaultLogger().Info("HALT")
	_, _ = m.Host.Out.Write([]byte("HALT\n"))
	m.Running = false
}
