package vm

// cpu.go assembles the virtual machine from its component registers, memory, and host adapter.

import (
	"fmt"

	"github.com/mprast/lc3vm/internal/log"
)

// LC3 is a computer simulated in software: ten registers, a flat memory, and a polling
// keyboard, wired to a host for byte I/O.
type LC3 struct {
	PC   ProgramCounter // Address of the next instruction to fetch.
	IR   Instruction    // Currently executing instruction.
	Cond Condition      // NZP condition code.
	Reg  RegisterFile   // R0..R7.

	Mem  *Memory
	Host Host

	// Trap dispatches TRAP vectors to the service routine layer. New leaves it nil unless the
	// WithTrapHandler option is given (cmd/lc3 passes internal/trap's Table); with no handler a
	// TRAP only sets R7.
	Trap TrapHandler

	Running bool // Cleared by TRAP HALT; the run loop exits when this becomes false.

	log *log.Logger
}

// TrapHandler services a TRAP instruction's vector, e.g. 0x25 for HALT.
type TrapHandler func(vm *LC3, vector uint8)

// An OptionFn customizes a machine during construction.
type OptionFn func(*LC3)

// WithLogger configures the logger the machine and its memory controller write to.
func WithLogger(logger *log.Logger) OptionFn {
	return func(vm *LC3) {
		vm.log = logger
		vm.Mem.log = logger
	}
}

// WithTrapHandler configures the machine's TRAP dispatch table.
func WithTrapHandler(h TrapHandler) OptionFn {
	return func(vm *LC3) { vm.Trap = h }
}

// New creates a machine wired to host for keyboard input and output, with PC at the standard
// user origin and COND initialized to Z, per the architecture's reset state.
func New(host Host, opts ...OptionFn) *LC3 {
	kbd := NewKeyboard(host.In)

	vm := &LC3{
		PC:      ProgramCounter(UserOrigin),
		Cond:    ConditionZero,
		Mem:     NewMemory(kbd),
		Host:    host,
		Running: true,
		log:     log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	return vm
}

func (vm *LC3) String() string {
	return fmt.Sprintf("PC: %s IR: %s COND: %s", vm.PC, vm.IR, vm.Cond)
}
