package vm

// exec.go drives the fetch-decode-execute cycle.

import (
	"errors"
	"fmt"

	"github.com/mprast/lc3vm/internal/log"
)

// ErrIllegalOpcode is returned when the fetched instruction is RTI or RESV, the two opcodes
// that are illegal in this machine's single, unprivileged execution context.
var ErrIllegalOpcode = errors.New("illegal opcode")

// Run executes instructions until the program halts, an illegal opcode is fetched, or ctx-like
// cancellation is signalled externally by clearing vm.Running.
func (vm *LC3) Run() error {
	vm.log.Info("START", log.String("STATE", vm.String()))

	for vm.Running {
		if err := vm.Step(); err != nil {
			vm.log.Error("HALTED (abort)", "ERR", err, log.String("STATE", vm.String()))
			return err
		}
	}

	vm.log.Info("HALTED", log.String("STATE", vm.String()))

	return nil
}

// Step fetches, decodes, and executes exactly one instruction.
func (vm *LC3) Step() error {
	if err := vm.fetch(); err != nil {
		return err
	}

	op, err := vm.decode()
	if err != nil {
		return err
	}

	vm.log.Debug("decoded", "OP", op)

	if a, ok := op.(addressable); ok {
		a.evalAddress(vm)
	}

	if f, ok := op.(fetchable); ok {
		if err := f.fetchOperands(vm); err != nil {
			return fmt.Errorf("step: %w", err)
		}
	}

	op.execute(vm)

	if s, ok := op.(storable); ok {
		if err := s.storeResult(vm); err != nil {
			return fmt.Errorf("step: %w", err)
		}
	}

	vm.log.Debug("executed", "OP", op, log.String("STATE", vm.String()))

	return nil
}

// fetch loads the instruction at PC into IR and advances PC, wrapping modulo 2^16. This is the
// only place PC is incremented; every operand computation below observes the already-advanced
// value.
func (vm *LC3) fetch() error {
	word, err := vm.Mem.Read(Word(vm.PC))
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	vm.IR = Instruction(word)
	vm.PC++

	return nil
}

// decode builds the operation struct for the current IR's opcode.
func (vm *LC3) decode() (operation, error) {
	var op operation

	switch vm.IR.Opcode() {
	case BR:
		op = &br{}
	case ADD:
		if vm.IR.Imm() {
			op = &addImm{}
		} else {
			op = &add{}
		}
	case LD:
		op = &ld{}
	case ST:
		op = &st{}
	case JSR:
		if vm.IR.Long() {
			op = &jsr{}
		} else {
			op = &jsrr{}
		}
	case AND:
		if vm.IR.Imm() {
			op = &andImm{}
		} else {
			op = &and{}
		}
	case LDR:
		op = &ldr{}
	case STR:
		op = &str{}
	case NOT:
		op = &not{}
	case LDI:
		op = &ldi{}
	case STI:
		op = &sti{}
	case JMP:
		op = &jmp{}
	case LEA:
		op = &lea{}
	case TRAP:
		op = &trapOp{}
	case RTI, RESV:
		return nil, fmt.Errorf("%w: %s at %s", ErrIllegalOpcode, vm.IR.Opcode(), vm.PC-1)
	default:
		return nil, fmt.Errorf("%w: opcode %#x", ErrIllegalOpcode, uint16(vm.IR.Opcode()))
	}

	op.decode(vm)

	return op, nil
}

// operation is a single decoded instruction as it moves through the execution stages. Every
// opcode implements execute; addressable/fetchable/storable are implemented only by the
// opcodes that need them, mirroring the LC-3 reference microarchitecture's data path.
type operation interface {
	decode(vm *LC3)
	execute(vm *LC3)
	fmt.Stringer
}

// addressable operations compute a memory address before fetching or storing.
type addressable interface {
	operation
	evalAddress(vm *LC3)
}

// fetchable operations load an operand from the computed address before executing.
type fetchable interface {
	addressable
	fetchOperands(vm *LC3) error
}

// storable operations write a result to the computed address after executing.
type storable interface {
	addressable
	storeResult(vm *LC3) error
}
