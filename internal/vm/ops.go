package vm

// ops.go implements the semantics of each opcode. Every operand field, PC-relative offset, and
// condition-code update follows spec.md section 4.3's decode table exactly; see lc3.c in this
// repository's reference material for the instruction-by-instruction cross-check.

import "fmt"

// base is embedded by every operation; it gives each a String method naming its opcode.
type base struct {
	op Opcode
}

func (b base) String() string { return b.op.String() }

// BR: conditional branch. PC is advanced only if any bit of the branch's NZP mask is set in
// COND; COND itself is left unchanged.
type br struct {
	base
	nzp    Condition
	offset Word
}

func (o *br) decode(vm *LC3) {
	o.op = BR
	o.nzp = vm.IR.NZP()
	o.offset = vm.IR.Offset(Offset9)
}

func (o *br) execute(vm *LC3) {
	if vm.Cond.Any(o.nzp) {
		vm.PC = ProgramCounter(Word(vm.PC) + o.offset)
	}
}

// ADD (register mode): DR <- SR1 + SR2.
type add struct {
	base
	dr, sr1, sr2 GPR
}

func (o *add) decode(vm *LC3) {
	o.op, o.dr, o.sr1, o.sr2 = ADD, vm.IR.DR(), vm.IR.SR1(), vm.IR.SR2()
}

func (o *add) execute(vm *LC3) {
	vm.Reg[o.dr] = Register(Word(vm.Reg[o.sr1]) + Word(vm.Reg[o.sr2]))
	vm.Cond.Set(vm.Reg[o.dr])
}

// ADD (immediate mode): DR <- SR1 + sext(imm5).
type addImm struct {
	base
	dr, sr GPR
	lit    Word
}

func (o *addImm) decode(vm *LC3) {
	o.op, o.dr, o.sr, o.lit = ADD, vm.IR.DR(), vm.IR.SR1(), vm.IR.Literal()
}

func (o *addImm) execute(vm *LC3) {
	vm.Reg[o.dr] = Register(Word(vm.Reg[o.sr]) + o.lit)
	vm.Cond.Set(vm.Reg[o.dr])
}

// AND (register mode): DR <- SR1 & SR2.
type and struct {
	base
	dr, sr1, sr2 GPR
}

func (o *and) decode(vm *LC3) {
	o.op, o.dr, o.sr1, o.sr2 = AND, vm.IR.DR(), vm.IR.SR1(), vm.IR.SR2()
}

func (o *and) execute(vm *LC3) {
	vm.Reg[o.dr] = vm.Reg[o.sr1] & vm.Reg[o.sr2]
	vm.Cond.Set(vm.Reg[o.dr])
}

// AND (immediate mode): DR <- SR1 & sext(imm5).
type andImm struct {
	base
	dr, sr GPR
	lit    Word
}

func (o *andImm) decode(vm *LC3) {
	o.op, o.dr, o.sr, o.lit = AND, vm.IR.DR(), vm.IR.SR1(), vm.IR.Literal()
}

func (o *andImm) execute(vm *LC3) {
	vm.Reg[o.dr] = vm.Reg[o.sr] & Register(o.lit)
	vm.Cond.Set(vm.Reg[o.dr])
}

// NOT: DR <- ^SR, bitwise complement. An involution: applying it twice restores both the
// register and the condition code it implies.
type not struct {
	base
	dr, sr GPR
}

func (o *not) decode(vm *LC3) {
	o.op, o.dr, o.sr = NOT, vm.IR.DR(), vm.IR.SR1()
}

func (o *not) execute(vm *LC3) {
	vm.Reg[o.dr] = ^vm.Reg[o.sr]
	vm.Cond.Set(vm.Reg[o.dr])
}

// LD: DR <- mem[PC + off9].
type ld struct {
	base
	dr     GPR
	offset Word
	addr   Word
}

func (o *ld) decode(vm *LC3) {
	o.op, o.dr, o.offset = LD, vm.IR.DR(), vm.IR.Offset(Offset9)
}

func (o *ld) evalAddress(vm *LC3) { o.addr = Word(vm.PC) + o.offset }

func (o *ld) fetchOperands(vm *LC3) error {
	word, err := vm.Mem.Read(o.addr)
	if err != nil {
		return err
	}

	vm.Reg[o.dr] = Register(word)

	return nil
}

func (o *ld) execute(vm *LC3) { vm.Cond.Set(vm.Reg[o.dr]) }

// LDI: DR <- mem[mem[PC + off9]].
type ldi struct {
	base
	dr     GPR
	offset Word
	addr   Word
}

func (o *ldi) decode(vm *LC3) {
	o.op, o.dr, o.offset = LDI, vm.IR.DR(), vm.IR.Offset(Offset9)
}

func (o *ldi) evalAddress(vm *LC3) { o.addr = Word(vm.PC) + o.offset }

func (o *ldi) fetchOperands(vm *LC3) error {
	ptr, err := vm.Mem.Read(o.addr)
	if err != nil {
		return err
	}

	word, err := vm.Mem.Read(ptr)
	if err != nil {
		return err
	}

	vm.Reg[o.dr] = Register(word)

	return nil
}

func (o *ldi) execute(vm *LC3) { vm.Cond.Set(vm.Reg[o.dr]) }

// LDR: DR <- mem[BaseR + off6].
type ldr struct {
	base
	dr, base_ GPR
	offset    Word
	addr      Word
}

func (o *ldr) decode(vm *LC3) {
	o.op, o.dr, o.base_, o.offset = LDR, vm.IR.DR(), vm.IR.SR1(), vm.IR.Offset(Offset6)
}

func (o *ldr) evalAddress(vm *LC3) { o.addr = Word(vm.Reg[o.base_]) + o.offset }

func (o *ldr) fetchOperands(vm *LC3) error {
	word, err := vm.Mem.Read(o.addr)
	if err != nil {
		return err
	}

	vm.Reg[o.dr] = Register(word)

	return nil
}

func (o *ldr) execute(vm *LC3) { vm.Cond.Set(vm.Reg[o.dr]) }

// LEA: DR <- PC + off9. No memory access; COND is still updated per the revision-1 LC-3 spec
// this machine follows (see spec.md section 4.3).
type lea struct {
	base
	dr     GPR
	offset Word
}

func (o *lea) decode(vm *LC3) {
	o.op, o.dr, o.offset = LEA, vm.IR.DR(), vm.IR.Offset(Offset9)
}

func (o *lea) execute(vm *LC3) {
	vm.Reg[o.dr] = Register(Word(vm.PC) + o.offset)
	vm.Cond.Set(vm.Reg[o.dr])
}

// ST: mem[PC + off9] <- SR.
type st struct {
	base
	sr     GPR
	offset Word
	addr   Word
}

func (o *st) decode(vm *LC3) {
	o.op, o.sr, o.offset = ST, vm.IR.SR(), vm.IR.Offset(Offset9)
}

func (o *st) evalAddress(vm *LC3) { o.addr = Word(vm.PC) + o.offset }
func (o *st) execute(_ *LC3)      {}

func (o *st) storeResult(vm *LC3) error {
	vm.Mem.Write(o.addr, Word(vm.Reg[o.sr]))
	return nil
}

// STI: mem[mem[PC + off9]] <- SR.
type sti struct {
	base
	sr     GPR
	offset Word
	addr   Word
}

func (o *sti) decode(vm *LC3) {
	o.op, o.sr, o.offset = STI, vm.IR.SR(), vm.IR.Offset(Offset9)
}

func (o *sti) evalAddress(vm *LC3) { o.addr = Word(vm.PC) + o.offset }
func (o *sti) execute(_ *LC3)      {}

func (o *sti) storeResult(vm *LC3) error {
	ptr, err := vm.Mem.Read(o.addr)
	if err != nil {
		return err
	}

	vm.Mem.Write(ptr, Word(vm.Reg[o.sr]))

	return nil
}

// STR: mem[BaseR + off6] <- SR.
type str struct {
	base
	sr, base_ GPR
	offset    Word
	addr      Word
}

func (o *str) decode(vm *LC3) {
	o.op, o.sr, o.base_, o.offset = STR, vm.IR.SR(), vm.IR.SR1(), vm.IR.Offset(Offset6)
}

func (o *str) evalAddress(vm *LC3) { o.addr = Word(vm.Reg[o.base_]) + o.offset }
func (o *str) execute(_ *LC3)      {}

func (o *str) storeResult(vm *LC3) error {
	vm.Mem.Write(o.addr, Word(vm.Reg[o.sr]))
	return nil
}

// JMP: PC <- BaseR. RET is the conventional name for JMP R7; it has no distinct opcode.
type jmp struct {
	base
	sr GPR
}

func (o *jmp) decode(vm *LC3) {
	o.op, o.sr = JMP, vm.IR.SR1()
}

func (o *jmp) execute(vm *LC3) {
	vm.PC = ProgramCounter(vm.Reg[o.sr])
}

// JSR: R7 <- PC; PC <- PC + off11 (PC-relative subroutine call).
type jsr struct {
	base
	offset Word
}

func (o *jsr) decode(vm *LC3) {
	o.op, o.offset = JSR, vm.IR.Offset(Offset11)
}

func (o *jsr) execute(vm *LC3) {
	vm.Reg[RET] = Register(vm.PC)
	vm.PC = ProgramCounter(Word(vm.PC) + o.offset)
}

// JSRR: R7 <- PC; PC <- BaseR (register-indirect subroutine call).
type jsrr struct {
	base
	sr GPR
}

func (o *jsrr) decode(vm *LC3) {
	o.op, o.sr = JSR, vm.IR.SR1()
}

func (o *jsrr) execute(vm *LC3) {
	vm.Reg[RET] = Register(vm.PC)
	vm.PC = ProgramCounter(vm.Reg[o.sr])
}

// trapOp: R7 <- PC; dispatch to the trap service layer (internal/trap via vm.Trap).
type trapOp struct {
	base
	vector Word
}

func (o *trapOp) decode(vm *LC3) {
	o.op, o.vector = TRAP, vm.IR.Vector()
}

func (o *trapOp) execute(vm *LC3) {
	vm.Reg[RET] = Register(vm.PC)

	if vm.Trap != nil {
		vm.Trap(vm, uint8(o.vector))
	}
}

func (o *trapOp) String() string {
	return fmt.Sprintf("TRAP %#02x", uint8(o.vector))
}
