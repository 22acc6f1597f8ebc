package vm

import (
	"bytes"
	"errors"
	"testing"
)

// fakeSource is a scripted byte source used as the test host's In: Pending controls
// KeyPending's return value and the embedded Reader feeds ReadByte, one call at a time.
type fakeSource struct {
	bytes.Reader
	Pending bool
}

func (f *fakeSource) KeyPending() bool { return f.Pending }

func newHarness(tt *testing.T) (*LC3, *fakeSource, *bytes.Buffer) {
	tt.Helper()

	in := &fakeSource{}
	out := &bytes.Buffer{}
	cpu := New(Host{In: in, Out: out})

	return cpu, in, out
}

func load(cpu *LC3, addr Word, words ...Word) {
	for i, w := range words {
		cpu.Mem.Write(addr+Word(i), w)
	}
}

func TestBR(tt *testing.T) {
	tt.Parallel()

	cases := []struct {
		name    string
		cond    Condition
		nzp     uint16
		expTake bool
	}{
		{"taken on matching Z", ConditionZero, 0b010, true},
		{"not taken on mismatched N", ConditionZero, 0b100, false},
		{"taken on multi-bit mask", ConditionNegative, 0b110, true},
	}

	for _, tc := range cases {
		tc := tc

		tt.Run(tc.name, func(tt *testing.T) {
			cpu, _, _ := newHarness(tt)
			cpu.Cond = tc.cond
			load(cpu, Word(cpu.PC), Word(NewInstruction(BR, tc.nzp<<9|0x005)))

			if err := cpu.Step(); err != nil {
				tt.Fatal(err)
			}

			want := ProgramCounter(UserOrigin + 1)
			if tc.expTake {
				want += 5
			}

			if cpu.PC != want {
				tt.Errorf("PC: got %s, want %s", cpu.PC, want)
			}
		})
	}
}

func TestADD(tt *testing.T) {
	tt.Parallel()

	tt.Run("register mode", func(tt *testing.T) {
		cpu, _, _ := newHarness(tt)
		cpu.Reg[R1] = 40
		cpu.Reg[R2] = 2
		load(cpu, Word(cpu.PC), Word(NewInstruction(ADD, uint16(R0)<<9|uint16(R1)<<6|uint16(R2))))

		if err := cpu.Step(); err != nil {
			tt.Fatal(err)
		}

		if cpu.Reg[R0] != 42 {
			tt.Errorf("R0: got %s, want 42", cpu.Reg[R0])
		}

		if cpu.Cond != ConditionPositive {
			tt.Errorf("COND: got %s, want P", cpu.Cond)
		}
	})

	tt.Run("immediate mode wraps modulo 2^16", func(tt *testing.T) {
		cpu, _, _ := newHarness(tt)
		cpu.Reg[R1] = 0xffff // -1
		load(cpu, Word(cpu.PC), Word(NewInstruction(ADD, uint16(R0)<<9|uint16(R1)<<6|0x0020|0x001)))

		if err := cpu.Step(); err != nil {
			tt.Fatal(err)
		}

		if cpu.Reg[R0] != 0 {
			tt.Errorf("R0: got %s, want 0", cpu.Reg[R0])
		}

		if cpu.Cond != ConditionZero {
			tt.Errorf("COND: got %s, want Z", cpu.Cond)
		}
	})

	tt.Run("overflow into the sign bit sets COND negative", func(tt *testing.T) {
		cpu, _, _ := newHarness(tt)
		cpu.Reg[R1] = 0x7fff
		load(cpu, Word(cpu.PC), Word(NewInstruction(ADD, uint16(R0)<<9|uint16(R1)<<6|0x0020|0x001)))

		if err := cpu.Step(); err != nil {
			tt.Fatal(err)
		}

		if cpu.Reg[R0] != 0x8000 {
			tt.Errorf("R0: got %s, want 0x8000", cpu.Reg[R0])
		}

		if cpu.Cond != ConditionNegative {
			tt.Errorf("COND: got %s, want N", cpu.Cond)
		}
	})
}

func TestNOT_involution(tt *testing.T) {
	tt.Parallel()

	cpu, _, _ := newHarness(tt)
	cpu.Reg[R1] = 0x00ff
	load(cpu, Word(cpu.PC),
		Word(NewInstruction(NOT, uint16(R0)<<9|uint16(R1)<<6|0x3f)),
		Word(NewInstruction(NOT, uint16(R0)<<9|uint16(R0)<<6|0x3f)),
	)

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	if cpu.Reg[R0] != 0xff00 {
		tt.Errorf("R0: got %s, want 0xff00", cpu.Reg[R0])
	}

	if cpu.Cond != ConditionNegative {
		tt.Errorf("COND: got %s, want N", cpu.Cond)
	}

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	if cpu.Reg[R0] != 0x00ff {
		tt.Errorf("R0: got %s, want the original 0x00ff", cpu.Reg[R0])
	}

	if cpu.Cond != ConditionPositive {
		tt.Errorf("COND: got %s, want P", cpu.Cond)
	}
}

func TestSTI_LDI_roundtrip(tt *testing.T) {
	tt.Parallel()

	cpu, _, _ := newHarness(tt)
	cpu.Reg[R0] = 0xbeef

	const ptrAddr = UserOrigin + 0x10
	const valAddr = UserOrigin + 0x20

	load(cpu, ptrAddr, Word(valAddr))
	load(cpu, Word(cpu.PC), Word(NewInstruction(STI, uint16(R0)<<9|uint16(Word(ptrAddr-(UserOrigin+1))&0x1ff))))

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	got, err := cpu.Mem.Read(valAddr)
	if err != nil {
		tt.Fatal(err)
	}

	if got != 0xbeef {
		tt.Errorf("mem[valAddr]: got %s, want 0xbeef", got)
	}

	cpu.Reg[R1] = 0
	load(cpu, Word(cpu.PC), Word(NewInstruction(LDI, uint16(R1)<<9|uint16(Word(ptrAddr-(UserOrigin+2))&0x1ff))))

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	if cpu.Reg[R1] != 0xbeef {
		tt.Errorf("R1: got %s, want 0xbeef", cpu.Reg[R1])
	}
}

func TestLEA_setsCond(tt *testing.T) {
	tt.Parallel()

	cpu, _, _ := newHarness(tt)
	load(cpu, Word(cpu.PC), Word(NewInstruction(LEA, uint16(R0)<<9|0x001)))

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	if cpu.Reg[R0] != Register(UserOrigin+2) {
		tt.Errorf("R0: got %s, want %s", cpu.Reg[R0], Word(UserOrigin+2))
	}

	if cpu.Cond != ConditionPositive {
		tt.Errorf("COND: got %s, want P", cpu.Cond)
	}
}

func TestJSR_JMP_roundtrip(tt *testing.T) {
	tt.Parallel()

	cpu, _, _ := newHarness(tt)
	load(cpu, Word(cpu.PC), Word(NewInstruction(JSR, 0x800|0x003)))

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	if cpu.Reg[RET] != Register(UserOrigin+1) {
		tt.Errorf("R7: got %s, want return address", cpu.Reg[RET])
	}

	if cpu.PC != ProgramCounter(UserOrigin+1+3) {
		tt.Errorf("PC: got %s, want subroutine entry", cpu.PC)
	}

	load(cpu, Word(cpu.PC), Word(NewInstruction(JMP, uint16(RET)<<6)))

	if err := cpu.Step(); err != nil {
		tt.Fatal(err)
	}

	if cpu.PC != ProgramCounter(UserOrigin+1) {
		tt.Errorf("PC: got %s, want return to caller", cpu.PC)
	}
}

func TestRTI_RESV_illegal(tt *testing.T) {
	tt.Parallel()

	for _, op := range []Opcode{RTI, RESV} {
		op := op

		tt.Run(op.String(), func(tt *testing.T) {
			cpu, _, _ := newHarness(tt)
			load(cpu, Word(cpu.PC), Word(NewInstruction(op, 0)))

			err := cpu.Step()
			if !errors.Is(err, ErrIllegalOpcode) {
				tt.Errorf("got %v, want ErrIllegalOpcode", err)
			}
		})
	}
}

func TestKeyboardPoll(tt *testing.T) {
	tt.Parallel()

	cpu, in, _ := newHarness(tt)

	status, err := cpu.Mem.Read(KBSRAddr)
	if err != nil {
		tt.Fatal(err)
	}

	if status != 0 {
		tt.Errorf("KBSR with no pending key: got %s, want 0", status)
	}

	in.Reader = *bytes.NewReader([]byte{'x'})
	in.Pending = true

	status, err = cpu.Mem.Read(KBSRAddr)
	if err != nil {
		tt.Fatal(err)
	}

	if status != KeyboardReady {
		tt.Errorf("KBSR with pending key: got %s, want ready bit set", status)
	}

	data, err := cpu.Mem.Read(KBDRAddr)
	if err != nil {
		tt.Fatal(err)
	}

	if data != Word('x') {
		tt.Errorf("KBDR: got %s, want %q", data, 'x')
	}
}
