package x86ir

import "qcc/internal/quadir"

// Operand is an x86 IR operand prior to register allocation: a virtual
// register, an immediate, a hardcoded physical register (ABI slots), a
// stack-resident local variable's slot, or a caller-pushed stack parameter
// referenced by name.
type Operand interface{ isOperand() }

// Reg is a virtual register reference, sized so the emitter can pick the
// right register-name width once it has been assigned a physical register.
type Reg struct {
	V  VReg
	Sz uint8
}

func (Reg) isOperand() {}

type Imm struct{ Int32 int32 }

func (Imm) isOperand() {}

// Hard pins an operand to a specific physical register, bypassing
// allocation entirely (used for ABI argument/return registers).
type Hard struct {
	Base PhysReg
	Sz   uint8
}

func (Hard) isOperand() {}

// Mem addresses a local variable's stack slot, assigned once per name by
// the lowering engine's variable_offset map (§4.2). Offset is strictly
// positive: rbp-Offset. Every local lives here for its whole lifetime —
// arithmetic and comparisons move values through registers only
// transiently, which is what lets Addr take a local's address unconditionally
// instead of only when a register-resident value happens to be spillable.
type Mem struct {
	Offset int
	Sz     uint8
}

func (Mem) isOperand() {}

// StackParam addresses a parameter the caller pushed past the six
// register-passed slots. Offset is strictly negative, mirroring the sign
// convention that distinguishes stack-passed parameters (rbp + |Offset|)
// from locals/spills (whose stack addresses are always rbp - Offset).
type StackParam struct {
	Name   string
	Size   int
	Offset int
}

func (StackParam) isOperand() {}

// Instruction is a tagged x86 virtual-register IR instruction: the
// instruction-selection output of §4.2, one level below quadir.Operation.
// Unlike the Quad IR, operands here are register-machine shaped (Reg/Hard
// for registers, Mem/StackParam for memory, Imm for immediates) and every
// operation maps onto one concrete machine idiom instead of a named value.
type Instruction interface{ isInstruction() }

// Mov copies a register operand into another register operand.
type Mov struct{ Dst, Src Operand }

func (Mov) isInstruction() {}

// Load reads a variable's (or stack parameter's) memory slot into a register.
type Load struct{ Dst, Src Operand }

func (Load) isInstruction() {}

// Store writes a register operand into a variable's memory slot.
type Store struct{ Dst, Src Operand }

func (Store) isInstruction() {}

// LoadI loads an immediate into a register.
type LoadI struct {
	Dst Operand
	Imm int32
}

func (LoadI) isInstruction() {}

// StoreI stores an immediate directly into a variable's memory slot.
type StoreI struct {
	Dst Operand
	Imm int32
}

func (StoreI) isInstruction() {}

// Add/Sub are in-place, two-operand accumulations: Dst both reads and
// writes, matching the real x86 "add dst, src" encoding.
type Add struct{ Dst, Src Operand }

func (Add) isInstruction() {}

type Sub struct{ Dst, Src Operand }

func (Sub) isInstruction() {}

type AddI struct {
	Dst Operand
	Imm int32
}

func (AddI) isInstruction() {}

type SubI struct {
	Dst Operand
	Imm int32
}

func (SubI) isInstruction() {}

type Cmp struct{ Left, Right Operand }

func (Cmp) isInstruction() {}

type CmpI struct {
	Left Operand
	Imm  int32
}

func (CmpI) isInstruction() {}

// SetEAl/SetGAl/SetNeAl set the low byte of Dst from the flags of the
// preceding Cmp/CmpI (sete/setg/setne against al, then widened by the
// emitter — the IR only needs to know the destination register).
type SetEAl struct{ Dst Operand }

func (SetEAl) isInstruction() {}

type SetGAl struct{ Dst Operand }

func (SetGAl) isInstruction() {}

type SetNeAl struct{ Dst Operand }

func (SetNeAl) isInstruction() {}

type Jump struct{ Label quadir.Label }

func (Jump) isInstruction() {}

type JumpEq struct{ Label quadir.Label }

func (JumpEq) isInstruction() {}

type JumpGreater struct{ Label quadir.Label }

func (JumpGreater) isInstruction() {}

type JumpLess struct{ Label quadir.Label }

func (JumpLess) isInstruction() {}

type LabelDef struct{ Label quadir.Label }

func (LabelDef) isInstruction() {}

// Call no longer carries argument operands: the lowering engine emits the
// §4.2 argument sequence (reverse-order Push/PushI, or a materialization
// into the matching param_regs[i] slot) as independent instructions
// immediately before Call. Dst names the HardcodedRegister(AX, ...) the
// return value lands in; moving it to the real destination is a separate
// Mov the lowering engine appends right after.
type Call struct {
	Name string
	Dst  Operand
}

func (Call) isInstruction() {}

// Lea materializes the address of a stack-resident variable into Dst.
type Lea struct{ Dst, Src Operand }

func (Lea) isInstruction() {}

// IndirectLoad reads the memory Src (a register holding an address)
// points to into Dst.
type IndirectLoad struct{ Dst, Src Operand }

func (IndirectLoad) isInstruction() {}

// IndirectStore writes Src into the memory Dst (a register holding an
// address) points to.
type IndirectStore struct{ Dst, Src Operand }

func (IndirectStore) isInstruction() {}

// Push/PushI place a 7th-and-beyond call argument on the stack, in
// reverse index order, ahead of the Call instruction.
type Push struct{ Src Operand }

func (Push) isInstruction() {}

type PushI struct{ Imm int32 }

func (PushI) isInstruction() {}

// Ret ends a frame's extended basic block. Whoever lowers a Quad Ret has
// already materialized the return value into HardcodedRegister(AX, ...)
// via a preceding Load/LoadI/Mov; Ret itself carries no operand.
type Ret struct{}

func (Ret) isInstruction() {}
