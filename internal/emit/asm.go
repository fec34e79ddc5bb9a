// Package emit renders an allocated x86 IR frame as Intel-syntax NASM
// text, the one deliberate divergence from the teacher's own AT&T/GNU-as
// backend (this target is spec-mandated NASM).
package emit

import (
	"fmt"
	"strings"

	"qcc/internal/diag"
	"qcc/internal/quadir"
	"qcc/internal/regalloc"
	"qcc/internal/x86ir"
)

// regNames64/regNames32/regNames8 name a physical register at a given
// operand width, 8/4/1 bytes; regName picks the table.
var regNames64 = map[quadir.BaseRegister]string{
	quadir.AX: "rax", quadir.BX: "rbx", quadir.CX: "rcx", quadir.DX: "rdx",
	quadir.SI: "rsi", quadir.DI: "rdi",
	quadir.R8: "r8", quadir.R9: "r9", quadir.R10: "r10", quadir.R11: "r11",
	quadir.R12: "r12", quadir.R13: "r13", quadir.R14: "r14", quadir.R15: "r15",
}

var regNames32 = map[quadir.BaseRegister]string{
	quadir.AX: "eax", quadir.BX: "ebx", quadir.CX: "ecx", quadir.DX: "edx",
	quadir.SI: "esi", quadir.DI: "edi",
	quadir.R8: "r8d", quadir.R9: "r9d", quadir.R10: "r10d", quadir.R11: "r11d",
	quadir.R12: "r12d", quadir.R13: "r13d", quadir.R14: "r14d", quadir.R15: "r15d",
}

var regNames8 = map[quadir.BaseRegister]string{
	quadir.AX: "al", quadir.BX: "bl", quadir.CX: "cl", quadir.DX: "dl",
	quadir.SI: "sil", quadir.DI: "dil",
	quadir.R8: "r8b", quadir.R9: "r9b", quadir.R10: "r10b", quadir.R11: "r11b",
	quadir.R12: "r12b", quadir.R13: "r13b", quadir.R14: "r14b", quadir.R15: "r15b",
}

func regName(r quadir.BaseRegister, size int) string {
	switch size {
	case 1:
		return regNames8[r]
	case 8:
		return regNames64[r]
	default:
		return regNames32[r]
	}
}

// Assembler renders one compilation unit's frames into NASM text.
type Assembler struct {
	sb strings.Builder
}

func New() *Assembler { return &Assembler{} }

func (a *Assembler) line(format string, args ...interface{}) {
	a.sb.WriteString(fmt.Sprintf(format, args...))
	a.sb.WriteByte('\n')
}

// Emit renders the whole program: section headers, every function frame,
// and (when present) an _start trampoline that calls "main" and exits with
// its return value via the syscall ABI.
func (a *Assembler) Emit(frames []*x86ir.Frame, allocs map[string]*regalloc.Allocation, hasMain bool) (string, error) {
	a.line("section .text")
	a.line("global _start")
	for _, f := range frames {
		a.line("global %s", f.Name)
	}
	a.sb.WriteByte('\n')

	if hasMain {
		a.line("_start:")
		a.line("    call main")
		a.line("    mov rdi, rax")
		a.line("    mov rax, 60")
		a.line("    syscall")
		a.sb.WriteByte('\n')
	}

	for _, f := range frames {
		alloc, ok := allocs[f.Name]
		if !ok {
			return "", diag.New(diag.InvalidOperand, "emit", fmt.Sprintf("missing allocation for frame %q", f.Name))
		}
		if err := a.emitFrame(f, alloc); err != nil {
			return "", err
		}
	}
	return a.sb.String(), nil
}

func (a *Assembler) emitFrame(f *x86ir.Frame, alloc *regalloc.Allocation) error {
	a.line("%s:", f.Name)
	a.line("    push rbp")
	a.line("    mov rbp, rsp")
	if alloc.FrameSize > 0 {
		a.line("    sub rsp, %d", align16(alloc.FrameSize))
	}

	for _, in := range regalloc.Coalesce(f, alloc) {
		if err := a.emitInstr(in, alloc); err != nil {
			return err
		}
	}
	return nil
}

func align16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

func memSizePrefix(sz int) string {
	if sz == 8 {
		return "qword"
	}
	return "dword"
}

// str renders an operand: a located VReg as a register or stack
// reference (sized from the operand's own Sz, not guessed from context),
// an immediate as a decimal literal, a Hard register by name, a local
// variable's Mem slot as a sized rbp-relative address, and a caller-pushed
// StackParam's negative Offset translated to the positive address of the
// 7th-and-beyond argument area (Offset -16 is the 7th argument at
// [rbp+16], -24 the 8th at [rbp+24], ...).
func (a *Assembler) str(o x86ir.Operand, alloc *regalloc.Allocation) (string, error) {
	switch v := o.(type) {
	case x86ir.Imm:
		return fmt.Sprintf("%d", v.Int32), nil
	case x86ir.Hard:
		return regName(v.Base, int(v.Sz)), nil
	case x86ir.Mem:
		return fmt.Sprintf("%s [rbp-%d]", memSizePrefix(int(v.Sz)), v.Offset), nil
	case x86ir.StackParam:
		return fmt.Sprintf("%s [rbp+%d]", memSizePrefix(v.Size), -v.Offset), nil
	case x86ir.Reg:
		loc, ok := alloc.Resolve(v.V)
		if !ok {
			return "", diag.New(diag.InvalidOperand, "emit", fmt.Sprintf("unallocated %s", v.V))
		}
		if loc.InReg {
			return regName(loc.Reg, int(v.Sz)), nil
		}
		return fmt.Sprintf("%s [rbp-%d]", memSizePrefix(int(v.Sz)), loc.Offset), nil
	}
	return "", diag.New(diag.InvalidOperand, "emit", "unknown operand kind")
}

func (a *Assembler) emitInstr(in x86ir.Instruction, alloc *regalloc.Allocation) error {
	switch n := in.(type) {
	case x86ir.Mov:
		return a.emit2("mov", n.Dst, n.Src, alloc)
	case x86ir.Load:
		return a.emit2("mov", n.Dst, n.Src, alloc)
	case x86ir.Store:
		return a.emit2("mov", n.Dst, n.Src, alloc)
	case x86ir.LoadI:
		return a.emitImm("mov", n.Dst, n.Imm, alloc)
	case x86ir.StoreI:
		return a.emitImm("mov", n.Dst, n.Imm, alloc)
	case x86ir.Add:
		return a.emit2("add", n.Dst, n.Src, alloc)
	case x86ir.Sub:
		return a.emit2("sub", n.Dst, n.Src, alloc)
	case x86ir.AddI:
		return a.emitImm("add", n.Dst, n.Imm, alloc)
	case x86ir.SubI:
		return a.emitImm("sub", n.Dst, n.Imm, alloc)
	case x86ir.Cmp:
		return a.emit2("cmp", n.Left, n.Right, alloc)
	case x86ir.CmpI:
		return a.emitImm("cmp", n.Left, n.Imm, alloc)
	case x86ir.SetEAl:
		return a.emitSetcc("sete", n.Dst, alloc)
	case x86ir.SetGAl:
		return a.emitSetcc("setg", n.Dst, alloc)
	case x86ir.SetNeAl:
		return a.emitSetcc("setne", n.Dst, alloc)
	case x86ir.Jump:
		a.line("    jmp .%s", n.Label.Name)
		return nil
	case x86ir.JumpEq:
		a.line("    je .%s", n.Label.Name)
		return nil
	case x86ir.JumpGreater:
		a.line("    jg .%s", n.Label.Name)
		return nil
	case x86ir.JumpLess:
		a.line("    jl .%s", n.Label.Name)
		return nil
	case x86ir.LabelDef:
		a.line(".%s:", n.Label.Name)
		return nil
	case x86ir.Call:
		a.line("    call %s", n.Name)
		return nil
	case x86ir.Lea:
		d, err := a.str(n.Dst, alloc)
		if err != nil {
			return err
		}
		src, ok := n.Src.(x86ir.Mem)
		if !ok {
			return diag.New(diag.InvalidOperand, "lea", "lea source must be a stack-resident variable")
		}
		a.line("    lea %s, [rbp-%d]", d, src.Offset)
		return nil
	case x86ir.IndirectLoad:
		src, err := a.str(n.Src, alloc)
		if err != nil {
			return err
		}
		dst, err := a.str(n.Dst, alloc)
		if err != nil {
			return err
		}
		a.line("    mov %s, [%s]", dst, src)
		return nil
	case x86ir.IndirectStore:
		dst, err := a.str(n.Dst, alloc)
		if err != nil {
			return err
		}
		src, err := a.str(n.Src, alloc)
		if err != nil {
			return err
		}
		a.line("    mov [%s], %s", dst, src)
		return nil
	case x86ir.Push:
		s, err := a.str(n.Src, alloc)
		if err != nil {
			return err
		}
		a.line("    push %s", s)
		return nil
	case x86ir.PushI:
		a.line("    push %d", n.Imm)
		return nil
	case x86ir.Ret:
		a.line("    mov rsp, rbp")
		a.line("    pop rbp")
		a.line("    ret")
		return nil
	}
	return diag.New(diag.UnsupportedConstruct, "emit", "unknown instruction kind")
}

func (a *Assembler) emit2(mnemonic string, dst, src x86ir.Operand, alloc *regalloc.Allocation) error {
	d, err := a.str(dst, alloc)
	if err != nil {
		return err
	}
	s, err := a.str(src, alloc)
	if err != nil {
		return err
	}
	a.line("    %s %s, %s", mnemonic, d, s)
	return nil
}

func (a *Assembler) emitImm(mnemonic string, dst x86ir.Operand, imm int32, alloc *regalloc.Allocation) error {
	d, err := a.str(dst, alloc)
	if err != nil {
		return err
	}
	a.line("    %s %s, %d", mnemonic, d, imm)
	return nil
}

// emitSetcc always sets into al and widens from there: movzx requires a
// register source-or-register destination, and dst may resolve to a spill
// slot (memory), which movzx cannot target directly from another memory
// operand.
func (a *Assembler) emitSetcc(mnemonic string, dst x86ir.Operand, alloc *regalloc.Allocation) error {
	d, err := a.str(dst, alloc)
	if err != nil {
		return err
	}
	a.line("    %s al", mnemonic)
	a.line("    movzx eax, al")
	a.line("    mov %s, eax", d)
	return nil
}
