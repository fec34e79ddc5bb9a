package x86ir

import (
	"qcc/internal/diag"
	"qcc/internal/quadir"
)

// lowerCtx is the per-frame lowering context from §4.2: every local
// variable used by the frame gets a stack slot (variable_offset,
// stack_offset), every Quad Temp is memoized to exactly one VReg
// (temp_register_mapping, temp_counter), and stack-pushed parameters are
// bound to a StackParam without ever getting a VReg at all.
type lowerCtx struct {
	varOffset        map[string]Mem
	tempReg          map[uint32]VReg
	stackVars        map[string]StackParam
	vregCount        int
	stackOffset      int
	stackParamOffset int // 0 means "not started"; first param starts it at 16
}

func newLowerCtx() *lowerCtx {
	return &lowerCtx{
		varOffset: map[string]Mem{},
		tempReg:   map[uint32]VReg{},
		stackVars: map[string]StackParam{},
	}
}

func (c *lowerCtx) newVReg() VReg {
	v := VReg{ID: uint32(c.vregCount)}
	c.vregCount++
	return v
}

// tempVReg memoizes the VReg for a Quad Temp, minting one the first time
// the id is seen (temp_register_mapping).
func (c *lowerCtx) tempVReg(t quadir.Temp) Operand {
	vr, ok := c.tempReg[t.ID]
	if !ok {
		vr = c.newVReg()
		c.tempReg[t.ID] = vr
	}
	return Reg{V: vr, Sz: t.Sz}
}

// variableMem returns the Mem slot bound to a Variable, bumping
// stack_offset the first time the name is seen. A stack-pushed parameter
// never reaches here as a plain local: its name resolves to a StackParam
// from DefineStackPushed instead.
func (c *lowerCtx) variableMem(v quadir.Variable) Operand {
	if sp, ok := c.stackVars[v.Name]; ok {
		return sp
	}
	m, ok := c.varOffset[v.Name]
	if !ok {
		c.stackOffset += int(v.Sz)
		m = Mem{Offset: c.stackOffset, Sz: v.Sz}
		c.varOffset[v.Name] = m
	}
	return m
}

// dstLocation implements AllocateNew: a Temp gets its memoized VReg, a
// Variable gets its memoized Mem slot, a HardcodedRegister passes through.
func (c *lowerCtx) dstLocation(v quadir.Value) Operand {
	switch t := v.(type) {
	case quadir.Temp:
		return c.tempVReg(t)
	case quadir.Variable:
		return c.variableMem(t)
	case quadir.HardcodedRegister:
		return Hard{Base: t.Base, Sz: t.Sz}
	}
	return Imm{}
}

// materializeIntoReg emits whatever instructions are needed to get a Quad
// value into the given register operand (a fresh VReg or a Hard ABI
// slot), the Register column of §4.2's value-to-location dispatch table.
func (c *lowerCtx) materializeIntoReg(v quadir.Value, dst Operand) []Instruction {
	switch t := v.(type) {
	case quadir.Const:
		return []Instruction{LoadI{Dst: dst, Imm: t.Int}}
	case quadir.Temp:
		src := c.tempVReg(t)
		if src == dst {
			return nil
		}
		return []Instruction{Mov{Dst: dst, Src: src}}
	case quadir.Variable:
		return []Instruction{Load{Dst: dst, Src: c.variableMem(t)}}
	case quadir.HardcodedRegister:
		return []Instruction{Mov{Dst: dst, Src: Hard{Base: t.Base, Sz: t.Sz}}}
	}
	return nil
}

// materializeIntoMem emits the StackLocation column: storing a Variable
// needs an intermediate register since x86 has no memory-to-memory move.
func (c *lowerCtx) materializeIntoMem(v quadir.Value, dst Operand) []Instruction {
	switch t := v.(type) {
	case quadir.Const:
		return []Instruction{StoreI{Dst: dst, Imm: t.Int}}
	case quadir.Temp:
		return []Instruction{Store{Dst: dst, Src: c.tempVReg(t)}}
	case quadir.Variable:
		tmp := Reg{V: c.newVReg(), Sz: t.Sz}
		return []Instruction{
			Load{Dst: tmp, Src: c.variableMem(t)},
			Store{Dst: dst, Src: tmp},
		}
	case quadir.HardcodedRegister:
		return []Instruction{Store{Dst: dst, Src: Hard{Base: t.Base, Sz: t.Sz}}}
	}
	return nil
}

// lowerArith implements the Add/Sub rule: pull left into the destination
// register itself (no extra copy needed, since dst is always a freshly
// minted Temp VReg), then fold an immediate right-hand side into AddI/SubI
// or else pull right into its own fresh register and emit Add/Sub.
func (c *lowerCtx) lowerArith(dst, left, right quadir.Value, isAdd bool) []Instruction {
	dstReg := c.dstLocation(dst)
	out := c.materializeIntoReg(left, dstReg)
	if rc, ok := right.(quadir.Const); ok {
		if isAdd {
			return append(out, AddI{Dst: dstReg, Imm: rc.Int})
		}
		return append(out, SubI{Dst: dstReg, Imm: rc.Int})
	}
	rightReg := Reg{V: c.newVReg(), Sz: uint8(right.Size())}
	out = append(out, c.materializeIntoReg(right, rightReg)...)
	if isAdd {
		return append(out, Add{Dst: dstReg, Src: rightReg})
	}
	return append(out, Sub{Dst: dstReg, Src: rightReg})
}

// lowerCompareOperands emits the shared Cmp/CmpI prelude for
// Equal/NotEqual/GreaterThan/Compare: pull left into a fresh register,
// then either CmpI against an immediate right or pull right into its own
// fresh register and Cmp.
func (c *lowerCtx) lowerCompareOperands(left, right quadir.Value) []Instruction {
	leftReg := Reg{V: c.newVReg(), Sz: uint8(left.Size())}
	out := c.materializeIntoReg(left, leftReg)
	if rc, ok := right.(quadir.Const); ok {
		return append(out, CmpI{Left: leftReg, Imm: rc.Int})
	}
	rightReg := Reg{V: c.newVReg(), Sz: uint8(right.Size())}
	out = append(out, c.materializeIntoReg(right, rightReg)...)
	return append(out, Cmp{Left: leftReg, Right: rightReg})
}

func (c *lowerCtx) lowerSetcc(dst, left, right quadir.Value, kind quadir.CondKind) []Instruction {
	out := c.lowerCompareOperands(left, right)
	dstReg := c.dstLocation(dst)
	switch kind {
	case quadir.CondEqual:
		return append(out, SetEAl{Dst: dstReg})
	case quadir.CondNotEqual:
		return append(out, SetNeAl{Dst: dstReg})
	default:
		return append(out, SetGAl{Dst: dstReg})
	}
}

// lowerCall implements the §4.2 Call rule: arguments are visited in
// reverse index order so the first pushed argument lands at the highest
// stack address, matching System-V; the first six instead materialize
// into their param_regs slot.
func (c *lowerCtx) lowerCall(n quadir.Call) []Instruction {
	var out []Instruction
	for i := len(n.Args) - 1; i >= 0; i-- {
		arg := n.Args[i]
		if i >= len(quadir.ParamRegs) {
			if lit, ok := arg.(quadir.Const); ok {
				out = append(out, PushI{Imm: lit.Int})
				continue
			}
			reg := Reg{V: c.newVReg(), Sz: uint8(arg.Size())}
			out = append(out, c.materializeIntoReg(arg, reg)...)
			out = append(out, Push{Src: reg})
			continue
		}
		slot := Hard{Base: quadir.ParamRegs[i], Sz: uint8(arg.Size())}
		out = append(out, c.materializeIntoReg(arg, slot)...)
	}
	retSize := uint8(n.Dst.Size())
	out = append(out, Call{Name: n.Name, Dst: Hard{Base: quadir.AX, Sz: retSize}})
	dst := c.dstLocation(n.Dst)
	return append(out, Mov{Dst: dst, Src: Hard{Base: quadir.AX, Sz: retSize}})
}

// lowerDeref implements the §4.2 Deref rule: load the pointer variable
// into a fresh 8-byte vreg, chase depth-1 additional IndirectLoads each
// into a new vreg, then IndirectLoad the final level into the Temp's own
// vreg (sized by the pointed-to type, not necessarily 8 bytes).
func (c *lowerCtx) lowerDeref(n quadir.Deref) ([]Instruction, error) {
	srcVar, ok := n.Src.(quadir.Variable)
	if !ok {
		return nil, diag.New(diag.UnsupportedConstruct, "deref", "dereference source must be a variable")
	}
	addr := Reg{V: c.newVReg(), Sz: 8}
	out := []Instruction{Load{Dst: addr, Src: c.variableMem(srcVar)}}
	cur := Operand(addr)
	for i := 0; i < n.Depth-1; i++ {
		next := Reg{V: c.newVReg(), Sz: 8}
		out = append(out, IndirectLoad{Dst: next, Src: cur})
		cur = next
	}
	dst := c.dstLocation(n.Dst)
	return append(out, IndirectLoad{Dst: dst, Src: cur}), nil
}

func (c *lowerCtx) lowerDerefStore(n quadir.DerefStore) []Instruction {
	addr := Reg{V: c.newVReg(), Sz: 8}
	out := c.materializeIntoReg(n.Dst, addr)
	src := Reg{V: c.newVReg(), Sz: uint8(n.Src.Size())}
	out = append(out, c.materializeIntoReg(n.Src, src)...)
	return append(out, IndirectStore{Dst: addr, Src: src})
}

func conditionalJump(n quadir.ConditionalJump) []Instruction {
	switch n.Kind {
	case quadir.CondEqual:
		return []Instruction{JumpEq{Label: n.TrueLabel}, Jump{Label: n.FalseLabel}}
	case quadir.CondGreater:
		return []Instruction{JumpGreater{Label: n.TrueLabel}, Jump{Label: n.FalseLabel}}
	case quadir.CondLess:
		return []Instruction{JumpLess{Label: n.TrueLabel}, Jump{Label: n.FalseLabel}}
	default: // CondNotEqual never reaches a ConditionalJump (builder flips it to CondEqual with swapped labels); handled defensively.
		return []Instruction{JumpEq{Label: n.FalseLabel}, Jump{Label: n.TrueLabel}}
	}
}

// Lower converts Quad frames into virtual-register x86 IR frames by
// running real §4.2 instruction selection over each Quad operation — not
// a structural relabeling, since Variables and Temps take fundamentally
// different storage (stack slot vs. register) from here on.
func Lower(frames []*quadir.Frame) ([]*Frame, error) {
	var out []*Frame
	for _, f := range frames {
		lf, err := lowerFrame(f)
		if err != nil {
			return nil, err
		}
		out = append(out, lf)
	}
	return out, nil
}

func lowerFrame(f *quadir.Frame) (*Frame, error) {
	ctx := newLowerCtx()
	frame := &Frame{Name: f.Name}
	emit := func(ins ...Instruction) { frame.Instructions = append(frame.Instructions, ins...) }

	for _, op := range f.Instructions {
		switch n := op.(type) {
		case quadir.DefineStackPushed:
			if ctx.stackParamOffset == 0 {
				ctx.stackParamOffset = 16
			}
			off := -ctx.stackParamOffset
			ctx.stackParamOffset += 8
			ctx.stackVars[n.Name] = StackParam{Name: n.Name, Size: n.Size, Offset: off}

		case quadir.Mov:
			emit(ctx.materializeIntoMem(n.Src, ctx.dstLocation(n.Dst))...)

		case quadir.MovR:
			emit(ctx.materializeIntoMem(n.Src, ctx.dstLocation(n.Dst))...)

		case quadir.Ret:
			sz := uint8(n.Value.Size())
			emit(ctx.materializeIntoReg(n.Value, Hard{Base: quadir.AX, Sz: sz})...)
			emit(Ret{})

		case quadir.Add:
			emit(ctx.lowerArith(n.Dst, n.Left, n.Right, true)...)
		case quadir.Sub:
			emit(ctx.lowerArith(n.Dst, n.Left, n.Right, false)...)

		case quadir.Equal:
			emit(ctx.lowerSetcc(n.Dst, n.Left, n.Right, quadir.CondEqual)...)
		case quadir.NotEqual:
			emit(ctx.lowerSetcc(n.Dst, n.Left, n.Right, quadir.CondNotEqual)...)
		case quadir.GreaterThan:
			emit(ctx.lowerSetcc(n.Dst, n.Left, n.Right, quadir.CondGreater)...)

		case quadir.Compare:
			emit(ctx.lowerCompareOperands(n.Left, n.Right)...)

		case quadir.ConditionalJump:
			emit(conditionalJump(n)...)

		case quadir.Jump:
			emit(Jump{Label: n.Label})
		case quadir.LabelDef:
			emit(LabelDef{Label: n.Label})

		case quadir.Call:
			emit(ctx.lowerCall(n)...)

		case quadir.Addr:
			srcVar, ok := n.Src.(quadir.Variable)
			if !ok {
				return nil, diag.New(diag.UnsupportedConstruct, "addr", "address-of target must be a variable")
			}
			emit(Lea{Dst: ctx.dstLocation(n.Dst), Src: ctx.variableMem(srcVar)})

		case quadir.Deref:
			ins, err := ctx.lowerDeref(n)
			if err != nil {
				return nil, err
			}
			emit(ins...)

		case quadir.DerefStore:
			emit(ctx.lowerDerefStore(n)...)
		}
	}

	frame.NumVRegs = ctx.vregCount
	frame.LocalsSize = ctx.stackOffset
	return frame, nil
}
