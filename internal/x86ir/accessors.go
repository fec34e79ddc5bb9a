package x86ir

// regOf extracts the VReg named by an operand, if any. Hard/Mem/Imm/
// StackParam operands never carry a VReg.
func regOf(o Operand) (VReg, bool) {
	if r, ok := o.(Reg); ok {
		return r.V, true
	}
	return VReg{}, false
}

// Defs returns the VRegs an instruction writes.
func Defs(in Instruction) []VReg {
	var out []VReg
	add := func(o Operand) {
		if v, ok := regOf(o); ok {
			out = append(out, v)
		}
	}
	switch n := in.(type) {
	case Mov:
		add(n.Dst)
	case Load:
		add(n.Dst)
	case LoadI:
		add(n.Dst)
	case Add:
		add(n.Dst)
	case Sub:
		add(n.Dst)
	case AddI:
		add(n.Dst)
	case SubI:
		add(n.Dst)
	case SetEAl:
		add(n.Dst)
	case SetGAl:
		add(n.Dst)
	case SetNeAl:
		add(n.Dst)
	case Lea:
		add(n.Dst)
	case IndirectLoad:
		add(n.Dst)
	}
	return out
}

// Uses returns the VRegs an instruction reads. Add/Sub/AddI/SubI read
// their Dst as well as write it — the real "add dst, src" encoding reads
// the old value of dst before overwriting it.
func Uses(in Instruction) []VReg {
	var out []VReg
	add := func(o Operand) {
		if v, ok := regOf(o); ok {
			out = append(out, v)
		}
	}
	switch n := in.(type) {
	case Mov:
		add(n.Src)
	case Store:
		add(n.Src)
	case Add:
		add(n.Dst)
		add(n.Src)
	case Sub:
		add(n.Dst)
		add(n.Src)
	case AddI:
		add(n.Dst)
	case SubI:
		add(n.Dst)
	case Cmp:
		add(n.Left)
		add(n.Right)
	case CmpI:
		add(n.Left)
	case IndirectLoad:
		add(n.Src)
	case IndirectStore:
		add(n.Dst)
		add(n.Src)
	case Push:
		add(n.Src)
	}
	return out
}

// HasRegisterDst reports whether the instruction defines a VReg, and which.
func HasRegisterDst(in Instruction) (VReg, bool) {
	d := Defs(in)
	if len(d) == 0 {
		return VReg{}, false
	}
	return d[0], true
}

// HasRegisterSrc reports whether the instruction reads at least one VReg.
func HasRegisterSrc(in Instruction) bool { return len(Uses(in)) > 0 }
