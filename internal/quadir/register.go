package quadir

// BaseRegister is a closed enumeration of the 14 general-purpose x86-64
// registers the compiler knows about.
type BaseRegister int

const (
	AX BaseRegister = iota
	BX
	CX
	DX
	SI
	DI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var baseRegisterNames = map[BaseRegister]string{
	AX: "ax", BX: "bx", CX: "cx", DX: "dx", SI: "si", DI: "di",
	R8: "r8", R9: "r9", R10: "r10", R11: "r11", R12: "r12", R13: "r13", R14: "r14", R15: "r15",
}

func (b BaseRegister) String() string {
	if name, ok := baseRegisterNames[b]; ok {
		return name
	}
	return "?"
}

// ParamRegs is the System-V AMD64 integer argument-passing order.
var ParamRegs = []BaseRegister{DI, SI, DX, CX, R8, R9}

// GeneralRegs is the register allocator's physical pool. It is disjoint
// from ParamRegs so that calls never clobber an allocated temporary.
var GeneralRegs = []BaseRegister{AX, BX, R10, R11, R12, R13, R14, R15}
