package x86ir

// Frame is the virtual-register-level unit corresponding to one Quad
// frame, prior to register allocation.
type Frame struct {
	Name         string
	Instructions []Instruction
	NumVRegs     int
	// LocalsSize is the bump-allocated total from the lowering engine's
	// variable_offset map (§4.2): bytes of stack space every local
	// variable in this frame needs, independent of anything the
	// allocator later spills.
	LocalsSize int
}
