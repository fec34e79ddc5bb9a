package x86ir

import "fmt"

// VReg is a virtual register minted one-per-Quad-value by the lowering
// engine. The allocator later assigns each VReg a Location.
type VReg struct{ ID uint32 }

func (v VReg) String() string { return fmt.Sprintf("v%d", v.ID) }

// Location is where a VReg ends up living after allocation: either a
// physical register or a spill slot at a fixed stack offset from the
// frame base.
type Location struct {
	InReg  bool
	Reg    PhysReg
	Offset int // bytes below the frame base, used when !InReg
}

func RegLocation(r PhysReg) Location   { return Location{InReg: true, Reg: r} }
func StackLocation(off int) Location   { return Location{InReg: false, Offset: off} }
func (l Location) IsStack() bool       { return !l.InReg }
