package x86ir

import "qcc/internal/quadir"

// PhysReg is a concrete x86-64 register assigned by the register allocator.
// It reuses quadir.BaseRegister's enumeration since both name the same 14
// physical registers; x86ir adds the allocator-facing Location wrapper.
type PhysReg = quadir.BaseRegister
