// Package regalloc implements linear-scan register allocation over an
// x86ir.Frame: each VReg gets either one of quadir.GeneralRegs or a spill
// slot on the stack, preceded by a move-coalescing remap pass (§4.3.3)
// that merges register-to-register Movs into a single shared identity
// before live ranges are ever computed.
package regalloc

import (
	"sort"

	"qcc/internal/quadir"
	"qcc/internal/utils"
	"qcc/internal/x86ir"
)

// Allocation is the result of running the allocator over one frame.
type Allocation struct {
	// Locations is keyed by the canonical (post-coalescing) VReg: look up
	// through Resolve, which chases remap first.
	Locations map[x86ir.VReg]x86ir.Location
	remap     map[x86ir.VReg]x86ir.VReg
	// FrameSize is the total stack space, in bytes, the frame's prologue
	// must reserve below rbp: the lowering engine's local-variable slots
	// plus whatever this pass spilled on top of them.
	FrameSize int
}

// Resolve looks up the physical Location assigned to v, chasing the
// coalescing remap first so a Mov's now-merged destination resolves to
// the same Location as its source.
func (a *Allocation) Resolve(v x86ir.VReg) (x86ir.Location, bool) {
	loc, ok := a.Locations[chase(a.remap, v)]
	return loc, ok
}

func chase(remap map[x86ir.VReg]x86ir.VReg, v x86ir.VReg) x86ir.VReg {
	for {
		next, ok := remap[v]
		if !ok {
			return v
		}
		v = next
	}
}

// buildRemap implements §4.3.3: a left-to-right pass over the frame
// identifying register-to-register Movs whose destination is freshly
// defined there (never seen before) and whose source has already been
// seen. Chasing an existing mapping for the source handles a chain of
// coalesced copies collapsing onto one canonical VReg.
func buildRemap(f *x86ir.Frame) map[x86ir.VReg]x86ir.VReg {
	remap := map[x86ir.VReg]x86ir.VReg{}
	seen := map[x86ir.VReg]bool{}
	for _, in := range f.Instructions {
		if mv, ok := in.(x86ir.Mov); ok {
			dr, dIsReg := mv.Dst.(x86ir.Reg)
			sr, sIsReg := mv.Src.(x86ir.Reg)
			if dIsReg && sIsReg && seen[sr.V] && !seen[dr.V] {
				remap[dr.V] = chase(remap, sr.V)
				seen[dr.V] = true
				continue
			}
		}
		for _, v := range x86ir.Uses(in) {
			seen[v] = true
		}
		for _, v := range x86ir.Defs(in) {
			seen[v] = true
		}
	}
	return remap
}

type interval struct {
	vreg       x86ir.VReg
	start, end int
}

// Allocate assigns every VReg referenced in f a Location. Liveness is
// computed linearly over instruction order (no control-flow-aware
// interference graph): a VReg's interval runs from its first def/use to
// its last, which is exact for straight-line code and conservative (never
// under-counts a live range) across forward jumps, matching the scope of
// this grammar's control flow. Touching through the remap table widens
// a coalesced pair's combined interval to the union of both identities'
// occurrences in one pass, equivalent to computing then widening
// separately (§4.3.3) since every occurrence of the coalesced VReg is
// folded to its canonical identity before min/max are taken.
func Allocate(f *x86ir.Frame) *Allocation {
	remap := buildRemap(f)

	starts := map[x86ir.VReg]int{}
	ends := map[x86ir.VReg]int{}
	touch := func(v x86ir.VReg, idx int) {
		v = chase(remap, v)
		if _, ok := starts[v]; !ok {
			starts[v] = idx
		}
		ends[v] = idx
	}
	for idx, in := range f.Instructions {
		for _, v := range x86ir.Defs(in) {
			touch(v, idx)
		}
		for _, v := range x86ir.Uses(in) {
			touch(v, idx)
		}
	}

	var intervals []interval
	for v, s := range starts {
		intervals = append(intervals, interval{vreg: v, start: s, end: ends[v]})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	numRegs := len(quadir.GeneralRegs)
	free := utils.NewBitMap(numRegs)
	for i := 0; i < numRegs; i++ {
		free.Set(i)
	}

	type active struct {
		interval
		regIdx int
	}
	var activeList []active

	alloc := &Allocation{Locations: map[x86ir.VReg]x86ir.Location{}, remap: remap}
	spillOffset := f.LocalsSize

	expireOld := func(start int) {
		kept := activeList[:0]
		for _, a := range activeList {
			if a.end < start {
				free.Set(a.regIdx)
			} else {
				kept = append(kept, a)
			}
		}
		activeList = kept
	}

	spillSlot := func() x86ir.Location {
		spillOffset += 8
		return x86ir.StackLocation(spillOffset)
	}

	for _, iv := range intervals {
		expireOld(iv.start)

		regIdx := free.FirstSet()

		if regIdx == -1 {
			// Spill the active interval ending furthest in the future, if
			// it extends later than the current one; otherwise spill the
			// current interval itself.
			worst := -1
			for i, a := range activeList {
				if worst == -1 || a.end > activeList[worst].end {
					worst = i
				}
			}
			if worst != -1 && activeList[worst].end > iv.end {
				victim := activeList[worst]
				alloc.Locations[victim.vreg] = spillSlot()
				alloc.Locations[iv.vreg] = x86ir.RegLocation(quadir.GeneralRegs[victim.regIdx])
				activeList[worst] = active{interval: iv, regIdx: victim.regIdx}
				continue
			}
			alloc.Locations[iv.vreg] = spillSlot()
			continue
		}

		free.Reset(regIdx)
		alloc.Locations[iv.vreg] = x86ir.RegLocation(quadir.GeneralRegs[regIdx])
		activeList = append(activeList, active{interval: iv, regIdx: regIdx})
	}

	alloc.FrameSize = spillOffset
	return alloc
}

// Coalesce drops Mov instructions whose source and destination resolved
// to the identical Location — the rewriter half of §4.3.3's remap: once
// both operands chase to the same VReg (or merely land on the same
// physical register/spill slot by coincidence), the copy is redundant.
func Coalesce(f *x86ir.Frame, alloc *Allocation) []x86ir.Instruction {
	loc := func(o x86ir.Operand) (x86ir.Location, bool) {
		r, ok := o.(x86ir.Reg)
		if !ok {
			return x86ir.Location{}, false
		}
		return alloc.Resolve(r.V)
	}

	var out []x86ir.Instruction
	for _, in := range f.Instructions {
		if mv, ok := in.(x86ir.Mov); ok {
			dl, dok := loc(mv.Dst)
			sl, sok := loc(mv.Src)
			if dok && sok && dl == sl {
				continue
			}
		}
		out = append(out, in)
	}
	return out
}
