package regalloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"qcc/internal/frontend"
	"qcc/internal/quadir"
	"qcc/internal/regalloc"
	"qcc/internal/x86ir"
)

func lowerFirstFrame(t *testing.T, src string) *x86ir.Frame {
	t.Helper()
	p, err := frontend.NewParser(src)
	require.NoError(t, err)
	cst, err := p.ParseProgram()
	require.NoError(t, err)
	funcs, err := frontend.NewChecker().Check(cst)
	require.NoError(t, err)
	quadFrames, err := quadir.Build(funcs)
	require.NoError(t, err)
	frames, err := x86ir.Lower(quadFrames)
	require.NoError(t, err)
	return frames[0]
}

// invariant 3: the allocator must not add, remove, or reorder instructions.
func TestAllocatePreservesInstructionCountAndOrder(t *testing.T) {
	frame := lowerFirstFrame(t, "int main() { int a = 2; int b = 3; return a + b; }")
	before := append([]x86ir.Instruction(nil), frame.Instructions...)
	regalloc.Allocate(frame)
	require.Equal(t, len(before), len(frame.Instructions))
	for i := range before {
		require.Equal(t, before[i], frame.Instructions[i])
	}
}

// invariant 5 (simplified): every VReg referenced by the frame resolves
// to a Location through the allocator's Resolve (which chases the
// coalescing remap first).
func TestAllocateResolvesEveryReferencedVReg(t *testing.T) {
	frame := lowerFirstFrame(t, "int main() { int a = 2; int b = 3; return a + b; }")
	alloc := regalloc.Allocate(frame)
	for _, in := range frame.Instructions {
		for _, v := range append(x86ir.Defs(in), x86ir.Uses(in)...) {
			_, ok := alloc.Resolve(v)
			require.True(t, ok, "every referenced vreg must resolve to a location")
		}
	}
}

// Locals always live in the lowering engine's stack slots (never a VReg),
// so a frame with a handful of arithmetic temporaries and no deep live
// ranges should never need to spill beyond the locals' own stack space.
func TestAllocateNoSpillsWithinEightRegisterBudget(t *testing.T) {
	frame := lowerFirstFrame(t, "int main() { int a = 1; int b = 2; int c = 3; return a + b + c; }")
	alloc := regalloc.Allocate(frame)
	require.Equal(t, frame.LocalsSize, alloc.FrameSize)
}

func TestCoalesceDropsRedundantCopyBetweenChainedTemporaries(t *testing.T) {
	// a + b + c forces a Mov carrying the first Add's result temp into
	// the second Add's fresh destination temp — exactly the
	// register-to-register copy §4.3.3 coalesces away.
	frame := lowerFirstFrame(t, "int main() { int a = 1; int b = 2; int c = 3; return a + b + c; }")
	alloc := regalloc.Allocate(frame)
	coalesced := regalloc.Coalesce(frame, alloc)
	require.Less(t, len(coalesced), len(frame.Instructions))
}

func TestCoalesceNeverDropsANonSelfMove(t *testing.T) {
	// The only Mov here copies the sum's VReg into the hard AX return slot,
	// a move between two different locations, so nothing may be dropped.
	frame := lowerFirstFrame(t, "int add(int a, int b) { return a + b; }")
	alloc := regalloc.Allocate(frame)
	coalesced := regalloc.Coalesce(frame, alloc)
	require.Equal(t, len(frame.Instructions), len(coalesced))
}
