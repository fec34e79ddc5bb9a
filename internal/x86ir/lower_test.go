package x86ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"qcc/internal/frontend"
	"qcc/internal/quadir"
	"qcc/internal/x86ir"
)

func lowerSource(t *testing.T, src string) []*x86ir.Frame {
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
	return frames
}

func TestLowerReturnLiteralMaterializesIntoAX(t *testing.T) {
	frames := lowerSource(t, "int main() { return 42; }")
	require.Len(t, frames[0].Instructions, 2)
	loadI, ok := frames[0].Instructions[0].(x86ir.LoadI)
	require.True(t, ok)
	require.Equal(t, x86ir.Hard{Base: quadir.AX, Sz: 4}, loadI.Dst)
	require.Equal(t, int32(42), loadI.Imm)
	_, ok = frames[0].Instructions[1].(x86ir.Ret)
	require.True(t, ok)
}

// Every local variable gets a stack slot, never a VReg — this is what
// lets Addr take a local's address unconditionally instead of only when
// the allocator happens to leave it unregistered.
func TestLowerLocalsNeverGetAVReg(t *testing.T) {
	frames := lowerSource(t, "int main() { int a = 2; int b = 3; return a + b; }")
	var sawStoreI bool
	for _, in := range frames[0].Instructions {
		if st, ok := in.(x86ir.StoreI); ok {
			_, ok := st.Dst.(x86ir.Mem)
			require.True(t, ok, "a variable's destination must be a Mem slot, not a VReg")
			sawStoreI = true
		}
	}
	require.True(t, sawStoreI)
}

func TestLowerParamBindingStoresHardRegisterIntoMemory(t *testing.T) {
	frames := lowerSource(t, "int add(int a, int b) { return a + b; }")
	st, ok := frames[0].Instructions[0].(x86ir.Store)
	require.True(t, ok)
	hard, ok := st.Src.(x86ir.Hard)
	require.True(t, ok)
	require.Equal(t, quadir.DI, hard.Base)
	_, ok = st.Dst.(x86ir.Mem)
	require.True(t, ok)
}

func TestLowerStackParamNeverGetsAMemSlot(t *testing.T) {
	src := "int sum7(int a, int b, int c, int d, int e, int f, int g) { return g; }"
	frames := lowerSource(t, src)
	var found bool
	for _, in := range frames[0].Instructions {
		if ld, ok := in.(x86ir.Load); ok {
			if sp, ok := ld.Src.(x86ir.StackParam); ok {
				require.Equal(t, "g", sp.Name)
				require.Negative(t, sp.Offset)
				found = true
			}
		}
	}
	require.True(t, found, "expected the 7th argument's value to be loaded from its StackParam into AX")
}

func TestLowerAddrOfLocalEmitsLea(t *testing.T) {
	src := `int swap(int* a, int* b) { int t = *a; *a = *b; *b = t; return 0; }
	int main() { int a = 5; int b = 3; swap(&a, &b); return a; }`
	frames := lowerSource(t, src)
	var main *x86ir.Frame
	for _, f := range frames {
		if f.Name == "main" {
			main = f
		}
	}
	require.NotNil(t, main)
	var leaCount int
	for _, in := range main.Instructions {
		if lea, ok := in.(x86ir.Lea); ok {
			_, ok := lea.Src.(x86ir.Mem)
			require.True(t, ok, "lea must address a stack-resident local, never a register")
			leaCount++
		}
	}
	require.Equal(t, 2, leaCount) // &a and &b
}

func TestLowerTwoLevelDerefChainsIndirectLoads(t *testing.T) {
	src := `int add10(int** p) { **p = **p + 10; return 0; }
	int main() { int v = 5; int* p = &v; int** q = &p; add10(q); return v + 3; }`
	frames := lowerSource(t, src)
	var add10 *x86ir.Frame
	for _, f := range frames {
		if f.Name == "add10" {
			add10 = f
		}
	}
	require.NotNil(t, add10)
	var indirectLoads int
	for _, in := range add10.Instructions {
		if _, ok := in.(x86ir.IndirectLoad); ok {
			indirectLoads++
		}
	}
	require.GreaterOrEqual(t, indirectLoads, 2)
}
