package emit_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"qcc/internal/compiler"
)

func TestEmitReturnLiteral(t *testing.T) {
	asm, err := compiler.CompileText("int main() { return 42; }")
	require.NoError(t, err)
	require.Contains(t, asm, "main:")
	require.Contains(t, asm, "mov eax, 42")
	require.Contains(t, asm, "ret")
}

func TestEmitHasStartTrampolineWhenMainPresent(t *testing.T) {
	asm, err := compiler.CompileText("int main() { return 0; }")
	require.NoError(t, err)
	require.Contains(t, asm, "_start:")
	require.Contains(t, asm, "call main")
	require.Contains(t, asm, "mov rax, 60")
	require.Contains(t, asm, "syscall")
}

func TestEmitNoStartTrampolineWithoutMain(t *testing.T) {
	asm, err := compiler.CompileText("int helper() { return 1; }")
	require.NoError(t, err)
	require.NotContains(t, asm, "call main")
}

func TestEmitAdditionThroughVariables(t *testing.T) {
	asm, err := compiler.CompileText("int main() { int a = 2; int b = 3; return a + b; }")
	require.NoError(t, err)
	require.Contains(t, asm, "add ")
}

func TestEmitIfElseUsesConditionalJump(t *testing.T) {
	asm, err := compiler.CompileText("int main() { int x = 7; if (x > 5) { return 1; } else { return 0; } }")
	require.NoError(t, err)
	require.Contains(t, asm, "cmp ")
	require.Contains(t, asm, "jg ")
}

func TestEmitForLoopEmitsLabelsAndBackwardJump(t *testing.T) {
	asm, err := compiler.CompileText("int main() { int s = 0; for (int i = 10; i > 0; i = i - 1) { s = s + 1; } return s; }")
	require.NoError(t, err)
	require.Contains(t, asm, "L0:")
	require.True(t, strings.Count(asm, "jmp") >= 1)
}

func TestEmitSwapThroughPointersUsesLeaAndIndirection(t *testing.T) {
	src := `int swap(int* a, int* b) { int t = *a; *a = *b; *b = t; return 0; }
	int main() { int a = 5; int b = 3; swap(&a, &b); return a; }`
	asm, err := compiler.CompileText(src)
	require.NoError(t, err)
	require.Contains(t, asm, "lea ")
	require.Contains(t, asm, "call swap")
	require.Regexp(t, regexp.MustCompile(`mov \[\w+\],`), asm)
}

func TestEmitSeventhArgumentReadFromStack(t *testing.T) {
	src := "int sum7(int a, int b, int c, int d, int e, int f, int g) { return g; }"
	asm, err := compiler.CompileText(src)
	require.NoError(t, err)
	require.Contains(t, asm, "[rbp+16]")
}

func TestEmitTwoLevelIndirection(t *testing.T) {
	src := `int add10(int** p) { **p = **p + 10; return 0; }
	int main() { int v = 5; int* p = &v; int** q = &p; add10(q); return v + 3; }`
	asm, err := compiler.CompileText(src)
	require.NoError(t, err)
	require.Contains(t, asm, "add10:")
	require.Regexp(t, regexp.MustCompile(`mov \w+, \[\w+\]`), asm)
}

func TestEmitEighthArgumentPassedByPush(t *testing.T) {
	src := `int sum8(int a, int b, int c, int d, int e, int f, int g, int h) { return h; }
	int main() { return sum8(1, 2, 3, 4, 5, 6, 7, 8); }`
	asm, err := compiler.CompileText(src)
	require.NoError(t, err)
	require.Contains(t, asm, "push 8")
	require.Contains(t, asm, "push 7")
}
