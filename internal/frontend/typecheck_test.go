package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func checkProgram(t *testing.T, src string) ([]*Func, error) {
	t.Helper()
	p, err := NewParser(src)
	require.NoError(t, err)
	cst, err := p.ParseProgram()
	require.NoError(t, err)
	return NewChecker().Check(cst)
}

func TestCheckReturnLiteral(t *testing.T) {
	funcs, err := checkProgram(t, "int main() { return 42; }")
	require.NoError(t, err)
	require.Equal(t, IntType, funcs[0].Ret)
}

func TestCheckUnknownIdentifier(t *testing.T) {
	_, err := checkProgram(t, "int main() { return x; }")
	require.Error(t, err)
}

func TestCheckCallBeforeDeclaration(t *testing.T) {
	// forward reference: main calls helper, declared below it in the file
	funcs, err := checkProgram(t, `
		int main() { return helper(); }
		int helper() { return 1; }
	`)
	require.NoError(t, err)
	require.Len(t, funcs, 2)
}

func TestCheckUnknownCallee(t *testing.T) {
	_, err := checkProgram(t, "int main() { return nope(); }")
	require.Error(t, err)
}

func TestCheckPointerDepth(t *testing.T) {
	funcs, err := checkProgram(t, "int add10(int** p) { return **p; }")
	require.NoError(t, err)
	require.Equal(t, 2, funcs[0].Params[0].Type.Depth())
	ret := funcs[0].Body[0].(ReturnStmt)
	deref := ret.Expr.(UnaryExpr)
	require.Equal(t, 2, deref.Depth)
	require.Equal(t, IntType, deref.Type())
}

func TestCheckDerefTooDeepIsTypeError(t *testing.T) {
	_, err := checkProgram(t, "int main() { int x = 0; return **x; }")
	require.Error(t, err)
}

func TestCheckRedefinedFunctionIsError(t *testing.T) {
	_, err := checkProgram(t, `
		int main() { return 0; }
		int main() { return 1; }
	`)
	require.Error(t, err)
}
