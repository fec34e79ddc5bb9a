package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) []*CSTFunc {
	t.Helper()
	p, err := NewParser(src)
	require.NoError(t, err)
	funcs, err := p.ParseProgram()
	require.NoError(t, err)
	return funcs
}

func TestParseSimpleReturn(t *testing.T) {
	funcs := parseProgram(t, "int main() { return 42; }")
	require.Len(t, funcs, 1)
	require.Equal(t, "main", funcs[0].Name)
	require.Len(t, funcs[0].Body, 1)
	ret, ok := funcs[0].Body[0].(CSTReturnStmt)
	require.True(t, ok)
	lit, ok := ret.Expr.(CSTInt)
	require.True(t, ok)
	require.EqualValues(t, 42, lit.Value)
}

func TestParsePointerParams(t *testing.T) {
	funcs := parseProgram(t, "int swap(int* a, int* b) { return 0; }")
	require.Len(t, funcs[0].Params, 2)
	require.Equal(t, 1, funcs[0].Params[0].Type.Depth)
	require.Equal(t, "a", funcs[0].Params[0].Name)
}

func TestParseIfElse(t *testing.T) {
	funcs := parseProgram(t, `int main() { int x = 7; if (x > 5) { return 1; } else { return 0; } }`)
	ifStmt, ok := funcs[0].Body[1].(CSTIfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseForLoop(t *testing.T) {
	funcs := parseProgram(t, `int main() { int s = 0; for (int i = 10; i > 0; i = i - 1) { s = s + 1; } return s; }`)
	forStmt, ok := funcs[0].Body[1].(CSTForStmt)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Update)
}

func TestParseMultiLevelDeref(t *testing.T) {
	funcs := parseProgram(t, `int add10(int** p) { **p = **p + 10; return 0; }`)
	assign, ok := funcs[0].Body[0].(CSTAssignStmt)
	require.True(t, ok)
	unary, ok := assign.Lhs.(CSTUnary)
	require.True(t, ok)
	require.Equal(t, "*", unary.Op)
	require.Equal(t, 2, unary.Depth)
}

func TestParseRejectsUnexpectedToken(t *testing.T) {
	p, err := NewParser("int main() { return ; }")
	require.NoError(t, err)
	_, err = p.ParseProgram()
	require.Error(t, err)
}
