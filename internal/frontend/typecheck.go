package frontend

import (
	"fmt"

	"qcc/internal/diag"
)

type funcSig struct {
	params []*Type
	ret    *Type
}

// Checker walks the CST and produces the typed AST C3 (the Quad IR
// builder) consumes.
type Checker struct {
	funcs map[string]funcSig
}

func NewChecker() *Checker { return &Checker{funcs: map[string]funcSig{}} }

// Check converts a parsed program's CST into the typed AST. It runs in two
// passes: first every function signature is registered, then each body is
// walked, so a call site can resolve against a callee declared anywhere in
// the file (every function is registered before any body is walked, so
// there is no forward-reference problem to solve beyond that).
func (c *Checker) Check(cstFuncs []*CSTFunc) ([]*Func, error) {
	for _, cf := range cstFuncs {
		if _, exists := c.funcs[cf.Name]; exists {
			return nil, diag.New(diag.TypeError, "func", fmt.Sprintf("redefinition of %q", cf.Name))
		}
		sig := funcSig{ret: resolveType(cf.Ret)}
		for _, p := range cf.Params {
			sig.params = append(sig.params, resolveType(p.Type))
		}
		c.funcs[cf.Name] = sig
	}

	var out []*Func
	for _, cf := range cstFuncs {
		fn, err := c.checkFunc(cf)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

func resolveType(ct CSTType) *Type {
	t := IntType
	for i := 0; i < ct.Depth; i++ {
		t = PointerType(t)
	}
	return t
}

type scope struct {
	vars map[string]*Type
}

func (c *Checker) checkFunc(cf *CSTFunc) (*Func, error) {
	sc := &scope{vars: map[string]*Type{}}
	var params []Param
	for _, p := range cf.Params {
		ty := resolveType(p.Type)
		params = append(params, Param{Name: p.Name, Type: ty})
		sc.vars[p.Name] = ty
	}
	body, err := c.checkBlock(cf.Body, sc)
	if err != nil {
		return nil, err
	}
	return &Func{Name: cf.Name, Params: params, Ret: resolveType(cf.Ret), Body: body}, nil
}

func (c *Checker) checkBlock(stmts []CSTStmt, sc *scope) ([]Stmt, error) {
	var out []Stmt
	for _, s := range stmts {
		st, err := c.checkStmt(s, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (c *Checker) checkStmt(s CSTStmt, sc *scope) (Stmt, error) {
	switch n := s.(type) {
	case CSTDeclStmt:
		ty := resolveType(n.Type)
		rhs, err := c.checkExpr(n.Init, sc)
		if err != nil {
			return nil, err
		}
		sc.vars[n.Name] = ty
		return DeclStmt{Name: n.Name, Type: ty, Init: rhs}, nil
	case CSTAssignStmt:
		lhs, err := c.checkExpr(n.Lhs, sc)
		if err != nil {
			return nil, err
		}
		rhs, err := c.checkExpr(n.Rhs, sc)
		if err != nil {
			return nil, err
		}
		return AssignStmt{Lhs: lhs, Rhs: rhs}, nil
	case CSTExprStmt:
		e, err := c.checkExpr(n.Expr, sc)
		if err != nil {
			return nil, err
		}
		return ExprStmt{Expr: e}, nil
	case CSTReturnStmt:
		e, err := c.checkExpr(n.Expr, sc)
		if err != nil {
			return nil, err
		}
		return ReturnStmt{Expr: e}, nil
	case CSTIfStmt:
		cond, err := c.checkExpr(n.Cond, sc)
		if err != nil {
			return nil, err
		}
		then, err := c.checkBlock(n.Then, sc)
		if err != nil {
			return nil, err
		}
		var els []Stmt
		if n.Else != nil {
			els, err = c.checkBlock(n.Else, sc)
			if err != nil {
				return nil, err
			}
		}
		return IfStmt{Cond: cond, Then: then, Else: els}, nil
	case CSTForStmt:
		var init Stmt
		var err error
		if n.Init != nil {
			init, err = c.checkStmt(n.Init, sc)
			if err != nil {
				return nil, err
			}
		}
		var cond Expr
		if n.Cond != nil {
			cond, err = c.checkExpr(n.Cond, sc)
			if err != nil {
				return nil, err
			}
		}
		var update Stmt
		if n.Update != nil {
			update, err = c.checkStmt(n.Update, sc)
			if err != nil {
				return nil, err
			}
		}
		body, err := c.checkBlock(n.Body, sc)
		if err != nil {
			return nil, err
		}
		return ForStmt{Init: init, Cond: cond, Update: update, Body: body}, nil
	}
	return nil, diag.New(diag.UnsupportedConstruct, "stmt", fmt.Sprintf("%T", s))
}

func (c *Checker) checkExpr(e CSTExpr, sc *scope) (Expr, error) {
	switch n := e.(type) {
	case CSTInt:
		return IntExpr{Value: n.Value}, nil
	case CSTIdent:
		ty, ok := sc.vars[n.Name]
		if !ok {
			return nil, diag.New(diag.MissingSymbol, "ident", n.Name)
		}
		return IdentExpr{Name: n.Name, Ty: ty}, nil
	case CSTUnary:
		operand, err := c.checkExpr(n.Operand, sc)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "-":
			return UnaryExpr{Op: "-", Depth: 1, Operand: operand, Ty: operand.Type()}, nil
		case "&":
			return UnaryExpr{Op: "&", Depth: 1, Operand: operand, Ty: PointerType(operand.Type())}, nil
		case "*":
			ty := operand.Type()
			if ty.Depth() < n.Depth {
				return nil, diag.New(diag.TypeError, "deref",
					fmt.Sprintf("cannot dereference %s to depth %d", ty, n.Depth))
			}
			result := ty
			for i := 0; i < n.Depth; i++ {
				result = result.PointsTo
			}
			return UnaryExpr{Op: "*", Depth: n.Depth, Operand: operand, Ty: result}, nil
		}
	case CSTBinary:
		left, err := c.checkExpr(n.Left, sc)
		if err != nil {
			return nil, err
		}
		right, err := c.checkExpr(n.Right, sc)
		if err != nil {
			return nil, err
		}
		ty := left.Type()
		switch n.Op {
		case "==", "!=", "<", ">":
			ty = IntType
		}
		return BinaryExpr{Op: n.Op, Left: left, Right: right, Ty: ty}, nil
	case CSTCall:
		sig, ok := c.funcs[n.Name]
		if !ok {
			return nil, diag.New(diag.MissingSymbol, "call", n.Name)
		}
		var args []Expr
		for _, a := range n.Args {
			ae, err := c.checkExpr(a, sc)
			if err != nil {
				return nil, err
			}
			args = append(args, ae)
		}
		return CallExpr{Name: n.Name, Args: args, Ty: sig.ret}, nil
	}
	return nil, diag.New(diag.UnsupportedConstruct, "expr", fmt.Sprintf("%T", e))
}
