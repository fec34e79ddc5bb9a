package quadir

import (
	"qcc/internal/diag"
	"qcc/internal/frontend"
)

// frameCtx is the per-frame context the builder threads through one
// function's AST: temp/label counters, a variable-versions map, and the
// frame being appended to.
type frameCtx struct {
	tempCounter int
	labels      LabelAllocator
	versions    map[string]uint32
	varTypes    map[string]*frontend.Type
	frame       *Frame
}

func (c *frameCtx) emit(op Operation) { c.frame.Instructions = append(c.frame.Instructions, op) }

func (c *frameCtx) newTemp(size int) Temp {
	t := Temp{ID: uint32(c.tempCounter), Sz: uint8(size)}
	c.tempCounter++
	return t
}

func (c *frameCtx) variable(name string) Variable {
	ty := c.varTypes[name]
	return Variable{Name: name, Version: c.versions[name], Sz: uint8(ty.Size)}
}

func (c *frameCtx) defineVariable(name string, ty *frontend.Type) Variable {
	c.versions[name]++
	c.varTypes[name] = ty
	return c.variable(name)
}

// Build lowers a list of typed functions into Quad frames.
func Build(funcs []*frontend.Func) ([]*Frame, error) {
	var frames []*Frame
	for _, fn := range funcs {
		frame, err := buildFrame(fn)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func buildFrame(fn *frontend.Func) (*Frame, error) {
	frame := &Frame{Name: fn.Name}
	ctx := &frameCtx{
		versions: map[string]uint32{},
		varTypes: map[string]*frontend.Type{},
		frame:    frame,
	}

	for i, p := range fn.Params {
		v := ctx.defineVariable(p.Name, p.Type)
		if i < len(ParamRegs) {
			ctx.emit(MovR{Dst: v, Src: HardcodedRegister{Base: ParamRegs[i], Sz: uint8(p.Type.Size)}})
		} else {
			ctx.emit(DefineStackPushed{Name: p.Name, Size: p.Type.Size})
		}
	}

	for _, s := range fn.Body {
		if err := ctx.buildStmt(s); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (c *frameCtx) buildStmt(s frontend.Stmt) error {
	switch n := s.(type) {
	case frontend.DeclStmt:
		val, err := c.buildExpr(n.Init)
		if err != nil {
			return err
		}
		v := c.defineVariable(n.Name, n.Type)
		c.emit(Mov{Dst: v, Src: val})
		return nil
	case frontend.AssignStmt:
		val, err := c.buildExpr(n.Rhs)
		if err != nil {
			return err
		}
		switch lhs := n.Lhs.(type) {
		case frontend.IdentExpr:
			v := c.defineVariable(lhs.Name, lhs.Ty)
			c.emit(Mov{Dst: v, Src: val})
			return nil
		case frontend.UnaryExpr:
			if lhs.Op != "*" {
				return diag.New(diag.UnsupportedConstruct, "assign", "left-hand side must be an identifier or dereference")
			}
			addr, err := c.buildDerefAddress(lhs)
			if err != nil {
				return err
			}
			c.emit(DerefStore{Dst: addr, Src: val})
			return nil
		}
		return diag.New(diag.UnsupportedConstruct, "assign", "unsupported assignment target")
	case frontend.ExprStmt:
		_, err := c.buildExpr(n.Expr)
		return err
	case frontend.ReturnStmt:
		val, err := c.buildExpr(n.Expr)
		if err != nil {
			return err
		}
		c.emit(Ret{Value: val})
		return nil
	case frontend.IfStmt:
		return c.buildIf(n)
	case frontend.ForStmt:
		return c.buildFor(n)
	}
	return diag.New(diag.UnsupportedConstruct, "stmt", "unknown statement kind")
}

// buildDerefAddress evaluates the address a store through `*^depth e`
// writes to: for depth 1 that is e itself; for depth > 1 it is `*^(depth-1)
// e`, i.e. one fewer indirection, evaluated as a Value (a still-pointer
// Temp) via the ordinary Deref path.
func (c *frameCtx) buildDerefAddress(lhs frontend.UnaryExpr) (Value, error) {
	if lhs.Depth == 1 {
		return c.buildExpr(lhs.Operand)
	}
	baseTy := lhs.Operand.Type()
	resultTy := baseTy
	for i := 0; i < lhs.Depth-1; i++ {
		resultTy = resultTy.PointsTo
	}
	inner := frontend.UnaryExpr{Op: "*", Depth: lhs.Depth - 1, Operand: lhs.Operand, Ty: resultTy}
	return c.buildExpr(inner)
}

func (c *frameCtx) buildExpr(e frontend.Expr) (Value, error) {
	switch n := e.(type) {
	case frontend.IntExpr:
		return Const{Int: n.Value}, nil
	case frontend.IdentExpr:
		return c.variable(n.Name), nil
	case frontend.BinaryExpr:
		left, err := c.buildExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.buildExpr(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "+":
			dst := c.newTemp(left.Size())
			c.emit(Add{Dst: dst, Left: left, Right: right})
			return dst, nil
		case "-":
			dst := c.newTemp(left.Size())
			c.emit(Sub{Dst: dst, Left: left, Right: right})
			return dst, nil
		case "==":
			dst := c.newTemp(4)
			c.emit(Equal{Dst: dst, Left: left, Right: right})
			return dst, nil
		case "!=":
			dst := c.newTemp(4)
			c.emit(NotEqual{Dst: dst, Left: left, Right: right})
			return dst, nil
		case ">":
			dst := c.newTemp(4)
			c.emit(GreaterThan{Dst: dst, Left: left, Right: right})
			return dst, nil
		case "<":
			// No Quad op represents "<" directly as a value producer; it
			// normalizes to the mirrored GreaterThan, the same way the
			// builder flips an Equal test's branches for "!=" conditions.
			dst := c.newTemp(4)
			c.emit(GreaterThan{Dst: dst, Left: right, Right: left})
			return dst, nil
		}
		return nil, diag.New(diag.UnsupportedConstruct, "binop", n.Op)
	case frontend.UnaryExpr:
		switch n.Op {
		case "&":
			inner, err := c.buildExpr(n.Operand)
			if err != nil {
				return nil, err
			}
			dst := c.newTemp(8)
			c.emit(Addr{Dst: dst, Src: inner})
			return dst, nil
		case "*":
			ident, ok := n.Operand.(frontend.IdentExpr)
			if !ok {
				return nil, diag.New(diag.UnsupportedConstruct, "deref", "dereference target must be a variable")
			}
			src := c.variable(ident.Name)
			dst := c.newTemp(n.Ty.Size)
			c.emit(Deref{Dst: dst, Src: src, Depth: n.Depth})
			return dst, nil
		case "-":
			inner, err := c.buildExpr(n.Operand)
			if err != nil {
				return nil, err
			}
			dst := c.newTemp(inner.Size())
			c.emit(Sub{Dst: dst, Left: Const{Int: 0}, Right: inner})
			return dst, nil
		}
		return nil, diag.New(diag.UnsupportedConstruct, "unary", n.Op)
	case frontend.CallExpr:
		var args []Value
		for _, a := range n.Args {
			av, err := c.buildExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
		}
		dst := c.newTemp(n.Ty.Size)
		c.emit(Call{Name: n.Name, Args: args, Dst: dst})
		return dst, nil
	}
	return nil, diag.New(diag.UnsupportedConstruct, "expr", "unknown expression kind")
}

func (c *frameCtx) buildIf(n frontend.IfStmt) error {
	cj, thenLabel, elseLabel, err := c.buildCondition(n.Cond)
	if err != nil {
		return err
	}
	c.emit(cj)
	c.emit(LabelDef{Label: thenLabel})
	for _, s := range n.Then {
		if err := c.buildStmt(s); err != nil {
			return err
		}
	}
	c.emit(LabelDef{Label: elseLabel})
	for _, s := range n.Else {
		if err := c.buildStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// buildCondition lowers an if/for condition, which must be a comparison:
// it emits Compare{left,right} and returns the matching ConditionalJump
// plus the fresh labels callers should use for the "then"/"else" arms.
// "!=" has no dedicated ConditionalJump variant, so it is desugared into
// an Equal test with the two branch labels swapped (mirroring the classic
// if(a) -> if(a==0)-with-flipped-arms technique).
func (c *frameCtx) buildCondition(cond frontend.Expr) (cj ConditionalJump, thenLabel, elseLabel Label, err error) {
	bin, ok := cond.(frontend.BinaryExpr)
	if !ok {
		err = diag.New(diag.UnsupportedConstruct, "condition", "condition must be a comparison")
		return
	}
	left, e := c.buildExpr(bin.Left)
	if e != nil {
		err = e
		return
	}
	right, e := c.buildExpr(bin.Right)
	if e != nil {
		err = e
		return
	}
	c.emit(Compare{Left: left, Right: right})
	thenLabel = c.labels.New()
	elseLabel = c.labels.New()
	switch bin.Op {
	case "==":
		cj = ConditionalJump{Kind: CondEqual, TrueLabel: thenLabel, FalseLabel: elseLabel}
	case "!=":
		cj = ConditionalJump{Kind: CondEqual, TrueLabel: elseLabel, FalseLabel: thenLabel}
	case ">":
		cj = ConditionalJump{Kind: CondGreater, TrueLabel: thenLabel, FalseLabel: elseLabel}
	case "<":
		cj = ConditionalJump{Kind: CondLess, TrueLabel: thenLabel, FalseLabel: elseLabel}
	default:
		err = diag.New(diag.UnsupportedConstruct, "condition", bin.Op)
	}
	return
}

func (c *frameCtx) buildFor(n frontend.ForStmt) error {
	if n.Init != nil {
		if err := c.buildStmt(n.Init); err != nil {
			return err
		}
	}
	bottomLabel := c.labels.New()
	c.emit(Jump{Label: bottomLabel})
	bodyLabel := c.labels.New()
	c.emit(LabelDef{Label: bodyLabel})
	for _, s := range n.Body {
		if err := c.buildStmt(s); err != nil {
			return err
		}
	}
	if n.Update != nil {
		if err := c.buildStmt(n.Update); err != nil {
			return err
		}
	}
	c.emit(LabelDef{Label: bottomLabel})
	if n.Cond == nil {
		c.emit(Jump{Label: bodyLabel})
		return nil
	}
	bin, ok := n.Cond.(frontend.BinaryExpr)
	if !ok {
		return diag.New(diag.UnsupportedConstruct, "for-condition", "condition must be a comparison")
	}
	left, err := c.buildExpr(bin.Left)
	if err != nil {
		return err
	}
	right, err := c.buildExpr(bin.Right)
	if err != nil {
		return err
	}
	c.emit(Compare{Left: left, Right: right})
	exitLabel := c.labels.New()
	var cj ConditionalJump
	switch bin.Op {
	case ">":
		cj = ConditionalJump{Kind: CondGreater, TrueLabel: bodyLabel, FalseLabel: exitLabel}
	case "<":
		cj = ConditionalJump{Kind: CondLess, TrueLabel: bodyLabel, FalseLabel: exitLabel}
	default:
		return diag.New(diag.UnsupportedConstruct, "for-condition", bin.Op)
	}
	c.emit(cj)
	c.emit(LabelDef{Label: exitLabel})
	return nil
}
