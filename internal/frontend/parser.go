package frontend

import (
	"fmt"

	"qcc/internal/diag"
)

// Parser is a hand-written recursive-descent parser producing an untyped
// CST, in the same node-tree style as a typical single-token-lookahead
// descent parser: one current token, advance-and-check at each production.
type Parser struct {
	lex *Lexer
	tok Token
}

func NewParser(src string) (*Parser, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	t, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.tok.Kind != k {
		return Token{}, diag.New(diag.SyntaxError, "parser",
			fmt.Sprintf("expected %s at %d:%d, got %q", what, p.tok.Line, p.tok.Col, p.tok.Lexeme))
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return t, nil
}

// ParseProgram parses a whole source file into a list of function CSTs.
func (p *Parser) ParseProgram() ([]*CSTFunc, error) {
	var funcs []*CSTFunc
	for p.tok.Kind != TokEOF {
		fn, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return funcs, nil
}

func (p *Parser) parseType() (CSTType, error) {
	if _, err := p.expect(TokKwInt, "'int'"); err != nil {
		return CSTType{}, err
	}
	depth := 0
	for p.tok.Kind == TokStar {
		depth++
		if err := p.advance(); err != nil {
			return CSTType{}, err
		}
	}
	return CSTType{Depth: depth}, nil
}

func (p *Parser) parseFunc() (*CSTFunc, error) {
	retTy, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var params []CSTParam
	for p.tok.Kind != TokRParen {
		if len(params) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}
		pty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(TokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, CSTParam{Name: pname.Lexeme, Type: pty})
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &CSTFunc{Name: name.Lexeme, Params: params, Ret: retTy, Body: body}, nil
}

func (p *Parser) parseBlock() ([]CSTStmt, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []CSTStmt
	for p.tok.Kind != TokRBrace {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (CSTStmt, error) {
	switch p.tok.Kind {
	case TokKwInt:
		return p.parseDeclStmt()
	case TokKwReturn:
		return p.parseReturnStmt()
	case TokKwIf:
		return p.parseIfStmt()
	case TokKwFor:
		return p.parseForStmt()
	default:
		return p.parseSimpleStmt(true)
	}
}

func (p *Parser) parseDeclStmt() (CSTStmt, error) {
	d, err := p.parseDeclNoSemi()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parseDeclNoSemi() (CSTStmt, error) {
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEq, "'='"); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return CSTDeclStmt{Name: name.Lexeme, Type: ty, Init: rhs}, nil
}

func (p *Parser) parseReturnStmt() (CSTStmt, error) {
	if _, err := p.expect(TokKwReturn, "'return'"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return CSTReturnStmt{Expr: e}, nil
}

func (p *Parser) parseIfStmt() (CSTStmt, error) {
	if _, err := p.expect(TokKwIf, "'if'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []CSTStmt
	if p.tok.Kind == TokKwElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return CSTIfStmt{Cond: cond, Then: thenBody, Else: elseBody}, nil
}

func (p *Parser) parseForStmt() (CSTStmt, error) {
	if _, err := p.expect(TokKwFor, "'for'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var init CSTStmt
	var err error
	if p.tok.Kind != TokSemi {
		if p.tok.Kind == TokKwInt {
			init, err = p.parseDeclNoSemi()
		} else {
			init, err = p.parseSimpleStmt(false)
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	var cond CSTExpr
	if p.tok.Kind != TokSemi {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	var update CSTStmt
	if p.tok.Kind != TokRParen {
		update, err = p.parseSimpleStmt(false)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return CSTForStmt{Init: init, Cond: cond, Update: update, Body: body}, nil
}

// parseSimpleStmt parses an assignment or a bare call expression statement.
// When withSemi is set it also consumes the trailing ';' (for-loop clauses
// parse this without one).
func (p *Parser) parseSimpleStmt(withSemi bool) (CSTStmt, error) {
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var stmt CSTStmt
	if p.tok.Kind == TokEq {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt = CSTAssignStmt{Lhs: lhs, Rhs: rhs}
	} else {
		stmt = CSTExprStmt{Expr: lhs}
	}
	if withSemi {
		if _, err := p.expect(TokSemi, "';'"); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseExpr() (CSTExpr, error) { return p.parseRelational() }

func (p *Parser) parseRelational() (CSTExpr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.tok.Kind {
		case TokEqEq:
			op = "=="
		case TokNotEq:
			op = "!="
		case TokLt:
			op = "<"
		case TokGt:
			op = ">"
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = CSTBinary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (CSTExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.tok.Kind {
		case TokPlus:
			op = "+"
		case TokMinus:
			op = "-"
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = CSTBinary{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (CSTExpr, error) {
	switch p.tok.Kind {
	case TokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return CSTUnary{Op: "-", Depth: 1, Operand: operand}, nil
	case TokAmp:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return CSTUnary{Op: "&", Depth: 1, Operand: operand}, nil
	case TokStar:
		depth := 0
		for p.tok.Kind == TokStar {
			depth++
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return CSTUnary{Op: "*", Depth: depth, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (CSTExpr, error) {
	switch p.tok.Kind {
	case TokInt:
		v := p.tok.IntVal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return CSTInt{Value: v}, nil
	case TokIdent:
		name := p.tok.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokLParen {
			if err := p.advance(); err != nil {
				return nil, err
			}
			var args []CSTExpr
			for p.tok.Kind != TokRParen {
				if len(args) > 0 {
					if _, err := p.expect(TokComma, "','"); err != nil {
						return nil, err
					}
				}
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			if _, err := p.expect(TokRParen, "')'"); err != nil {
				return nil, err
			}
			return CSTCall{Name: name, Args: args}, nil
		}
		return CSTIdent{Name: name}, nil
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, diag.New(diag.SyntaxError, "parser",
		fmt.Sprintf("unexpected token %q at %d:%d", p.tok.Lexeme, p.tok.Line, p.tok.Col))
}
