package frontend

import (
	"bufio"
	"fmt"
	"strings"

	"qcc/internal/diag"
)

// Lexer is a hand-rolled rune-at-a-time scanner over a bufio.Reader,
// tracking line/column for diagnostics.
type Lexer struct {
	reader *bufio.Reader
	line   int
	col    int
}

func NewLexer(src string) *Lexer {
	return &Lexer{reader: bufio.NewReader(strings.NewReader(src)), line: 1, col: 0}
}

func (l *Lexer) next() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r, true
}

func (l *Lexer) peek() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, false
	}
	_ = l.reader.UnreadRune()
	return r, true
}

var keywords = map[string]TokenKind{
	"int": TokKwInt, "return": TokKwReturn, "if": TokKwIf, "else": TokKwElse, "for": TokKwFor,
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }

// NextToken scans and returns the next token, skipping whitespace and
// "//" line comments.
func (l *Lexer) NextToken() (Token, error) {
	for {
		r, ok := l.peek()
		if !ok {
			return Token{Kind: TokEOF, Line: l.line, Col: l.col}, nil
		}
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.next()
			continue
		}
		if r == '/' {
			l.next()
			r2, ok2 := l.peek()
			if ok2 && r2 == '/' {
				for {
					rr, ok3 := l.next()
					if !ok3 || rr == '\n' {
						break
					}
				}
				continue
			}
			return Token{}, diag.New(diag.SyntaxError, "lexer", "unexpected '/'")
		}
		break
	}

	startLine, startCol := l.line, l.col
	r, _ := l.next()

	switch {
	case isDigit(r):
		var sb strings.Builder
		sb.WriteRune(r)
		for {
			rr, ok := l.peek()
			if !ok || !isDigit(rr) {
				break
			}
			l.next()
			sb.WriteRune(rr)
		}
		var v int32
		for _, c := range sb.String() {
			v = v*10 + int32(c-'0')
		}
		return Token{Kind: TokInt, Lexeme: sb.String(), IntVal: v, Line: startLine, Col: startCol}, nil
	case isIdentStart(r):
		var sb strings.Builder
		sb.WriteRune(r)
		for {
			rr, ok := l.peek()
			if !ok || !isIdentPart(rr) {
				break
			}
			l.next()
			sb.WriteRune(rr)
		}
		text := sb.String()
		if kw, ok := keywords[text]; ok {
			return Token{Kind: kw, Lexeme: text, Line: startLine, Col: startCol}, nil
		}
		return Token{Kind: TokIdent, Lexeme: text, Line: startLine, Col: startCol}, nil
	case r == '+':
		return Token{Kind: TokPlus, Lexeme: "+", Line: startLine, Col: startCol}, nil
	case r == '-':
		return Token{Kind: TokMinus, Lexeme: "-", Line: startLine, Col: startCol}, nil
	case r == '*':
		return Token{Kind: TokStar, Lexeme: "*", Line: startLine, Col: startCol}, nil
	case r == '&':
		return Token{Kind: TokAmp, Lexeme: "&", Line: startLine, Col: startCol}, nil
	case r == '(':
		return Token{Kind: TokLParen, Lexeme: "(", Line: startLine, Col: startCol}, nil
	case r == ')':
		return Token{Kind: TokRParen, Lexeme: ")", Line: startLine, Col: startCol}, nil
	case r == '{':
		return Token{Kind: TokLBrace, Lexeme: "{", Line: startLine, Col: startCol}, nil
	case r == '}':
		return Token{Kind: TokRBrace, Lexeme: "}", Line: startLine, Col: startCol}, nil
	case r == ';':
		return Token{Kind: TokSemi, Lexeme: ";", Line: startLine, Col: startCol}, nil
	case r == ',':
		return Token{Kind: TokComma, Lexeme: ",", Line: startLine, Col: startCol}, nil
	case r == '=':
		if rr, ok := l.peek(); ok && rr == '=' {
			l.next()
			return Token{Kind: TokEqEq, Lexeme: "==", Line: startLine, Col: startCol}, nil
		}
		return Token{Kind: TokEq, Lexeme: "=", Line: startLine, Col: startCol}, nil
	case r == '!':
		if rr, ok := l.peek(); ok && rr == '=' {
			l.next()
			return Token{Kind: TokNotEq, Lexeme: "!=", Line: startLine, Col: startCol}, nil
		}
		return Token{}, diag.New(diag.SyntaxError, "lexer", "unexpected '!'")
	case r == '<':
		return Token{Kind: TokLt, Lexeme: "<", Line: startLine, Col: startCol}, nil
	case r == '>':
		return Token{Kind: TokGt, Lexeme: ">", Line: startLine, Col: startCol}, nil
	}
	return Token{}, diag.New(diag.SyntaxError, "lexer", fmt.Sprintf("unexpected character %q at %d:%d", r, startLine, startCol))
}
