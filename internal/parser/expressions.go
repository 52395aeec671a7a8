package parser

import (
	"github.com/echo-lang/echoc/internal/ast"
	"github.com/echo-lang/echoc/internal/diagnostics"
	"github.com/echo-lang/echoc/internal/token"
)

// parseExpression is the entry point for expression parsing: assignment
// has the lowest precedence, so it sits at the top of the recursive-descent
// chain (spec.md §6's expression grammar).
func (p *Parser) parseExpression() ast.NodeID {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.NodeID {
	left := p.parseLogicalOr()
	if tok, ok := p.match(token.Eq); ok {
		right := p.parseAssignment()
		id := p.arena.New(ast.Assignment, tok.Line, tok.Column)
		p.arena.Get(id).Lexeme = "="
		p.arena.AddChild(id, left)
		p.arena.AddChild(id, right)
		return id
	}
	return left
}

// binaryLevel describes one precedence tier: the token kinds accepted at
// that tier and the next-tighter parse function to call for each operand.
type binaryLevel struct {
	kinds []token.Kind
	next  func(*Parser) ast.NodeID
}

func (p *Parser) parseLogicalOr() ast.NodeID {
	return p.parseLeftAssoc([]token.Kind{token.PipePipe}, (*Parser).parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() ast.NodeID {
	return p.parseLeftAssoc([]token.Kind{token.AmpAmp}, (*Parser).parseEquality)
}

func (p *Parser) parseEquality() ast.NodeID {
	return p.parseLeftAssoc([]token.Kind{token.EqEq, token.BangEq}, (*Parser).parseRelational)
}

func (p *Parser) parseRelational() ast.NodeID {
	return p.parseLeftAssoc([]token.Kind{token.Lt, token.LtEq, token.Gt, token.GtEq}, (*Parser).parseAdditive)
}

func (p *Parser) parseAdditive() ast.NodeID {
	return p.parseLeftAssoc([]token.Kind{token.Plus, token.Minus}, (*Parser).parseMultiplicative)
}

func (p *Parser) parseMultiplicative() ast.NodeID {
	return p.parseLeftAssoc([]token.Kind{token.Star, token.Slash, token.Percent}, (*Parser).parseUnary)
}

func (p *Parser) parseLeftAssoc(kinds []token.Kind, next func(*Parser) ast.NodeID) ast.NodeID {
	left := next(p)
	for {
		tok := p.peek()
		matched := false
		for _, k := range kinds {
			if tok.Kind == k {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		p.advance()
		right := next(p)
		id := p.arena.New(ast.BinaryOp, tok.Line, tok.Column)
		p.arena.Get(id).Lexeme = tok.Lexeme
		p.arena.AddChild(id, left)
		p.arena.AddChild(id, right)
		left = id
	}
}

func (p *Parser) parseUnary() ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Minus, token.Bang:
		p.advance()
		operand := p.parseUnary()
		id := p.arena.New(ast.UnaryOp, tok.Line, tok.Column)
		p.arena.Get(id).Lexeme = tok.Lexeme
		p.arena.AddChild(id, operand)
		return id
	case token.Star:
		p.advance()
		operand := p.parseUnary()
		id := p.arena.New(ast.PointerDeref, tok.Line, tok.Column)
		p.arena.AddChild(id, operand)
		return id
	case token.Amp:
		p.advance()
		operand := p.parseUnary()
		id := p.arena.New(ast.AddressOf, tok.Line, tok.Column)
		p.arena.AddChild(id, operand)
		return id
	case token.KeywordAlloc:
		return p.parseAlloc()
	case token.KeywordDelete:
		return p.parseDelete()
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseAlloc() ast.NodeID {
	start := p.advance() // 'alloc'
	typeNode := p.parseTypeNode()
	id := p.arena.New(ast.Alloc, start.Line, start.Column)
	p.arena.AddChild(id, typeNode)
	if _, ok := p.match(token.LParen); ok {
		if !p.check(token.RParen) {
			init := p.parseExpression()
			p.arena.AddChild(id, init)
		}
		p.expect(token.RParen, "alloc initializer")
	}
	return id
}

func (p *Parser) parseDelete() ast.NodeID {
	start := p.advance() // 'delete'
	operand := p.parseUnary()
	id := p.arena.New(ast.Delete, start.Line, start.Column)
	p.arena.AddChild(id, operand)
	return id
}

// parsePostfix handles the left-recursive postfix forms: a(...), a[i],
// a.b, a->b, and a::b chains, applied in sequence to a primary expression.
func (p *Parser) parsePostfix() ast.NodeID {
	expr := p.parsePrimary()
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.LParen:
			expr = p.parseCall(expr)
		case token.LBracket:
			p.advance()
			index := p.parseExpression()
			p.expect(token.RBracket, "array access")
			id := p.arena.New(ast.ArrayAccess, tok.Line, tok.Column)
			p.arena.AddChild(id, expr)
			p.arena.AddChild(id, index)
			expr = id
		case token.Dot, token.Arrow:
			p.advance()
			field := p.expect(token.Identifier, "member access")
			fieldID := p.arena.New(ast.Identifier, field.Line, field.Column)
			p.arena.Get(fieldID).Lexeme = field.Lexeme
			id := p.arena.New(ast.MemberAccess, tok.Line, tok.Column)
			p.arena.Get(id).Lexeme = tok.Lexeme
			p.arena.AddChild(id, expr)
			p.arena.AddChild(id, fieldID)
			expr = id
		case token.ColonColon:
			p.advance()
			right := p.expect(token.Identifier, "scope resolution")
			rightID := p.arena.New(ast.Identifier, right.Line, right.Column)
			p.arena.Get(rightID).Lexeme = right.Lexeme
			id := p.arena.New(ast.ScopeResolution, tok.Line, tok.Column)
			p.arena.Get(id).Lexeme = "::"
			p.arena.AddChild(id, expr)
			p.arena.AddChild(id, rightID)
			expr = id
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(callee ast.NodeID) ast.NodeID {
	open := p.advance() // '('
	id := p.arena.New(ast.Call, open.Line, open.Column)
	p.arena.AddChild(id, callee)
	for !p.check(token.RParen) && !p.check(token.EOF) {
		arg := p.parseExpression()
		p.arena.AddChild(id, arg)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, "call arguments")
	return id
}

func (p *Parser) parsePrimary() ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.IntegerLiteral, token.FloatLiteral, token.StringLiteral,
		token.CharLiteral, token.KeywordTrue, token.KeywordFalse, token.KeywordNull:
		p.advance()
		id := p.arena.New(ast.Literal, tok.Line, tok.Column)
		p.arena.Get(id).Lexeme = tok.Lexeme
		p.arena.Get(id).Type = ast.TypeAnnotation{Present: true, Name: literalTypeName(tok)}
		return id
	case token.Identifier:
		return p.parseIdentifierOrStructLiteral()
	case token.LParen:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RParen, "parenthesized expression")
		return expr
	case token.LBrace:
		return p.parseStructLiteral("")
	default:
		p.diags.Errorf(diagnostics.ParseError, tok.Line, tok.Column,
			"unexpected token %q in expression", tok.Lexeme)
		p.advance()
		id := p.arena.New(ast.Literal, tok.Line, tok.Column)
		return id
	}
}

// literalTypeName tags a literal at parse time with the type its token kind
// pins (integer, float, string, char, bool, and "null" for the null
// keyword). With the tag present, spec.md §4.6's expression-type oracle
// returns it and does not fall back to lexical shape.
func literalTypeName(tok token.Token) string {
	switch tok.Kind {
	case token.IntegerLiteral:
		return "i32"
	case token.FloatLiteral:
		return "f64"
	case token.StringLiteral:
		return "string"
	case token.CharLiteral:
		return "char"
	case token.KeywordTrue, token.KeywordFalse:
		return "bool"
	case token.KeywordNull:
		return "null"
	default:
		return ""
	}
}

// parseIdentifierOrStructLiteral parses a plain identifier, or, when an
// identifier is immediately followed by '{', a named struct literal
// `Type{...}` (spec.md §6).
func (p *Parser) parseIdentifierOrStructLiteral() ast.NodeID {
	tok := p.advance()
	if p.check(token.LBrace) {
		return p.parseStructLiteral(tok.Lexeme)
	}
	id := p.arena.New(ast.Identifier, tok.Line, tok.Column)
	p.arena.Get(id).Lexeme = tok.Lexeme
	return id
}

// parseStructLiteral parses `{field: value, ...}` or, when typeName is
// non-empty, `Type{field: value, ...}` into a StructLiteral node whose
// children are Assignment(":") field-initializers (spec.md §3/§6).
func (p *Parser) parseStructLiteral(typeName string) ast.NodeID {
	open := p.expect(token.LBrace, "struct literal")
	id := p.arena.New(ast.StructLiteral, open.Line, open.Column)
	p.arena.Get(id).Lexeme = typeName

	for !p.check(token.RBrace) && !p.check(token.EOF) {
		fieldTok := p.expect(token.Identifier, "struct literal field")
		fieldID := p.arena.New(ast.Identifier, fieldTok.Line, fieldTok.Column)
		p.arena.Get(fieldID).Lexeme = fieldTok.Lexeme

		colon := p.expect(token.Colon, "struct literal field")
		value := p.parseExpression()

		assign := p.arena.New(ast.Assignment, colon.Line, colon.Column)
		p.arena.Get(assign).Lexeme = ":"
		p.arena.AddChild(assign, fieldID)
		p.arena.AddChild(assign, value)
		p.arena.AddChild(id, assign)

		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "struct literal")
	return id
}
