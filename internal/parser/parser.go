// Package parser consumes a token stream and produces an untyped AST,
// recovering from errors at statement boundaries via panic mode. It is an
// external collaborator per spec.md §1: the semantic analyzer never sees
// tokens, only the ast.Node tree this package builds. Grounded on
// original_source/src/parser/parser_constructs.c and
// parser_expressions.c's recursive-descent structure and synchronization
// points, rewritten as idiomatic Go recursive descent.
package parser

import (
	"github.com/echo-lang/echoc/internal/ast"
	"github.com/echo-lang/echoc/internal/diagnostics"
	"github.com/echo-lang/echoc/internal/lexer"
	"github.com/echo-lang/echoc/internal/token"
)

// Parser holds the lexer, a small lookahead buffer, the arena being built,
// and the diagnostic bag parse errors are recorded into. The buffer gives
// the parser two tokens of lookahead (the lexer itself offers only one),
// which the grammar needs to tell a user-defined-type variable declaration
// (`Point p = ...;`) apart from an expression statement starting with an
// identifier.
type Parser struct {
	lex    *lexer.Lexer
	buffer []token.Token
	arena  *ast.Arena
	diags  *diagnostics.Bag
}

// Parse lexes and parses src (named file for diagnostics) and returns the
// populated arena, the Program node's id, and the diagnostic bag.
// Following spec.md §8's boundary behavior, an empty source file parses
// successfully to an empty Program.
func Parse(file string, src []byte) (*ast.Arena, ast.NodeID, *diagnostics.Bag) {
	p := &Parser{
		lex:   lexer.New(src),
		arena: ast.NewArena(),
		diags: diagnostics.NewBag(file),
	}
	program := p.arena.New(ast.Program, 1, 1)
	for p.peek().Kind != token.EOF {
		before := p.peek()
		stmt := p.parseTopLevel()
		if stmt != ast.InvalidNode {
			p.arena.AddChild(program, stmt)
		}
		if p.peek() == before && p.peek().Kind != token.EOF {
			p.synchronize()
		}
	}
	return p.arena, program, p.diags
}

// fill ensures the lookahead buffer holds at least n+1 tokens.
func (p *Parser) fill(n int) {
	for len(p.buffer) <= n {
		p.buffer = append(p.buffer, p.lex.Next())
	}
}

func (p *Parser) peek() token.Token { return p.peekAt(0) }

func (p *Parser) peekAt(n int) token.Token {
	p.fill(n)
	return p.buffer[n]
}

func (p *Parser) advance() token.Token {
	p.fill(0)
	tok := p.buffer[0]
	p.buffer = p.buffer[1:]
	return tok
}

func (p *Parser) check(kind token.Kind) bool { return p.peek().Kind == kind }

func (p *Parser) match(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(kind token.Kind, context string) token.Token {
	if tok, ok := p.match(kind); ok {
		return tok
	}
	tok := p.peek()
	p.diags.Errorf(diagnostics.ParseError, tok.Line, tok.Column,
		"expected token in %s, found %q", context, tok.Lexeme)
	return tok
}

// synchronize implements panic-mode recovery: skip tokens until the next
// statement boundary (';' consumed, or '}'/EOF left for the caller),
// mirroring original_source's statement-level synchronization points.
func (p *Parser) synchronize() {
	for {
		tok := p.peek()
		if tok.Kind == token.EOF || tok.Kind == token.RBrace {
			return
		}
		if tok.Kind == token.Semicolon {
			p.advance()
			return
		}
		p.advance()
	}
}

// parseTopLevel parses one of: a preprocessor include, a struct/enum
// declaration, or a function definition, per spec.md §6.
func (p *Parser) parseTopLevel() ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Preprocessor:
		return p.parsePreprocessor()
	case token.KeywordStruct:
		return p.parseStruct()
	case token.KeywordEnum:
		return p.parseEnum()
	case token.KeywordFn:
		return p.parseFunction()
	default:
		p.diags.Errorf(diagnostics.ParseError, tok.Line, tok.Column,
			"unexpected token %q at top level", tok.Lexeme)
		p.synchronize()
		return ast.InvalidNode
	}
}

func (p *Parser) parsePreprocessor() ast.NodeID {
	tok := p.advance()
	id := p.arena.New(ast.Preprocessor, tok.Line, tok.Column)
	p.arena.Get(id).Lexeme = tok.Lexeme
	return id
}

// parseStruct parses `struct Name { <type> <name>, ... }` into a Struct
// node whose children are VariableDecl nodes, one per field (spec.md §6).
func (p *Parser) parseStruct() ast.NodeID {
	start := p.advance() // 'struct'
	name := p.expect(token.Identifier, "struct declaration")
	id := p.arena.New(ast.Struct, start.Line, start.Column)
	p.arena.Get(id).Lexeme = name.Lexeme

	p.expect(token.LBrace, "struct body")
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		field := p.parseFieldDecl()
		if field != ast.InvalidNode {
			p.arena.AddChild(id, field)
		}
		p.match(token.Comma)
		p.match(token.Semicolon)
	}
	p.expect(token.RBrace, "struct body")
	return id
}

// parseFieldDecl parses `<type> <name>` as a VariableDecl with no
// initializer (struct fields never have default-value expressions in this
// grammar).
func (p *Parser) parseFieldDecl() ast.NodeID {
	typ := p.parseTypeNode()
	name := p.expect(token.Identifier, "struct field")
	id := p.arena.New(ast.VariableDecl, name.Line, name.Column)
	p.arena.Get(id).Lexeme = name.Lexeme
	p.arena.AddChild(id, typ)
	return id
}

// parseEnum parses `enum Name { A, B, C }` into an Enum node whose
// children are Identifier nodes for each variant.
func (p *Parser) parseEnum() ast.NodeID {
	start := p.advance() // 'enum'
	name := p.expect(token.Identifier, "enum declaration")
	id := p.arena.New(ast.Enum, start.Line, start.Column)
	p.arena.Get(id).Lexeme = name.Lexeme

	p.expect(token.LBrace, "enum body")
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		variant := p.expect(token.Identifier, "enum variant")
		variantID := p.arena.New(ast.Identifier, variant.Line, variant.Column)
		p.arena.Get(variantID).Lexeme = variant.Lexeme
		p.arena.AddChild(id, variantID)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "enum body")
	return id
}

// parseTypeNode parses a type reference: a keyword or identifier, optionally
// followed by *, ?, or [] (spec.md §6). Returns a Type node whose own type
// annotation fully describes the parsed type.
func (p *Parser) parseTypeNode() ast.NodeID {
	tok := p.advance()
	var name string
	switch {
	case token.IsTypeKeyword(tok.Kind):
		name = tok.Lexeme
	case tok.Kind == token.KeywordAuto:
		id := p.arena.New(ast.AutoType, tok.Line, tok.Column)
		p.arena.Get(id).Type = ast.TypeAnnotation{Present: true, Name: "auto"}
		return id
	case tok.Kind == token.Identifier:
		name = tok.Lexeme
	default:
		p.diags.Errorf(diagnostics.ParseError, tok.Line, tok.Column,
			"expected a type, found %q", tok.Lexeme)
		name = tok.Lexeme
	}

	id := p.arena.New(ast.Type, tok.Line, tok.Column)
	p.arena.Get(id).Lexeme = name
	ann := ast.TypeAnnotation{Present: true, Name: name}
	switch p.peek().Kind {
	case token.Star:
		p.advance()
		ann.Pointer = true
	case token.Question:
		p.advance()
		ann.Optional = true
	case token.LBracket:
		p.advance()
		p.expect(token.RBracket, "array type")
		ann.Array = true
	}
	p.arena.Get(id).Type = ann
	return id
}

// parseFunction parses `fn name(<params>) [-> type] { body }`, detecting
// whether any parameter or the return type uses `auto` to decide between
// Function and GenericFunction, per spec.md §3/§6.
func (p *Parser) parseFunction() ast.NodeID {
	start := p.advance() // 'fn'
	name := p.expect(token.Identifier, "function declaration")

	paramsList, placeholders := p.parseParameterList()

	var returnType ast.NodeID = ast.InvalidNode
	isAutoReturn := false
	if _, ok := p.match(token.Arrow); ok {
		returnType = p.parseTypeNode()
		if p.arena.Get(returnType).Kind == ast.AutoType {
			isAutoReturn = true
		}
	}

	isGeneric := len(placeholders) > 0 || isAutoReturn
	kind := ast.Function
	if isGeneric {
		kind = ast.GenericFunction
	}

	id := p.arena.New(kind, start.Line, start.Column)
	p.arena.Get(id).Lexeme = name.Lexeme
	p.arena.AddChild(id, paramsList)
	if isGeneric {
		typeParamList := p.arena.New(ast.TypeParameter, start.Line, start.Column)
		for _, ph := range placeholders {
			child := p.arena.New(ast.TypeParameter, start.Line, start.Column)
			p.arena.Get(child).Lexeme = ph
			p.arena.AddChild(typeParamList, child)
		}
		p.arena.AddChild(id, typeParamList)
		p.arena.Get(id).Generics.IsGeneric = true
		p.arena.Get(id).Generics.Placeholders = placeholders
		p.arena.Get(id).Generics.IsAuto = isAutoReturn
	}
	if returnType != ast.InvalidNode {
		p.arena.AddChild(id, returnType)
	}

	body := p.parseBlock()
	p.arena.AddChild(id, body)
	return id
}

// parseParameterList parses `(<type> <name>, ...)` and returns the
// Parameter-list node plus the ordered list of distinct placeholder type
// names (parameters typed `auto`) so the caller can tell a generic
// function apart from a concrete one.
func (p *Parser) parseParameterList() (ast.NodeID, []string) {
	open := p.expect(token.LParen, "parameter list")
	list := p.arena.New(ast.Parameter, open.Line, open.Column)
	// the list node itself is a container; Kind Parameter is reused loosely
	// as "Parameter-list" per the child-ordering contract's naming — its
	// own Lexeme stays empty to distinguish it from an actual parameter.
	var placeholders []string
	seen := map[string]bool{}

	for !p.check(token.RParen) && !p.check(token.EOF) {
		typeNode := p.parseTypeNode()
		name := p.expect(token.Identifier, "parameter")
		param := p.arena.New(ast.Parameter, name.Line, name.Column)
		p.arena.Get(param).Lexeme = name.Lexeme
		p.arena.AddChild(param, typeNode)
		p.arena.AddChild(list, param)

		if p.arena.Get(typeNode).Kind == ast.AutoType {
			if !seen[name.Lexeme] {
				placeholders = append(placeholders, name.Lexeme)
				seen[name.Lexeme] = true
			}
		}

		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, "parameter list")
	return list, placeholders
}

// parseBlock parses `{ stmt... }`.
func (p *Parser) parseBlock() ast.NodeID {
	open := p.expect(token.LBrace, "block")
	id := p.arena.New(ast.Block, open.Line, open.Column)
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		before := p.peek()
		stmt := p.parseStatement()
		if stmt != ast.InvalidNode {
			p.arena.AddChild(id, stmt)
		}
		// Guarantee forward progress: if a malformed statement left the
		// cursor exactly where it started, force panic-mode recovery so a
		// run of unrecognized tokens cannot stall the block loop forever.
		if p.peek() == before && !p.check(token.RBrace) && !p.check(token.EOF) {
			p.synchronize()
		}
	}
	p.expect(token.RBrace, "block")
	return id
}

func (p *Parser) parseStatement() ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KeywordReturn:
		return p.parseReturn()
	case token.KeywordIf:
		return p.parseIf()
	case token.KeywordWhile:
		return p.parseWhile()
	case token.KeywordFor:
		return p.parseFor()
	case token.KeywordAuto, token.KeywordI8, token.KeywordI16, token.KeywordI32,
		token.KeywordI64, token.KeywordF32, token.KeywordF64, token.KeywordBool,
		token.KeywordString, token.KeywordChar, token.KeywordVoid:
		return p.parseVariableDecl()
	case token.Identifier:
		if p.looksLikeVariableDecl() {
			return p.parseVariableDecl()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// looksLikeVariableDecl disambiguates `TypeName identifier = ...;` (a
// user-defined-type variable declaration, e.g. `Point p = {...};`) from an
// expression statement starting with an identifier, using the second
// lookahead token: a declaration's leading identifier is always followed
// by another identifier (the variable name), while any other use of a
// leading identifier (a call, a member access, a bare reference, an
// assignment target) is followed by something else.
func (p *Parser) looksLikeVariableDecl() bool {
	return p.peekAt(1).Kind == token.Identifier
}

func (p *Parser) parseVariableDecl() ast.NodeID {
	typeNode := p.parseTypeNode()
	name := p.expect(token.Identifier, "variable declaration")
	id := p.arena.New(ast.VariableDecl, name.Line, name.Column)
	p.arena.Get(id).Lexeme = name.Lexeme
	p.arena.AddChild(id, typeNode)

	if _, ok := p.match(token.Eq); ok {
		init := p.parseExpression()
		p.arena.AddChild(id, init)
	} else if p.arena.Get(typeNode).Kind == ast.AutoType {
		tok := p.peek()
		p.diags.Errorf(diagnostics.InvalidAutoUsage, tok.Line, tok.Column,
			"auto variable must have an initializer")
	}
	p.expect(token.Semicolon, "variable declaration")
	return id
}

func (p *Parser) parseReturn() ast.NodeID {
	start := p.advance() // 'return'
	id := p.arena.New(ast.Return, start.Line, start.Column)
	if !p.check(token.Semicolon) {
		expr := p.parseExpression()
		p.arena.AddChild(id, expr)
	}
	p.expect(token.Semicolon, "return statement")
	return id
}

func (p *Parser) parseIf() ast.NodeID {
	start := p.advance() // 'if'
	id := p.arena.New(ast.If, start.Line, start.Column)
	p.expect(token.LParen, "if condition")
	cond := p.parseExpression()
	p.expect(token.RParen, "if condition")
	p.arena.AddChild(id, cond)
	thenStmt := p.parseStatement()
	p.arena.AddChild(id, thenStmt)
	if _, ok := p.match(token.KeywordElse); ok {
		elseStmt := p.parseStatement()
		p.arena.AddChild(id, elseStmt)
	}
	return id
}

func (p *Parser) parseWhile() ast.NodeID {
	start := p.advance() // 'while'
	id := p.arena.New(ast.While, start.Line, start.Column)
	p.expect(token.LParen, "while condition")
	cond := p.parseExpression()
	p.expect(token.RParen, "while condition")
	p.arena.AddChild(id, cond)
	body := p.parseStatement()
	p.arena.AddChild(id, body)
	return id
}

// emptySlot returns a zero-child placeholder node so positional For-loop
// slots remain meaningful when an internal clause is omitted, per spec.md
// §3.
func (p *Parser) emptySlot(line, col int) ast.NodeID {
	return p.arena.New(ast.ExpressionStmt, line, col)
}

func (p *Parser) parseFor() ast.NodeID {
	start := p.advance() // 'for'
	id := p.arena.New(ast.For, start.Line, start.Column)
	p.expect(token.LParen, "for clauses")

	if p.check(token.Semicolon) {
		p.arena.AddChild(id, p.emptySlot(p.peek().Line, p.peek().Column))
	} else {
		p.arena.AddChild(id, p.parseForInit())
	}
	p.expect(token.Semicolon, "for clauses")

	if p.check(token.Semicolon) {
		p.arena.AddChild(id, p.emptySlot(p.peek().Line, p.peek().Column))
	} else {
		p.arena.AddChild(id, p.parseExpression())
	}
	p.expect(token.Semicolon, "for clauses")

	if p.check(token.RParen) {
		p.arena.AddChild(id, p.emptySlot(p.peek().Line, p.peek().Column))
	} else {
		p.arena.AddChild(id, p.parseExpression())
	}
	p.expect(token.RParen, "for clauses")

	body := p.parseStatement()
	p.arena.AddChild(id, body)
	return id
}

// parseForInit parses the for-loop's init clause, which may be a variable
// declaration (without its own trailing semicolon consumption quirk since
// the caller consumes it) or a plain expression.
func (p *Parser) parseForInit() ast.NodeID {
	tok := p.peek()
	if tok.Kind == token.KeywordAuto || token.IsTypeKeyword(tok.Kind) {
		typeNode := p.parseTypeNode()
		name := p.expect(token.Identifier, "for-loop variable declaration")
		id := p.arena.New(ast.VariableDecl, name.Line, name.Column)
		p.arena.Get(id).Lexeme = name.Lexeme
		p.arena.AddChild(id, typeNode)
		if _, ok := p.match(token.Eq); ok {
			init := p.parseExpression()
			p.arena.AddChild(id, init)
		}
		return id
	}
	return p.parseExpression()
}

func (p *Parser) parseExpressionStatement() ast.NodeID {
	tok := p.peek()
	expr := p.parseExpression()
	id := p.arena.New(ast.ExpressionStmt, tok.Line, tok.Column)
	p.arena.AddChild(id, expr)
	p.expect(token.Semicolon, "expression statement")
	return id
}
