// Package lexer scans UTF-8 source bytes into a token stream. It is one of
// the external collaborators spec.md §1 calls out: the core only ever sees
// the Token values this package yields, never the source bytes directly.
// It is grounded on original_source/src/lexer/lexer.c's token kind set and
// keyword/operator tables, translated into a hand-written Go scanner (no
// tree-sitter grammar is involved — see DESIGN.md for why the teacher's
// tree-sitter dependency was dropped).
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/echo-lang/echoc/internal/token"
)

// Lexer scans a byte buffer into tokens with one-token lookahead: callers
// call Next to consume the current token and advance, or Peek to look at
// it without consuming.
type Lexer struct {
	src    []byte
	pos    int
	line   int
	column int

	current token.Token
	primed  bool
}

// New returns a Lexer over src, positioned before the first token.
func New(src []byte) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1, column: 1}
}

// Peek returns the current token without consuming it.
func (l *Lexer) Peek() token.Token {
	if !l.primed {
		l.current = l.scan()
		l.primed = true
	}
	return l.current
}

// Next returns the current token and advances past it.
func (l *Lexer) Next() token.Token {
	tok := l.Peek()
	l.primed = false
	return tok
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return b
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.peekByteAt(1) == '/':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case b == '/' && l.peekByteAt(1) == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scan() token.Token {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Line: l.line, Column: l.column}
	}

	startLine, startCol := l.line, l.column
	b := l.peekByte()

	switch {
	case b == '#':
		return l.scanPreprocessor(startLine, startCol)
	case isIdentStart(b):
		return l.scanIdentifier(startLine, startCol)
	case isDigit(b):
		return l.scanNumber(startLine, startCol)
	case b == '"':
		return l.scanString(startLine, startCol)
	case b == '\'':
		return l.scanChar(startLine, startCol)
	default:
		return l.scanOperator(startLine, startCol)
	}
}

func (l *Lexer) scanPreprocessor(line, col int) token.Token {
	start := l.pos
	for l.pos < len(l.src) && l.peekByte() != '\n' {
		l.advance()
	}
	text := strings.TrimSpace(string(l.src[start:l.pos]))
	return token.Token{Kind: token.Preprocessor, Lexeme: text, Line: line, Column: col}
}

func (l *Lexer) scanIdentifier(line, col int) token.Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentContinue(l.peekByte()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	return token.Token{Kind: token.LookupIdentifier(text), Lexeme: text, Line: line, Column: col}
}

func (l *Lexer) scanNumber(line, col int) token.Token {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) && isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for l.pos < len(l.src) && isDigit(l.peekByte()) {
			l.advance()
		}
	}
	text := string(l.src[start:l.pos])
	kind := token.IntegerLiteral
	if isFloat {
		kind = token.FloatLiteral
	}
	return token.Token{Kind: kind, Lexeme: text, Line: line, Column: col}
}

func (l *Lexer) scanString(line, col int) token.Token {
	l.advance() // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) && l.peekByte() != '"' {
		b := l.advance()
		if b == '\\' && l.pos < len(l.src) {
			sb.WriteByte(unescape(l.advance()))
			continue
		}
		sb.WriteByte(b)
	}
	if l.pos < len(l.src) {
		l.advance() // closing quote
	}
	return token.Token{Kind: token.StringLiteral, Lexeme: sb.String(), Line: line, Column: col}
}

func (l *Lexer) scanChar(line, col int) token.Token {
	l.advance() // opening quote
	var value byte
	if l.peekByte() == '\\' {
		l.advance()
		value = unescape(l.advance())
	} else if l.pos < len(l.src) {
		value = l.advance()
	}
	if l.peekByte() == '\'' {
		l.advance()
	}
	return token.Token{Kind: token.CharLiteral, Lexeme: string(value), Line: line, Column: col}
}

func unescape(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return b
	}
}

func (l *Lexer) scanOperator(line, col int) token.Token {
	b := l.advance()
	two := func(next byte, kind token.Kind, single token.Kind) token.Token {
		if l.peekByte() == next {
			l.advance()
			return token.Token{Kind: kind, Lexeme: string(b) + string(next), Line: line, Column: col}
		}
		return token.Token{Kind: single, Lexeme: string(b), Line: line, Column: col}
	}

	switch b {
	case '+':
		return token.Token{Kind: token.Plus, Lexeme: "+", Line: line, Column: col}
	case '-':
		if l.peekByte() == '>' {
			l.advance()
			return token.Token{Kind: token.Arrow, Lexeme: "->", Line: line, Column: col}
		}
		return token.Token{Kind: token.Minus, Lexeme: "-", Line: line, Column: col}
	case '*':
		return token.Token{Kind: token.Star, Lexeme: "*", Line: line, Column: col}
	case '/':
		return token.Token{Kind: token.Slash, Lexeme: "/", Line: line, Column: col}
	case '%':
		return token.Token{Kind: token.Percent, Lexeme: "%", Line: line, Column: col}
	case '=':
		return two('=', token.EqEq, token.Eq)
	case '!':
		return two('=', token.BangEq, token.Bang)
	case '<':
		return two('=', token.LtEq, token.Lt)
	case '>':
		return two('=', token.GtEq, token.Gt)
	case '&':
		return two('&', token.AmpAmp, token.Amp)
	case '|':
		return two('|', token.PipePipe, token.Illegal)
	case '.':
		return token.Token{Kind: token.Dot, Lexeme: ".", Line: line, Column: col}
	case ':':
		return two(':', token.ColonColon, token.Colon)
	case '?':
		return token.Token{Kind: token.Question, Lexeme: "?", Line: line, Column: col}
	case '[':
		return token.Token{Kind: token.LBracket, Lexeme: "[", Line: line, Column: col}
	case ']':
		return token.Token{Kind: token.RBracket, Lexeme: "]", Line: line, Column: col}
	case '(':
		return token.Token{Kind: token.LParen, Lexeme: "(", Line: line, Column: col}
	case ')':
		return token.Token{Kind: token.RParen, Lexeme: ")", Line: line, Column: col}
	case '{':
		return token.Token{Kind: token.LBrace, Lexeme: "{", Line: line, Column: col}
	case '}':
		return token.Token{Kind: token.RBrace, Lexeme: "}", Line: line, Column: col}
	case ',':
		return token.Token{Kind: token.Comma, Lexeme: ",", Line: line, Column: col}
	case ';':
		return token.Token{Kind: token.Semicolon, Lexeme: ";", Line: line, Column: col}
	default:
		return token.Token{Kind: token.Illegal, Lexeme: string(b), Line: line, Column: col}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= utf8.RuneSelf
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
