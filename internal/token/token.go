// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser. Neither the lexer nor the parser is part of the
// compiler's core (see the semantic-analysis packages for that); they are
// the minimal external collaborators the core depends on.
package token

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Illegal Kind = iota
	EOF

	Identifier
	IntegerLiteral
	FloatLiteral
	StringLiteral
	CharLiteral

	// Keywords
	KeywordFn
	KeywordStruct
	KeywordEnum
	KeywordReturn
	KeywordIf
	KeywordElse
	KeywordWhile
	KeywordFor
	KeywordAuto
	KeywordAlloc
	KeywordDelete
	KeywordTrue
	KeywordFalse
	KeywordNull
	KeywordAs

	// Type keywords
	KeywordI8
	KeywordI16
	KeywordI32
	KeywordI64
	KeywordF32
	KeywordF64
	KeywordBool
	KeywordString
	KeywordChar
	KeywordVoid

	// Punctuation / operators
	Plus
	Minus
	Star
	Slash
	Percent
	Eq
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	AmpAmp
	PipePipe
	Bang
	Amp
	Arrow     // ->
	Dot       // .
	ColonColon // ::
	Colon
	Question
	LBracket
	RBracket
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Semicolon

	Preprocessor // raw "#include ..." line, split downstream by the parser
)

var keywords = map[string]Kind{
	"fn":     KeywordFn,
	"struct": KeywordStruct,
	"enum":   KeywordEnum,
	"return": KeywordReturn,
	"if":     KeywordIf,
	"else":   KeywordElse,
	"while":  KeywordWhile,
	"for":    KeywordFor,
	"auto":   KeywordAuto,
	"alloc":  KeywordAlloc,
	"delete": KeywordDelete,
	"true":   KeywordTrue,
	"false":  KeywordFalse,
	"null":   KeywordNull,
	"as":     KeywordAs,
	"i8":     KeywordI8,
	"i16":    KeywordI16,
	"i32":    KeywordI32,
	"i64":    KeywordI64,
	"f32":    KeywordF32,
	"f64":    KeywordF64,
	"bool":   KeywordBool,
	"string": KeywordString,
	"char":   KeywordChar,
	"void":   KeywordVoid,
}

// LookupIdentifier returns the keyword Kind for text, or Identifier if text
// is not a reserved word.
func LookupIdentifier(text string) Kind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return Identifier
}

// IsTypeKeyword reports whether kind names a builtin type.
func IsTypeKeyword(kind Kind) bool {
	switch kind {
	case KeywordI8, KeywordI16, KeywordI32, KeywordI64,
		KeywordF32, KeywordF64, KeywordBool, KeywordString,
		KeywordChar, KeywordVoid:
		return true
	}
	return false
}

// Token is a single lexical unit: a kind, its source text, and its start
// position. The lexer yields these one at a time with one-token lookahead.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	return t.Lexeme
}
