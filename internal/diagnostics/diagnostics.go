// Package diagnostics defines the structured diagnostic record every stage
// of the pipeline (lexer, parser, semantic analyzer, monomorphizer,
// emitter) reports through, per spec.md §7. Diagnostics are plain data —
// deliberately not wrapped in the Go error chain — since a single
// compilation run accumulates many of them and the driver prints all of
// them in emission order at the end, rather than stopping at the first one
// (spec.md §7, "Propagation policy").
package diagnostics

import "fmt"

// Severity classifies a diagnostic's impact on the build.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Kind is the diagnostic taxonomy from spec.md §7 — a closed set of
// categories, not Go types, so callers can switch on Kind without type
// assertions.
type Kind int

const (
	TypeMismatch Kind = iota
	IncompatibleTypes
	InvalidOperation
	InvalidCast
	UndefinedField
	UndefinedType
	InvalidAutoUsage

	UndefinedSymbol
	RedefinedSymbol
	OutOfScope

	UndefinedFunction
	WrongArgumentCount
	WrongArgumentType
	MissingReturn
	UnreachableCode

	DoubleFree
	MemoryLeak
	NullDereference
	UninitializedVariable

	InvalidBreak
	InvalidContinue
	DeadCode

	FileIO
	ParseError
)

var kindNames = map[Kind]string{
	TypeMismatch:          "type mismatch",
	IncompatibleTypes:     "incompatible types",
	InvalidOperation:      "invalid operation",
	InvalidCast:           "invalid cast",
	UndefinedField:        "undefined field",
	UndefinedType:         "undefined type",
	InvalidAutoUsage:      "invalid auto usage",
	UndefinedSymbol:       "undefined symbol",
	RedefinedSymbol:       "redefined symbol",
	OutOfScope:            "out of scope",
	UndefinedFunction:     "undefined function",
	WrongArgumentCount:    "wrong argument count",
	WrongArgumentType:     "wrong argument type",
	MissingReturn:         "missing return",
	UnreachableCode:       "unreachable code",
	DoubleFree:            "double free",
	MemoryLeak:            "memory leak",
	NullDereference:       "null dereference",
	UninitializedVariable: "uninitialized variable",
	InvalidBreak:          "invalid break",
	InvalidContinue:       "invalid continue",
	DeadCode:              "dead code",
	FileIO:                "file I/O",
	ParseError:            "parse error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// fatalKinds lists the kinds that make an Error-severity diagnostic fatal,
// as reported by Add and IsFatal. Nothing stops on that report: the
// semantic analyzer ignores Add's result and keeps analyzing the current
// top-level declaration.
var fatalKinds = map[Kind]bool{
	TypeMismatch:    true,
	UndefinedSymbol: true,
	RedefinedSymbol: true,
}

// Diagnostic is one reported finding: its kind, severity, source position,
// file name, and formatted message.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Line     int
	Column   int
	File     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// IsFatal reports whether d should short-circuit the current top-level
// declaration's analysis.
func (d Diagnostic) IsFatal() bool {
	return d.Severity == Error && fatalKinds[d.Kind]
}

// Bag accumulates diagnostics across a compilation in emission order and
// tracks the running error count, matching the teacher's pattern of a
// single mutable context threaded through the analyzer (pkg/analyzer)
// rather than propagating diagnostics through return values.
type Bag struct {
	File  string
	items []Diagnostic
	errs  int
	warns int
}

// NewBag returns an empty diagnostic bag for the named source file.
func NewBag(file string) *Bag {
	return &Bag{File: file}
}

// Add records a diagnostic and returns whether it is fatal (so callers can
// short-circuit immediately), per spec.md §7.
func (b *Bag) Add(kind Kind, severity Severity, line, column int, format string, args ...any) bool {
	d := Diagnostic{
		Kind:     kind,
		Severity: severity,
		Line:     line,
		Column:   column,
		File:     b.File,
		Message:  fmt.Sprintf(format, args...),
	}
	b.items = append(b.items, d)
	switch severity {
	case Error:
		b.errs++
	case Warning:
		b.warns++
	}
	return d.IsFatal()
}

// Errorf is shorthand for Add with Error severity.
func (b *Bag) Errorf(kind Kind, line, column int, format string, args ...any) bool {
	return b.Add(kind, Error, line, column, format, args...)
}

// Warnf is shorthand for Add with Warning severity.
func (b *Bag) Warnf(kind Kind, line, column int, format string, args ...any) bool {
	return b.Add(kind, Warning, line, column, format, args...)
}

// Items returns every diagnostic recorded so far, in emission order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// ErrorCount returns the number of Error-severity diagnostics recorded.
func (b *Bag) ErrorCount() int {
	return b.errs
}

// WarningCount returns the number of Warning-severity diagnostics recorded.
func (b *Bag) WarningCount() int {
	return b.warns
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	return b.errs > 0
}
