// Package symbols implements the scope-aware symbol table spec.md §4.1
// describes: a stack of lexical scopes supporting shadowing and
// function-scope boundaries, redefinition detection, and used-marking on
// lookup. Grounded on the teacher's pkg/symbols/table.go (Scope with a
// parent link and a name->symbol map) generalized so symbols point at
// ast.NodeID handles instead of embedding AST pointers directly, per the
// ownership strategy in spec.md §9.
package symbols

import (
	"fmt"

	"github.com/echo-lang/echoc/internal/ast"
)

// Kind classifies what a Symbol names.
type Kind int

const (
	Variable Kind = iota
	Function
	Parameter
	TypeSym
	StructSym
	EnumSym
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Function:
		return "function"
	case Parameter:
		return "parameter"
	case TypeSym:
		return "type"
	case StructSym:
		return "struct"
	case EnumSym:
		return "enum"
	default:
		return "symbol"
	}
}

// Symbol is a named entity: a variable, function, parameter, struct, enum,
// or type alias. It refers to its declaring AST node by NodeID (a
// non-owning handle, per spec.md §9) rather than holding a pointer, and to
// an optional type annotation node for the same reason.
type Symbol struct {
	Name          string
	Kind          Kind
	Declaration   ast.NodeID
	TypeNode      ast.NodeID
	ScopeLevel    int
	Initialized   bool
	Used          bool
	IsParameter   bool
	IsBuiltin     bool
	CFunctionName string // target C symbol, set only for builtins (spec.md §4.2)
}

// Scope is one lexical region: a name->symbol map, a parent link, a
// nesting level, and a flag marking function-scope boundaries.
type Scope struct {
	parent     *Scope
	symbols    map[string]*Symbol
	level      int
	isFunction bool
}

func newScope(parent *Scope, level int, isFunction bool) *Scope {
	return &Scope{
		parent:     parent,
		symbols:    make(map[string]*Symbol),
		level:      level,
		isFunction: isFunction,
	}
}

// Level reports this scope's nesting depth (0 is global).
func (s *Scope) Level() int { return s.level }

// IsFunctionScope reports whether this scope is a function's top-level
// scope (parameters live here).
func (s *Scope) IsFunctionScope() bool { return s.isFunction }

// Table is a stack of scopes rooted at a global scope that can never be
// popped, implementing the operations in spec.md §4.1.
type Table struct {
	global  *Scope
	current *Scope
}

// NewTable returns a table with only the global scope on the stack.
func NewTable() *Table {
	global := newScope(nil, 0, false)
	return &Table{global: global, current: global}
}

// Global returns the table's global scope.
func (t *Table) Global() *Scope { return t.global }

// Current returns the currently active scope.
func (t *Table) Current() *Scope { return t.current }

// Depth reports the current scope's nesting level, which lets a caller
// check spec.md §8's invariant ("scope-stack depth at the end of semantic
// analysis equals its depth at the start").
func (t *Table) Depth() int { return t.current.level }

// EnterScope pushes a fresh scope whose level is one more than the
// current scope's, per spec.md §4.1's enter-scope operation.
func (t *Table) EnterScope(isFunction bool) {
	t.current = newScope(t.current, t.current.level+1, isFunction)
}

// ExitScope pops the topmost non-global scope. Popping the global scope is
// a caller error (the global scope can never be popped, per spec.md
// §4.1) and is reported via panic rather than silently ignored, since it
// signals an enter/exit mismatch in the analyzer itself rather than
// anything a source program can trigger.
func (t *Table) ExitScope() {
	if t.current == t.global {
		panic("symbols: cannot pop the global scope")
	}
	t.current = t.current.parent
}

// Insert adds sym to the current scope. It fails (returns false) iff a
// symbol with the same name already exists in the current scope only —
// shadowing an outer scope's symbol is allowed, per spec.md §4.1.
func (t *Table) Insert(sym *Symbol) bool {
	if _, exists := t.current.symbols[sym.Name]; exists {
		return false
	}
	sym.ScopeLevel = t.current.level
	t.current.symbols[sym.Name] = sym
	return true
}

// InsertGlobal adds sym directly to the global scope, used by the import
// resolver and the struct/function declaration passes which always
// populate the global scope regardless of the current scope (spec.md
// §4.2, §4.3).
func (t *Table) InsertGlobal(sym *Symbol) bool {
	if _, exists := t.global.symbols[sym.Name]; exists {
		return false
	}
	sym.ScopeLevel = 0
	t.global.symbols[sym.Name] = sym
	return true
}

// Lookup walks from the current scope outward; on a hit it marks the
// symbol used and returns it, per spec.md §4.1.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for scope := t.current; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			sym.Used = true
			return sym, true
		}
	}
	return nil, false
}

// LookupCurrent searches only the current scope and never marks the
// symbol used, per spec.md §4.1's lookup-current operation.
func (t *Table) LookupCurrent(name string) (*Symbol, bool) {
	sym, ok := t.current.symbols[name]
	return sym, ok
}

// LookupGlobal searches only the global scope without marking used,
// used by scope-resolution lookups (`a::b::c`) per spec.md §4.3.
func (t *Table) LookupGlobal(name string) (*Symbol, bool) {
	sym, ok := t.global.symbols[name]
	return sym, ok
}

// FunctionScope returns the nearest enclosing function scope, or nil if
// the current scope chain never crosses one (e.g. still at global scope).
func (t *Table) FunctionScope() *Scope {
	for scope := t.current; scope != nil; scope = scope.parent {
		if scope.isFunction {
			return scope
		}
	}
	return nil
}

// VariableSymbol is a convenience constructor for a Variable symbol. Its
// type is not stored on the Symbol itself; the expression-type oracle
// (spec.md §4.6) reads it back by following TypeNode into the arena, so
// callers that already have a types.Annotation in hand have nowhere to
// put it here — they should annotate typeNode directly instead.
func VariableSymbol(name string, declNode, typeNode ast.NodeID) *Symbol {
	return &Symbol{
		Name:        name,
		Kind:        Variable,
		Declaration: declNode,
		TypeNode:    typeNode,
	}
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s (scope %d)", s.Kind, s.Name, s.ScopeLevel)
}
