// Package monomorph implements the expression-type oracle and the
// generic-function monomorphizer from spec.md §4.5/§4.6. Grounded on
// original_source/src/semantic/type_inference.c's TypeInferenceContext
// (constraint list + instantiation list), translated from its
// malloc/strdup/linked-list bookkeeping into an append-only Go slice
// searched by template and element-wise type tuple.
package monomorph

import (
	"strings"

	"github.com/echo-lang/echoc/internal/ast"
	"github.com/echo-lang/echoc/internal/symbols"
)

// Instantiation records one concrete specialization of a generic function
// template: the argument type-tuple it was called with, the mangled name
// the emitter should use, and the synthesized concrete Function node.
type Instantiation struct {
	Template    ast.NodeID
	TypeArgs    []string
	MangledName string
	Concrete    ast.NodeID
}

// Engine drives monomorphization across a single compilation: it owns the
// append-only instantiation list so that repeated calls to the same
// generic function with the same argument types reuse one specialization,
// per spec.md §4.5 ("uniquely synthesize a concrete Function node per
// (template, type-tuple) pair").
type Engine struct {
	arena          *ast.Arena
	instantiations []Instantiation
	callSites      map[ast.NodeID]*Instantiation
}

// NewEngine returns an Engine that allocates synthesized nodes into arena.
func NewEngine(arena *ast.Arena) *Engine {
	return &Engine{arena: arena, callSites: make(map[ast.NodeID]*Instantiation)}
}

// Instantiations returns every instantiation recorded so far, in the
// order they were created; the emitter walks this list to produce
// forward declarations and bodies for synthesized functions (spec.md
// §4.7 phase 3/4).
func (e *Engine) Instantiations() []Instantiation {
	return e.instantiations
}

// find looks up an existing instantiation for (template, typeArgs),
// comparing the type-tuple element-wise as original_source's
// type_inference_find_instantiation does.
func (e *Engine) find(template ast.NodeID, typeArgs []string) (*Instantiation, bool) {
	for i := range e.instantiations {
		inst := &e.instantiations[i]
		if inst.Template != template || len(inst.TypeArgs) != len(typeArgs) {
			continue
		}
		match := true
		for j, t := range typeArgs {
			if inst.TypeArgs[j] != t {
				match = false
				break
			}
		}
		if match {
			return inst, true
		}
	}
	return nil, false
}

// Mangle joins a base name and a type-tuple per spec.md §4.5's mangling
// contract: `<base>_<type1>_<type2>…`.
func Mangle(base string, typeArgs []string) string {
	if len(typeArgs) == 0 {
		return base
	}
	return base + "_" + strings.Join(typeArgs, "_")
}

// Instantiate resolves the call at callNode against the resolved
// GenericFunction template, deriving each argument's type via the
// expression-type oracle, then finds or synthesizes the matching
// concrete specialization. It returns nil and false if the
// argument count doesn't match the template's parameter count or any
// argument's type cannot be determined, per spec.md §4.5 step 1/2.
func (e *Engine) Instantiate(callNode, template ast.NodeID, tbl *symbols.Table) (*Instantiation, bool) {
	templateNode := e.arena.Get(template)
	params := e.arena.Child(template, 0)

	call := e.arena.Get(callNode)
	argCount := len(call.Children) - 1
	if argCount != e.arena.Len(params) {
		return nil, false
	}

	typeArgs := make([]string, argCount)
	for i := 0; i < argCount; i++ {
		argType, ok := ExpressionType(e.arena, call.Children[i+1], tbl, e)
		if !ok {
			return nil, false
		}
		typeArgs[i] = argType
	}

	if inst, found := e.find(template, typeArgs); found {
		e.callSites[callNode] = inst
		return inst, true
	}

	mangled := Mangle(templateNode.Lexeme, typeArgs)
	concrete := e.synthesize(template, mangled, typeArgs)

	inst := Instantiation{
		Template:    template,
		TypeArgs:    typeArgs,
		MangledName: mangled,
		Concrete:    concrete,
	}
	e.instantiations = append(e.instantiations, inst)
	recorded := &e.instantiations[len(e.instantiations)-1]
	e.callSites[callNode] = recorded
	return recorded, true
}

// ResolvedCall looks up the instantiation chosen for callNode during
// analysis (Instantiate records one entry per call site it resolves). The
// emitter uses this instead of re-deriving argument types through MatchCall:
// by emission time semantic.Analyze has returned and every function-body
// scope has been popped back to global, so a re-lookup of a local
// variable/parameter identifier via the symbol table would fail even though
// the call was resolved correctly while its scope was still live.
func (e *Engine) ResolvedCall(callNode ast.NodeID) (*Instantiation, bool) {
	inst, ok := e.callSites[callNode]
	return inst, ok
}

// synthesize builds the concrete Function node for one instantiation,
// per spec.md §4.5 step 4: the return type is the template's declared
// type verbatim, unless the template's return is AutoType, in which case
// the first concrete argument type is used as a fallback heuristic.
// The template's body Block is attached to the concrete node as-is (the
// same NodeID, not a copy); the emitter prints it under the concrete
// signature, and type names written inside the body are not substituted.
func (e *Engine) synthesize(template ast.NodeID, mangled string, typeArgs []string) ast.NodeID {
	templateNode := e.arena.Get(template)
	line, col := templateNode.Line, templateNode.Column

	concrete := e.arena.New(ast.Function, line, col)
	e.arena.Get(concrete).Lexeme = mangled

	params := e.arena.Child(template, 0)
	paramList := e.arena.New(ast.Parameter, line, col)
	for i := 0; i < e.arena.Len(params); i++ {
		srcParam := e.arena.Get(e.arena.Child(params, i))
		newParam := e.arena.New(ast.Parameter, srcParam.Line, srcParam.Column)
		e.arena.Get(newParam).Lexeme = srcParam.Lexeme
		typeNode := e.arena.New(ast.Type, srcParam.Line, srcParam.Column)
		name := typeArgs[i]
		e.arena.Get(typeNode).Lexeme = name
		e.arena.Get(typeNode).Type = ast.TypeAnnotation{Present: true, Name: name}
		e.arena.AddChild(newParam, typeNode)
		e.arena.AddChild(paramList, newParam)
	}
	e.arena.AddChild(concrete, paramList)

	returnName := e.concreteReturnName(template, typeArgs)
	returnType := e.arena.New(ast.Type, line, col)
	e.arena.Get(returnType).Lexeme = returnName
	e.arena.Get(returnType).Type = ast.TypeAnnotation{Present: true, Name: returnName}
	e.arena.AddChild(concrete, returnType)

	body := e.findBody(template)
	if body != ast.InvalidNode {
		e.arena.AddChild(concrete, body)
	}

	return concrete
}

func (e *Engine) findBody(function ast.NodeID) ast.NodeID {
	node := e.arena.Get(function)
	for _, c := range node.Children {
		if e.arena.Get(c).Kind == ast.Block {
			return c
		}
	}
	return ast.InvalidNode
}

func (e *Engine) concreteReturnName(template ast.NodeID, typeArgs []string) string {
	node := e.arena.Get(template)
	for _, c := range node.Children {
		child := e.arena.Get(c)
		if child.Kind == ast.AutoType {
			if len(typeArgs) > 0 {
				return typeArgs[0]
			}
			return "i32"
		}
		if child.Kind == ast.Type {
			return child.Lexeme
		}
	}
	return "i32"
}

// ExpressionType is the expression-type oracle of spec.md §4.6: given an
// expression node and the active symbol table, it returns a concrete
// type name, consulting eng for Call nodes' already-resolved
// instantiations (nil is accepted when the oracle is only needed outside
// of monomorphization, e.g. for member-access validation).
func ExpressionType(arena *ast.Arena, node ast.NodeID, tbl *symbols.Table, eng *Engine) (string, bool) {
	n := arena.Get(node)
	switch n.Kind {
	case ast.Literal:
		if n.Type.Present && n.Type.Name != "" {
			return n.Type.Name, true
		}
		return literalShape(n.Lexeme), true

	case ast.Identifier:
		sym, ok := tbl.Lookup(n.Lexeme)
		if !ok || sym.TypeNode == ast.InvalidNode {
			return "", false
		}
		typeNode := arena.Get(sym.TypeNode)
		if typeNode.Type.Present {
			return typeNode.Type.Name, true
		}
		return "", false

	case ast.StructLiteral:
		if n.Lexeme == "" {
			// `{field: value, ...}` with no leading type name: fine as an
			// initializer for an explicitly-typed VariableDecl (the
			// declared type already says what it is), but an auto
			// declaration has nothing else to infer from.
			return "", false
		}
		return n.Lexeme, true

	case ast.ScopeResolution:
		left := arena.Get(n.Children[0])
		if left.Kind == ast.Identifier {
			if sym, ok := tbl.LookupGlobal(left.Lexeme); ok && sym.Kind == symbols.EnumSym {
				return left.Lexeme, true
			}
		}
		return "i32", true

	case ast.BinaryOp:
		left, lok := ExpressionType(arena, n.Children[0], tbl, eng)
		right, rok := ExpressionType(arena, n.Children[1], tbl, eng)
		if lok && rok && left == right {
			return left, true
		}
		return "i32", true

	case ast.Call:
		if eng != nil {
			if inst, ok := eng.MatchCall(arena, n, tbl); ok {
				return eng.concreteReturnName(inst.Template, inst.TypeArgs), true
			}
		}
		return "i32", true

	default:
		return "i32", true
	}
}

// MatchCall resolves a Call node's callee to its GenericFunction template
// (if any) and finds the already-recorded instantiation for this exact
// argument type-tuple, per spec.md §4.6's "Call → matched instantiation's
// return type" rule. It types arguments through the live symbol table, so
// it serves analysis-time callers; the emitter picks each call site's
// mangled name through ResolvedCall instead.
func (e *Engine) MatchCall(arena *ast.Arena, call *ast.Node, tbl *symbols.Table) (*Instantiation, bool) {
	if len(call.Children) == 0 {
		return nil, false
	}
	callee := arena.Get(call.Children[0])
	if callee.Kind != ast.Identifier {
		return nil, false
	}
	sym, ok := tbl.Lookup(callee.Lexeme)
	if !ok || sym.Declaration == ast.InvalidNode || arena.Get(sym.Declaration).Kind != ast.GenericFunction {
		return nil, false
	}

	typeArgs := make([]string, len(call.Children)-1)
	for i, arg := range call.Children[1:] {
		argType, ok := ExpressionType(arena, arg, tbl, e)
		if !ok {
			return nil, false
		}
		typeArgs[i] = argType
	}
	return e.find(sym.Declaration, typeArgs)
}

// literalShape applies spec.md §4.6's lexical-shape fallback table for a
// literal lacking a type tag.
func literalShape(text string) string {
	switch {
	case strings.Contains(text, "."):
		return "f64"
	case text == "true" || text == "false":
		return "bool"
	case strings.HasPrefix(text, "\""):
		return "string"
	default:
		return "i32"
	}
}
