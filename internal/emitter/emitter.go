// Package emitter translates an analyzed AST into a C99 translation unit,
// per spec.md §4.7/§4.8. Grounded on original_source/src/codegen/codegen.h's
// phase layout (includes, type definitions, forward declarations, bodies,
// runtime support) and its indent-tracking CodeGenerator, rewritten around
// a strings.Builder instead of a FILE* and printf-style writers.
package emitter

import (
	"fmt"
	"strings"

	"github.com/echo-lang/echoc/internal/ast"
	"github.com/echo-lang/echoc/internal/monomorph"
	"github.com/echo-lang/echoc/internal/symbols"
	"github.com/echo-lang/echoc/internal/types"
)

// preamble is the fixed #include block every emitted file starts with
// (spec.md §4.7 phase 1).
var preamble = []string{
	"stdio.h", "stdlib.h", "stdbool.h", "stdint.h", "string.h", "echo_runtime.h",
}

// cEscaper re-escapes a decoded string/char literal for C source.
var cEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `'`, `\'`,
	"\n", `\n`, "\t", `\t`, "\r", `\r`, "\x00", `\000`)

// Emitter holds the arena being read, the symbol table built by semantic
// analysis (for builtin-symbol rewrites), the monomorphization engine's
// recorded instantiations, and the output buffer with its indent level.
type Emitter struct {
	arena  *ast.Arena
	table  *symbols.Table
	mono   *monomorph.Engine
	out    strings.Builder
	indent int
}

// New returns an Emitter over arena, consulting table and mono for
// identifier rewrites and generic-function instantiations.
func New(arena *ast.Arena, table *symbols.Table, mono *monomorph.Engine) *Emitter {
	return &Emitter{arena: arena, table: table, mono: mono}
}

// Emit produces the full translation unit for program and returns it as a
// string.
func (e *Emitter) Emit(program ast.NodeID) string {
	e.emitPreamble()
	e.emitTypeDefinitions(program)
	e.emitForwardDeclarations(program)
	e.emitBodies(program)
	return e.out.String()
}

func (e *Emitter) writeLine(format string, args ...any) {
	e.out.WriteString(strings.Repeat("    ", e.indent))
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *Emitter) emitPreamble() {
	for _, h := range preamble {
		e.writeLine("#include <%s>", h)
	}
	e.out.WriteByte('\n')
}

// emitTypeDefinitions emits one C struct per Struct node (field ordering
// preserved) and one C enum per Enum node (variant ordering preserved),
// per spec.md §4.7 phase 2.
func (e *Emitter) emitTypeDefinitions(program ast.NodeID) {
	node := e.arena.Get(program)
	any := false
	for _, c := range node.Children {
		child := e.arena.Get(c)
		switch child.Kind {
		case ast.Struct:
			any = true
			e.writeLine("typedef struct %s {", child.Lexeme)
			e.indent++
			for _, fieldID := range child.Children {
				field := e.arena.Get(fieldID)
				typeNode := e.arena.Get(e.arena.Child(fieldID, 0))
				ann := annotationOf(typeNode)
				e.writeLine("%s;", declareVar(ann, field.Lexeme))
			}
			e.indent--
			e.writeLine("} %s;", child.Lexeme)

		case ast.Enum:
			any = true
			e.emitEnumDefinition(c)
		}
	}
	if any {
		e.out.WriteByte('\n')
	}
}

// emitEnumDefinition renders an Enum node as `typedef enum { Name_Variant,
// ... } Name;`, prefixing each variant with the enum's name so variants
// from distinct enums never collide in C's flat enumerator namespace.
func (e *Emitter) emitEnumDefinition(node ast.NodeID) {
	n := e.arena.Get(node)
	e.writeLine("typedef enum {")
	e.indent++
	for _, variantID := range n.Children {
		variant := e.arena.Get(variantID)
		e.writeLine("%s,", enumVariantName(n.Lexeme, variant.Lexeme))
	}
	e.indent--
	e.writeLine("} %s;", n.Lexeme)
}

func enumVariantName(enumName, variant string) string {
	return fmt.Sprintf("%s_%s", enumName, variant)
}

// emitForwardDeclarations emits a prototype for every concrete Function
// and every instantiation's synthesized Function, so body order doesn't
// constrain call order (spec.md §4.7 phase 3).
func (e *Emitter) emitForwardDeclarations(program ast.NodeID) {
	node := e.arena.Get(program)
	for _, c := range node.Children {
		child := e.arena.Get(c)
		if child.Kind != ast.Function {
			continue
		}
		e.writeLine("%s;", e.functionSignature(c))
	}
	for _, inst := range e.mono.Instantiations() {
		e.writeLine("%s;", e.functionSignature(inst.Concrete))
	}
	e.out.WriteByte('\n')
}

// emitBodies emits each concrete Function's signature and translated
// body, followed by each instantiation's synthesized body (spec.md §4.7
// phase 4).
func (e *Emitter) emitBodies(program ast.NodeID) {
	node := e.arena.Get(program)
	for _, c := range node.Children {
		child := e.arena.Get(c)
		if child.Kind != ast.Function {
			continue
		}
		e.emitFunctionBody(c)
	}
	for _, inst := range e.mono.Instantiations() {
		e.emitFunctionBody(inst.Concrete)
	}
}

func (e *Emitter) functionSignature(fn ast.NodeID) string {
	node := e.arena.Get(fn)
	returnType := "void"
	for _, c := range node.Children {
		if e.arena.Get(c).Kind == ast.Type {
			returnType = annotationOf(e.arena.Get(c)).CType()
			break
		}
	}

	var params []string
	paramList := e.arena.Get(e.arena.Child(fn, 0))
	for _, p := range paramList.Children {
		param := e.arena.Get(p)
		typeNode := e.arena.Get(e.arena.Child(p, 0))
		params = append(params, declareVar(annotationOf(typeNode), param.Lexeme))
	}
	if len(params) == 0 {
		params = append(params, "void")
	}
	return fmt.Sprintf("%s %s(%s)", returnType, node.Lexeme, strings.Join(params, ", "))
}

func (e *Emitter) emitFunctionBody(fn ast.NodeID) {
	node := e.arena.Get(fn)
	var body ast.NodeID = ast.InvalidNode
	for _, c := range node.Children {
		if e.arena.Get(c).Kind == ast.Block {
			body = c
		}
	}
	e.writeLine("%s {", e.functionSignature(fn))
	e.indent++
	if body != ast.InvalidNode {
		e.emitBlockStatements(body)
	}
	e.indent--
	e.writeLine("}")
	e.out.WriteByte('\n')
}

func (e *Emitter) emitBlockStatements(block ast.NodeID) {
	node := e.arena.Get(block)
	for _, c := range node.Children {
		e.emitStatement(c)
	}
}

func (e *Emitter) emitStatement(stmt ast.NodeID) {
	node := e.arena.Get(stmt)
	switch node.Kind {
	case ast.Block:
		e.writeLine("{")
		e.indent++
		e.emitBlockStatements(stmt)
		e.indent--
		e.writeLine("}")

	case ast.VariableDecl:
		typeNode := e.arena.Get(node.Children[0])
		ann := annotationOf(typeNode)
		if len(node.Children) > 1 {
			e.writeLine("%s = %s;", declareVar(ann, node.Lexeme), e.expr(node.Children[1]))
		} else {
			e.writeLine("%s;", declareVar(ann, node.Lexeme))
		}

	case ast.Return:
		if len(node.Children) > 0 {
			e.writeLine("return %s;", e.expr(node.Children[0]))
		} else {
			e.writeLine("return;")
		}

	case ast.If:
		e.writeLine("if (%s)", e.expr(node.Children[0]))
		e.emitNestedStatement(node.Children[1])
		if len(node.Children) > 2 {
			e.writeLine("else")
			e.emitNestedStatement(node.Children[2])
		}

	case ast.While:
		e.writeLine("while (%s)", e.expr(node.Children[0]))
		e.emitNestedStatement(node.Children[1])

	case ast.For:
		init, cond, step := e.forClause(node.Children[0]), e.expr(node.Children[1]), e.expr(node.Children[2])
		e.writeLine("for (%s; %s; %s)", init, cond, step)
		e.emitNestedStatement(node.Children[3])

	case ast.ExpressionStmt:
		if len(node.Children) > 0 {
			e.writeLine("%s;", e.expr(node.Children[0]))
		}

	default:
		e.writeLine("%s;", e.expr(stmt))
	}
}

// emitNestedStatement emits an If/While/For's inner statement, keeping
// braces only when the inner statement is itself a Block (matching the
// parser's grammar rather than always bracing single statements).
func (e *Emitter) emitNestedStatement(stmt ast.NodeID) {
	e.indent++
	e.emitStatement(stmt)
	e.indent--
}

// forClause renders a for-loop's init slot: empty for the zero-child
// ExpressionStmt placeholder, a bare declaration/expression otherwise.
func (e *Emitter) forClause(slot ast.NodeID) string {
	node := e.arena.Get(slot)
	switch node.Kind {
	case ast.ExpressionStmt:
		if len(node.Children) == 0 {
			return ""
		}
		return e.expr(node.Children[0])
	case ast.VariableDecl:
		typeNode := e.arena.Get(node.Children[0])
		ann := annotationOf(typeNode)
		if len(node.Children) > 1 {
			return fmt.Sprintf("%s = %s", declareVar(ann, node.Lexeme), e.expr(node.Children[1]))
		}
		return declareVar(ann, node.Lexeme)
	default:
		return e.expr(slot)
	}
}

// expr renders an expression node, emitted by operator precedence without
// inserted parentheses beyond what the AST's nesting already implies
// (spec.md §4.7).
func (e *Emitter) expr(node ast.NodeID) string {
	n := e.arena.Get(node)
	switch n.Kind {
	case ast.Literal:
		// The lexer stores string and char literals unquoted and unescaped.
		switch n.Type.Name {
		case "string":
			return `"` + cEscaper.Replace(n.Lexeme) + `"`
		case "char":
			return "'" + cEscaper.Replace(n.Lexeme) + "'"
		}
		return n.Lexeme

	case ast.Identifier:
		return e.rewriteIdentifier(n.Lexeme)

	case ast.ScopeResolution:
		return e.rewriteIdentifier(e.flattenScopeResolution(node))

	case ast.BinaryOp:
		return fmt.Sprintf("%s %s %s", e.expr(n.Children[0]), n.Lexeme, e.expr(n.Children[1]))

	case ast.UnaryOp:
		return fmt.Sprintf("%s%s", n.Lexeme, e.expr(n.Children[0]))

	case ast.PointerDeref:
		return fmt.Sprintf("*%s", e.expr(n.Children[0]))

	case ast.AddressOf:
		return fmt.Sprintf("&%s", e.expr(n.Children[0]))

	case ast.Assignment:
		return fmt.Sprintf("%s %s %s", e.expr(n.Children[0]), n.Lexeme, e.expr(n.Children[1]))

	case ast.ArrayAccess:
		return fmt.Sprintf("%s[%s]", e.expr(n.Children[0]), e.expr(n.Children[1]))

	case ast.MemberAccess:
		return fmt.Sprintf("%s%s%s", e.expr(n.Children[0]), n.Lexeme, e.arena.Get(n.Children[1]).Lexeme)

	case ast.Call:
		return e.emitCall(node)

	case ast.StructLiteral:
		return e.emitStructLiteral(node)

	case ast.Alloc:
		return e.emitAlloc(node)

	case ast.Delete:
		return fmt.Sprintf("echo_free(%s)", e.expr(n.Children[0]))

	default:
		return n.Lexeme
	}
}

func (e *Emitter) flattenScopeResolution(node ast.NodeID) string {
	n := e.arena.Get(node)
	if n.Kind != ast.ScopeResolution {
		return n.Lexeme
	}
	return e.flattenScopeResolution(n.Children[0]) + "::" + e.arena.Get(n.Children[1]).Lexeme
}

// rewriteIdentifier consults the symbol table: a builtin symbol is
// rewritten to its target C symbol, a name qualified by an enum (e.g.
// `Color::Red`) rewrites to its prefixed C enumerator, any other qualified
// name drops its `::` prefix, and a plain user symbol passes through
// unchanged (spec.md §4.7's identifier-emission rule).
func (e *Emitter) rewriteIdentifier(name string) string {
	if sym, ok := e.table.LookupGlobal(name); ok && sym.IsBuiltin && sym.CFunctionName != "" {
		return sym.CFunctionName
	}
	if idx := strings.LastIndex(name, "::"); idx != -1 {
		left, right := name[:idx], name[idx+2:]
		if sym, ok := e.table.LookupGlobal(left); ok && sym.Kind == symbols.EnumSym {
			return enumVariantName(left, right)
		}
		return right
	}
	return name
}

func (e *Emitter) emitCall(node ast.NodeID) string {
	n := e.arena.Get(node)

	name := e.calleeName(node, n.Children[0])

	args := make([]string, 0, len(n.Children)-1)
	for _, arg := range n.Children[1:] {
		args = append(args, e.expr(arg))
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

// calleeName resolves a call's target name: a call to a GenericFunction is
// rewritten to the mangled name of the instantiation matching this call's
// own argument type-tuple (spec.md §8's "call sites name the mangled
// symbol" invariant — a template with several instantiations must route
// each call site to its own, not just the first one recorded); anything
// else falls through to normal expression emission. The instantiation is
// looked up by call-site NodeID (recorded by monomorph.Engine while the
// call's function-body scope was still live during analysis), not
// re-derived from the symbol table here: by emission time semantic.Analyze
// has returned and every local scope has been popped back to global, so a
// non-literal (variable/parameter) argument would fail to resolve if we
// tried to re-type it now.
func (e *Emitter) calleeName(callNode, calleeID ast.NodeID) string {
	callee := e.arena.Get(calleeID)
	if callee.Kind == ast.Identifier {
		if sym, ok := e.table.LookupGlobal(callee.Lexeme); ok && sym.Declaration != ast.InvalidNode &&
			e.arena.Get(sym.Declaration).Kind == ast.GenericFunction {
			if inst, ok := e.mono.ResolvedCall(callNode); ok {
				return inst.MangledName
			}
		}
	}
	return e.expr(calleeID)
}

// emitStructLiteral renders `{field: value, ...}` as a C99 designated
// initializer (spec.md §4.7).
func (e *Emitter) emitStructLiteral(node ast.NodeID) string {
	n := e.arena.Get(node)
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		assign := e.arena.Get(c)
		field := e.arena.Get(assign.Children[0]).Lexeme
		value := e.expr(assign.Children[1])
		parts = append(parts, fmt.Sprintf(".%s = %s", field, value))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// emitAlloc renders `alloc T(...)` as a cast heap allocation. A
// parenthesized initializer, when present, is folded into the cast
// expression via a compound literal assignment so the whole thing stays
// one C99 expression.
func (e *Emitter) emitAlloc(node ast.NodeID) string {
	n := e.arena.Get(node)
	typeNode := e.arena.Get(n.Children[0])
	ann := annotationOf(typeNode)
	allocExpr := fmt.Sprintf("(%s *)echo_alloc(sizeof(%s))", ann.CBase(), ann.CBase())
	if len(n.Children) > 1 {
		return fmt.Sprintf("memcpy(%s, &(%s){%s}, sizeof(%s))", allocExpr, ann.CBase(), e.expr(n.Children[1]), ann.CBase())
	}
	return allocExpr
}

// annotationOf converts a Type/AutoType node's TypeAnnotation into a
// types.Annotation the C type-mapping table understands.
func annotationOf(typeNode *ast.Node) types.Annotation {
	return types.Annotation{
		Name:     types.Name(typeNode.Type.Name),
		Pointer:  typeNode.Type.Pointer,
		Optional: typeNode.Type.Optional,
		Array:    typeNode.Type.Array,
	}
}

// declareVar renders a C declaration `<type> <name>`, per spec.md §4.7's
// VariableDecl translation rule; CType already appends the pointer-star
// or renders the optional-of-T runtime type per spec.md §4.8.
func declareVar(ann types.Annotation, name string) string {
	return fmt.Sprintf("%s %s", ann.CType(), name)
}
