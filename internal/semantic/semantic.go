// Package semantic implements the three-pass analyzer of spec.md §4.3: a
// struct pass, a function-declaration pass, and a function-body pass that
// walks statements and expressions, validates member access (§4.4), and
// drives monomorphization (§4.5) for calls to generic functions. Grounded
// on original_source/src/semantic/semantic.c's semantic_analyze_program /
// semantic_analyze_function / semantic_analyze_statement /
// semantic_analyze_expression pass structure, translated from its
// bool-returning recursive walk and SemanticContext into Go methods on an
// Analyzer holding a *diagnostics.Bag and *symbols.Table.
package semantic

import (
	"strings"

	"github.com/echo-lang/echoc/internal/ast"
	"github.com/echo-lang/echoc/internal/diagnostics"
	"github.com/echo-lang/echoc/internal/imports"
	"github.com/echo-lang/echoc/internal/monomorph"
	"github.com/echo-lang/echoc/internal/symbols"
	"github.com/echo-lang/echoc/internal/types"
)

// Analyzer holds the mutable state threaded through a single compilation's
// semantic analysis: the arena being read, the symbol table being built,
// the diagnostic bag findings are recorded into, the monomorphization
// engine, and a name-keyed map of struct declarations used by member
// access validation.
type Analyzer struct {
	arena   *ast.Arena
	table   *symbols.Table
	diags   *diagnostics.Bag
	mono    *monomorph.Engine
	structs map[string]ast.NodeID
}

// New returns an Analyzer ready to process program's Preprocessor
// directives and declarations, reporting into diags.
func New(arena *ast.Arena, diags *diagnostics.Bag) *Analyzer {
	return &Analyzer{
		arena:   arena,
		table:   symbols.NewTable(),
		diags:   diags,
		mono:    monomorph.NewEngine(arena),
		structs: make(map[string]ast.NodeID),
	}
}

// Table returns the analyzer's symbol table, exposed for the emitter to
// consult builtin-symbol rewrites (spec.md §4.7's identifier emission
// rule).
func (a *Analyzer) Table() *symbols.Table { return a.table }

// Mono returns the analyzer's monomorphization engine so the emitter can
// walk its recorded instantiations (spec.md §4.7 phase 3/4).
func (a *Analyzer) Mono() *monomorph.Engine { return a.mono }

// Analyze runs import resolution followed by the three declaration passes
// and the function-body pass over program, per spec.md §4.3.
func (a *Analyzer) Analyze(program ast.NodeID) {
	a.resolveImports(program)
	a.structPass(program)
	a.enumPass(program)
	a.functionDeclPass(program)
	a.functionBodyPass(program)
}

func (a *Analyzer) resolveImports(program ast.NodeID) {
	node := a.arena.Get(program)
	for _, c := range node.Children {
		child := a.arena.Get(c)
		if child.Kind != ast.Preprocessor {
			continue
		}
		const prefix = "#include "
		if !strings.HasPrefix(child.Lexeme, prefix) {
			continue
		}
		includeLine := strings.TrimSpace(strings.TrimPrefix(child.Lexeme, prefix))
		if !imports.Process(a.table, includeLine) {
			a.diags.Errorf(diagnostics.FileIO, child.Line, child.Column,
				"could not resolve include %q", includeLine)
		}
	}
}

// structPass analyzes every Struct declaration: no field may be AutoType,
// and every field's type must be a recognized builtin or a previously
// defined struct (spec.md §4.3 pass 1). It then inserts a Symbol(Struct)
// at global scope.
func (a *Analyzer) structPass(program ast.NodeID) {
	node := a.arena.Get(program)
	for _, c := range node.Children {
		child := a.arena.Get(c)
		if child.Kind != ast.Struct {
			continue
		}
		decl := types.StructDecl{Name: child.Lexeme}
		for _, fieldID := range child.Children {
			field := a.arena.Get(fieldID)
			fieldType := a.arena.Get(a.arena.Child(fieldID, 0))
			if fieldType.Kind == ast.AutoType {
				a.diags.Errorf(diagnostics.InvalidAutoUsage, field.Line, field.Column,
					"struct field %q cannot use auto", field.Lexeme)
				continue
			}
			name := types.Name(fieldType.Type.Name)
			if !types.IsBuiltin(name) && !a.isKnownType(string(name)) {
				a.diags.Warnf(diagnostics.UndefinedType, fieldType.Line, fieldType.Column,
					"unknown field type %q", name)
			}
			decl.Fields = append(decl.Fields, types.Field{
				Name: field.Lexeme,
				Type: types.Annotation{
					Name:     name,
					Pointer:  fieldType.Type.Pointer,
					Optional: fieldType.Type.Optional,
					Array:    fieldType.Type.Array,
				},
			})
		}
		a.structs[child.Lexeme] = c

		if !a.table.InsertGlobal(&symbols.Symbol{Name: child.Lexeme, Kind: symbols.StructSym, Declaration: c}) {
			a.diags.Errorf(diagnostics.RedefinedSymbol, child.Line, child.Column,
				"struct %q already defined", child.Lexeme)
		}
	}
}

func (a *Analyzer) isKnownType(name string) bool {
	_, ok := a.structs[name]
	return ok
}

// enumPass analyzes every Enum declaration: each variant identifier must be
// unique within the enum, then a Symbol(EnumSym) is inserted at global
// scope (spec.md §4.3 pass 1). original_source never finished enum support
// (parser_constructs.c's "enum" branch is a stub error, and
// type_inference.c never checks enum types), so there is no original
// behavior to match here beyond the AST_ENUM/SYMBOL_ENUM kinds it already
// reserved; this pass and emitter.emitEnumDefinition complete what the
// original left as a TODO.
func (a *Analyzer) enumPass(program ast.NodeID) {
	node := a.arena.Get(program)
	for _, c := range node.Children {
		child := a.arena.Get(c)
		if child.Kind != ast.Enum {
			continue
		}
		seen := make(map[string]bool, len(child.Children))
		for _, variantID := range child.Children {
			variant := a.arena.Get(variantID)
			if seen[variant.Lexeme] {
				a.diags.Errorf(diagnostics.RedefinedSymbol, variant.Line, variant.Column,
					"enum %q already has a variant %q", child.Lexeme, variant.Lexeme)
				continue
			}
			seen[variant.Lexeme] = true
		}

		if !a.table.InsertGlobal(&symbols.Symbol{Name: child.Lexeme, Kind: symbols.EnumSym, Declaration: c}) {
			a.diags.Errorf(diagnostics.RedefinedSymbol, child.Line, child.Column,
				"enum %q already defined", child.Lexeme)
		}
	}
}

// functionDeclPass inserts a Symbol(Function) at global scope for every
// Function and GenericFunction, detecting duplicate definitions (spec.md
// §4.3 pass 2).
func (a *Analyzer) functionDeclPass(program ast.NodeID) {
	node := a.arena.Get(program)
	for _, c := range node.Children {
		child := a.arena.Get(c)
		if child.Kind != ast.Function && child.Kind != ast.GenericFunction {
			continue
		}
		if !a.table.InsertGlobal(&symbols.Symbol{Name: child.Lexeme, Kind: symbols.Function, Declaration: c}) {
			a.diags.Errorf(diagnostics.RedefinedSymbol, child.Line, child.Column,
				"function %q already defined", child.Lexeme)
		}
	}
}

// functionBodyPass analyzes the body of every non-generic function: enter
// function scope, insert parameters, analyze the body Block, and warn if
// a non-void function has no Return anywhere in its top-level body
// (spec.md §4.3 pass 3).
func (a *Analyzer) functionBodyPass(program ast.NodeID) {
	node := a.arena.Get(program)
	for _, c := range node.Children {
		child := a.arena.Get(c)
		if child.Kind != ast.Function {
			continue
		}
		a.analyzeFunction(c)
	}
}

func (a *Analyzer) analyzeFunction(fn ast.NodeID) {
	node := a.arena.Get(fn)
	a.table.EnterScope(true)
	defer a.table.ExitScope()

	params := a.arena.Get(a.arena.Child(fn, 0))
	for _, p := range params.Children {
		param := a.arena.Get(p)
		typeNode := a.arena.Child(p, 0)
		sym := &symbols.Symbol{
			Name:        param.Lexeme,
			Kind:        symbols.Parameter,
			Declaration: p,
			TypeNode:    typeNode,
			Initialized: true,
			IsParameter: true,
		}
		if !a.table.Insert(sym) {
			a.diags.Errorf(diagnostics.RedefinedSymbol, param.Line, param.Column,
				"parameter %q already defined", param.Lexeme)
		}
	}

	var body ast.NodeID = ast.InvalidNode
	var returnType ast.NodeID = ast.InvalidNode
	for _, c := range node.Children {
		switch a.arena.Get(c).Kind {
		case ast.Block:
			body = c
		case ast.Type:
			returnType = c
		}
	}
	if body == ast.InvalidNode {
		return
	}
	a.analyzeBlock(body)

	if returnType != ast.InvalidNode {
		retTypeNode := a.arena.Get(returnType)
		if retTypeNode.Lexeme != string(types.Void) {
			if !a.blockHasReturn(body) {
				a.diags.Warnf(diagnostics.MissingReturn, node.Line, node.Column,
					"function %q may not return a value on all paths", node.Lexeme)
			}
		}
	}
}

func (a *Analyzer) blockHasReturn(block ast.NodeID) bool {
	node := a.arena.Get(block)
	for _, c := range node.Children {
		if a.arena.Get(c).Kind == ast.Return {
			return true
		}
	}
	return false
}

func (a *Analyzer) analyzeBlock(block ast.NodeID) {
	a.table.EnterScope(false)
	defer a.table.ExitScope()

	node := a.arena.Get(block)
	for _, c := range node.Children {
		a.analyzeStatement(c)
	}
}

func (a *Analyzer) analyzeStatement(stmt ast.NodeID) {
	node := a.arena.Get(stmt)
	switch node.Kind {
	case ast.VariableDecl:
		a.analyzeVariableDecl(stmt)
	case ast.ExpressionStmt:
		if len(node.Children) > 0 {
			a.analyzeExpression(node.Children[0])
		}
	case ast.Return:
		if len(node.Children) > 0 {
			a.analyzeExpression(node.Children[0])
		}
	case ast.If, ast.For, ast.While:
		for _, c := range node.Children {
			a.analyzeStatement(c)
		}
	case ast.Block:
		a.analyzeBlock(stmt)
	default:
		a.analyzeExpression(stmt)
	}
}

// analyzeVariableDecl implements spec.md §4.3's declaration rule: an
// AutoType declaration requires an initializer, which is analyzed first
// (so nested generic calls instantiate), then the oracle's inferred type
// overwrites the node's type child in place; otherwise the symbol is
// inserted directly and, if an initializer is present, it is analyzed and
// the symbol marked initialized.
func (a *Analyzer) analyzeVariableDecl(decl ast.NodeID) {
	node := a.arena.Get(decl)
	typeNode := node.Children[0]
	declName := node.Lexeme
	declLine, declColumn := node.Line, node.Column
	isAuto := a.arena.Get(typeNode).Kind == ast.AutoType

	if isAuto {
		if len(node.Children) < 2 {
			a.diags.Errorf(diagnostics.InvalidAutoUsage, declLine, declColumn,
				"auto variable %q must have an initializer", declName)
			return
		}
		init := node.Children[1]
		a.analyzeExpression(init)

		// analyzeExpression/ExpressionType may have grown the arena (e.g.
		// synthesizing a generic instantiation), invalidating any *ast.Node
		// pointer captured before this point — re-fetch typeNodeData by
		// NodeID rather than reuse one, per Arena.Get's "valid only until
		// the next call to New" contract.
		inferred, ok := monomorph.ExpressionType(a.arena, init, a.table, a.mono)
		if !ok {
			a.diags.Errorf(diagnostics.TypeMismatch, declLine, declColumn,
				"cannot infer type for auto variable %q", declName)
			return
		}
		typeNodeData := a.arena.Get(typeNode)
		*typeNodeData = ast.Node{
			Kind:   ast.Type,
			Lexeme: inferred,
			Line:   typeNodeData.Line,
			Column: typeNodeData.Column,
			Type:   ast.TypeAnnotation{Present: true, Name: inferred},
		}

		sym := &symbols.Symbol{
			Name: declName, Kind: symbols.Variable,
			Declaration: decl, TypeNode: typeNode, Initialized: true,
		}
		if !a.table.Insert(sym) {
			a.diags.Errorf(diagnostics.RedefinedSymbol, declLine, declColumn,
				"variable %q already defined in this scope", declName)
		}
		return
	}

	sym := &symbols.Symbol{Name: declName, Kind: symbols.Variable, Declaration: decl, TypeNode: typeNode}
	if len(node.Children) > 1 {
		init := node.Children[1]
		sym.Initialized = true
		a.analyzeExpression(init)
	}
	if !a.table.Insert(sym) {
		a.diags.Errorf(diagnostics.RedefinedSymbol, declLine, declColumn,
			"variable %q already defined in this scope", declName)
	}
}

func (a *Analyzer) analyzeExpression(expr ast.NodeID) {
	node := a.arena.Get(expr)
	switch node.Kind {
	case ast.Identifier:
		sym, ok := a.table.Lookup(node.Lexeme)
		if !ok {
			a.diags.Errorf(diagnostics.UndefinedSymbol, node.Line, node.Column,
				"undefined symbol %q", node.Lexeme)
			return
		}
		if sym.Kind == symbols.Variable && !sym.Initialized {
			a.diags.Warnf(diagnostics.UninitializedVariable, node.Line, node.Column,
				"variable %q used before initialization", node.Lexeme)
		}

	case ast.ScopeResolution:
		a.analyzeScopeResolution(expr)

	case ast.MemberAccess:
		a.analyzeMemberAccess(expr)

	case ast.StructLiteral:
		for _, c := range node.Children {
			assign := a.arena.Get(c)
			if len(assign.Children) > 1 {
				a.analyzeExpression(assign.Children[1])
			}
		}

	case ast.Call:
		a.analyzeCall(expr)

	case ast.Literal:
		// always valid

	default:
		for _, c := range node.Children {
			a.analyzeExpression(c)
		}
	}
}

// analyzeScopeResolution validates a `left::right` reference: when left
// names an enum, right must be one of its variants; otherwise the
// flattened qualified name must match a symbol registered under that full
// name (e.g. an imported builtin's `module::function`).
func (a *Analyzer) analyzeScopeResolution(node ast.NodeID) {
	n := a.arena.Get(node)
	left := a.arena.Get(n.Children[0])
	if left.Kind == ast.Identifier {
		if sym, ok := a.table.LookupGlobal(left.Lexeme); ok && sym.Kind == symbols.EnumSym {
			variant := a.arena.Get(n.Children[1]).Lexeme
			if !a.structHasField(sym.Declaration, variant) {
				a.diags.Errorf(diagnostics.UndefinedField, n.Line, n.Column,
					"enum %q has no variant %q", left.Lexeme, variant)
			}
			return
		}
	}
	name := a.flattenScopeResolution(node)
	if _, ok := a.table.LookupGlobal(name); !ok {
		a.diags.Errorf(diagnostics.UndefinedSymbol, n.Line, n.Column,
			"undefined symbol %q", name)
	}
}

// flattenScopeResolution joins a left-recursive ScopeResolution chain
// into "a::b::c", per spec.md §4.3.
func (a *Analyzer) flattenScopeResolution(node ast.NodeID) string {
	n := a.arena.Get(node)
	if n.Kind != ast.ScopeResolution {
		return n.Lexeme
	}
	left := a.flattenScopeResolution(n.Children[0])
	right := a.arena.Get(n.Children[1]).Lexeme
	return left + "::" + right
}

// analyzeMemberAccess implements spec.md §4.4: derive obj's type via the
// oracle, demand it resolves to a Symbol(Struct), and demand the struct
// declaration contains a field by that name.
func (a *Analyzer) analyzeMemberAccess(node ast.NodeID) {
	n := a.arena.Get(node)
	obj, field := n.Children[0], n.Children[1]
	a.analyzeExpression(obj)

	objType, ok := monomorph.ExpressionType(a.arena, obj, a.table, a.mono)
	if !ok {
		a.diags.Errorf(diagnostics.TypeMismatch, n.Line, n.Column, "cannot determine type of expression")
		return
	}
	structSym, ok := a.table.LookupGlobal(objType)
	if !ok || structSym.Kind != symbols.StructSym {
		a.diags.Errorf(diagnostics.UndefinedType, n.Line, n.Column,
			"%q is not a struct type", objType)
		return
	}
	structNode := structSym.Declaration
	fieldName := a.arena.Get(field).Lexeme
	if !a.structHasField(structNode, fieldName) {
		a.diags.Errorf(diagnostics.UndefinedField, n.Line, n.Column,
			"struct %q has no field %q", objType, fieldName)
	}
}

// structHasField reports whether declNode (a Struct's field list or an
// Enum's variant list) has a direct child named name; both node kinds
// store their member names the same way, so one walk serves both.
func (a *Analyzer) structHasField(declNode ast.NodeID, name string) bool {
	node := a.arena.Get(declNode)
	for _, c := range node.Children {
		if a.arena.Get(c).Lexeme == name {
			return true
		}
	}
	return false
}

// analyzeCall analyzes the callee; if it resolves to a GenericFunction
// symbol it drives monomorphization (§4.5) before analyzing arguments
// (spec.md §4.3).
func (a *Analyzer) analyzeCall(call ast.NodeID) {
	node := a.arena.Get(call)
	if len(node.Children) == 0 {
		return
	}
	callee := node.Children[0]
	calleeNode := a.arena.Get(callee)

	if calleeNode.Kind == ast.Identifier {
		sym, ok := a.table.Lookup(calleeNode.Lexeme)
		if !ok {
			a.diags.Errorf(diagnostics.UndefinedFunction, calleeNode.Line, calleeNode.Column,
				"undefined function %q", calleeNode.Lexeme)
		} else if sym.Kind == symbols.Function && sym.Declaration != ast.InvalidNode &&
			a.arena.Get(sym.Declaration).Kind == ast.GenericFunction {
			if _, ok := a.mono.Instantiate(call, sym.Declaration, a.table); !ok {
				a.diags.Errorf(diagnostics.WrongArgumentCount, node.Line, node.Column,
					"argument count or type mismatch calling %q", calleeNode.Lexeme)
			}
		}
	} else {
		a.analyzeExpression(callee)
	}

	for _, arg := range node.Children[1:] {
		a.analyzeExpression(arg)
	}
}
