package parser

import (
	"testing"

	"github.com/echo-lang/echoc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptySourceYieldsEmptyProgram(t *testing.T) {
	arena, program, diags := Parse("empty.echo", []byte(""))
	require.Empty(t, diags.Items())
	assert.Equal(t, ast.Program, arena.Get(program).Kind)
	assert.Equal(t, 0, arena.Len(program))
}

func TestParseSimpleFunction(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(`fn main() -> i32 { return 42; }`))
	require.Empty(t, diags.Items())
	require.Equal(t, 1, arena.Len(program))

	fn := arena.Child(program, 0)
	require.Equal(t, ast.Function, arena.Get(fn).Kind)
	assert.Equal(t, "main", arena.Get(fn).Lexeme)

	// children: [params, returnType, body]
	require.Equal(t, 3, arena.Len(fn))
	body := arena.Child(fn, 2)
	assert.Equal(t, ast.Block, arena.Get(body).Kind)
	require.Equal(t, 1, arena.Len(body))

	ret := arena.Child(body, 0)
	assert.Equal(t, ast.Return, arena.Get(ret).Kind)
	lit := arena.Child(ret, 0)
	assert.Equal(t, ast.Literal, arena.Get(lit).Kind)
	assert.Equal(t, "42", arena.Get(lit).Lexeme)
}

func TestParseGenericFunctionDetectsAutoParameters(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(
		`fn add(auto a, auto b) -> auto { return a + b; }`))
	require.Empty(t, diags.Items())
	fn := arena.Child(program, 0)
	n := arena.Get(fn)
	assert.Equal(t, ast.GenericFunction, n.Kind)
	assert.True(t, n.Generics.IsGeneric)
	assert.True(t, n.Generics.IsAuto)
	assert.Equal(t, []string{"a", "b"}, n.Generics.Placeholders)
}

func TestParseCallExpression(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(
		`fn main() -> i32 { return add(2, 3); }`))
	require.Empty(t, diags.Items())
	fn := arena.Child(program, 0)
	body := arena.Child(fn, 2)
	ret := arena.Child(body, 0)
	call := arena.Child(ret, 0)
	require.Equal(t, ast.Call, arena.Get(call).Kind)
	require.Equal(t, 3, arena.Len(call)) // callee + 2 args
	callee := arena.Child(call, 0)
	assert.Equal(t, ast.Identifier, arena.Get(callee).Kind)
	assert.Equal(t, "add", arena.Get(callee).Lexeme)
}

func TestParseStructDeclarationPreservesFieldOrder(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(`struct P { f64 x; f64 y; }`))
	require.Empty(t, diags.Items())
	st := arena.Child(program, 0)
	require.Equal(t, ast.Struct, arena.Get(st).Kind)
	require.Equal(t, 2, arena.Len(st))
	assert.Equal(t, "x", arena.Get(arena.Child(st, 0)).Lexeme)
	assert.Equal(t, "y", arena.Get(arena.Child(st, 1)).Lexeme)
}

func TestParseStructLiteralWithUserTypeVariableDecl(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(
		`fn main() -> i32 { P p = {x: 1.0, y: 2.0}; return 0; }`))
	require.Empty(t, diags.Items())
	fn := arena.Child(program, 0)
	body := arena.Child(fn, 2)
	decl := arena.Child(body, 0)
	require.Equal(t, ast.VariableDecl, arena.Get(decl).Kind)
	assert.Equal(t, "p", arena.Get(decl).Lexeme)
	require.Equal(t, 2, arena.Len(decl))

	lit := arena.Child(decl, 1)
	require.Equal(t, ast.StructLiteral, arena.Get(lit).Kind)
	require.Equal(t, 2, arena.Len(lit))

	first := arena.Child(lit, 0)
	require.Equal(t, ast.Assignment, arena.Get(first).Kind)
	assert.Equal(t, ":", arena.Get(first).Lexeme)
}

func TestParseAutoVariableWithoutInitializerIsError(t *testing.T) {
	_, _, diags := Parse("t.echo", []byte(`fn main() -> i32 { auto x; return 0; }`))
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, "auto variable must have an initializer", diags.Items()[0].Message)
}

func TestParseScopeResolutionCallee(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(
		`#include core::io
fn main() -> i32 { io::print("hi"); return 0; }`))
	require.Empty(t, diags.Items())
	require.Equal(t, 2, arena.Len(program))

	fn := arena.Child(program, 1)
	body := arena.Child(fn, 2)
	exprStmt := arena.Child(body, 0)
	require.Equal(t, ast.ExpressionStmt, arena.Get(exprStmt).Kind)
	call := arena.Child(exprStmt, 0)
	require.Equal(t, ast.Call, arena.Get(call).Kind)
	callee := arena.Child(call, 0)
	require.Equal(t, ast.ScopeResolution, arena.Get(callee).Kind)
}

func TestParseForLoopWithOmittedClauseUsesPlaceholder(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(
		`fn main() -> i32 { for (i32 i = 0; ; i = i + 1) { return i; } return 0; }`))
	require.Empty(t, diags.Items())
	fn := arena.Child(program, 0)
	body := arena.Child(fn, 2)
	forNode := arena.Child(body, 0)
	require.Equal(t, ast.For, arena.Get(forNode).Kind)
	require.Equal(t, 4, arena.Len(forNode))
	condSlot := arena.Child(forNode, 1)
	assert.Equal(t, ast.ExpressionStmt, arena.Get(condSlot).Kind)
	assert.Equal(t, 0, arena.Len(condSlot))
}

func TestParseRecoversFromErrorAtStatementBoundary(t *testing.T) {
	arena, program, diags := Parse("t.echo", []byte(
		`fn main() -> i32 { @@@; return 1; }`))
	require.NotEmpty(t, diags.Items())
	fn := arena.Child(program, 0)
	body := arena.Child(fn, 2)
	require.GreaterOrEqual(t, arena.Len(body), 1)
	last := arena.Child(body, arena.Len(body)-1)
	assert.Equal(t, ast.Return, arena.Get(last).Kind)
}
