package semantic

import (
	"testing"

	"github.com/echo-lang/echoc/internal/ast"
	"github.com/echo-lang/echoc/internal/diagnostics"
	"github.com/echo-lang/echoc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) (*ast.Arena, ast.NodeID, *diagnostics.Bag, *Analyzer) {
	t.Helper()
	arena, program, diags := parser.Parse("t.echo", []byte(src))
	require.Empty(t, diags.Items(), "parse must succeed before semantic analysis")
	a := New(arena, diags)
	a.Analyze(program)
	return arena, program, diags, a
}

func TestStructPassRejectsAutoField(t *testing.T) {
	_, _, diags, _ := analyze(t, `struct P { auto x; }`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.InvalidAutoUsage, diags.Items()[0].Kind)
}

func TestStructPassDetectsDuplicateDefinition(t *testing.T) {
	_, _, diags, _ := analyze(t, `struct P { f64 x; } struct P { f64 y; }`)
	require.NotEmpty(t, diags.Items())
	found := false
	for _, d := range diags.Items() {
		if d.Kind == diagnostics.RedefinedSymbol {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFunctionDeclPassDetectsDuplicateDefinition(t *testing.T) {
	_, _, diags, _ := analyze(t, `fn f() -> void {} fn f() -> void {}`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.RedefinedSymbol, diags.Items()[0].Kind)
}

func TestUndefinedSymbolIsReported(t *testing.T) {
	_, _, diags, _ := analyze(t, `fn main() -> i32 { return y; }`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.UndefinedSymbol, diags.Items()[0].Kind)
}

func TestMissingReturnWarnsOnNonVoidFunction(t *testing.T) {
	_, _, diags, _ := analyze(t, `fn f() -> i32 { i32 x = 1; }`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.MissingReturn, diags.Items()[0].Kind)
	assert.Equal(t, diagnostics.Warning, diags.Items()[0].Severity)
}

func TestVoidFunctionWithoutReturnIsNotWarned(t *testing.T) {
	_, _, diags, _ := analyze(t, `fn f() -> void { i32 x = 1; }`)
	assert.Empty(t, diags.Items())
}

func TestAutoVariableDeclRewritesTypeNodeToInferredType(t *testing.T) {
	arena, program, diags, _ := analyze(t, `fn main() -> i32 { auto x = 1.5; return 0; }`)
	require.Empty(t, diags.Items())
	fn := arena.Child(program, 0)
	body := arena.Child(fn, 2)
	decl := arena.Child(body, 0)
	typeNode := arena.Child(decl, 0)
	n := arena.Get(typeNode)
	assert.Equal(t, ast.Type, n.Kind)
	assert.Equal(t, "f64", n.Lexeme)
}

func TestImportedFunctionResolvesAtCallSite(t *testing.T) {
	_, _, diags, _ := analyze(t, `#include core::io
fn main() -> i32 { io::print("hi"); return 0; }`)
	assert.Empty(t, diags.Items())
}

func TestMemberAccessOnKnownStructFieldSucceeds(t *testing.T) {
	_, _, diags, _ := analyze(t, `struct P { f64 x; f64 y; }
fn main() -> f64 { P p = {x: 1.0, y: 2.0}; return p.x; }`)
	assert.Empty(t, diags.Items())
}

func TestMemberAccessOnUnknownFieldIsError(t *testing.T) {
	_, _, diags, _ := analyze(t, `struct P { f64 x; }
fn main() -> i32 { P p = {x: 1.0}; return p.z; }`)
	require.NotEmpty(t, diags.Items())
	found := false
	for _, d := range diags.Items() {
		if d.Kind == diagnostics.UndefinedField {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAutoVariableWithUntypedStructLiteralInitializerIsError(t *testing.T) {
	_, _, diags, _ := analyze(t, `struct Point { f64 x; f64 y; }
fn main() -> i32 { auto p = {x: 1.0, y: 2.0}; return 0; }`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.TypeMismatch, diags.Items()[0].Kind)
}

func TestGenericFunctionCallCreatesInstantiation(t *testing.T) {
	_, _, diags, a := analyze(t, `fn add(auto a, auto b) -> auto { return a + b; }
fn main() -> i32 { return add(1, 2); }`)
	require.Empty(t, diags.Items())
	require.Len(t, a.Mono().Instantiations(), 1)
	assert.Equal(t, "add_i32_i32", a.Mono().Instantiations()[0].MangledName)
}

func TestEnumPassDetectsDuplicateVariant(t *testing.T) {
	_, _, diags, _ := analyze(t, `enum Color { Red, Green, Red }`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.RedefinedSymbol, diags.Items()[0].Kind)
}

func TestEnumPassDetectsDuplicateDefinition(t *testing.T) {
	_, _, diags, _ := analyze(t, `enum Color { Red } enum Color { Blue }`)
	require.NotEmpty(t, diags.Items())
	found := false
	for _, d := range diags.Items() {
		if d.Kind == diagnostics.RedefinedSymbol {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEnumVariantAccessSucceeds(t *testing.T) {
	_, _, diags, _ := analyze(t, `enum Color { Red, Green, Blue }
fn main() -> i32 { Color c = Color::Green; return 0; }`)
	assert.Empty(t, diags.Items())
}

func TestUnknownEnumVariantIsError(t *testing.T) {
	_, _, diags, _ := analyze(t, `enum Color { Red }
fn main() -> i32 { Color c = Color::Purple; return 0; }`)
	require.NotEmpty(t, diags.Items())
	found := false
	for _, d := range diags.Items() {
		if d.Kind == diagnostics.UndefinedField {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUndefinedFunctionCallIsError(t *testing.T) {
	_, _, diags, _ := analyze(t, `fn main() -> i32 { return missing(1); }`)
	require.NotEmpty(t, diags.Items())
	assert.Equal(t, diagnostics.UndefinedFunction, diags.Items()[0].Kind)
}
