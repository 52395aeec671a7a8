package emitter

import (
	"strings"
	"testing"

	"github.com/echo-lang/echoc/internal/parser"
	"github.com/echo-lang/echoc/internal/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	arena, program, diags := parser.Parse("t.echo", []byte(src))
	require.Empty(t, diags.Items(), "parse must succeed")
	a := semantic.New(arena, diags)
	a.Analyze(program)
	require.Zero(t, diags.ErrorCount(), "analysis must succeed: %v", diags.Items())
	return New(arena, a.Table(), a.Mono()).Emit(program)
}

func TestEmitIncludesFixedPreamble(t *testing.T) {
	out := compile(t, `fn main() -> i32 { return 0; }`)
	assert.True(t, strings.HasPrefix(out, "#include <stdio.h>\n"))
	assert.Contains(t, out, "#include <echo_runtime.h>")
}

func TestEmitStructPreservesFieldOrder(t *testing.T) {
	out := compile(t, `struct Point { f64 x; f64 y; } fn main() -> i32 { return 0; }`)
	typeDef := out[strings.Index(out, "typedef struct Point"):]
	xIdx := strings.Index(typeDef, "double x")
	yIdx := strings.Index(typeDef, "double y")
	require.True(t, xIdx != -1 && yIdx != -1)
	assert.Less(t, xIdx, yIdx)
}

func TestEmitFunctionSignatureMapsTypes(t *testing.T) {
	out := compile(t, `fn add(i32 a, i32 b) -> i32 { return a + b; }
fn main() -> i32 { return add(1, 2); }`)
	assert.Contains(t, out, "int32_t add(int32_t a, int32_t b)")
}

func TestEmitVoidFunctionWithNoParametersUsesVoidParamList(t *testing.T) {
	out := compile(t, `fn greet() -> void { }
fn main() -> i32 { greet(); return 0; }`)
	assert.Contains(t, out, "void greet(void)")
}

func TestEmitGenericCallUsesMangledName(t *testing.T) {
	out := compile(t, `fn add(auto a, auto b) -> auto { return a + b; }
fn main() -> i32 { return add(1, 2); }`)
	assert.Contains(t, out, "add_i32_i32")
	assert.NotContains(t, out, "add(1, 2)")
}

func TestEmitStructLiteralAsDesignatedInitializer(t *testing.T) {
	out := compile(t, `struct Point { f64 x; f64 y; }
fn main() -> f64 { Point p = {x: 1.0, y: 2.0}; return p.x; }`)
	assert.Contains(t, out, ".x = 1.0")
	assert.Contains(t, out, ".y = 2.0")
}

func TestEmitImportedBuiltinCallRewritesToRuntimeSymbol(t *testing.T) {
	out := compile(t, `#include core::io
fn main() -> i32 { io::print("hi"); return 0; }`)
	assert.Contains(t, out, `echo_print_string("hi")`)
}

func TestEmitIfElseTranslatesToCConditional(t *testing.T) {
	out := compile(t, `fn main() -> i32 { if (1 == 1) { return 1; } else { return 0; } }`)
	assert.Contains(t, out, "if (1 == 1)")
	assert.Contains(t, out, "else")
}

func TestEmitForLoopTranslatesAllThreeClauses(t *testing.T) {
	out := compile(t, `fn main() -> i32 { for (i32 i = 0; i < 10; i = i + 1) { } return 0; }`)
	assert.Contains(t, out, "for (int32_t i = 0; i < 10; i = i + 1)")
}

func TestEmitGenericCallSiteMatchesItsOwnArgumentTypes(t *testing.T) {
	out := compile(t, `fn add(auto a, auto b) -> auto { return a + b; }
fn main() -> i32 { add(1, 2); add(1.5, 2.5); return 0; }`)
	assert.Contains(t, out, "add_i32_i32(1, 2)")
	assert.Contains(t, out, "add_f64_f64(1.5, 2.5)")
}

func TestEmitGenericCallWithVariableArgumentsResolvesMangledName(t *testing.T) {
	out := compile(t, `fn add(auto a, auto b) -> auto { return a + b; }
fn main() -> i32 { i32 x = 1; i32 y = 2; add(x, y); return 0; }`)
	assert.Contains(t, out, "add_i32_i32(x, y)")
	assert.NotContains(t, out, "add(x, y)")
}

func TestEmitEnumAsCEnumWithPrefixedVariants(t *testing.T) {
	out := compile(t, `enum Color { Red, Green, Blue }
fn main() -> i32 { return 0; }`)
	typeDef := out[strings.Index(out, "typedef enum"):]
	redIdx := strings.Index(typeDef, "Color_Red,")
	greenIdx := strings.Index(typeDef, "Color_Green,")
	blueIdx := strings.Index(typeDef, "Color_Blue,")
	require.True(t, redIdx != -1 && greenIdx != -1 && blueIdx != -1)
	assert.Less(t, redIdx, greenIdx)
	assert.Less(t, greenIdx, blueIdx)
	assert.Contains(t, out, "} Color;")
}

func TestEmitEnumVariantReferenceRewritesToPrefixedName(t *testing.T) {
	out := compile(t, `enum Color { Red, Green }
fn main() -> i32 { Color c = Color::Green; return 0; }`)
	assert.Contains(t, out, "Color c = Color_Green;")
}
