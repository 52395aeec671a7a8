package imports

import (
	"testing"

	"github.com/echo-lang/echoc/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementModuleImport(t *testing.T) {
	imp := ParseStatement("core::io")
	assert.Equal(t, Module, imp.Kind)
	assert.Equal(t, "core::io", imp.ModulePath)
}

func TestParseStatementModuleAliasImport(t *testing.T) {
	imp := ParseStatement("core::io as io2")
	assert.Equal(t, ModuleAlias, imp.Kind)
	assert.Equal(t, "core::io", imp.ModulePath)
	assert.Equal(t, "io2", imp.Alias)
}

func TestParseStatementFunctionImport(t *testing.T) {
	imp := ParseStatement("core::io::print")
	assert.Equal(t, Function, imp.Kind)
	assert.Equal(t, "core::io", imp.ModulePath)
	assert.Equal(t, "print", imp.FunctionName)
}

func TestParseStatementFunctionAliasImport(t *testing.T) {
	imp := ParseStatement("core::io::print as p")
	assert.Equal(t, FunctionAlias, imp.Kind)
	assert.Equal(t, "print", imp.FunctionName)
	assert.Equal(t, "p", imp.Alias)
}

func TestAddSymbolsModuleImportRegistersBothQualifiedForms(t *testing.T) {
	tbl := symbols.NewTable()
	ok := AddSymbols(tbl, ParseStatement("core::io"))
	require.True(t, ok)

	full, found := tbl.LookupGlobal("core::io::print")
	require.True(t, found)
	assert.True(t, full.IsBuiltin)
	assert.Equal(t, "echo_print_string", full.CFunctionName)

	short, found := tbl.LookupGlobal("io::print")
	require.True(t, found)
	assert.Equal(t, "echo_print_string", short.CFunctionName)
}

func TestAddSymbolsModuleAliasImportRegistersOnlyAliasedForm(t *testing.T) {
	tbl := symbols.NewTable()
	ok := AddSymbols(tbl, ParseStatement("core::io as sys"))
	require.True(t, ok)

	_, found := tbl.LookupGlobal("sys::print")
	assert.True(t, found)
	_, found = tbl.LookupGlobal("io::print")
	assert.False(t, found)
}

func TestAddSymbolsFunctionImportRegistersBareName(t *testing.T) {
	tbl := symbols.NewTable()
	ok := AddSymbols(tbl, ParseStatement("core::string::concat"))
	require.True(t, ok)

	sym, found := tbl.LookupGlobal("concat")
	require.True(t, found)
	assert.Equal(t, "echo_string_concat", sym.CFunctionName)
}

func TestAddSymbolsUnknownFunctionFails(t *testing.T) {
	tbl := symbols.NewTable()
	ok := AddSymbols(tbl, ParseStatement("core::io::does_not_exist"))
	assert.False(t, ok)
}

func TestProcessResolvesIncludeLine(t *testing.T) {
	tbl := symbols.NewTable()
	ok := Process(tbl, "core::mem")
	require.True(t, ok)
	_, found := tbl.LookupGlobal("mem::alloc")
	assert.True(t, found)
}
