// Package imports resolves `#include module::path [as alias]` directives
// into symbol-table entries for the builtin function catalogue, per
// spec.md §4.2. Grounded on original_source/src/semantic/import_system.c,
// translated from its linked-list-of-Import / linear BUILTIN_FUNCTIONS scan
// into a linear scan over a Go slice and Go's multi-value returns in place
// of out-parameters.
package imports

import (
	"strings"

	"github.com/echo-lang/echoc/internal/symbols"
)

// FunctionDefinition describes one builtin function: its fully-qualified
// Echo name, the C runtime function it compiles down to, and its
// signature, mirroring original_source's FunctionDefinition struct.
type FunctionDefinition struct {
	QualifiedName string
	CFunction     string
	ReturnType    string
	ParamTypes    []string
}

// Builtins is the fixed catalogue of functions available through the
// core:: modules, a direct port of original_source's BUILTIN_FUNCTIONS
// table.
var Builtins = []FunctionDefinition{
	{QualifiedName: "core::io::print", CFunction: "echo_print_string", ReturnType: "void", ParamTypes: []string{"string"}},
	{QualifiedName: "core::io::print_int", CFunction: "echo_print_int", ReturnType: "void", ParamTypes: []string{"i32"}},
	{QualifiedName: "core::io::print_bool", CFunction: "echo_print_bool", ReturnType: "void", ParamTypes: []string{"bool"}},
	{QualifiedName: "core::mem::alloc", CFunction: "echo_alloc", ReturnType: "void*", ParamTypes: []string{"size_t"}},
	{QualifiedName: "core::mem::free", CFunction: "echo_free", ReturnType: "void", ParamTypes: []string{"void*"}},
	{QualifiedName: "core::string::concat", CFunction: "echo_string_concat", ReturnType: "string", ParamTypes: []string{"string", "string"}},
	{QualifiedName: "core::string::from_int", CFunction: "echo_string_from_int", ReturnType: "string", ParamTypes: []string{"i32"}},
}

func findFunction(qualifiedName string) (FunctionDefinition, bool) {
	for _, f := range Builtins {
		if f.QualifiedName == qualifiedName {
			return f, true
		}
	}
	return FunctionDefinition{}, false
}

// IsBuiltinModule reports whether modulePath (e.g. "core::io") has at
// least one builtin function under it.
func IsBuiltinModule(modulePath string) bool {
	prefix := modulePath + "::"
	for _, f := range Builtins {
		if strings.HasPrefix(f.QualifiedName, prefix) {
			return true
		}
	}
	return false
}

func functionExistsInModule(modulePath, functionName string) bool {
	_, ok := findFunction(modulePath + "::" + functionName)
	return ok
}

// Kind classifies a parsed import statement.
type Kind int

const (
	Module Kind = iota
	ModuleAlias
	Function
	FunctionAlias
)

// Import is one resolved `#include` directive.
type Import struct {
	Kind         Kind
	ModulePath   string
	FunctionName string
	Alias        string
}

// ParseStatement parses the text following "#include " into an Import,
// determining whether it names a module or a single function by checking
// the text after the last "::" against the builtin catalogue, exactly as
// original_source's import_parse_statement does.
func ParseStatement(includeLine string) Import {
	line := strings.TrimSpace(includeLine)

	var alias string
	if idx := strings.Index(line, " as "); idx != -1 {
		alias = strings.TrimSpace(line[idx+4:])
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	if idx := strings.LastIndex(line, "::"); idx != -1 {
		modulePath := line[:idx]
		potentialFunction := line[idx+2:]
		if IsBuiltinModule(modulePath) && functionExistsInModule(modulePath, potentialFunction) {
			if alias != "" {
				return Import{Kind: FunctionAlias, ModulePath: modulePath, FunctionName: potentialFunction, Alias: alias}
			}
			return Import{Kind: Function, ModulePath: modulePath, FunctionName: potentialFunction}
		}
	}

	if alias != "" {
		return Import{Kind: ModuleAlias, ModulePath: line, Alias: alias}
	}
	return Import{Kind: Module, ModulePath: line}
}

// shortModuleName returns the trailing component of a "::"-separated
// module path ("io" from "core::io").
func shortModuleName(modulePath string) string {
	if idx := strings.LastIndex(modulePath, "::"); idx != -1 {
		return modulePath[idx+2:]
	}
	return modulePath
}

// AddSymbols inserts the symbol-table entries an Import resolves to into
// the global scope of tbl, per original_source's import_add_symbols.
// A module import registers both the fully-qualified name
// (core::io::print) and the short-module-qualified name (io::print); a
// module-alias import registers only the aliased form (alias::print); a
// function import registers a single bare or aliased name.
func AddSymbols(tbl *symbols.Table, imp Import) bool {
	switch imp.Kind {
	case Module:
		short := shortModuleName(imp.ModulePath)
		prefix := imp.ModulePath + "::"
		ok := false
		for _, f := range Builtins {
			if !strings.HasPrefix(f.QualifiedName, prefix) {
				continue
			}
			tbl.InsertGlobal(builtinSymbol(f.QualifiedName, f))
			functionPart := strings.TrimPrefix(f.QualifiedName, prefix)
			tbl.InsertGlobal(builtinSymbol(short+"::"+functionPart, f))
			ok = true
		}
		return ok

	case ModuleAlias:
		prefix := imp.ModulePath + "::"
		ok := false
		for _, f := range Builtins {
			if !strings.HasPrefix(f.QualifiedName, prefix) {
				continue
			}
			functionPart := strings.TrimPrefix(f.QualifiedName, prefix)
			tbl.InsertGlobal(builtinSymbol(imp.Alias+"::"+functionPart, f))
			ok = true
		}
		return ok

	case Function:
		f, ok := findFunction(imp.ModulePath + "::" + imp.FunctionName)
		if !ok {
			return false
		}
		return tbl.InsertGlobal(builtinSymbol(imp.FunctionName, f))

	case FunctionAlias:
		f, ok := findFunction(imp.ModulePath + "::" + imp.FunctionName)
		if !ok {
			return false
		}
		return tbl.InsertGlobal(builtinSymbol(imp.Alias, f))
	}
	return false
}

func builtinSymbol(name string, f FunctionDefinition) *symbols.Symbol {
	return &symbols.Symbol{
		Name:          name,
		Kind:          symbols.Function,
		IsBuiltin:     true,
		CFunctionName: f.CFunction,
	}
}

// Process resolves a single "#include ..." directive's body (the text
// after "#include ") against tbl, returning whether it resolved to at
// least one symbol.
func Process(tbl *symbols.Table, includeLine string) bool {
	imp := ParseStatement(includeLine)
	return AddSymbols(tbl, imp)
}
