package symbols

import (
	"testing"

	"github.com/echo-lang/echoc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableStartsAtGlobalScope(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, 0, tbl.Depth())
	assert.Same(t, tbl.Global(), tbl.Current())
}

func TestInsertRejectsDuplicateInSameScope(t *testing.T) {
	tbl := NewTable()
	ok := tbl.Insert(&Symbol{Name: "x", Kind: Variable, Declaration: ast.NodeID(1)})
	require.True(t, ok)
	ok = tbl.Insert(&Symbol{Name: "x", Kind: Variable, Declaration: ast.NodeID(2)})
	assert.False(t, ok, "redefinition in the same scope must fail")
}

func TestShadowingInNestedScopeSucceeds(t *testing.T) {
	tbl := NewTable()
	require.True(t, tbl.Insert(&Symbol{Name: "x", Kind: Variable}))

	tbl.EnterScope(false)
	ok := tbl.Insert(&Symbol{Name: "x", Kind: Variable})
	assert.True(t, ok, "shadowing an outer-scope symbol must succeed")

	sym, found := tbl.Lookup("x")
	require.True(t, found)
	assert.Equal(t, 1, sym.ScopeLevel)
	tbl.ExitScope()

	sym, found = tbl.Lookup("x")
	require.True(t, found)
	assert.Equal(t, 0, sym.ScopeLevel)
}

func TestLookupMarksSymbolUsedButLookupCurrentDoesNot(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{Name: "x", Kind: Variable})

	sym, _ := tbl.LookupCurrent("x")
	assert.False(t, sym.Used)

	sym, _ = tbl.Lookup("x")
	assert.True(t, sym.Used)
}

func TestLookupWalksOuterScopes(t *testing.T) {
	tbl := NewTable()
	tbl.Insert(&Symbol{Name: "outer", Kind: Variable})
	tbl.EnterScope(false)
	tbl.EnterScope(false)

	_, found := tbl.Lookup("outer")
	assert.True(t, found)

	_, found = tbl.LookupCurrent("outer")
	assert.False(t, found, "lookup-current must not see outer-scope symbols")
}

func TestExitScopeCannotPopGlobal(t *testing.T) {
	tbl := NewTable()
	assert.Panics(t, func() { tbl.ExitScope() })
}

func TestFunctionScopeFindsNearestEnclosingFunctionScope(t *testing.T) {
	tbl := NewTable()
	assert.Nil(t, tbl.FunctionScope())

	tbl.EnterScope(true)
	fnScope := tbl.Current()
	tbl.EnterScope(false) // a nested block inside the function
	assert.Same(t, fnScope, tbl.FunctionScope())
}

func TestInsertGlobalIsVisibleFromNestedScope(t *testing.T) {
	tbl := NewTable()
	tbl.EnterScope(true)
	tbl.EnterScope(false)
	require.True(t, tbl.InsertGlobal(&Symbol{Name: "print", Kind: Function, IsBuiltin: true}))

	sym, found := tbl.Lookup("print")
	require.True(t, found)
	assert.True(t, sym.IsBuiltin)
}
