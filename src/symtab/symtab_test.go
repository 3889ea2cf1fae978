package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vslower/src/symtab"
)

func TestReservedFramesStartAtDepthTwo(t *testing.T) {
	tab := symtab.New[int]()
	assert.Equal(t, 2, tab.Depth())
}

func TestExternAndFunctionVisibleFromNestedBlocks(t *testing.T) {
	tab := symtab.New[string]()
	tab.InsertExtern("puts", "extern:puts")
	tab.InsertFunction("main", "fn:main")

	tab.Push() // function body scope
	tab.Push() // nested block scope

	v, ok := tab.Lookup("puts")
	require.True(t, ok)
	assert.Equal(t, "extern:puts", v)

	v, ok = tab.Lookup("main")
	require.True(t, ok)
	assert.Equal(t, "fn:main", v)

	tab.Pop()
	tab.Pop()
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	tab := symtab.New[int]()
	tab.Push()
	tab.Insert("x", 1)
	tab.Push()
	tab.Insert("x", 2)

	v, ok := tab.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	tab.Pop()
	v, ok = tab.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	tab.Pop()
}

func TestLookupUnresolvedReturnsFalse(t *testing.T) {
	tab := symtab.New[int]()
	_, ok := tab.Lookup("nope")
	assert.False(t, ok)
}

func TestLookupLocalOnlyChecksTopFrame(t *testing.T) {
	tab := symtab.New[int]()
	tab.Push()
	tab.Insert("x", 1)
	tab.Push()

	_, ok := tab.LookupLocal("x")
	assert.False(t, ok, "x was declared in the enclosing frame, not this one")

	tab.Insert("x", 2)
	v, ok := tab.LookupLocal("x")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	tab.Pop()
	tab.Pop()
}

func TestInsertExternAlwaysTargetsFrameZero(t *testing.T) {
	tab := symtab.New[int]()
	tab.Push()
	tab.Push()
	tab.Push()
	tab.InsertExtern("f", 42)

	_, localOK := tab.LookupLocal("f")
	assert.False(t, localOK)

	v, ok := tab.LookupExtern("f")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}
