package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vslower/src/ast"
)

func TestNewStringConstStripsQuotes(t *testing.T) {
	sc := ast.NewStringConst(ast.Position{}, `"hello, world"`)
	assert.Equal(t, "hello, world", sc.Value)
}

func TestNewStringConstLeavesUnquotedUntouched(t *testing.T) {
	// Defensive: a raw string missing its quotes is passed through rather
	// than mangled, since callers are expected to always supply the quoted
	// form per the external interface contract (spec §6).
	sc := ast.NewStringConst(ast.Position{}, "bare")
	assert.Equal(t, "bare", sc.Value)
}

func TestScalarSentinelDistinctFromZero(t *testing.T) {
	assert.NotEqual(t, 0, ast.Scalar)
}

func TestStmtExprSealing(t *testing.T) {
	var s ast.Stmt = &ast.Block{}
	var e ast.Expr = &ast.IntConst{Value: 3}
	assert.NotNil(t, s)
	assert.NotNil(t, e)

	// FunctionParam is a Stmt but not an Expr.
	var fp ast.Stmt = &ast.FunctionParam{Type: "int", Name: "x"}
	assert.NotNil(t, fp)
}

func TestForHoldsInitAndUpdateLists(t *testing.T) {
	f := &ast.For{
		Init:   []*ast.VarAssign{{Name: "i", Expr: &ast.IntConst{Value: 0}}},
		Cond:   &ast.Binary{Op: "<", Left: &ast.VarRef{Name: "i"}, Right: &ast.IntConst{Value: 10}},
		Update: []*ast.VarAssign{{Name: "i", Expr: &ast.IntConst{Value: 1}}},
		Body:   &ast.Block{},
	}
	assert.Len(t, f.Init, 1)
	assert.Len(t, f.Update, 1)
}
