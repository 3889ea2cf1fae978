package driver_test

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/go-llvm"

	"vslower/src/ast"
	"vslower/src/driver"
	"vslower/src/llir"
	"vslower/src/registry"
)

// program builds an *ast.Program from top-level nodes in source order,
// populating Order and the per-kind slices the way a real parser boundary
// would (see src/astjson.go's decodeProgram).
func program(nodes ...ast.Node) *ast.Program {
	p := &ast.Program{Order: nodes}
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Extern:
			p.Externs = append(p.Externs, v)
		case *ast.FieldVarDecl:
			p.FieldDecls = append(p.FieldDecls, v)
		case *ast.FieldVarDef:
			p.FieldDefs = append(p.FieldDefs, v)
		case *ast.Function:
			p.Functions = append(p.Functions, v)
		}
	}
	return p
}

func fn(ret, name string, params []ast.Param, body ...ast.Stmt) *ast.Function {
	return &ast.Function{ReturnType: ret, Name: name, Params: params, Body: body}
}

func block(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

// S1 — minimal main: compiles to a single i32-returning @main with an entry
// block and a bare `ret i32 0`.
func TestS1MinimalMain(t *testing.T) {
	p := program(fn(registry.TypeInt, "main", nil, &ast.Return{Expr: &ast.IntConst{Value: 0}}))

	ctx := llir.NewContext("s1")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)

	ir := ctx.Module.String()
	assert.Contains(t, ir, "define i32 @main()")
	assert.Contains(t, ir, "ret i32 0")
}

// functionBodyRE isolates a named function's definition (signature through
// its closing brace) out of a full module dump, so a structural comparison
// doesn't have to account for the module-level preamble (source_filename,
// target datalayout/triple), which is immaterial to what the lowering
// engine itself controls and varies by host.
func functionBody(ir, name string) string {
	re := regexp.MustCompile(`define [^\n]*@` + regexp.QuoteMeta(name) + `\([^\n]*\{[\s\S]*?\n\}`)
	return re.FindString(ir)
}

// TestLoweringIsDeterministic checks spec.md §8 property 6: lowering the
// same AST twice, into two independent *llir.Context values, yields
// structurally identical IR for the function body — grounded on
// sunholo-data-ailang's golden/structural-diff test style (package
// testutil), adapted here to comparing two live runs against each other
// with go-cmp rather than against an on-disk golden file.
func TestLoweringIsDeterministic(t *testing.T) {
	build := func() *ast.Program {
		return program(
			&ast.FieldVarDecl{Type: registry.TypeInt, Name: "a", Size: 4},
			fn(registry.TypeInt, "main", nil,
				&ast.VarDecl{Type: registry.TypeInt, Name: "i"},
				&ast.VarAssign{Name: "i", Expr: &ast.IntConst{Value: 0}},
				&ast.ArrayAssign{Name: "a", Index: &ast.IntConst{Value: 1}, Value: &ast.VarRef{Name: "i"}},
				&ast.Return{Expr: &ast.ArrayRef{Name: "a", Index: &ast.IntConst{Value: 1}}},
			),
		)
	}

	ctxA := llir.NewContext("det")
	defer ctxA.Dispose()
	_, err := driver.Compile(ctxA, build())
	require.NoError(t, err)

	ctxB := llir.NewContext("det")
	defer ctxB.Dispose()
	_, err = driver.Compile(ctxB, build())
	require.NoError(t, err)

	bodyA := functionBody(ctxA.Module.String(), "main")
	bodyB := functionBody(ctxB.Module.String(), "main")
	require.NotEmpty(t, bodyA)
	if diff := cmp.Diff(bodyA, bodyB); diff != "" {
		t.Errorf("identical AST lowered to different IR (-first +second):\n%s", diff)
	}
}

// S2 — global array declared at top level, written via ArrayAssign inside
// main, read back via ArrayRef in the return expression.
func TestS2GlobalArrayIndexedWrite(t *testing.T) {
	p := program(
		&ast.FieldVarDecl{Type: registry.TypeInt, Name: "a", Size: 4},
		fn(registry.TypeInt, "main", nil,
			&ast.ArrayAssign{Name: "a", Index: &ast.IntConst{Value: 2}, Value: &ast.IntConst{Value: 7}},
			&ast.Return{Expr: &ast.ArrayRef{Name: "a", Index: &ast.IntConst{Value: 2}}},
		),
	)

	ctx := llir.NewContext("s2")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)

	ir := ctx.Module.String()
	assert.Contains(t, ir, "@a = global [4 x i32] zeroinitializer")
	assert.Contains(t, ir, "getelementptr")
	assert.Contains(t, ir, "store i32 7")
}

// S3 — for loop with a break nested inside an if: the emitted function has
// loop/body/next/end blocks and the break's target is end.
func TestS3ForLoopWithBreak(t *testing.T) {
	p := program(fn(registry.TypeInt, "main", nil,
		&ast.For{
			Init: []*ast.VarAssign{{Name: "i", Expr: &ast.IntConst{Value: 0}}},
			Cond: &ast.Binary{Op: registry.OpLt, Left: &ast.VarRef{Name: "i"}, Right: &ast.IntConst{Value: 10}},
			Update: []*ast.VarAssign{{Name: "i", Expr: &ast.Binary{
				Op: registry.OpPlus, Left: &ast.VarRef{Name: "i"}, Right: &ast.IntConst{Value: 1},
			}}},
			Body: block(&ast.If{
				Cond: &ast.Binary{Op: registry.OpEq, Left: &ast.VarRef{Name: "i"}, Right: &ast.IntConst{Value: 5}},
				Then: block(&ast.Break{}),
			}),
		},
		&ast.Return{Expr: &ast.VarRef{Name: "i"}},
	))

	// The for-loop's own VarAssign init nodes reference `i` before any
	// VarDecl exists; model the source grammar's implicit loop-counter
	// declaration the way a real parser would: declare i first.
	p.Functions[0].Body = append([]ast.Stmt{&ast.VarDecl{Type: registry.TypeInt, Name: "i"}}, p.Functions[0].Body...)

	ctx := llir.NewContext("s3")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)

	ir := ctx.Module.String()
	for _, label := range []string{"loop", "body", "next", "end"} {
		assert.Contains(t, ir, label+":", "missing %s block", label)
	}
}

// S4 — short-circuit `||`: `true || f()` branches around the call to @f and
// merges through a phi node; f is never actually called at lowering time
// (the facade still builds the noskct block, but no unconditional branch
// into it survives from entry).
func TestS4ShortCircuitOrSkipsCall(t *testing.T) {
	p := program(
		&ast.Extern{ReturnType: registry.TypeBool, Name: "f", ParamTypes: nil},
		fn(registry.TypeBool, "main", nil,
			&ast.Return{Expr: &ast.Binary{
				Op:    registry.OpOr,
				Left:  &ast.BoolConst{Value: true},
				Right: &ast.Call{Callee: "f"},
			}},
		),
	)

	ctx := llir.NewContext("s4")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)

	ir := ctx.Module.String()
	assert.Contains(t, ir, "call i1 @f()")
	assert.Contains(t, ir, "phi i1")
	assert.Contains(t, ir, "br i1 true, label %skctend, label %noskct")
}

// S5 — bool argument widened to int at a call site via zext.
func TestS5BoolToIntCallCoercion(t *testing.T) {
	p := program(
		&ast.Extern{ReturnType: registry.TypeInt, Name: "takes_int", ParamTypes: []string{registry.TypeInt}},
		fn(registry.TypeInt, "main", nil,
			&ast.Return{Expr: &ast.Call{Callee: "takes_int", Args: []ast.Expr{&ast.BoolConst{Value: true}}}},
		),
	)

	ctx := llir.NewContext("s5")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)

	ir := ctx.Module.String()
	assert.Contains(t, ir, "zext i1 true to i32")
	assert.Contains(t, ir, "call i32 @takes_int(i32")
}

// S6 — assigning a bool to an int-typed local is a fatal type mismatch, and
// no module is produced.
func TestS6AssignTypeMismatchRejected(t *testing.T) {
	p := program(fn(registry.TypeInt, "main", nil,
		&ast.VarDecl{Type: registry.TypeInt, Name: "x"},
		&ast.VarAssign{Name: "x", Expr: &ast.BoolConst{Value: true}},
		&ast.Return{Expr: &ast.IntConst{Value: 0}},
	))

	ctx := llir.NewContext("s6a")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), registry.ErrBoolToInt)
}

// S6 (continued) — returning a bool from an int-returning function is
// likewise rejected.
func TestS6ReturnTypeMismatchRejected(t *testing.T) {
	p := program(fn(registry.TypeInt, "main", nil,
		&ast.Return{Expr: &ast.BoolConst{Value: true}},
	))

	ctx := llir.NewContext("s6b")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), registry.ErrReturnMismatch)
}

// S7 — a program with no user-defined main fails at the driver's closing
// check, independent of any externs it declares.
func TestS7MissingMain(t *testing.T) {
	p := program(&ast.Extern{ReturnType: registry.TypeInt, Name: "puts", ParamTypes: []string{registry.TypeString}})

	ctx := llir.NewContext("s7")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), registry.ErrNoMain)

	ce, ok := err.(*registry.CompileError)
	require.True(t, ok)
	assert.Equal(t, registry.ExitNoMain, ce.Code)
}

// Every basic block the lowering emits for a nontrivial function body is
// terminated exactly once — spec.md §8 property 1. Checked by walking the
// function's actual in-memory CFG (tinygo.org/x/go-llvm exposes
// BasicBlocks()/LastInstruction()) rather than scanning the textual dump,
// since a predecessor comment LLVM prints on a label line would otherwise
// make a naive text scan miscount block boundaries.
func TestEveryBlockSingleTerminator(t *testing.T) {
	p := program(fn(registry.TypeInt, "main", nil,
		&ast.VarDecl{Type: registry.TypeInt, Name: "i"},
		&ast.VarAssign{Name: "i", Expr: &ast.IntConst{Value: 0}},
		&ast.While{
			Cond: &ast.Binary{Op: registry.OpLt, Left: &ast.VarRef{Name: "i"}, Right: &ast.IntConst{Value: 3}},
			Body: block(&ast.VarAssign{Name: "i", Expr: &ast.Binary{
				Op: registry.OpPlus, Left: &ast.VarRef{Name: "i"}, Right: &ast.IntConst{Value: 1},
			}}),
		},
		&ast.Return{Expr: &ast.VarRef{Name: "i"}},
	))

	ctx := llir.NewContext("terminators")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)

	main := ctx.Module.NamedFunction("main")
	require.False(t, main.IsNil())

	for _, bb := range main.BasicBlocks() {
		last := bb.LastInstruction()
		require.False(t, last.IsNil(), "block %s has no instructions", bb.AsValue().Name())
		op := last.InstructionOpcode()
		isTerm := op == llvm.Br || op == llvm.Ret || op == llvm.Switch || op == llvm.Unreachable
		assert.True(t, isTerm, "block %s does not end in a terminator", bb.AsValue().Name())
	}
}

// Break/continue used outside of any loop is rejected rather than panicking
// on an empty target-stack peek.
func TestBreakOutsideLoopRejected(t *testing.T) {
	p := program(fn(registry.TypeVoid, "main", nil, &ast.Break{}))

	ctx := llir.NewContext("breakonly")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), registry.ErrEmptyTargetStack)
}

// Calling an undeclared function is a fatal, not-a-panic error.
func TestUndeclaredFunctionCallRejected(t *testing.T) {
	p := program(fn(registry.TypeInt, "main", nil,
		&ast.Return{Expr: &ast.Call{Callee: "nope"}},
	))

	ctx := llir.NewContext("undeclaredfn")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), registry.ErrFunctionUndeclared)
}

// Array declared with size 0 is rejected at lowering time.
func TestFieldVarDeclZeroSizeRejected(t *testing.T) {
	p := program(
		&ast.FieldVarDecl{Type: registry.TypeInt, Name: "bad", Size: 0},
		fn(registry.TypeInt, "main", nil, &ast.Return{Expr: &ast.IntConst{Value: 0}}),
	)

	ctx := llir.NewContext("zerosize")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), registry.ErrIndexTooLow)
}

// Forward reference: a function may call another function declared later
// in source order, since phase 1 registers every header before phase 2
// emits any body.
func TestForwardReferenceBetweenFunctions(t *testing.T) {
	p := program(
		fn(registry.TypeInt, "main", nil,
			&ast.Return{Expr: &ast.Call{Callee: "helper"}},
		),
		fn(registry.TypeInt, "helper", nil,
			&ast.Return{Expr: &ast.IntConst{Value: 42}},
		),
	)

	ctx := llir.NewContext("forwardref")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)
	assert.Contains(t, ctx.Module.String(), "call i32 @helper()")
}

// A function that falls off the end without an explicit return receives the
// synthetic default return (spec.md §9's documented, not-fixed, behavior).
func TestFallOffEndGetsDefaultReturn(t *testing.T) {
	p := program(fn(registry.TypeBool, "main", nil, &ast.VarDecl{Type: registry.TypeBool, Name: "unused"}))

	ctx := llir.NewContext("falloff")
	defer ctx.Dispose()

	_, err := driver.Compile(ctx, p)
	require.NoError(t, err)
	assert.Contains(t, ctx.Module.String(), "ret i1 false")
}
