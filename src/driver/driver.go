// Package driver implements the program driver entrypoint: the two-phase
// top-level walk spec.md §4.6 describes, plus the closing `main` check.
//
// Grounded on spec.md §4.6 directly and on the teacher's GenLLVM
// (ir/llvm/transform.go), whose sequential branch opens a context/builder/
// module, walks every top-level node once, then emits every function body.
// The teacher's `opt.Threads > 1` parallel branch is deliberately not
// carried over: spec.md §5 mandates a single-threaded, non-reentrant core,
// so a worker pool over the same mutable lowering State would violate that
// invariant outright.
package driver

import (
	"vslower/src/ast"
	"vslower/src/llir"
	"vslower/src/lower"
	"vslower/src/registry"
)

// Compile lowers program into a complete LLIR module over ctx. It performs
// phase 1 (externs, field variables, function headers) over every top-level
// node in source order, then phase 2 (function bodies) over every function
// in source order, then requires a user-defined `main` to be present.
//
// The returned *lower.State is the finished lowering context; the caller
// is expected to read ctx.Module (e.g. ctx.Module.String()) for the result.
func Compile(ctx *llir.Context, program *ast.Program) (*lower.State, error) {
	s := lower.NewState(ctx)

	for _, n := range program.Order {
		if err := lowerTopLevel(s, n); err != nil {
			return nil, err
		}
	}

	for _, fn := range program.Functions {
		if err := lower.EmitBody(s, fn); err != nil {
			return nil, err
		}
	}

	if _, ok := s.Syms.LookupFunction("main"); !ok {
		return nil, registry.NewError(phaseDriver, program.Pos.Line, program.Pos.Col, registry.ExitNoMain, registry.ErrNoMain)
	}
	return s, nil
}

// lowerTopLevel dispatches a single phase-1 top-level node: externs and
// field variables are fully lowered here; functions only get their header
// declared (phase 2 emits bodies separately, once every header is visible,
// so forward references between top-level functions resolve).
func lowerTopLevel(s *lower.State, n ast.Node) error {
	switch v := n.(type) {
	case *ast.Extern:
		return lower.LowerExtern(s, v)
	case *ast.FieldVarDecl:
		return lower.LowerFieldVarDecl(s, v)
	case *ast.FieldVarDef:
		return lower.LowerFieldVarDef(s, v)
	case *ast.Function:
		return lower.DeclareHeader(s, v)
	default:
		return registry.NewError(phaseDriver, 0, 0, registry.ExitError, "unhandled top-level node kind")
	}
}

const phaseDriver = "driver"
