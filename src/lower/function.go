package lower

import (
	"vslower/src/ast"
	"vslower/src/llir"
	"vslower/src/registry"
)

// DeclareHeader is phase 1 of spec.md §4.3's two-phase function lowering:
// declare fn's signature and bind it in the function scope, without
// touching its body. Grounded on the teacher's genFuncHeader and decaf's
// createFunctionHeader.
func DeclareHeader(s *State, fn *ast.Function) error {
	if _, dup := s.Syms.LookupFunction(fn.Name); dup {
		return fatal(fn.Pos, registry.ExitError, registry.ErrDuplicateFunction)
	}
	if _, dup := s.Syms.LookupExtern(fn.Name); dup {
		return fatal(fn.Pos, registry.ExitError, registry.ErrDuplicateFunction)
	}

	paramTypes := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = p.Type
	}
	h, err := s.Ctx.FnHeader(fn.ReturnType, fn.Name, paramTypes)
	if err != nil {
		return fatal(fn.Pos, registry.ExitError, err.Error())
	}
	s.Syms.InsertFunction(fn.Name, h)
	return nil
}

// EmitBody is phase 2: set insertion to a fresh entry block, push a scope
// frame, materialize each parameter as a local slot (spec.md's
// FunctionParam pseudo-nodes, realized here as a positional pass over the
// function's real IR arguments rather than synthesized AST nodes — keeping
// package ast free of any LLIR-specific "argument handle" field), lower the
// body statements in order, and emit a default return if nothing already
// terminated the final block.
func EmitBody(s *State, fn *ast.Function) error {
	h, ok := s.Syms.LookupFunction(fn.Name)
	if !ok {
		return fatal(fn.Pos, registry.ExitError, "internal: EmitBody called before DeclareHeader for "+fn.Name)
	}

	entry := s.Ctx.NewBlock(h.Ptr, llir.BlockEntry)
	s.Ctx.SetInsertPoint(entry)

	s.Syms.Push()
	defer s.Syms.Pop()

	prevFn, prevRet := s.fn, s.returnType
	s.fn, s.returnType = h.Ptr, fn.ReturnType
	defer func() { s.fn, s.returnType = prevFn, prevRet }()

	args := s.Ctx.Params(h)
	for i, p := range fn.Params {
		if _, dup := s.Syms.LookupLocal(p.Name); dup {
			return fatal(fn.Pos, registry.ExitError, registry.ErrDuplicateLocal)
		}
		slot, err := s.Ctx.StoreParam(p.Type, args[i], p.Name)
		if err != nil {
			return fatal(fn.Pos, registry.ExitError, err.Error())
		}
		s.Syms.Insert(p.Name, slot)
	}

	terminated := false
	for _, stmt := range fn.Body {
		t, err := LowerStmt(s, stmt)
		if err != nil {
			return err
		}
		terminated = t
		if terminated {
			break
		}
	}

	if !terminated {
		if err := s.Ctx.DefaultReturn(fn.ReturnType); err != nil {
			return fatal(fn.Pos, registry.ExitError, err.Error())
		}
	}
	return nil
}
